package player

import (
	"io"
	"sync"
	"time"
)

const pumpInterval = 20 * time.Millisecond

// pump drains a reader at the rate a sound card would, without producing
// sound. It stands in for an oto player when output is muted.
type pump struct {
	src      io.Reader
	chunk    int
	interval time.Duration

	mu      sync.Mutex
	playing bool
	eof     bool
	stop    chan struct{}
	done    chan struct{}
}

func newPump(src io.Reader, bytesPerSec int64) *pump {
	chunk := int(bytesPerSec * int64(pumpInterval) / int64(time.Second))
	chunk -= chunk % 4
	return &pump{
		src:      src,
		chunk:    max(4, chunk),
		interval: pumpInterval,
	}
}

func (p *pump) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing || p.eof {
		return
	}
	p.playing = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)
}

// Pause stops the pump and waits until it no longer reads from src.
func (p *pump) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()
	<-done
}

func (p *pump) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *pump) SetVolume(float64) {}

func (p *pump) run(stop, done chan struct{}) {
	defer close(done)
	buf := make([]byte, p.chunk)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		if _, err := io.ReadFull(p.src, buf); err != nil {
			p.mu.Lock()
			p.eof = true
			if p.playing && p.stop == stop {
				p.playing = false
				close(p.stop)
			}
			p.mu.Unlock()
			return
		}
	}
}
