// Package player decodes an audio file, plays it and copies the decoded PCM
// into a tap for analysis.
package player

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// output is the playback side of a Player. *oto.Player satisfies it; muted
// players use a wall-clock pump instead.
type output interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(float64)
}

// countingReader tracks how many bytes playback has consumed.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// Options configures a Player.
type Options struct {
	// Mute decodes in real time without opening an audio device.
	Mute bool
	// Volume in [0, 1]; zero means the default.
	Volume float64
	// OnFormat, if set, is called with the decoded format before any audio
	// reaches the tap.
	OnFormat func(sampleRate, channels int)
}

// Player plays one file and tees the PCM into a tap.
type Player struct {
	file        io.Closer
	decoder     audioDecoder
	counter     *countingReader
	tap         io.Writer
	newOutput   func(io.Reader) output
	out         output
	bytesPerSec int64
	volume      float64
	paused      bool
	done        chan struct{}
	stopMon     chan struct{}
	mu          sync.Mutex
	closed      bool
}

var (
	otoCtx     *oto.Context
	otoRate    int
	otoOnce    sync.Once
	otoInitErr error
)

// initOto opens the process-wide audio context. Oto allows one context per
// process, so the first file fixes the device format.
func initOto(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			otoRate = sampleRate
		}
	})
	if otoInitErr == nil && otoRate != sampleRate {
		return nil, fmt.Errorf("audio device already opened at %d Hz, file is %d Hz", otoRate, sampleRate)
	}
	return otoCtx, otoInitErr
}

// New opens path and starts playback. Every decoded byte is also written to
// tap, which may be nil.
func New(path string, tap io.Writer, opts Options) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if opts.OnFormat != nil {
		opts.OnFormat(dec.SampleRate(), dec.ChannelCount())
	}

	var newOutput func(io.Reader) output
	if opts.Mute {
		rate := int64(dec.SampleRate()) * int64(dec.ChannelCount()) * 2
		newOutput = func(r io.Reader) output { return newPump(r, rate) }
	} else {
		ctx, err := initOto(dec.SampleRate(), dec.ChannelCount())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening audio device: %w", err)
		}
		newOutput = func(r io.Reader) output { return ctx.NewPlayer(r) }
	}

	p := newPlayer(dec, tap, newOutput, opts.Volume)
	p.file = f
	p.out.Play()
	go p.monitor()
	return p, nil
}

func newPlayer(dec audioDecoder, tap io.Writer, newOutput func(io.Reader) output, volume float64) *Player {
	if tap == nil {
		tap = io.Discard
	}
	if volume <= 0 {
		volume = 0.8
	}
	p := &Player{
		decoder:     dec,
		tap:         tap,
		newOutput:   newOutput,
		bytesPerSec: int64(dec.SampleRate()) * int64(dec.ChannelCount()) * 2,
		volume:      volume,
		done:        make(chan struct{}),
		stopMon:     make(chan struct{}),
	}
	p.counter = &countingReader{reader: io.TeeReader(dec, tap)}
	p.out = newOutput(p.counter)
	p.out.SetVolume(volume)
	return p
}

func (p *Player) monitor() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopMon:
			return
		case <-ticker.C:
		}
		p.mu.Lock()
		finished := !p.paused && p.counter.Pos() >= p.decoder.Length() && !p.out.IsPlaying()
		p.mu.Unlock()
		if finished {
			close(p.done)
			return
		}
	}
}

// Done closes when playback reaches the end of the file.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// SampleRate and Channels describe the PCM written to the tap.
func (p *Player) SampleRate() int { return p.decoder.SampleRate() }
func (p *Player) Channels() int   { return p.decoder.ChannelCount() }

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		p.out.Play()
	} else {
		p.out.Pause()
	}
	p.paused = !p.paused
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns how far playback has read into the file.
func (p *Player) Position() time.Duration {
	return bytesToDuration(p.counter.Pos(), p.bytesPerSec)
}

// Duration returns the length of the file.
func (p *Player) Duration() time.Duration {
	return bytesToDuration(p.decoder.Length(), p.bytesPerSec)
}

func bytesToDuration(n, perSec int64) time.Duration {
	if perSec <= 0 {
		return 0
	}
	return time.Duration(float64(n) / float64(perSec) * float64(time.Second))
}

// Seek moves playback by delta, clamped to the file.
func (p *Player) Seek(delta time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// the old output must stop reading before the decoder moves
	p.out.Pause()

	target := p.counter.Pos() + int64(delta.Seconds()*float64(p.bytesPerSec))
	pos, err := p.decoder.Seek(max(0, min(target, p.decoder.Length())), io.SeekStart)
	if err != nil {
		if !p.paused {
			p.out.Play()
		}
		return fmt.Errorf("seeking: %w", err)
	}
	p.counter.SetPos(pos)

	// a fresh output drops whatever the old one had buffered
	p.out = p.newOutput(p.counter)
	p.out.SetVolume(p.volume)
	if !p.paused {
		p.out.Play()
	}
	return nil
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// AdjustVolume changes the volume by delta, clamped to [0, 1].
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = max(0, min(1, p.volume+delta))
	p.out.SetVolume(p.volume)
}

// Close stops playback and releases the file.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.stopMon)
	p.out.Pause()
	if c, ok := p.out.(io.Closer); ok {
		c.Close()
	}
	if p.file != nil {
		p.file.Close()
	}
}
