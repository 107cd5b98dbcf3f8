package spectrum

import (
	"encoding/binary"
	"sync"
)

// Tap is a thread-safe ring of the most recent PCM samples. The player
// writes interleaved 16-bit little-endian frames into it while the analyzer
// reads mono windows out of it.
type Tap struct {
	mu       sync.Mutex
	samples  []int16
	channels int
	w        int // write position, in samples
	len      int // current fill level, in samples
	odd      []byte
}

// NewTap keeps the last frames frames of channels-channel audio.
func NewTap(frames, channels int) *Tap {
	if channels < 1 {
		channels = 1
	}
	return &Tap{
		samples:  make([]int16, frames*channels),
		channels: channels,
	}
}

// Channels returns the interleaving the tap expects.
func (t *Tap) Channels() int { return t.channels }

// Write appends s16le PCM, overwriting the oldest samples when full. It
// never fails, so it can sit behind an io.TeeReader.
func (t *Tap) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p)
	if len(t.odd) > 0 {
		p = append(t.odd, p...)
		t.odd = nil
	}
	size := len(t.samples)
	for ; len(p) >= 2; p = p[2:] {
		if size == 0 {
			continue
		}
		t.samples[t.w] = int16(binary.LittleEndian.Uint16(p))
		t.w = (t.w + 1) % size
		if t.len < size {
			t.len++
		}
	}
	if len(p) == 1 {
		t.odd = []byte{p[0]}
	}
	return n, nil
}

// Mono fills dst with the most recent len(dst) frames mixed down to mono in
// [-1, 1]. Missing history is zero-padded at the front. It returns the number
// of frames that came from real samples.
func (t *Tap) Mono(dst []float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	frames := t.len / t.channels
	n := len(dst)
	if n > frames {
		n = frames
	}
	pad := len(dst) - n
	for i := range pad {
		dst[i] = 0
	}
	if n == 0 {
		return 0
	}

	size := len(t.samples)
	start := (t.w - n*t.channels + size) % size
	for i := range n {
		var sum float64
		for ch := range t.channels {
			sum += float64(t.samples[(start+i*t.channels+ch)%size])
		}
		dst[pad+i] = sum / float64(t.channels) / 32768.0
	}
	return n
}

// Clear drops all buffered audio.
func (t *Tap) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w = 0
	t.len = 0
	t.odd = nil
}

// Reset drops all buffered audio and switches to channels-channel frames,
// keeping the same frame capacity.
func (t *Tap) Reset(channels int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	channels = max(channels, 1)
	if channels != t.channels {
		frames := len(t.samples) / t.channels
		t.samples = make([]int16, frames*channels)
		t.channels = channels
	}
	t.w = 0
	t.len = 0
	t.odd = nil
}
