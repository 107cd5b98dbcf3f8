package spectrum

import "math"

// Static always reports the same frame.
type Static []float32

func (s Static) Spectrum() []float32 { return s }

// Sweep is a synthetic source: a bump that travels up and down the bins
// with a fainter harmonic, for running without audio.
type Sweep struct {
	bins  int
	step  float64
	phase float64
	out   []float32
}

// NewSweep returns a sweep that crosses all bins in about period calls.
func NewSweep(bins, period int) *Sweep {
	if period < 1 {
		period = 1
	}
	return &Sweep{
		bins: bins,
		step: math.Pi / float64(period),
		out:  make([]float32, bins),
	}
}

func (s *Sweep) Spectrum() []float32 {
	n := float64(s.bins)
	center := (0.5 - 0.5*math.Cos(s.phase)) * (n - 1)
	width := math.Max(1, n/24)
	for i := range s.out {
		d := (float64(i) - center) / width
		h := (float64(i) - center*0.5) / width
		s.out[i] = float32(math.Exp(-d*d) + 0.4*math.Exp(-h*h))
	}
	s.phase += s.step
	return s.out
}
