// Package spectrum turns audio into per-tick magnitude frames for the
// waterfall.
package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	smoothFrequency = 8.5
	smoothDamping   = 0.72
)

// Analyzer reads the newest window of audio from a Tap and reports the
// magnitude of the first Bins() FFT bins. The FFT is twice the bin count
// long so the bins cover DC up to Nyquist.
type Analyzer struct {
	tap    *Tap
	bins   int
	coeffs []float64
	mono   []float64
	out    []float32
	smooth *springField
}

// NewAnalyzer creates an analyzer producing bins magnitudes per frame.
func NewAnalyzer(tap *Tap, bins int, w Window) (*Analyzer, error) {
	if tap == nil {
		return nil, fmt.Errorf("nil tap")
	}
	if bins < 1 || bins&(bins-1) != 0 {
		return nil, fmt.Errorf("bin count must be a power of two, got %d", bins)
	}
	size := bins * 2
	return &Analyzer{
		tap:    tap,
		bins:   bins,
		coeffs: w.coefficients(size),
		mono:   make([]float64, size),
		out:    make([]float32, bins),
	}, nil
}

// SetSmoothing eases bins over time with springs stepped at fps. Zero
// disables smoothing.
func (a *Analyzer) SetSmoothing(fps int) {
	if fps <= 0 {
		a.smooth = nil
		return
	}
	a.smooth = newSpringField(a.bins, fps, smoothFrequency, smoothDamping)
}

func (a *Analyzer) Bins() int { return a.bins }

// Spectrum analyses the latest audio. The returned slice is reused by the
// next call.
func (a *Analyzer) Spectrum() []float32 {
	a.tap.Mono(a.mono)
	for i, c := range a.coeffs {
		a.mono[i] *= c
	}

	spec := fft.FFTReal(a.mono)
	scale := 2 / float64(len(a.mono))
	for k := range a.bins {
		mag := cmplx.Abs(spec[k]) * scale
		if a.smooth != nil {
			mag = math.Max(0, a.smooth.step(k, mag))
		}
		a.out[k] = float32(mag)
	}
	return a.out
}
