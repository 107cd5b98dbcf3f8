package spectrum

import (
	"fmt"
	"math"
	"strings"

	"github.com/mjibson/go-dsp/window"
)

// Window selects the analysis window applied before the FFT.
type Window string

const (
	BlackmanHarris Window = "blackmanharris"
	Blackman       Window = "blackman"
	Hann           Window = "hann"
	Hamming        Window = "hamming"
	Rectangular    Window = "rect"
)

// ParseWindow maps a flag value to a Window.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case BlackmanHarris, Blackman, Hann, Hamming, Rectangular:
		return w, nil
	}
	return "", fmt.Errorf("unknown window %q (want blackmanharris, blackman, hann, hamming or rect)", s)
}

func (w Window) coefficients(n int) []float64 {
	switch w {
	case Blackman:
		return window.Blackman(n)
	case Hann:
		return window.Hann(n)
	case Hamming:
		return window.Hamming(n)
	case Rectangular:
		return window.Rectangular(n)
	default:
		return blackmanHarris(n)
	}
}

// blackmanHarris is the four-term Blackman-Harris window.
func blackmanHarris(n int) []float64 {
	const (
		a0 = 0.35875
		a1 = 0.48829
		a2 = 0.14128
		a3 = 0.01168
	)
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	den := float64(n - 1)
	for i := range w {
		x := 2 * math.Pi * float64(i) / den
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x) - a3*math.Cos(3*x)
	}
	return w
}
