package waterfall

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/olivier-w/ribbons/internal/tube"
)

// FFTSize is the number of spectrum bins per frame.
type FFTSize int

const (
	FFTBasic         FFTSize = 64
	FFTLow           FFTSize = 128
	FFTMedium        FFTSize = 256
	FFTHigh          FFTSize = 512
	FFTExpert        FFTSize = 1024
	FFTExpertPlus    FFTSize = 2048
	FFTSupercomputer FFTSize = 4096
)

var fftSizeNames = map[string]FFTSize{
	"basic":         FFTBasic,
	"low":           FFTLow,
	"medium":        FFTMedium,
	"high":          FFTHigh,
	"expert":        FFTExpert,
	"expertplus":    FFTExpertPlus,
	"supercomputer": FFTSupercomputer,
}

// Valid reports whether s is one of the supported sizes.
func (s FFTSize) Valid() bool {
	for _, v := range fftSizeNames {
		if v == s {
			return true
		}
	}
	return false
}

// ParseFFTSize accepts either a bin count ("256") or a size name ("medium").
func ParseFFTSize(s string) (FFTSize, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if size, ok := fftSizeNames[s]; ok {
		return size, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !FFTSize(n).Valid() {
		return 0, &ConfigError{Field: "bins", Reason: fmt.Sprintf("unsupported FFT size %q", s)}
	}
	return FFTSize(n), nil
}

// Config describes a waterfall. It is fixed once a Driver starts.
type Config struct {
	Radius              float32
	RingQuality         int
	BinCount            FFTSize
	IterationCount      int
	AllowWaterfallScale bool
	HeightScale         float32

	// DepthScale spaces slices along z.
	DepthScale float32

	// WaterfallScale multiplies every history cell each tick when
	// AllowWaterfallScale is set.
	WaterfallScale mgl32.Vec3
}

// DefaultConfig returns the stock waterfall: 64 bins, 32 slices, half-unit
// tubes with ten-sided rings.
func DefaultConfig() Config {
	return Config{
		Radius:         0.5,
		RingQuality:    10,
		BinCount:       FFTBasic,
		IterationCount: 32,
		HeightScale:    1,
		DepthScale:     1,
		WaterfallScale: mgl32.Vec3{1, 1, 1},
	}
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.RingQuality < tube.MinQuality:
		return &ConfigError{Field: "ringQuality", Reason: fmt.Sprintf("must be at least %d, got %d", tube.MinQuality, c.RingQuality)}
	case !(c.Radius > 0):
		return &ConfigError{Field: "radius", Reason: fmt.Sprintf("must be positive, got %v", c.Radius)}
	case !c.BinCount.Valid():
		return &ConfigError{Field: "binCount", Reason: fmt.Sprintf("unsupported FFT size %d", c.BinCount)}
	case c.IterationCount < 1:
		return &ConfigError{Field: "iterationCount", Reason: fmt.Sprintf("must be at least 1, got %d", c.IterationCount)}
	}
	return nil
}
