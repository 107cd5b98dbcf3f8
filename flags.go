package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/olivier-w/ribbons/internal/waterfall"
)

// Command-line flags. The waterfall flags map onto waterfall.Config through
// configFromFlags.
var (
	// binsFlag selects the FFT size by name (basic..supercomputer) or count.
	binsFlag = flag.String("bins", "basic", "spectrum bins: basic, low, medium, high, expert, expertplus, supercomputer, or 64..4096")

	// slicesFlag is the number of history slices kept on screen.
	slicesFlag = flag.Int("slices", 32, "number of waterfall slices")

	radiusFlag  = flag.Float64("radius", 0.5, "tube radius")
	qualityFlag = flag.Int("quality", 10, "vertices per tube ring (min 3)")
	heightFlag  = flag.Float64("height", 1, "height of a full-scale bin")
	depthFlag   = flag.Float64("depth", 1, "distance between slices")

	// waterfallScaleFlag enables per-tick scaling of the whole history.
	waterfallScaleFlag = flag.String("waterfall-scale", "", "x,y,z factors applied to the history every tick (enables waterfall scaling)")

	windowFlag = flag.String("window", "blackmanharris", "analysis window: blackmanharris, blackman, hann, hamming, rect")
	smoothFlag = flag.Bool("smooth", true, "ease bins with springs between frames")
	fpsFlag    = flag.Int("fps", 30, "frames per second")

	// guiFlag opens a window instead of drawing in the terminal.
	guiFlag  = flag.Bool("gui", false, "render in a window instead of the terminal")
	demoFlag = flag.Bool("demo", false, "visualize a synthetic sweep instead of an audio file")

	muteFlag   = flag.Bool("mute", false, "decode in real time without opening an audio device")
	volumeFlag = flag.Float64("volume", 0.8, "initial volume (0-1)")

	logLevelFlag = flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFileFlag  = flag.String("log-file", "", "append logs to this file")
)

// configFromFlags builds and validates the waterfall configuration.
func configFromFlags() (waterfall.Config, error) {
	cfg := waterfall.DefaultConfig()

	bins, err := waterfall.ParseFFTSize(*binsFlag)
	if err != nil {
		return cfg, err
	}
	cfg.BinCount = bins
	cfg.IterationCount = *slicesFlag
	cfg.Radius = float32(*radiusFlag)
	cfg.RingQuality = *qualityFlag
	cfg.HeightScale = float32(*heightFlag)
	cfg.DepthScale = float32(*depthFlag)

	if *waterfallScaleFlag != "" {
		scale, err := parseVec3(*waterfallScaleFlag)
		if err != nil {
			return cfg, fmt.Errorf("-waterfall-scale: %w", err)
		}
		cfg.WaterfallScale = scale
		cfg.AllowWaterfallScale = true
	}
	return cfg, cfg.Validate()
}

// parseVec3 parses "x,y,z". A single value is used for all three axes.
func parseVec3(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) == 1 {
		parts = []string{parts[0], parts[0], parts[0]}
	}
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v mgl32.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("invalid component %q", p)
		}
		v[i] = float32(f)
	}
	return v, nil
}
