package waterfall

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SpectrumSource reports the latest magnitude frame. It is polled once per
// tick and must return exactly one value per bin.
type SpectrumSource interface {
	Spectrum() []float32
}

// SpectrumFunc adapts a function to SpectrumSource.
type SpectrumFunc func() []float32

func (f SpectrumFunc) Spectrum() []float32 { return f() }

type State uint8

const (
	Uninitialized State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Driver advances the waterfall one frame per Tick. All calls must come from
// the same goroutine.
type Driver struct {
	cfg     Config
	source  SpectrumSource
	log     *slog.Logger
	state   State
	buf     *Buffer
	frame   []float32
	ticks   uint64
	scaling bool
}

// NewDriver validates cfg and returns an unstarted driver. A nil logger
// discards output.
func NewDriver(cfg Config, source SpectrumSource, logger *slog.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("nil spectrum source")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{
		cfg:     cfg,
		source:  source,
		log:     logger,
		frame:   make([]float32, cfg.BinCount),
		scaling: cfg.AllowWaterfallScale,
	}, nil
}

// Start allocates the history and the slice tubes. It may only run once.
func (d *Driver) Start() error {
	if d.state != Uninitialized {
		return ErrAlreadyStarted
	}
	buf, err := NewBuffer(d.cfg)
	if err != nil {
		return err
	}
	d.buf = buf
	d.state = Running
	d.log.Debug("waterfall started",
		"bins", int(d.cfg.BinCount),
		"slices", d.cfg.IterationCount,
		"radius", d.cfg.Radius,
		"ringQuality", d.cfg.RingQuality,
		"waterfallScale", d.scaling)
	return nil
}

// Tick shifts the history back one slice, writes the normalized newest
// frame into slice 0 and, when enabled, rescales the whole waterfall.
//
// The source is polled before the shift so a frame of the wrong size fails
// the tick without touching the history.
func (d *Driver) Tick() error {
	err := d.tick()
	if err != nil && !errors.Is(err, ErrClosed) {
		d.log.Warn("tick failed", "tick", d.ticks, "err", err)
	}
	return err
}

func (d *Driver) tick() error {
	if d.state != Running {
		return ErrNotStarted
	}
	if d.buf.closed {
		return ErrClosed
	}

	raw := d.source.Spectrum()
	if len(raw) != len(d.frame) {
		return fmt.Errorf("tick %d: %w: got %d, want %d", d.ticks, ErrFrameSize, len(raw), len(d.frame))
	}

	if err := d.buf.ShiftSlices(); err != nil {
		return fmt.Errorf("tick %d: %w", d.ticks, err)
	}
	copy(d.frame, raw)
	Normalize(d.frame)
	if err := d.buf.WriteNewFrame(d.frame); err != nil {
		return fmt.Errorf("tick %d: %w", d.ticks, err)
	}
	if d.scaling {
		d.buf.ApplyWaterfallScale(d.cfg.WaterfallScale)
		if err := d.buf.SyncLines(); err != nil {
			return fmt.Errorf("tick %d: %w", d.ticks, err)
		}
	}
	d.ticks++
	return nil
}

// SetWaterfallScaling turns the per-tick rescale on or off.
func (d *Driver) SetWaterfallScaling(on bool) {
	if on != d.scaling {
		d.log.Debug("waterfall scaling toggled", "enabled", on)
	}
	d.scaling = on
}

func (d *Driver) WaterfallScaling() bool { return d.scaling }
func (d *Driver) State() State           { return d.state }
func (d *Driver) Ticks() uint64          { return d.ticks }
func (d *Driver) Config() Config         { return d.cfg }

// Buffer returns the history, or nil before Start.
func (d *Driver) Buffer() *Buffer { return d.buf }

// Frame returns the last normalized frame written to slice 0.
func (d *Driver) Frame() []float32 { return d.frame }

// Close releases every slice tube.
func (d *Driver) Close() {
	if d.buf == nil || d.buf.closed {
		return
	}
	d.buf.Close()
	d.log.Debug("waterfall closed", "ticks", d.ticks)
}
