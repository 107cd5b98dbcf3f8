package waterfall

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/olivier-w/ribbons/internal/tube"
)

// Segment is one piece of a debug centerline.
type Segment struct {
	A, B mgl32.Vec3
}

// Buffer keeps the spectrum history and one tube per slice. Line y holds one
// node per bin and mirrors row y of the grid once a tick completes.
type Buffer struct {
	cfg    Config
	grid   *Grid
	lines  []*tube.Mesh
	closed bool
}

// NewBuffer allocates the history grid and builds every slice's tube at
// (x, 0, y*DepthScale).
func NewBuffer(cfg Config) (*Buffer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bins, slices := int(cfg.BinCount), cfg.IterationCount
	b := &Buffer{
		cfg:   cfg,
		grid:  NewGrid(bins, slices),
		lines: make([]*tube.Mesh, slices),
	}
	for y := range slices {
		for x := range bins {
			b.grid.Set(x, y, mgl32.Vec3{float32(x), 0, float32(y) * cfg.DepthScale})
		}
		line, err := tube.FromNodes(b.grid.Slice(y), cfg.Radius, cfg.RingQuality)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("building slice %d: %w", y, err)
		}
		b.lines[y] = line
	}
	return b, nil
}

func (b *Buffer) Bins() int   { return b.grid.bins }
func (b *Buffer) Slices() int { return b.grid.slices }

// Grid exposes the history. Callers must not resize it.
func (b *Buffer) Grid() *Grid { return b.grid }

// Lines returns the per-slice tubes, newest first.
func (b *Buffer) Lines() []*tube.Mesh { return b.lines }

// Line returns the tube of slice y.
func (b *Buffer) Line(y int) *tube.Mesh { return b.lines[y] }

// ShiftSlices pushes every slice's heights one step back in time. Slices
// are walked from the oldest destination down so each source is read before
// it is overwritten. Each destination tube is flushed once.
func (b *Buffer) ShiftSlices() error {
	if b.closed {
		return ErrClosed
	}
	for y := b.grid.slices - 2; y >= 0; y-- {
		line := b.lines[y+1]
		for x := range b.grid.bins {
			b.grid.SetY(x, y+1, b.grid.At(x, y).Y())
			if err := line.UpdateNode(b.grid.At(x, y+1), x, false); err != nil {
				return fmt.Errorf("shifting slice %d: %w", y+1, err)
			}
		}
		line.UpdateVerts()
	}
	return nil
}

// WriteNewFrame stores mags as the heights of slice 0 and updates each ring
// right away. A frame of the wrong length is rejected before anything is
// written.
func (b *Buffer) WriteNewFrame(mags []float32) error {
	if b.closed {
		return ErrClosed
	}
	if len(mags) != b.grid.bins {
		return fmt.Errorf("%w: got %d, want %d", ErrFrameSize, len(mags), b.grid.bins)
	}
	line := b.lines[0]
	for x, m := range mags {
		b.grid.SetY(x, 0, m*b.cfg.HeightScale)
		if err := line.UpdateNode(b.grid.At(x, 0), x, true); err != nil {
			return fmt.Errorf("writing bin %d: %w", x, err)
		}
	}
	return nil
}

// ApplyWaterfallScale rescales the stored history. The tubes are not
// touched; call SyncLines to push the result into them.
func (b *Buffer) ApplyWaterfallScale(scale mgl32.Vec3) {
	if b.closed {
		return
	}
	b.grid.Scale(scale)
}

// SyncLines copies every history cell into its tube and flushes each tube
// once.
func (b *Buffer) SyncLines() error {
	if b.closed {
		return ErrClosed
	}
	for y, line := range b.lines {
		for x := range b.grid.bins {
			if err := line.UpdateNode(b.grid.At(x, y), x, false); err != nil {
				return fmt.Errorf("syncing slice %d: %w", y, err)
			}
		}
		line.UpdateVerts()
	}
	return nil
}

// DebugLines returns the centerline of slice y as bin-to-bin segments.
func (b *Buffer) DebugLines(y int) []Segment {
	if b.closed || y < 0 || y >= b.grid.slices || b.grid.bins < 2 {
		return nil
	}
	segs := make([]Segment, b.grid.bins-1)
	for x := range segs {
		segs[x] = Segment{A: b.grid.At(x, y), B: b.grid.At(x+1, y)}
	}
	return segs
}

// Close releases every slice tube. It is safe to call more than once.
func (b *Buffer) Close() {
	if b.closed {
		return
	}
	b.closed = true
	for _, line := range b.lines {
		if line != nil {
			line.Release()
		}
	}
}
