package waterfall

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

func testConfig(bins FFTSize, slices int) Config {
	cfg := DefaultConfig()
	cfg.BinCount = bins
	cfg.IterationCount = slices
	return cfg
}

func mustBuffer(t *testing.T, cfg Config) *Buffer {
	t.Helper()
	b, err := NewBuffer(cfg)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

// linesMatchGrid fails unless every tube node equals its history cell.
func linesMatchGrid(t *testing.T, b *Buffer) {
	t.Helper()
	for y, line := range b.Lines() {
		if diff := cmp.Diff(b.Grid().Slice(y), line.Nodes()); diff != "" {
			t.Fatalf("slice %d out of sync (-grid +line):\n%s", y, diff)
		}
	}
}

func TestNewBufferLayout(t *testing.T) {
	cfg := testConfig(FFTBasic, 4)
	cfg.DepthScale = 2
	b := mustBuffer(t, cfg)

	if b.Bins() != 64 || b.Slices() != 4 || len(b.Lines()) != 4 {
		t.Fatalf("expected 64x4 with 4 lines, got %dx%d with %d", b.Bins(), b.Slices(), len(b.Lines()))
	}
	if got, want := b.Grid().At(5, 3), (mgl32.Vec3{5, 0, 6}); got != want {
		t.Fatalf("expected cell (5,3) at %v, got %v", want, got)
	}
	line := b.Line(0)
	if line.Radius() != 0.5 || line.Quality() != 10 {
		t.Fatalf("expected radius 0.5 quality 10, got %v %d", line.Radius(), line.Quality())
	}
	if got := len(line.Surface().Vertices); got != 640 {
		t.Fatalf("expected 640 vertices per slice, got %d", got)
	}
	linesMatchGrid(t, b)
}

func TestShiftSlicesCopiesHeightOnly(t *testing.T) {
	b := mustBuffer(t, testConfig(FFTBasic, 3))
	g := b.Grid()
	for x := range b.Bins() {
		g.Set(x, 0, mgl32.Vec3{float32(x), float32(x) + 1, 100})
		g.SetY(x, 1, -1)
	}
	before := g.Slice(1)

	if err := b.ShiftSlices(); err != nil {
		t.Fatal(err)
	}

	for x := range b.Bins() {
		got := g.At(x, 1)
		if got.Y() != float32(x)+1 {
			t.Fatalf("bin %d: expected height %v, got %v", x, float32(x)+1, got.Y())
		}
		if got.X() != before[x].X() || got.Z() != before[x].Z() {
			t.Fatalf("bin %d: expected x/z unchanged %v, got %v", x, before[x], got)
		}
		if got := g.At(x, 2).Y(); got != -1 {
			t.Fatalf("bin %d: expected slice 2 to receive old slice 1 height -1, got %v", x, got)
		}
	}
	for y := 1; y < 3; y++ {
		if diff := cmp.Diff(g.Slice(y), b.Line(y).Nodes()); diff != "" {
			t.Fatalf("slice %d tube not updated:\n%s", y, diff)
		}
	}
}

func TestShiftSlicesSingleSliceIsNoop(t *testing.T) {
	b := mustBuffer(t, testConfig(FFTBasic, 1))
	g := b.Grid()
	g.SetY(0, 0, 3)
	if err := b.ShiftSlices(); err != nil {
		t.Fatal(err)
	}
	if g.At(0, 0).Y() != 3 {
		t.Fatalf("expected slice 0 untouched, got %v", g.At(0, 0))
	}
}

func TestWriteNewFrame(t *testing.T) {
	cfg := testConfig(FFTBasic, 2)
	cfg.HeightScale = 2
	b := mustBuffer(t, cfg)

	mags := make([]float32, 64)
	for i := range mags {
		mags[i] = float32(i) / 64
	}
	if err := b.WriteNewFrame(mags); err != nil {
		t.Fatal(err)
	}
	for x, m := range mags {
		if got := b.Grid().At(x, 0).Y(); got != m*2 {
			t.Fatalf("bin %d: expected height %v, got %v", x, m*2, got)
		}
	}
	linesMatchGrid(t, b)

	rebuilt := mustBuffer(t, cfg)
	rebuilt.Line(0).ReplaceNodes(b.Grid().Slice(0))
	if diff := cmp.Diff(rebuilt.Line(0).Surface().Vertices, b.Line(0).Surface().Vertices); diff != "" {
		t.Fatalf("incremental ring updates differ from rebuild:\n%s", diff)
	}
}

func TestWriteNewFrameRejectsWrongSize(t *testing.T) {
	b := mustBuffer(t, testConfig(FFTBasic, 2))
	before := b.Grid().Slice(0)
	if err := b.WriteNewFrame(make([]float32, 63)); !errors.Is(err, ErrFrameSize) {
		t.Fatalf("expected ErrFrameSize, got %v", err)
	}
	if diff := cmp.Diff(before, b.Grid().Slice(0)); diff != "" {
		t.Fatalf("rejected frame mutated history:\n%s", diff)
	}
}

func TestApplyWaterfallScaleLeavesTubes(t *testing.T) {
	b := mustBuffer(t, testConfig(FFTBasic, 2))
	nodes := append([]mgl32.Vec3(nil), b.Line(1).Nodes()...)

	b.ApplyWaterfallScale(mgl32.Vec3{2, 1, 3})

	if got, want := b.Grid().At(4, 1), (mgl32.Vec3{8, 0, 3}); got != want {
		t.Fatalf("expected scaled cell %v, got %v", want, got)
	}
	if diff := cmp.Diff(nodes, b.Line(1).Nodes()); diff != "" {
		t.Fatalf("scaling alone should not move tubes:\n%s", diff)
	}

	if err := b.SyncLines(); err != nil {
		t.Fatal(err)
	}
	linesMatchGrid(t, b)
}

func TestDebugLines(t *testing.T) {
	b := mustBuffer(t, testConfig(FFTBasic, 2))
	segs := b.DebugLines(0)
	if len(segs) != 63 {
		t.Fatalf("expected 63 segments, got %d", len(segs))
	}
	if segs[10].A != b.Grid().At(10, 0) || segs[10].B != b.Grid().At(11, 0) {
		t.Fatalf("unexpected segment %v", segs[10])
	}
	if b.DebugLines(2) != nil {
		t.Fatal("expected nil for out of range slice")
	}
}

func TestCloseReleasesEveryLine(t *testing.T) {
	b, err := NewBuffer(testConfig(FFTBasic, 3))
	if err != nil {
		t.Fatal(err)
	}
	released := 0
	for _, line := range b.Lines() {
		line.Surface().OnRelease(func() { released++ })
	}
	b.Close()
	b.Close()
	if released != 3 {
		t.Fatalf("expected 3 releases, got %d", released)
	}
	if err := b.ShiftSlices(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
