package waterfall

import "github.com/go-gl/mathgl/mgl32"

// Grid is a fixed bins x slices table of positions. Slice 0 is the newest
// frame. Cells of one slice are contiguous.
type Grid struct {
	bins   int
	slices int
	cells  []mgl32.Vec3
}

// NewGrid allocates a zeroed grid.
func NewGrid(bins, slices int) *Grid {
	return &Grid{
		bins:   bins,
		slices: slices,
		cells:  make([]mgl32.Vec3, bins*slices),
	}
}

func (g *Grid) Bins() int   { return g.bins }
func (g *Grid) Slices() int { return g.slices }

// At returns the position of bin x in slice y.
func (g *Grid) At(x, y int) mgl32.Vec3 { return g.cells[y*g.bins+x] }

func (g *Grid) Set(x, y int, v mgl32.Vec3) { g.cells[y*g.bins+x] = v }

// SetY overwrites only the height of a cell.
func (g *Grid) SetY(x, y int, h float32) { g.cells[y*g.bins+x][1] = h }

// Slice returns a copy of the positions of slice y.
func (g *Grid) Slice(y int) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, g.bins)
	copy(out, g.cells[y*g.bins:(y+1)*g.bins])
	return out
}

// Scale multiplies every cell componentwise by s.
func (g *Grid) Scale(s mgl32.Vec3) {
	for i, c := range g.cells {
		g.cells[i] = mgl32.Vec3{c[0] * s[0], c[1] * s[1], c[2] * s[2]}
	}
}
