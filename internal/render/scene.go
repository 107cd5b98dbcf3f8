package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/olivier-w/ribbons/internal/waterfall"
)

// Mode selects what Draw puts on the canvas.
type Mode uint8

const (
	// ModeMesh draws the triangle edges of every slice tube.
	ModeMesh Mode = iota
	// ModeLines draws only the centerlines.
	ModeLines
)

func (m Mode) String() string {
	if m == ModeLines {
		return "lines"
	}
	return "mesh"
}

// Next cycles mesh → lines → mesh.
func (m Mode) Next() Mode {
	if m == ModeMesh {
		return ModeLines
	}
	return ModeMesh
}

// Bounds returns the box a waterfall built from cfg occupies at rest, with
// room for full-height frames and the tube radius.
func Bounds(cfg waterfall.Config) (lo, hi mgl32.Vec3) {
	r := cfg.Radius
	lo = mgl32.Vec3{-r, -r, -r}
	hi = mgl32.Vec3{
		float32(cfg.BinCount-1) + r,
		cfg.HeightScale + r,
		float32(cfg.IterationCount-1)*cfg.DepthScale + r,
	}
	return lo, hi
}

type point struct {
	x, y int
	ok   bool
}

// Draw clears c and draws buf through cam. Slices are tagged with their
// index so slice 0 wins where slices overlap.
func Draw(c *Canvas, cam *Camera, buf *waterfall.Buffer, mode Mode) {
	c.Clear()
	if buf == nil {
		return
	}
	if mode == ModeLines {
		for y := buf.Slices() - 1; y >= 0; y-- {
			for _, seg := range buf.DebugLines(y) {
				a, b := project(cam, seg.A), project(cam, seg.B)
				if a.ok && b.ok {
					c.Line(a.x, a.y, b.x, b.y, y)
				}
			}
		}
		return
	}

	var pts []point
	for y := buf.Slices() - 1; y >= 0; y-- {
		s := buf.Line(y).Surface()
		pts = pts[:0]
		for _, v := range s.Vertices {
			pts = append(pts, project(cam, v))
		}
		for t := 0; t+2 < len(s.Triangles); t += 3 {
			a, b, d := pts[s.Triangles[t]], pts[s.Triangles[t+1]], pts[s.Triangles[t+2]]
			edge(c, a, b, y)
			edge(c, b, d, y)
			edge(c, d, a, y)
		}
	}
}

func edge(c *Canvas, a, b point, tag int) {
	if a.ok && b.ok {
		c.Line(a.x, a.y, b.x, b.y, tag)
	}
}

func project(cam *Camera, v mgl32.Vec3) point {
	x, y, ok := cam.Project(v)
	return point{x: int(x), y: int(y), ok: ok}
}
