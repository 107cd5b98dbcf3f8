package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Canvas is a grid of braille cells, each a 2x4 dot matrix. Every cell also
// remembers the lowest tag drawn into it, so newer slices color over older
// ones.
type Canvas struct {
	cols, rows int
	dots       []uint8
	tags       []int
}

// NewCanvas creates a canvas of cols x rows characters.
func NewCanvas(cols, rows int) *Canvas {
	cols = max(cols, 1)
	rows = max(rows, 1)
	c := &Canvas{
		cols: cols,
		rows: rows,
		dots: make([]uint8, cols*rows),
		tags: make([]int, cols*rows),
	}
	c.Clear()
	return c
}

// Size returns the canvas resolution in dots.
func (c *Canvas) Size() (w, h int) { return c.cols * 2, c.rows * 4 }

func (c *Canvas) Clear() {
	for i := range c.dots {
		c.dots[i] = 0
		c.tags[i] = -1
	}
}

// Set lights the dot at (x, y). Out-of-range dots are ignored.
func (c *Canvas) Set(x, y, tag int) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	i := (y/4)*c.cols + x/2
	c.dots[i] |= 1 << brailleBits[x%2][y%4]
	if c.tags[i] < 0 || tag < c.tags[i] {
		c.tags[i] = tag
	}
}

// Line draws a segment with Bresenham's algorithm, clipped to the canvas.
func (c *Canvas) Line(x0, y0, x1, y1, tag int) {
	w, h := c.Size()
	ax, ay, bx, by, ok := clipSegment(
		float64(x0), float64(y0), float64(x1), float64(y1),
		float64(w-1), float64(h-1),
	)
	if !ok {
		return
	}
	x0, y0 = int(math.Round(ax)), int(math.Round(ay))
	x1, y1 = int(math.Round(bx)), int(math.Round(by))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0, tag)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipSegment clips a segment to the box [0, xmax] x [0, ymax] with the
// Liang-Barsky algorithm. ok is false when nothing of it is inside.
func clipSegment(x0, y0, x1, y1, xmax, ymax float64) (ax, ay, bx, by float64, ok bool) {
	if xmax < 0 || ymax < 0 {
		return 0, 0, 0, 0, false
	}
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, xmax - x0},
		{-dy, y0},
		{dy, ymax - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Rune returns the braille character of cell (col, row).
func (c *Canvas) Rune(col, row int) rune {
	return rune(0x2800 + int(c.dots[row*c.cols+col]))
}

// Render returns the canvas as text. style picks the style for a tag; runs
// of cells sharing a tag are rendered together. A nil style renders plain.
func (c *Canvas) Render(style func(tag int) lipgloss.Style) string {
	rows := make([]string, c.rows)
	for r := range c.rows {
		var line, run strings.Builder
		runTag := -2
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if style == nil || runTag < 0 {
				line.WriteString(run.String())
			} else {
				line.WriteString(style(runTag).Render(run.String()))
			}
			run.Reset()
		}
		for col := range c.cols {
			tag := c.tags[r*c.cols+col]
			if c.dots[r*c.cols+col] == 0 {
				tag = -1
			}
			if tag != runTag {
				flush()
				runTag = tag
			}
			run.WriteRune(c.Rune(col, r))
		}
		flush()
		rows[r] = line.String()
	}
	return strings.Join(rows, "\n")
}
