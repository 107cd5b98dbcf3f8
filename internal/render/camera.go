// Package render draws waterfall meshes into a braille character canvas.
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera framing an axis-aligned box.
type Camera struct {
	view   mgl32.Mat4
	proj   mgl32.Mat4
	width  float32
	height float32
}

// NewCamera frames the box [lo, hi] from above and in front of its newest
// edge (z = lo.Z), looking toward the older slices. width and height are the
// target surface in pixels.
func NewCamera(lo, hi mgl32.Vec3, width, height int) *Camera {
	center := lo.Add(hi).Mul(0.5)
	size := hi.Sub(lo)
	radius := float32(math.Max(float64(size.Len()/2), 1))

	const fovy = 45
	dist := radius / float32(math.Sin(float64(mgl32.DegToRad(fovy/2))))
	dir := mgl32.Vec3{0, 0.55, -1}.Normalize()
	eye := center.Add(dir.Mul(dist))

	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return &Camera{
		view:   mgl32.LookAtV(eye, center, mgl32.Vec3{0, 1, 0}),
		proj:   mgl32.Perspective(mgl32.DegToRad(fovy), aspect, dist/100, dist*4),
		width:  float32(width),
		height: float32(height),
	}
}

// maxCoord bounds projected coordinates so they stay exact in an int and
// far outside any real surface.
const maxCoord = 1 << 20

// Project maps a world point to surface pixels, y down. The camera looks
// along +z, so x is mirrored to keep low bins on the left. ok is false for
// points behind the camera, non-finite points and points projecting more
// than maxCoord pixels away.
func (c *Camera) Project(p mgl32.Vec3) (x, y float32, ok bool) {
	clip := c.proj.Mul4(c.view).Mul4x1(p.Vec4(1))
	if !(clip.W() > 0) {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (1 - ndc.X()) * 0.5 * c.width
	y = (1 - ndc.Y()) * 0.5 * c.height
	if !inRange(x) || !inRange(y) {
		return 0, 0, false
	}
	return x, y, true
}

// inRange is false for NaN, infinities and anything beyond maxCoord.
func inRange(v float32) bool {
	return v >= -maxCoord && v <= maxCoord
}

// Light returns a shade in [0, 1] for a surface normal lit from the camera
// side.
func Light(n mgl32.Vec3) float32 {
	l := mgl32.Vec3{0.3, 0.8, -0.5}.Normalize()
	return float32(math.Max(0.15, float64(n.Dot(l))))
}
