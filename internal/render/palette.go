package render

import "image/color"

var (
	newestColor = color.RGBA{255, 140, 0, 255}
	oldestColor = color.RGBA{40, 48, 72, 255}
)

// SliceColor fades from the newest slice color at i = 0 to the background
// tint at i = n-1.
func SliceColor(i, n int) color.RGBA {
	t := 0.0
	if n > 1 {
		t = float64(min(max(i, 0), n-1)) / float64(n-1)
	}
	mix := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*t) }
	return color.RGBA{
		R: mix(newestColor.R, oldestColor.R),
		G: mix(newestColor.G, oldestColor.G),
		B: mix(newestColor.B, oldestColor.B),
		A: 255,
	}
}
