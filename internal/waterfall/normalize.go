package waterfall

import "math"

// Normalize scales values in place to unit Euclidean length. An all-zero
// frame stays all zero.
func Normalize(values []float32) {
	var sum float64
	for _, v := range values {
		sum += float64(v) * float64(v)
	}
	mag := float32(math.Sqrt(sum))
	for i, v := range values {
		if mag != 0 {
			values[i] = v / mag
		} else {
			values[i] = 0
		}
	}
}
