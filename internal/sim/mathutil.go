package sim

import "math"

// powf32 computes base^exponent in float64 and narrows back, matching the
// precision the original engine's scalar pow() calls used for the
// once-per-micro-iteration global damping coefficient.
func powf32(base, exponent float32) float32 {
	return float32(math.Pow(float64(base), float64(exponent)))
}
