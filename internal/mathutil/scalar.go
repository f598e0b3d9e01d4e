package mathutil

import "math"

// Clamp limits v to [lo, hi] (search: float-math).
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1] (search: float-math).
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Lerp interpolates linearly between a and b without clamping t (search: float-math).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// WrapDegrees maps an angle into (-180, 180] (search: float-math).
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}
