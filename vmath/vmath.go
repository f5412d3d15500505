// Package vmath provides small float32 vector types and scalar helpers used by the
// field and agent code.
package vmath

import "math"

// Epsilon guards divisions and normalizations against degenerate spans.
const Epsilon = 1e-6

// Wrap returns v reduced into [0, n) using floor semantics, so negative inputs wrap
// toward the top of the range.
func Wrap(v, n float32) float32 {
	r := v - float32(math.Floor(float64(v/n)))*n
	// v - floor(v/n)*n can round up to exactly n for tiny negative v.
	if r >= n || r < 0 {
		return 0
	}
	return r
}

// Wrap01 wraps v into [0, 1).
func Wrap01(v float32) float32 {
	return Wrap(v, 1)
}

// WrapInt reduces v into [0, n) without going through floats.
func WrapInt(v, n int) int {
	if v >= 0 {
		if v < n {
			return v
		}
		return v % n
	}
	r := v % n
	if r == 0 {
		return 0
	}
	return r + n
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 restricts v to [0, 1].
func Clamp01(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Lerp returns (1-t)*a + t*b.
func Lerp(t, a, b float32) float32 {
	return (1-t)*a + t*b
}

// ShortestAngle returns the signed angle in [-Pi, Pi) that rotates from onto to.
func ShortestAngle(from, to float32) float32 {
	d := Wrap(to-from+math.Pi, 2*math.Pi)
	return d - math.Pi
}

// Pow2 returns 2^p for an integer power.
func Pow2(p int) float32 {
	return float32(math.Ldexp(1, p))
}
