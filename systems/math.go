package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 limits v to [0, 1].
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// unitOrZero normalizes v, returning the zero vector for degenerate input.
func unitOrZero(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// reflect mirrors v about the plane with the given unit normal.
func reflect(v, normal r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(2*r3.Dot(v, normal), normal))
}

// ImpactAngle returns the angle in degrees between the incoming direction and the
// surface normal: 0 is head-on, 90 is grazing.
func ImpactAngle(velocity, normal r3.Vec) float64 {
	v := unitOrZero(velocity)
	n := unitOrZero(normal)
	if v == (r3.Vec{}) || n == (r3.Vec{}) {
		return 0
	}
	c := clamp(-r3.Dot(v, n), -1, 1)
	return math.Acos(math.Abs(c)) * rad2deg
}

// coth is the hyperbolic cotangent.
func coth(x float64) float64 {
	return 1 / math.Tanh(x)
}

// ballisticPosition is p + v t + a t^2 / 2.
func ballisticPosition(p, v, a r3.Vec, t float64) r3.Vec {
	return r3.Add(p, r3.Add(r3.Scale(t, v), r3.Scale(0.5*t*t, a)))
}
