package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

func toMgl(v r3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func toR3(v mgl64.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// rotation builds an orientation from yaw, pitch, roll in degrees.
func rotation(ypr [3]float64) mgl64.Quat {
	if ypr == ([3]float64{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(ypr[0]),
		mgl64.DegToRad(ypr[1]),
		mgl64.DegToRad(ypr[2]),
		mgl64.ZYX,
	).Normalize()
}

// raySphere returns the entry distance and outward normal of a ray against a
// sphere. Rays starting inside the sphere do not hit it.
func raySphere(origin, dir, center mgl64.Vec3, radius, maxDist float64) (float64, mgl64.Vec3, bool) {
	oc := origin.Sub(center)
	c := oc.Dot(oc) - radius*radius
	if c <= 0 {
		return 0, mgl64.Vec3{}, false
	}
	b := oc.Dot(dir)
	if b > 0 {
		return 0, mgl64.Vec3{}, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, mgl64.Vec3{}, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 || t > maxDist {
		return 0, mgl64.Vec3{}, false
	}
	hit := origin.Add(dir.Mul(t))
	return t, hit.Sub(center).Normalize(), true
}

// rayBox intersects a ray with an oriented box using the slab method in the
// box's local frame. Rays starting inside the box do not hit it.
func rayBox(origin, dir, center, half mgl64.Vec3, rot mgl64.Quat, maxDist float64) (float64, mgl64.Vec3, bool) {
	inv := rot.Inverse()
	o := inv.Rotate(origin.Sub(center))
	d := inv.Rotate(dir)

	tNear, tFar := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < -half[i] || o[i] > half[i] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		t1 := (-half[i] - o[i]) / d[i]
		t2 := (half[i] - o[i]) / d[i]
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tNear {
			tNear = t1
			axis, sign = i, s
		}
		tFar = math.Min(tFar, t2)
		if tNear > tFar {
			return 0, mgl64.Vec3{}, false
		}
	}
	if axis < 0 || tNear < 0 || tNear > maxDist {
		return 0, mgl64.Vec3{}, false
	}

	var n mgl64.Vec3
	n[axis] = sign
	return tNear, rot.Rotate(n), true
}
