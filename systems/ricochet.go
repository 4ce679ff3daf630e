package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/config"
)

// RicochetScenery decides whether a round skips off terrain or water.
// Only small calibers can skip; the roll in [0,1) is mapped onto
// [RollMin, RollMax] degrees and compared with the grazing angle.
func RicochetScenery(hitAngle, caliber, roll float64, r config.RicochetConfig) bool {
	if caliber > r.SceneryMaxCaliber {
		return false
	}
	threshold := roll*(r.RollMax-r.RollMin) + r.RollMin
	return threshold > 90-hitAngle
}

// PartRicochetChance is the probability a stopped round glances off a part.
// Zero below PartMinAngle, rising toward grazing. Sturdy parts deflect more and
// fast rounds dig in rather than skip.
func PartRicochetChance(hitAngle, crashTolerance, impactSpeed float64, r config.RicochetConfig) float64 {
	if hitAngle <= r.PartMinAngle || r.PartMinAngle >= 90 {
		return 0
	}
	x := (hitAngle - r.PartMinAngle) / (90 - r.PartMinAngle)
	chance := x * x

	if r.PartToleranceScale > 0 {
		chance *= 0.5 + 0.5*clamp01(crashTolerance/r.PartToleranceScale)
	}
	if r.PartHighSpeed > 0 && impactSpeed > r.PartHighSpeed {
		chance *= r.PartHighSpeed / impactSpeed
	}
	return clamp01(chance)
}

// RicochetVelocity reflects v about the surface and attenuates it. Shallower
// grazing keeps more speed.
func RicochetVelocity(v, normal r3.Vec, hitAngle float64, r config.RicochetConfig) r3.Vec {
	n := unitOrZero(normal)
	out := reflect(v, n)
	scale := 1.0
	if r.AngleDivisor > 0 {
		scale = math.Min(hitAngle/r.AngleDivisor*r.SpeedRetention, 1)
	}
	return r3.Scale(scale, out)
}
