package systems

import (
	"math"

	"github.com/pthm-cable/ordnance/components"
	"github.com/pthm-cable/ordnance/config"
)

// Residual is the projectile state after passing through a plate.
type Residual struct {
	Mass          float64 // kg
	Speed         float64 // m/s
	Length        float64 // mm
	AblatedMass   float64 // kg vaporized in the hypervelocity regime
	PenRatio      float64 // thickness / penetration
	HighVelocity  bool
	Hypervelocity bool
}

// PostPenetration computes residual mass and speed after a plate of the given
// effective thickness was defeated by a round able to penetrate `penetration` mm.
//
// Below HighVelocity the round keeps its mass and loses the energy spent on the
// plate. Above it the rod erodes: the mass ratio follows the spent fraction but L/D
// never drops below MinLengthRatio. Above Hypervelocity up to roughly half the mass
// can vaporize at once.
func PostPenetration(mass, speed, caliber, length, penetration, thickness float64, e config.ErosionConfig) Residual {
	res := Residual{Mass: mass, Speed: speed, Length: length}
	if penetration <= 0 || mass <= 0 {
		res.Speed = 0
		return res
	}

	penRatio := clamp01(thickness / penetration)
	res.PenRatio = penRatio
	energy := KineticEnergy(mass, speed)
	remaining := energy * (1 - penRatio)

	if speed <= e.HighVelocity {
		res.Speed = speed * math.Sqrt(1-penRatio)
		return res
	}
	res.HighVelocity = true

	massRatio := 1 - penRatio
	if length > 0 && caliber > 0 {
		floor := math.Min(e.MinLengthRatio*caliber/length, 1)
		massRatio = math.Max(massRatio, floor)
	}
	if speed > e.Hypervelocity {
		res.Hypervelocity = true
		hv := e.HyperBase + e.HyperSlope*(e.Hypervelocity/speed)
		massRatio = math.Max(math.Min(massRatio, hv), e.HyperBase)
		res.AblatedMass = mass * (1 - massRatio)
	}
	massRatio = clamp01(massRatio)

	res.Mass = mass * massRatio
	res.Length = length * massRatio
	if res.Mass > 0 {
		res.Speed = math.Min(speed, math.Sqrt(2*remaining/res.Mass))
	} else {
		res.Speed = 0
	}
	return res
}

// DistanceErosionFactor returns the fraction of mass kept after flying `distance`
// metres since the last plate. Nothing is lost within one caliber; beyond that the
// loss follows a squared falloff normalized by JetFormationA·JetFormationB·caliber.
func DistanceErosionFactor(distance, caliber float64, e config.ErosionConfig) float64 {
	if caliber <= 0 {
		return 1
	}
	dmm := distance * 1000
	if dmm <= caliber {
		return 1
	}
	norm := e.JetFormationA * e.JetFormationB * caliber
	if norm <= 0 {
		return 1
	}
	x := (dmm - caliber) / norm
	return 1 / (1 + x*x)
}

// RelaxationTime is the time over which a pending mass loss is shed.
func RelaxationTime(caliber float64, sabot bool, e config.ErosionConfig) float64 {
	ratio := e.ConventionalDensityRatio
	if sabot {
		ratio = e.SabotDensityRatio
	}
	return caliber * ratio * e.RelaxationScale
}

// DecayPendingMass sheds the pending loss linearly over tau.
func DecayPendingMass(pending, elapsed, tau float64) (lost, rest float64) {
	if pending <= 0 {
		return 0, 0
	}
	if tau <= 0 || elapsed >= tau {
		return pending, 0
	}
	if elapsed <= 0 {
		return 0, pending
	}
	lost = pending * elapsed / tau
	return lost, pending - lost
}

// ApplyInterHitErosion applies the erosion accumulated since the previous plate
// and returns the mass removed. The mass never goes negative.
func ApplyInterHitErosion(p *components.Projectile, e config.ErosionConfig) float64 {
	if !p.Erosion.HasHit || p.Mass <= 0 {
		return 0
	}
	before := p.Mass

	if p.Erosion.Hypervelocity || p.Speed() > e.HighVelocity {
		f := DistanceErosionFactor(p.Erosion.DistanceSinceHit, p.Caliber, e)
		p.Mass *= f
		p.Length *= f
	} else if p.Erosion.DeltaMass > 0 {
		tau := RelaxationTime(p.Caliber, p.Sabot, e)
		lost, rest := DecayPendingMass(p.Erosion.DeltaMass, p.Erosion.TimeSinceHit, tau)
		if lost > p.Mass {
			lost = p.Mass
		}
		p.Mass -= lost
		p.Erosion.DeltaMass = rest
	}

	if p.Mass < 0 {
		p.Mass = 0
	}
	p.Erosion.DistanceSinceHit = 0
	p.Erosion.TimeSinceHit = 0
	return before - p.Mass
}

// QueuePendingLoss records the mass a moderate-speed penetration will shed over
// the relaxation time.
func QueuePendingLoss(p *components.Projectile, penRatio float64, e config.ErosionConfig) {
	p.Erosion.DeltaMass += e.PendingLossFraction * p.Mass * clamp01(penRatio)
	if p.Erosion.DeltaMass > p.Mass {
		p.Erosion.DeltaMass = p.Mass
	}
}
