package systems

import (
	"math"

	"github.com/pthm-cable/ordnance/components"
)

// Reference values the strength scaling is normalized to (rolled homogeneous steel).
const (
	referenceDensity     = 7850.0 // kg/m^3
	referenceSafeTemp    = 2500.0 // K
	joulesPerKgTNT       = 4.184e6
	deformationHardness  = 250.0
	deformationMaxGrowth = 1.0
)

// KineticEnergy returns ½mv² in joules.
func KineticEnergy(mass, speed float64) float64 {
	return 0.5 * mass * speed * speed
}

// ProjectileLength returns the penetrator length in mm for a mass in kg and a
// caliber in mm, assuming a solid cylinder of tungsten (sabot) or lead-equivalent
// density plus a 1 cm nose allowance.
func ProjectileLength(mass, caliber float64, sabot bool, prm *Params) float64 {
	if caliber <= 0 || mass <= 0 {
		return 0
	}
	rho := prm.ConventionalDensity
	if sabot {
		rho = prm.SabotDensity
	}
	return ((mass*1000*400)/(caliber*caliber*math.Pi*rho) + 1) * 10
}

// IsSabot applies the length heuristic: a tungsten-density rod longer than
// SabotLengthRatio calibers is treated as a sabot penetrator.
func IsSabot(mass, caliber float64, prm *Params) bool {
	if caliber <= 0 {
		return false
	}
	return ProjectileLength(mass, caliber, true, prm) > prm.SabotLengthRatio*caliber
}

// ArmorStrength returns the effective strength (MPa) of an armor plate against a
// given caliber. Plates thick relative to the caliber gain from ductile
// confinement; density and safe temperature scale mildly around steel.
func ArmorStrength(caliber, thickness, ductility, strength, density, safeTemp float64) float64 {
	if caliber <= 0 {
		caliber = 1
	}
	rel := thickness / caliber
	confinement := 1 + ductility*(1-math.Exp(-rel))

	densityTerm := 1.0
	if density > 0 {
		densityTerm = math.Pow(density/referenceDensity, 0.25)
	}
	tempTerm := 1.0
	if safeTemp > 0 {
		tempTerm = math.Pow(safeTemp/referenceSafeTemp, 0.05)
	}
	return strength * confinement * densityTerm * tempTerm
}

// EffectiveVFactor applies thermal softening. The result is never below vFactor.
func EffectiveVFactor(vFactor, temperature, safeTemp, softening float64) float64 {
	if safeTemp <= 0 || temperature <= safeTemp {
		return vFactor
	}
	over := (temperature - safeTemp) / safeTemp
	return vFactor * (1 + math.Max(0, softening)*over)
}

// HERatio is the explosive fraction of projectile mass.
func HERatio(tntMass, mass float64, prm *Params) float64 {
	if mass <= 0 {
		return prm.HERatioMin
	}
	return clamp(tntMass/mass, prm.HERatioMin, prm.HERatioMax)
}

// CalculateDeformation returns the mushroomed caliber of a non-sabot round.
// Soft, filler-heavy shells spread more; the AP modifier hardens the nose.
func CalculateDeformation(armorStrength, energy, caliber, speed, hardness, density, heRatio, apMod float64) float64 {
	if caliber <= 0 || speed <= 0 || armorStrength <= 0 {
		return caliber
	}
	if apMod <= 0 {
		apMod = 1
	}

	// Dynamic pressure of the plate material at impact, MPa
	pressure := 0.5 * density * speed * speed / 1e6
	hardnessTerm := hardness / (hardness + deformationHardness)
	overload := pressure * hardnessTerm / armorStrength

	// Energy gate: MPa·mm³ is 1e-3 J
	resist := armorStrength * caliber * caliber * caliber * 1e-3
	gate := energy / (energy + resist)

	softness := (1 + 3*heRatio) / apMod
	growth := softness * hardnessTerm * (1 - math.Exp(-overload)) * gate
	return caliber * (1 + clamp(growth, 0, deformationMaxGrowth))
}

// PenetrationInput bundles the arguments of CalculatePenetration.
type PenetrationInput struct {
	Caliber  float64 // mm
	Speed    float64 // m/s
	Mass     float64 // kg
	APMod    float64
	Strength float64 // MPa, from ArmorStrength
	VFactor  float64
	Mu       components.MuParams
	Sabot    bool
	Length   float64 // mm, 0 = derive from mass and caliber
}

// CalculatePenetration returns the penetration depth in mm.
//
// The shape follows the long-rod relation P = L·µ1·coth(µ2 + µ3·L/D) with a
// saturating velocity term sqrt(1 - exp(-vFactor·v²/σ)). Depth grows with speed and
// mass; at fixed mass it shrinks with caliber once L/D is past the optimum.
func CalculatePenetration(in PenetrationInput, prm *Params) float64 {
	if in.Speed <= 0 || in.Caliber <= 0 || in.Mass <= 0 {
		return 0
	}
	apMod := in.APMod
	if apMod <= 0 {
		apMod = 1
	}
	length := in.Length
	if length <= 0 {
		length = ProjectileLength(in.Mass, in.Caliber, in.Sabot, prm)
	}
	lambda := length / in.Caliber

	velTerm := 1.0
	if in.Strength > 0 {
		velTerm = math.Sqrt(1 - math.Exp(-in.VFactor*in.Speed*in.Speed/in.Strength))
	}
	mu := in.Mu[0] * coth(in.Mu[1]+in.Mu[2]*lambda)
	return apMod * length * mu * velTerm
}

// ProjectedThickness is the line-of-sight thickness at the given obliquity.
func ProjectedThickness(thickness, hitAngle, minCos float64) float64 {
	c := math.Cos(hitAngle * deg2rad)
	if c < minCos {
		c = minCos
	}
	return thickness / c
}

// PenetrationFactor is depth over effective thickness.
// <1 stopped, 1-2 lodges, >2 passes through.
func PenetrationFactor(depth, thickness, multiplier float64) float64 {
	if multiplier <= 0 {
		multiplier = 1
	}
	eff := thickness * multiplier
	if eff <= 0 {
		return math.Inf(1)
	}
	return depth / eff
}

// Penetrates is the resolver's branch condition.
func Penetrates(pf float64) bool {
	return pf >= 1
}

// TNTEquivalent converts kinetic energy to kg of TNT.
func TNTEquivalent(energy float64) float64 {
	return energy / joulesPerKgTNT
}
