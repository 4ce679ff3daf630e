package components

// MuParams are the three empirical penetration-curve parameters.
type MuParams [3]float64

// ReactiveArmor multiplies effective thickness against a penetrating hit.
type ReactiveArmor struct {
	Modifier     float64 // Thickness multiplier when triggered
	Sensitivity  float64 // Minimum caliber (mm) that sets off explosive RA
	NonExplosive bool    // NXRA: always active, never consumed
	Sections     int     // Remaining explosive sections; 0 = spent
}

// Armor describes the protection of one part surface. Read-only to the core.
type Armor struct {
	Thickness       float64 // mm
	Strength        float64 // MPa
	Ductility       float64 // 0..1
	Hardness        float64 // Brinell-like scale
	Density         float64 // kg/m^3
	SafeTemperature float64 // K
	Temperature     float64 // K, current skin temperature
	Softening       float64 // vFactor gain per unit relative overtemperature
	VFactor         float64
	Mu              MuParams
	SabotMu         MuParams
	Reactive        *ReactiveArmor
}

// Curve returns the µ parameters matching the projectile type.
func (a *Armor) Curve(sabot bool) MuParams {
	if sabot {
		return a.SabotMu
	}
	return a.Mu
}

// ColliderKind classifies what a ray struck.
type ColliderKind uint8

const (
	ColliderPart     ColliderKind = iota
	ColliderEVA                   // Crew on foot
	ColliderScenery               // Ground and buildings
	ColliderWater
)

func (c ColliderKind) String() string {
	switch c {
	case ColliderPart:
		return "part"
	case ColliderEVA:
		return "eva"
	case ColliderScenery:
		return "scenery"
	case ColliderWater:
		return "water"
	default:
		return "unknown"
	}
}

// ColliderRef points at the object a hit record belongs to.
type ColliderRef struct {
	Kind   ColliderKind
	Vessel VesselID
	Part   PartID
}

// PartInfo is the host's view of a part the core may hit.
type PartInfo struct {
	ID             PartID
	Vessel         VesselID
	Team           string
	CrashTolerance float64 // m/s
	Ignored        bool
	Armor          *Armor
}
