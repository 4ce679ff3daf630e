package components

// Kind selects the kinematic driver for a projectile.
type Kind uint8

const (
	KindBullet Kind = iota // Leapfrog-integrated kinetic round
	KindRocket             // Externally integrated rigid body (thrust + drag)
)

func (k Kind) String() string {
	switch k {
	case KindBullet:
		return "bullet"
	case KindRocket:
		return "rocket"
	default:
		return "unknown"
	}
}

// FuzeType determines when an explosive payload goes off.
type FuzeType uint8

const (
	FuzeNone        FuzeType = iota // Never detonates on its own
	FuzeImpact                      // Detonates on first armor contact
	FuzeTimed                       // Detonates when the time-to-live runs out
	FuzeProximity                   // Detonates near a target
	FuzeFlak                        // Proximity plus timed airburst
	FuzeDelay                       // Arms on penetration, detonates after a delay
	FuzePenetrating                 // Arms on penetration, detonates when stopped
)

func (f FuzeType) String() string {
	switch f {
	case FuzeNone:
		return "none"
	case FuzeImpact:
		return "impact"
	case FuzeTimed:
		return "timed"
	case FuzeProximity:
		return "proximity"
	case FuzeFlak:
		return "flak"
	case FuzeDelay:
		return "delay"
	case FuzePenetrating:
		return "penetrating"
	default:
		return "unknown"
	}
}

// ParseFuzeType maps a config name to a FuzeType.
func ParseFuzeType(s string) (FuzeType, bool) {
	for f := FuzeNone; f <= FuzePenetrating; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return FuzeNone, false
}

// Proximity reports whether the fuze reacts to nearby targets.
func (f FuzeType) Proximity() bool {
	return f == FuzeProximity || f == FuzeFlak
}

// Timed reports whether the fuze detonates at end of life.
func (f FuzeType) Timed() bool {
	return f == FuzeTimed || f == FuzeFlak
}

// Delayed reports whether the fuze is armed by penetrating armor.
func (f FuzeType) Delayed() bool {
	return f == FuzeDelay || f == FuzePenetrating
}

// WarheadType is the explosive filler arrangement.
type WarheadType uint8

const (
	WarheadSolid        WarheadType = iota // Kinetic only
	WarheadStandard                        // Blast/fragmentation HE
	WarheadShapedCharge                    // Directional jet
)

func (w WarheadType) String() string {
	switch w {
	case WarheadSolid:
		return "solid"
	case WarheadStandard:
		return "standard"
	case WarheadShapedCharge:
		return "shaped"
	default:
		return "unknown"
	}
}

// ParseWarheadType maps a config name to a WarheadType.
func ParseWarheadType(s string) (WarheadType, bool) {
	for w := WarheadSolid; w <= WarheadShapedCharge; w++ {
		if w.String() == s {
			return w, true
		}
	}
	return WarheadSolid, false
}

// DragModel selects how aerodynamic drag is applied during flight.
type DragModel uint8

const (
	DragNone      DragModel = iota
	DragAnalytic            // Closed form of dv/dt = -k v^2
	DragNumerical           // Explicit Euler, kept as a fallback
)

func (d DragModel) String() string {
	switch d {
	case DragNone:
		return "none"
	case DragAnalytic:
		return "analytic"
	case DragNumerical:
		return "numerical"
	default:
		return "unknown"
	}
}

// ParseDragModel maps a config name to a DragModel.
func ParseDragModel(s string) (DragModel, bool) {
	for d := DragNone; d <= DragNumerical; d++ {
		if d.String() == s {
			return d, true
		}
	}
	return DragNone, false
}

// DetonationKind identifies what the dispatcher produced.
type DetonationKind uint8

const (
	DetonationKinetic DetonationKind = iota // No explosion, projectile simply stops
	DetonationHE
	DetonationShaped
	DetonationBeehive
	DetonationNuclear
	DetonationAblation // Mass vaporized by a hypervelocity impact
)

func (d DetonationKind) String() string {
	switch d {
	case DetonationKinetic:
		return "kinetic"
	case DetonationHE:
		return "he"
	case DetonationShaped:
		return "shaped"
	case DetonationBeehive:
		return "beehive"
	case DetonationNuclear:
		return "nuclear"
	case DetonationAblation:
		return "ablation"
	default:
		return "unknown"
	}
}

// EndReason records why a projectile left the active set.
type EndReason uint8

const (
	EndNone EndReason = iota
	EndDetonated
	EndStopped       // Absorbed by armor or killed on a soft target
	EndExpired       // Time-to-live ran out
	EndTooSlow       // Residual speed below continuation threshold
	EndDisintegrated // Broke up hitting water
	EndFault         // Retired after a panic in a phase step
)

func (e EndReason) String() string {
	switch e {
	case EndNone:
		return "none"
	case EndDetonated:
		return "detonated"
	case EndStopped:
		return "stopped"
	case EndExpired:
		return "expired"
	case EndTooSlow:
		return "too_slow"
	case EndDisintegrated:
		return "disintegrated"
	case EndFault:
		return "fault"
	default:
		return "unknown"
	}
}
