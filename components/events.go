package components

import "gonum.org/v1/gonum/spatial/r3"

// HitRecord is one raycast result along a projectile's swept path.
type HitRecord struct {
	Point    r3.Vec
	Normal   r3.Vec
	Distance float64 // m along the ray, in the frame it was cast in
	Fraction float64 // 0..1 of the tick at which the hit happens
	Collider ColliderRef
	Reverse  bool   // Cast from the far end back toward the start
	Frame    r3.Vec // Velocity of the frame the ray was cast in
}

// Kinematics is the state of a target vessel.
type Kinematics struct {
	Position     r3.Vec
	Velocity     r3.Vec
	Acceleration r3.Vec
	Radius       float64
	Team         string
}

// DamageKind distinguishes damage-application paths.
type DamageKind uint8

const (
	DamageKinetic DamageKind = iota
	DamageEVA
	DamageInstagib
)

// DamageEvent is handed to the host's damage sink.
type DamageEvent struct {
	Kind              DamageKind
	Target            ColliderRef
	Source            Source
	Point             r3.Vec
	Mass              float64 // kg
	Speed             float64 // m/s relative impact speed
	Caliber           float64 // mm
	PenetrationFactor float64
	Multiplier        float64
	Incendiary        bool
	StealResources    bool
}

// DetonationEvent is the dispatcher's output for explosive outcomes.
type DetonationEvent struct {
	Kind      DetonationKind
	Position  r3.Vec
	Direction r3.Vec // Shaped-charge jet axis; zero otherwise
	Warhead   WarheadType
	Yield     float64 // kg TNT (kt for nuclear)
	Radius    float64 // m blast radius hint
	Source    Source
	Spawn     *SubmunitionSpawn
}

// SubmunitionSpawn tells the scheduler to release a beehive burst.
type SubmunitionSpawn struct {
	Spec     SubmunitionSpec
	Origin   r3.Vec
	Velocity r3.Vec
	Spread   float64 // rad half-angle
}

// ScoreEvent records a telling hit for the scoring system.
type ScoreEvent struct {
	Source Source
	Target ColliderRef
	Lethal bool
	Damage float64
}
