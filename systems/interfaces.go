package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

// LayerMask selects which collider classes a query considers.
type LayerMask uint8

const (
	LayerParts LayerMask = 1 << iota
	LayerEVA
	LayerWheels
	LayerScenery

	LayerAll = LayerParts | LayerEVA | LayerWheels | LayerScenery
)

// RayQuery is a swept-ray intersection request.
type RayQuery struct {
	Origin      r3.Vec
	Direction   r3.Vec // unit length
	MaxDistance float64
	Mask        LayerMask
	// Restrict the cast to one vessel's colliders; zero casts against everything in Mask.
	Vessel components.VesselID
}

// GeometryQuery bridges the host physics scene for collision queries.
// The NonAlloc variants write at most len(dst) results and return the count;
// a count equal to len(dst) means the buffer may have overflowed.
type GeometryQuery interface {
	RaycastNonAlloc(q RayQuery, dst []components.HitRecord) int
	RaycastAll(q RayQuery) []components.HitRecord
	OverlapSphereNonAlloc(center r3.Vec, radius float64, dst []components.VesselID) int
	OverlapSphere(center r3.Vec, radius float64) []components.VesselID
	// SyncTransforms pushes pending transform changes into the query structures.
	SyncTransforms()
}

// KinematicsProvider exposes target motion.
type KinematicsProvider interface {
	Kinematics(id components.VesselID) (components.Kinematics, bool)
	LoadedVessels(dst []components.VesselID) []components.VesselID
}

// CPASolver returns the time in [0, maxTime] at which the separation
// p + v t + a t^2 / 2 is smallest.
type CPASolver interface {
	TimeToCPA(relPos, relVel, relAcc r3.Vec, maxTime float64) float64
}

// ArmorProvider looks up part properties for a hit.
type ArmorProvider interface {
	Part(ref components.ColliderRef) (components.PartInfo, bool)
}

// DamageSink applies damage to host-owned targets.
type DamageSink interface {
	ApplyDamage(ev components.DamageEvent)
	ConsumeReactiveArmor(ref components.ColliderRef)
}

// DetonationSink receives explosive outcomes.
type DetonationSink interface {
	Detonate(ev components.DetonationEvent)
}

// Scorer registers hits with the scoring system. Optional.
type Scorer interface {
	RegisterHit(ev components.ScoreEvent)
}

// Environment describes the planet the projectile flies over.
type Environment interface {
	// Altitude above the sea surface; negative is underwater.
	Altitude(p r3.Vec) float64
	Up(p r3.Vec) r3.Vec
	Gravity(p r3.Vec) r3.Vec
	AirDensity(p r3.Vec) float64
}

// Random supplies rolls in [0, 1).
type Random interface {
	Float64() float64
}

// World bundles every collaborator the core needs.
type World struct {
	Geometry   GeometryQuery
	Kinematics KinematicsProvider
	Armor      ArmorProvider
	Damage     DamageSink
	Effects    DetonationSink
	Scorer     Scorer
	Env        Environment
	CPA        CPASolver
	Rand       Random
}
