package components

import "gonum.org/v1/gonum/spatial/r3"

// VesselID identifies a target vessel. Zero means "none".
type VesselID uint32

// PartID identifies a part on a vessel. Zero means "none".
type PartID uint32

// Source identifies who fired a projectile.
type Source struct {
	Vessel VesselID
	Weapon PartID
	Team   string
}

// SubmunitionSpec describes the burst a beehive round releases.
type SubmunitionSpec struct {
	Count     int     // Number of sub-projectiles
	Caliber   float64 // mm
	Mass      float64 // kg each
	Fragments int     // Target fragment count used for dispersion
	APMod     float64
}

// ErosionState carries mass-loss bookkeeping between successive hits.
type ErosionState struct {
	DeltaMass        float64 // Pending mass loss (kg) decaying over the relaxation time
	DistanceSinceHit float64 // m travelled since the last penetration
	TimeSinceHit     float64 // s since the last penetration
	Hypervelocity    bool    // Set once an impact exceeded the hypervelocity threshold
	HasHit           bool    // At least one penetration happened
}

// FuzeState is the explicit timer that replaces a multi-frame wait before exploding.
type FuzeState struct {
	Armed     bool    // Delay timer running
	Remaining float64 // s until detonation once armed
}

// Projectile is a pooled in-flight round or rocket.
type Projectile struct {
	ID   uint32
	Kind Kind

	// Ballistics
	Caliber              float64 // mm (current effective caliber)
	BaseCaliber          float64 // mm at launch
	Mass                 float64 // kg (current)
	BaseMass             float64 // kg at launch
	Length               float64 // mm, 0 = derive from mass/caliber
	MuzzleVelocity       float64 // m/s
	BallisticCoefficient float64 // kg/m^2
	APMod                float64
	Sabot                bool
	Drag                 DragModel

	// Kinematic state
	Position         r3.Vec
	Velocity         r3.Vec
	DistanceTraveled float64
	// Speed and time at the last discrete speed change, used by the analytic drag model.
	SpeedAtAdjust   float64
	TimeSinceAdjust float64

	// Water
	Underwater       bool
	StartsUnderwater bool

	// Payload
	TNTMass   float64 // kg TNT equivalent
	Warhead   WarheadType
	Fuze      FuzeType
	Beehive   *SubmunitionSpec
	Nuclear   bool
	NukeYield float64 // kt, only when Nuclear

	// Fuze parameters
	DetonationRange float64 // m, proximity radius
	BlastRadius     float64 // m
	ArmingTime      float64 // s after launch
	FuzeDelay       float64 // s, for delay fuzes and underwater detonation
	Fuzing          FuzeState

	// Effects hooks
	Incendiary     bool
	StealResources bool
	DamageMult     float64 // negative = instagib soft targets
	TracerWidth    float64

	// Rocket driver
	Thrust   float64 // N
	BurnTime float64 // s remaining

	// Identity and lifetime
	Source     Source
	LaunchTime float64 // sim seconds
	TimeToLive float64 // absolute sim time of expiry

	// Per-pass state
	Penetrated    bool
	Detonated     bool
	Ricocheted    bool
	FuzeTriggered bool
	HitsThisPass  int
	// Set when a ricochet or fuze correction already moved the projectile this tick.
	Moved bool

	Erosion ErosionState

	Active bool
	End    EndReason
}

// Speed returns the magnitude of the current velocity.
func (p *Projectile) Speed() float64 {
	return r3.Norm(p.Velocity)
}

// Explosive reports whether the payload can produce an HE detonation.
func (p *Projectile) Explosive() bool {
	if p.Nuclear || p.Beehive != nil {
		return true
	}
	return p.TNTMass > 0 && p.Warhead != WarheadSolid
}

// Concluded reports whether this tick's resolution is already finished.
func (p *Projectile) Concluded() bool {
	return p.Detonated || p.Ricocheted || !p.Active
}

// BeginPass resets per-pass flags before a tick's hit resolution.
func (p *Projectile) BeginPass() {
	p.Penetrated = true
	p.Ricocheted = false
	p.HitsThisPass = 0
	p.Moved = false
}

// Reset clears all state so the projectile can be reused from the pool.
func (p *Projectile) Reset() {
	id := p.ID
	*p = Projectile{ID: id}
}
