package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

// Dispatcher turns a terminal outcome into the matching detonation event and
// retires the projectile.
type Dispatcher struct {
	World *World
}

// Detonate ends the projectile at pos. The event kind follows the payload:
// nuclear, beehive, shaped charge, standard HE, or kinetic when there is none.
// Kinetic outcomes are not forwarded to the effects sink.
func (d *Dispatcher) Detonate(p *components.Projectile, pos r3.Vec) components.DetonationEvent {
	ev := components.DetonationEvent{
		Kind:     components.DetonationKinetic,
		Position: pos,
		Warhead:  p.Warhead,
		Yield:    p.TNTMass,
		Radius:   p.BlastRadius,
		Source:   p.Source,
	}

	switch {
	case p.Nuclear:
		ev.Kind = components.DetonationNuclear
		ev.Yield = p.NukeYield
	case p.Beehive != nil:
		ev.Kind = components.DetonationBeehive
		ev.Spawn = &components.SubmunitionSpawn{
			Spec:     *p.Beehive,
			Origin:   pos,
			Velocity: p.Velocity,
			Spread:   BeehiveSpread(p.Beehive.Fragments),
		}
	case p.Explosive() && p.Warhead == components.WarheadShapedCharge:
		ev.Kind = components.DetonationShaped
		ev.Direction = unitOrZero(p.Velocity)
	case p.Explosive():
		ev.Kind = components.DetonationHE
	default:
		ev.Yield = 0
	}

	if ev.Kind != components.DetonationKinetic && d.World != nil && d.World.Effects != nil {
		d.World.Effects.Detonate(ev)
	}

	p.Position = pos
	p.Penetrated = false
	p.Ricocheted = false
	p.Active = false
	if ev.Kind == components.DetonationKinetic {
		p.End = components.EndStopped
	} else {
		p.Detonated = true
		p.End = components.EndDetonated
	}
	return ev
}

// Ablation reports mass vaporized by a hypervelocity impact as a blast sized by
// its kinetic energy. The projectile keeps flying.
func (d *Dispatcher) Ablation(p *components.Projectile, pos r3.Vec, mass, speed float64) {
	if mass <= 0 || d.World == nil || d.World.Effects == nil {
		return
	}
	d.World.Effects.Detonate(components.DetonationEvent{
		Kind:      components.DetonationAblation,
		Position:  pos,
		Direction: unitOrZero(p.Velocity),
		Yield:     TNTEquivalent(KineticEnergy(mass, speed)),
		Source:    p.Source,
	})
}

// BeehiveSpread is the cone half-angle (rad) a burst of n fragments fills.
func BeehiveSpread(fragments int) float64 {
	if fragments < 1 {
		return 0.1
	}
	return math.Atan(1 / math.Sqrt(float64(fragments)))
}

// SubmunitionVelocities scatters spawn.Spec.Count velocities uniformly over the
// spread cone around the parent velocity, keeping its speed.
func SubmunitionVelocities(spawn components.SubmunitionSpawn, rnd Random, dst []r3.Vec) []r3.Vec {
	dst = dst[:0]
	speed := r3.Norm(spawn.Velocity)
	axis := unitOrZero(spawn.Velocity)
	if axis == (r3.Vec{}) {
		axis = r3.Vec{X: 1}
	}
	ref := r3.Vec{Z: 1}
	if math.Abs(axis.Z) > 0.9 {
		ref = r3.Vec{X: 1}
	}
	u := r3.Unit(r3.Cross(axis, ref))
	v := r3.Cross(axis, u)

	for i := 0; i < spawn.Spec.Count; i++ {
		theta := spawn.Spread * math.Sqrt(rnd.Float64())
		phi := 2 * math.Pi * rnd.Float64()
		side := r3.Add(r3.Scale(math.Cos(phi), u), r3.Scale(math.Sin(phi), v))
		dir := r3.Add(r3.Scale(math.Cos(theta), axis), r3.Scale(math.Sin(theta), side))
		dst = append(dst, r3.Scale(speed, dir))
	}
	return dst
}
