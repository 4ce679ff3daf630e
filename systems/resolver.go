package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

// surfaceOffset lifts a ricocheting round off the surface it skipped from.
const surfaceOffset = 0.01

// HitOutcome classifies what a single hit did.
type HitOutcome uint8

const (
	OutcomeIgnored HitOutcome = iota
	OutcomePenetrated
	OutcomeStopped
	OutcomeRicochet
	OutcomeDetonated
	OutcomeSoftTarget
)

func (o HitOutcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomePenetrated:
		return "penetrated"
	case OutcomeStopped:
		return "stopped"
	case OutcomeRicochet:
		return "ricochet"
	case OutcomeDetonated:
		return "detonated"
	case OutcomeSoftTarget:
		return "soft_target"
	default:
		return "unknown"
	}
}

// Tally counts hit outcomes since the last Reset.
type Tally struct {
	Hits        int
	Penetrated  int
	Stopped     int
	Ricochets   int
	Detonations int
	SoftTargets int
	Ablations   int
}

// Reset zeroes all counters.
func (t *Tally) Reset() {
	*t = Tally{}
}

func (t *Tally) add(o HitOutcome) {
	switch o {
	case OutcomeIgnored:
		return
	case OutcomePenetrated:
		t.Penetrated++
	case OutcomeStopped:
		t.Stopped++
	case OutcomeRicochet:
		t.Ricochets++
	case OutcomeDetonated:
		t.Detonations++
	case OutcomeSoftTarget:
		t.SoftTargets++
	}
	t.Hits++
}

// Resolver applies the consequences of each hit in order.
type Resolver struct {
	World      *World
	Params     *Params
	Dispatcher *Dispatcher
	Tally      Tally
}

// NewResolver wires a resolver and its dispatcher to the same world.
func NewResolver(w *World, prm *Params) *Resolver {
	return &Resolver{World: w, Params: prm, Dispatcher: &Dispatcher{World: w}}
}

// ResolveHits processes the sorted hit list for one projectile. Resolution stops
// at the first hit that ends the pass: the round stopped, detonated, ricocheted,
// or was removed.
func (r *Resolver) ResolveHits(p *components.Projectile, hits []components.HitRecord, dt float64, a *Arena) {
	p.BeginPass()
	for _, h := range hits {
		if p.Concluded() || !p.Penetrated {
			return
		}
		o, done := r.Resolve(p, h, dt, a)
		r.Tally.add(o)
		if done {
			return
		}
	}
}

// Resolve applies one hit. done reports that the projectile needs no further
// hit processing this tick.
func (r *Resolver) Resolve(p *components.Projectile, h components.HitRecord, dt float64, a *Arena) (HitOutcome, bool) {
	if p.Concluded() || !p.Penetrated {
		return OutcomeIgnored, true
	}

	t := h.Fraction * dt
	point := ImpactPoint(h, dt)
	vImp := r3.Add(p.Velocity, r3.Scale(t, PredictedAcceleration(p, r.World)))

	switch h.Collider.Kind {
	case components.ColliderScenery, components.ColliderWater:
		return r.hitScenery(p, h, point, vImp, dt)
	}

	if r.World.Armor == nil {
		return OutcomeIgnored, false
	}
	info, ok := r.World.Armor.Part(h.Collider)
	if !ok || r.ignored(p, info) {
		return OutcomeIgnored, false
	}
	if h.Reverse && a.Consumed(info.ID) {
		// Exit side of a part this round already went through
		return OutcomeIgnored, false
	}

	frame := h.Frame
	if frame == (r3.Vec{}) && r.World.Kinematics != nil {
		if k, ok := r.World.Kinematics.Kinematics(info.Vessel); ok {
			frame = k.Velocity
		}
	}
	vRel := r3.Sub(vImp, frame)

	if h.Collider.Kind == components.ColliderEVA {
		return r.hitSoft(p, h, info, point, vRel)
	}
	return r.hitPart(p, h, info, point, vImp, frame, vRel, dt, a)
}

// ignored covers the source weapon, the source vessel, teammates and parts the
// host flags as not hittable.
func (r *Resolver) ignored(p *components.Projectile, info components.PartInfo) bool {
	if info.Ignored {
		return true
	}
	if info.ID != 0 && info.ID == p.Source.Weapon {
		return true
	}
	if info.Vessel != 0 && info.Vessel == p.Source.Vessel {
		return true
	}
	return info.Team != "" && info.Team == p.Source.Team
}

func (r *Resolver) roll() float64 {
	if r.World.Rand == nil {
		return 1
	}
	return r.World.Rand.Float64()
}

func (r *Resolver) hitScenery(p *components.Projectile, h components.HitRecord, point, vImp r3.Vec, dt float64) (HitOutcome, bool) {
	angle := ImpactAngle(vImp, h.Normal)
	impactFuze := p.Explosive() && p.Fuze != components.FuzeNone

	if !RicochetScenery(angle, p.Caliber, r.roll(), r.Params.Ricochet) {
		if impactFuze {
			r.Dispatcher.Detonate(p, point)
			return OutcomeDetonated, true
		}
		r.stop(p, point, components.EndStopped)
		return OutcomeStopped, true
	}

	if p.Fuze == components.FuzeImpact && p.Explosive() {
		r.Dispatcher.Detonate(p, point)
		return OutcomeDetonated, true
	}

	n := unitOrZero(h.Normal)
	p.Velocity = RicochetVelocity(vImp, n, angle, r.Params.Ricochet)
	r.skip(p, point, n, dt*(1-h.Fraction))
	return OutcomeRicochet, true
}

// skip places a ricocheting round past the surface for the rest of the step.
func (r *Resolver) skip(p *components.Projectile, point, normal r3.Vec, remaining float64) {
	p.Position = r3.Add(point, r3.Add(r3.Scale(surfaceOffset, normal), r3.Scale(remaining, p.Velocity)))
	p.TracerWidth /= 2
	p.Ricocheted = true
	p.Moved = true
	ResetSpeedAdjust(p)
	if p.Speed() < r.Params.ContinuationSpeed {
		p.Active = false
		p.End = components.EndTooSlow
	}
}

func (r *Resolver) hitSoft(p *components.Projectile, h components.HitRecord, info components.PartInfo, point, vRel r3.Vec) (HitOutcome, bool) {
	kind := components.DamageEVA
	if p.DamageMult < 0 {
		kind = components.DamageInstagib
	}
	ev := r.damage(p, h.Collider, kind, point, r3.Norm(vRel), math.Inf(1))
	r.score(p, h.Collider, kind == components.DamageInstagib, ev)

	if p.Explosive() && p.Fuze != components.FuzeNone {
		r.Dispatcher.Detonate(p, point)
		return OutcomeDetonated, true
	}
	r.stop(p, point, components.EndStopped)
	return OutcomeSoftTarget, true
}

func (r *Resolver) hitPart(p *components.Projectile, h components.HitRecord, info components.PartInfo, point, vImp, frame, vRel r3.Vec, dt float64, a *Arena) (HitOutcome, bool) {
	prm := r.Params
	p.HitsThisPass++
	ApplyInterHitErosion(p, prm.Erosion)

	speed := r3.Norm(vRel)
	angle := ImpactAngle(vRel, h.Normal)

	armor := info.Armor
	if armor == nil {
		armor = &components.Armor{}
	}
	thickness := ProjectedThickness(armor.Thickness, angle, prm.MinCosine)
	strength := ArmorStrength(p.Caliber, armor.Thickness, armor.Ductility, armor.Strength, armor.Density, armor.SafeTemperature)
	vFactor := armor.VFactor
	if vFactor == 0 {
		vFactor = prm.VFactor
	}
	vFactor = EffectiveVFactor(vFactor, armor.Temperature, armor.SafeTemperature, armor.Softening)

	caliber := p.Caliber
	if !p.Sabot {
		he := HERatio(p.TNTMass, p.Mass, prm)
		caliber = CalculateDeformation(strength, KineticEnergy(p.Mass, speed), p.Caliber, speed, armor.Hardness, armor.Density, he, p.APMod)
	}

	depth := r.depth(p, caliber, speed, strength, vFactor, armor)
	pf := PenetrationFactor(depth, thickness, 1)

	explosiveImpact := p.Explosive() && p.Fuze == components.FuzeImpact
	if ra := ReactiveArmorCheck(pf, armor.Reactive, caliber, p.Sabot, angle, explosiveImpact, prm.Reactive); ra.Triggered {
		if ra.Consume && r.World.Damage != nil {
			r.World.Damage.ConsumeReactiveArmor(h.Collider)
		}
		if ra.Shattered {
			ApplySabotShatter(p, prm.Reactive)
			caliber = p.Caliber
			depth = r.depth(p, caliber, speed, strength, vFactor, armor)
		}
		pf = PenetrationFactor(depth, thickness, ra.Multiplier)
	}

	if !Penetrates(pf) {
		return r.stopped(p, h, info, point, frame, vRel, angle, speed, pf, dt)
	}

	// Penetrated
	a.Consume(info.ID)
	length := p.Length
	if length <= 0 {
		length = ProjectileLength(p.Mass, caliber, p.Sabot, prm)
	}
	res := PostPenetration(p.Mass, speed, caliber, length, depth, thickness, prm.Erosion)

	ev := r.damage(p, h.Collider, components.DamageKinetic, point, speed, pf)
	r.score(p, h.Collider, false, ev)
	if res.AblatedMass > 0 {
		r.Dispatcher.Ablation(p, point, res.AblatedMass, speed)
		r.Tally.Ablations++
	}

	dir := unitOrZero(vRel)
	p.Velocity = r3.Add(frame, r3.Scale(res.Speed, dir))
	p.Mass = res.Mass
	p.Caliber = caliber
	p.Length = res.Length
	ResetSpeedAdjust(p)

	p.Erosion.HasHit = true
	p.Erosion.DistanceSinceHit = 0
	p.Erosion.TimeSinceHit = 0
	if res.HighVelocity {
		p.Erosion.Hypervelocity = true
	} else {
		QueuePendingLoss(p, res.PenRatio, prm.Erosion)
	}

	return r.afterPenetration(p, point, pf, res.Speed)
}

// depth is the penetration for the current state, reduced for every plate
// already defeated in this pass.
func (r *Resolver) depth(p *components.Projectile, caliber, speed, strength, vFactor float64, armor *components.Armor) float64 {
	mu := armor.Curve(p.Sabot)
	if mu == (components.MuParams{}) {
		mu = r.Params.Mu
		if p.Sabot {
			mu = r.Params.SabotMu
		}
	}
	length := p.Length
	if caliber != p.Caliber {
		// Mushroomed noses are shorter for the same mass
		length = 0
	}
	d := CalculatePenetration(PenetrationInput{
		Caliber:  caliber,
		Speed:    speed,
		Mass:     p.Mass,
		APMod:    p.APMod,
		Strength: strength,
		VFactor:  vFactor,
		Mu:       mu,
		Sabot:    p.Sabot,
		Length:   length,
	}, r.Params)
	if p.HitsThisPass > 1 {
		d /= math.Sqrt(float64(p.HitsThisPass))
	}
	return d
}

func (r *Resolver) stopped(p *components.Projectile, h components.HitRecord, info components.PartInfo, point, frame, vRel r3.Vec, angle, speed, pf, dt float64) (HitOutcome, bool) {
	p.Penetrated = false
	ev := r.damage(p, h.Collider, components.DamageKinetic, point, speed, pf)
	r.score(p, h.Collider, false, ev)

	// A glancing round skips off whatever it carries; only a round that stays
	// on the plate sets off its warhead.
	chance := PartRicochetChance(angle, info.CrashTolerance, speed, r.Params.Ricochet)
	if chance > 0 && r.roll() < chance {
		n := unitOrZero(h.Normal)
		p.Velocity = r3.Add(frame, RicochetVelocity(vRel, n, angle, r.Params.Ricochet))
		r.skip(p, point, n, dt*(1-h.Fraction))
		return OutcomeRicochet, true
	}

	if p.Explosive() && p.Fuze != components.FuzeNone {
		r.Dispatcher.Detonate(p, point)
		return OutcomeDetonated, true
	}
	r.stop(p, point, components.EndStopped)
	return OutcomeStopped, true
}

// afterPenetration decides between continuing and terminating once a plate is
// defeated.
func (r *Resolver) afterPenetration(p *components.Projectile, point r3.Vec, pf, residual float64) (HitOutcome, bool) {
	prm := r.Params
	explosive := p.Explosive()

	if explosive && (p.Fuze == components.FuzeImpact || p.Fuze.Timed() || p.Fuze.Proximity()) {
		r.Dispatcher.Detonate(p, point)
		return OutcomeDetonated, true
	}

	if explosive && p.Fuze.Delayed() {
		if p.Fuze == components.FuzePenetrating && pf < 2 {
			// Lodged in the plate
			r.Dispatcher.Detonate(p, point)
			return OutcomeDetonated, true
		}
		if !p.Fuzing.Armed {
			delay := p.FuzeDelay
			if delay <= 0 {
				delay = prm.DefaultDelay
			}
			p.Fuzing.Armed = true
			p.Fuzing.Remaining = delay
			p.FuzeTriggered = true
		}
	}

	if residual < prm.ContinuationSpeed {
		if explosive && p.Fuzing.Armed {
			r.Dispatcher.Detonate(p, point)
			return OutcomeDetonated, true
		}
		r.stop(p, point, components.EndTooSlow)
		return OutcomePenetrated, true
	}
	if p.BaseMass > 0 && p.Mass < prm.Erosion.MinViableFraction*p.BaseMass {
		r.stop(p, point, components.EndStopped)
		return OutcomePenetrated, true
	}
	return OutcomePenetrated, false
}

// stop retires the projectile without an explosion.
func (r *Resolver) stop(p *components.Projectile, point r3.Vec, reason components.EndReason) {
	p.Position = point
	p.Penetrated = false
	p.Active = false
	p.End = reason
}

func (r *Resolver) damage(p *components.Projectile, target components.ColliderRef, kind components.DamageKind, point r3.Vec, speed, pf float64) components.DamageEvent {
	mult := p.DamageMult
	if mult == 0 {
		mult = 1
	}
	ev := components.DamageEvent{
		Kind:              kind,
		Target:            target,
		Source:            p.Source,
		Point:             point,
		Mass:              p.Mass,
		Speed:             speed,
		Caliber:           p.Caliber,
		PenetrationFactor: pf,
		Multiplier:        mult,
		Incendiary:        p.Incendiary,
		StealResources:    p.StealResources,
	}
	if r.World.Damage != nil {
		r.World.Damage.ApplyDamage(ev)
	}
	return ev
}

func (r *Resolver) score(p *components.Projectile, target components.ColliderRef, lethal bool, ev components.DamageEvent) {
	if r.World.Scorer == nil {
		return
	}
	r.World.Scorer.RegisterHit(components.ScoreEvent{
		Source: p.Source,
		Target: target,
		Lethal: lethal,
		Damage: KineticEnergy(ev.Mass, ev.Speed) * math.Abs(ev.Multiplier),
	})
}
