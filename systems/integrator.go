package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

// WaterEvent reports what happened at the sea surface during a step.
type WaterEvent uint8

const (
	WaterNone WaterEvent = iota
	WaterRicochet
	WaterSubmerged
	WaterDisintegrated
	WaterExited
	WaterExitDetonate
)

func (w WaterEvent) String() string {
	switch w {
	case WaterNone:
		return "none"
	case WaterRicochet:
		return "ricochet"
	case WaterSubmerged:
		return "submerged"
	case WaterDisintegrated:
		return "disintegrated"
	case WaterExited:
		return "exited"
	case WaterExitDetonate:
		return "exit_detonate"
	default:
		return "unknown"
	}
}

// DragConstant is k in dv/dt = -k v², in 1/m.
func DragConstant(bc, airDensity float64) float64 {
	if bc <= 0 || airDensity <= 0 {
		return 0
	}
	return airDensity / (2 * bc)
}

// DragFactor returns the multiplicative speed change drag causes over dt.
//
// The analytic model evaluates v(t) = v0 / (1 + k v0 t) from the last discrete
// speed change, so step size does not bias the result. The numerical model is a
// plain Euler step of -k v² dt.
func DragFactor(p *components.Projectile, dt, airDensity float64) float64 {
	k := DragConstant(p.BallisticCoefficient, airDensity)
	if k == 0 {
		return 1
	}
	switch p.Drag {
	case components.DragAnalytic:
		v0 := p.SpeedAtAdjust
		if v0 <= 0 {
			v0 = p.Speed()
		}
		t0 := p.TimeSinceAdjust
		return (1 + k*v0*t0) / (1 + k*v0*(t0+dt))
	case components.DragNumerical:
		return math.Max(0, 1-k*p.Speed()*dt)
	default:
		return 1
	}
}

// ResetSpeedAdjust restarts the analytic drag curve at the current speed.
// Call after any discrete velocity change.
func ResetSpeedAdjust(p *components.Projectile) {
	p.SpeedAtAdjust = p.Speed()
	p.TimeSinceAdjust = 0
}

// Leapfrog advances a bullet by one step with kick-drift-kick:
// half a gravity and drag kick, a full drift, the water check, and the second half
// kick. With no drag the scheme is exact for constant gravity.
func Leapfrog(p *components.Projectile, dt float64, w *World, prm *Params) WaterEvent {
	g := w.Env.Gravity(p.Position)
	drag := DragFactor(p, dt, w.Env.AirDensity(p.Position))
	halfDrag := math.Sqrt(drag)
	halfWater := math.Pow(prm.WaterSpeedRetention, dt/2)

	kick := func() {
		p.Velocity = r3.Add(p.Velocity, r3.Scale(0.5*dt, g))
		if p.Underwater {
			p.Velocity = r3.Scale(halfWater, p.Velocity)
		} else {
			p.Velocity = r3.Scale(halfDrag, p.Velocity)
		}
	}

	kick()
	start := p.Position
	drift(p, r3.Scale(dt, p.Velocity))
	ev := WaterTransition(p, start, dt, w, prm)
	kick()

	p.TimeSinceAdjust += dt
	p.Erosion.TimeSinceHit += dt
	return ev
}

// drift moves the projectile and accumulates travel bookkeeping.
func drift(p *components.Projectile, d r3.Vec) {
	p.Position = r3.Add(p.Position, d)
	n := r3.Norm(d)
	p.DistanceTraveled += n
	p.Erosion.DistanceSinceHit += n
}

// WaterTransition handles crossing the sea surface between start and the current
// position. Entering water either skips the round, breaks it up, or submerges it
// and arms its underwater fuze. A round that started underwater leaves without a
// detonation check.
func WaterTransition(p *components.Projectile, start r3.Vec, dt float64, w *World, prm *Params) WaterEvent {
	if w.Env == nil {
		return WaterNone
	}
	altStart := w.Env.Altitude(start)
	altEnd := w.Env.Altitude(p.Position)

	switch {
	case !p.Underwater && altStart >= 0 && altEnd < 0:
		f := altStart / (altStart - altEnd)
		surface := r3.Add(start, r3.Scale(f, r3.Sub(p.Position, start)))
		up := w.Env.Up(surface)
		angle := ImpactAngle(p.Velocity, up)

		roll := 1.0
		if w.Rand != nil {
			roll = w.Rand.Float64()
		}
		if RicochetScenery(angle, p.Caliber, roll, prm.Ricochet) {
			p.Velocity = RicochetVelocity(p.Velocity, up, angle, prm.Ricochet)
			p.Position = r3.Add(surface, r3.Scale((1-f)*dt, p.Velocity))
			if alt := w.Env.Altitude(p.Position); alt < 0 {
				p.Position = r3.Add(p.Position, r3.Scale(-alt, up))
			}
			p.TracerWidth /= 2
			p.Ricocheted = true
			ResetSpeedAdjust(p)
			return WaterRicochet
		}
		if p.Caliber < prm.WaterDisintegrateBelow {
			p.Position = surface
			return WaterDisintegrated
		}
		p.Underwater = true
		if p.Explosive() && p.Fuze != components.FuzeNone && !p.Fuzing.Armed {
			p.Fuzing.Armed = true
			p.Fuzing.Remaining = prm.WaterFuzeDelay
			p.FuzeTriggered = true
		}
		return WaterSubmerged

	case p.Underwater && altEnd >= 0:
		p.Underwater = false
		if p.StartsUnderwater {
			p.StartsUnderwater = false
			return WaterExited
		}
		if p.Fuzing.Armed && p.Explosive() {
			return WaterExitDetonate
		}
		return WaterExited
	}
	return WaterNone
}

// PredictedAcceleration is the acceleration the collision sweep and proximity
// fuze assume for the coming step.
func PredictedAcceleration(p *components.Projectile, w *World) r3.Vec {
	var g r3.Vec
	if w.Env != nil {
		g = w.Env.Gravity(p.Position)
	}
	if p.Kind != components.KindRocket {
		return g
	}
	return r3.Add(g, rocketAcceleration(p, w))
}

// Displacement is the predicted movement over dt.
func Displacement(v, a r3.Vec, dt float64) r3.Vec {
	return r3.Add(r3.Scale(dt, v), r3.Scale(0.5*dt*dt, a))
}
