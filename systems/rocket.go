package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

// rocketAcceleration is thrust along the velocity while the motor burns, less
// quadratic drag. Gravity is not included.
func rocketAcceleration(p *components.Projectile, w *World) r3.Vec {
	dir := unitOrZero(p.Velocity)
	if dir == (r3.Vec{}) || p.Mass <= 0 {
		return r3.Vec{}
	}
	var a r3.Vec
	if p.BurnTime > 0 {
		a = r3.Scale(p.Thrust/p.Mass, dir)
	}
	if w.Env != nil {
		k := DragConstant(p.BallisticCoefficient, w.Env.AirDensity(p.Position))
		v := p.Speed()
		a = r3.Sub(a, r3.Scale(k*v*v, dir))
	}
	return a
}

// RocketStep integrates a rocket for one step with semi-implicit Euler. Rockets
// use the same collision and fuze logic as bullets; only the driver differs.
func RocketStep(p *components.Projectile, dt float64, w *World, prm *Params) WaterEvent {
	a := PredictedAcceleration(p, w)
	p.Velocity = r3.Add(p.Velocity, r3.Scale(dt, a))
	if p.Underwater {
		p.Velocity = r3.Scale(math.Pow(prm.WaterSpeedRetention, dt), p.Velocity)
	}
	if p.BurnTime > 0 {
		p.BurnTime = math.Max(0, p.BurnTime-dt)
	}

	start := p.Position
	drift(p, r3.Scale(dt, p.Velocity))
	ev := WaterTransition(p, start, dt, w, prm)

	p.TimeSinceAdjust += dt
	p.Erosion.TimeSinceHit += dt
	return ev
}

// Advance moves a projectile with its kinematic driver.
func Advance(p *components.Projectile, dt float64, w *World, prm *Params) WaterEvent {
	if p.Kind == components.KindRocket {
		return RocketStep(p, dt, w, prm)
	}
	return Leapfrog(p, dt, w, prm)
}
