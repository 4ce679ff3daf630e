package systems

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

// PolynomialCPA finds the closest point of approach under constant relative
// acceleration. d/dt |p + v t + a t²/2|² / 2 is the cubic
//
//	p·v + (p·a + v·v) t + 1.5 (v·a) t² + 0.5 (a·a) t³
//
// whose real roots in [0, maxTime], together with the interval ends, are the
// candidates.
type PolynomialCPA struct{}

// TimeToCPA implements CPASolver.
func (PolynomialCPA) TimeToCPA(relPos, relVel, relAcc r3.Vec, maxTime float64) float64 {
	if maxTime <= 0 {
		return 0
	}
	c0 := r3.Dot(relPos, relVel)
	c1 := r3.Dot(relPos, relAcc) + r3.Dot(relVel, relVel)
	c2 := 1.5 * r3.Dot(relVel, relAcc)
	c3 := 0.5 * r3.Dot(relAcc, relAcc)

	sep := func(t float64) float64 {
		return r3.Norm2(ballisticPosition(relPos, relVel, relAcc, t))
	}

	best, bestSep := 0.0, sep(0)
	if s := sep(maxTime); s < bestSep {
		best, bestSep = maxTime, s
	}
	for _, t := range cubicRoots(c3, c2, c1, c0) {
		if t <= 0 || t >= maxTime {
			continue
		}
		if s := sep(t); s < bestSep {
			best, bestSep = t, s
		}
	}
	return best
}

// cubicRoots returns the real roots of c3 t³ + c2 t² + c1 t + c0, degrading to
// the quadratic and linear cases when leading coefficients vanish.
func cubicRoots(c3, c2, c1, c0 float64) []float64 {
	scale := math.Max(math.Max(math.Abs(c3), math.Abs(c2)), math.Max(math.Abs(c1), math.Abs(c0)))
	if scale == 0 {
		return nil
	}
	const eps = 1e-12

	switch {
	case math.Abs(c3) > eps*scale:
		// Eigenvalues of the companion matrix of the monic cubic
		a := mat.NewDense(3, 3, []float64{
			-c2 / c3, -c1 / c3, -c0 / c3,
			1, 0, 0,
			0, 1, 0,
		})
		var eig mat.Eigen
		if !eig.Factorize(a, mat.EigenNone) {
			return nil
		}
		var roots []float64
		for _, v := range eig.Values(nil) {
			re := real(v)
			if math.Abs(imag(v)) > 1e-9*(1+math.Abs(re)) {
				continue
			}
			roots = append(roots, polish(c3, c2, c1, c0, re))
		}
		return roots

	case math.Abs(c2) > eps*scale:
		disc := c1*c1 - 4*c2*c0
		if disc < 0 {
			return nil
		}
		sq := math.Sqrt(disc)
		return []float64{(-c1 + sq) / (2 * c2), (-c1 - sq) / (2 * c2)}

	case math.Abs(c1) > eps*scale:
		return []float64{-c0 / c1}
	}
	return nil
}

// polish applies one Newton step to an eigenvalue root.
func polish(c3, c2, c1, c0, t float64) float64 {
	f := ((c3*t+c2)*t+c1)*t + c0
	df := (3*c3*t+2*c2)*t + c1
	if df == 0 {
		return t
	}
	return t - f/df
}

// ArmingTime is how long after launch a proximity fuze stays safe.
func ArmingTime(detonationRange, muzzleVelocity, factor float64) float64 {
	if muzzleVelocity <= 0 {
		return 0
	}
	return factor * detonationRange / muzzleVelocity
}

// FlakTimeToLive returns the flight time after which a flak round should burst
// short of a target at the given distance.
func FlakTimeToLive(distance, muzzleVelocity, detonationRange float64) float64 {
	if muzzleVelocity <= 0 {
		return 0
	}
	return math.Max(0, distance-detonationRange) / muzzleVelocity
}

// FuzeDecision is the outcome of a proximity check.
type FuzeDecision struct {
	Detonate bool
	Time     float64 // s into the coming step
	Position r3.Vec  // projectile position at Time
	Target   components.VesselID
}

// ProximityCheck looks for a closing target whose approach passes within the
// detonation range during the coming step. The earliest such detonation wins.
func ProximityCheck(p *components.Projectile, dt, now float64, w *World, loaded []components.VesselID) FuzeDecision {
	var best FuzeDecision
	if !p.Fuze.Proximity() || !p.Explosive() || p.DetonationRange <= 0 {
		return best
	}
	if now-p.LaunchTime < p.ArmingTime || w.Kinematics == nil || w.CPA == nil {
		return best
	}

	acc := PredictedAcceleration(p, w)
	bestTime := math.Inf(1)
	for _, id := range loaded {
		if id == p.Source.Vessel {
			continue
		}
		k, ok := w.Kinematics.Kinematics(id)
		if !ok || (k.Team != "" && k.Team == p.Source.Team) {
			continue
		}

		relPos := r3.Sub(k.Position, p.Position)
		relVel := r3.Sub(k.Velocity, p.Velocity)
		// Only targets we are closing on
		if r3.Dot(relPos, relVel) >= 0 {
			continue
		}
		relSpeed := r3.Norm(relVel)
		relAcc := r3.Sub(k.Acceleration, acc)

		window := dt + 2*p.DetonationRange/relSpeed
		tCPA := w.CPA.TimeToCPA(relPos, relVel, relAcc, window)
		if tCPA >= window {
			continue
		}
		miss := r3.Norm(ballisticPosition(relPos, relVel, relAcc, tCPA))
		r := p.DetonationRange + k.Radius
		if miss >= r {
			continue
		}

		tDet := math.Max(0, tCPA-math.Sqrt(r*r-miss*miss)/relSpeed)
		if tDet > dt || tDet >= bestTime {
			continue
		}
		bestTime = tDet
		best = FuzeDecision{
			Detonate: true,
			Time:     tDet,
			Position: ballisticPosition(p.Position, p.Velocity, acc, tDet),
			Target:   id,
		}
	}
	return best
}

// LifetimeOutcome says what happens when a projectile reaches its time-to-live.
type LifetimeOutcome uint8

const (
	LifetimeAlive LifetimeOutcome = iota
	LifetimeExpire
	LifetimeDetonate
)

// CheckLifetime compares sim time against the projectile's expiry. Timed and
// flak fuzes burst instead of vanishing.
func CheckLifetime(p *components.Projectile, now float64) LifetimeOutcome {
	if p.TimeToLive <= 0 || now < p.TimeToLive {
		return LifetimeAlive
	}
	if p.Fuze.Timed() && p.Explosive() {
		return LifetimeDetonate
	}
	return LifetimeExpire
}

// TickFuzeTimer counts down an armed delay fuze and reports expiry.
func TickFuzeTimer(p *components.Projectile, dt float64) bool {
	if !p.Fuzing.Armed {
		return false
	}
	p.Fuzing.Remaining -= dt
	return p.Fuzing.Remaining <= 0
}
