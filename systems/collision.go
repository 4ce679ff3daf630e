package systems

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

// Detect sweeps the projectile's predicted path for the coming step and returns
// the hits in distance order. The slice is owned by the arena.
//
// In world-fixed mode one forward and one reverse ray are cast along the
// displacement. In vessel-relative mode each nearby vessel is swept in its own
// frame, so fast crossing targets are not missed; scenery is still swept in the
// world frame.
func Detect(p *components.Projectile, dt float64, w *World, prm *Params, a *Arena) []components.HitRecord {
	a.hits = a.hits[:0]
	if w.Geometry == nil {
		return a.hits
	}
	acc := PredictedAcceleration(p, w)

	if !prm.RelativeFrame || w.Kinematics == nil {
		a.sweep(w.Geometry, p.Position, Displacement(p.Velocity, acc, dt), LayerAll, 0, r3.Vec{})
	} else {
		detectRelative(p, dt, acc, w, prm, a)
	}

	SortHits(a.hits)
	return a.hits
}

func detectRelative(p *components.Projectile, dt float64, acc r3.Vec, w *World, prm *Params, a *Arena) {
	loaded := a.Loaded(w.Kinematics)
	var maxClosing float64
	for _, id := range loaded {
		k, ok := w.Kinematics.Kinematics(id)
		if !ok {
			continue
		}
		if s := r3.Norm(r3.Sub(p.Velocity, k.Velocity)); s > maxClosing {
			maxClosing = s
		}
	}
	radius := prm.BaseSearchRadius + dt*maxClosing

	n := w.Geometry.OverlapSphereNonAlloc(p.Position, radius, a.vessels)
	candidates := a.vessels[:n]
	if n >= len(a.vessels) {
		a.Overflows++
		candidates = w.Geometry.OverlapSphere(p.Position, radius)
	}

	const vesselLayers = LayerParts | LayerEVA | LayerWheels
	for _, id := range candidates {
		k, ok := w.Kinematics.Kinematics(id)
		if !ok {
			continue
		}
		relVel := r3.Sub(p.Velocity, k.Velocity)
		relAcc := r3.Sub(acc, k.Acceleration)
		a.sweep(w.Geometry, p.Position, Displacement(relVel, relAcc, dt), vesselLayers, id, k.Velocity)
	}

	a.sweep(w.Geometry, p.Position, Displacement(p.Velocity, acc, dt), LayerScenery, 0, r3.Vec{})
}

// sweep casts forward along disp and back from its end, appending to a.hits.
// Reverse hits are re-expressed as distance from the start with flipped normals.
func (a *Arena) sweep(g GeometryQuery, start, disp r3.Vec, mask LayerMask, vessel components.VesselID, frame r3.Vec) {
	length := r3.Norm(disp)
	if length == 0 {
		return
	}
	dir := r3.Scale(1/length, disp)

	q := RayQuery{Origin: start, Direction: dir, MaxDistance: length, Mask: mask, Vessel: vessel}
	for _, h := range a.raycast(g, q, a.forward) {
		h.Reverse = false
		h.Fraction = h.Distance / length
		h.Frame = frame
		a.hits = append(a.hits, h)
	}

	q.Origin = r3.Add(start, disp)
	q.Direction = r3.Scale(-1, dir)
	for _, h := range a.raycast(g, q, a.reverse) {
		h.Distance = length - h.Distance
		h.Normal = r3.Scale(-1, h.Normal)
		h.Reverse = true
		h.Fraction = h.Distance / length
		h.Frame = frame
		a.hits = append(a.hits, h)
	}
}

// raycast fills buf, falling back to the allocating query when it may have overflowed.
func (a *Arena) raycast(g GeometryQuery, q RayQuery, buf []components.HitRecord) []components.HitRecord {
	n := g.RaycastNonAlloc(q, buf)
	if n >= len(buf) {
		a.Overflows++
		return g.RaycastAll(q)
	}
	return buf[:n]
}

// SortHits orders hits by distance along the swept path, whatever frame or
// cast they came from. On equal distance forward hits come before reverse
// ones, then the earlier tick fraction. Stable, so full ties keep cast order.
func SortHits(hits []components.HitRecord) {
	slices.SortStableFunc(hits, func(x, y components.HitRecord) int {
		if c := cmp.Compare(x.Distance, y.Distance); c != 0 {
			return c
		}
		if x.Reverse != y.Reverse {
			if y.Reverse {
				return -1
			}
			return 1
		}
		return cmp.Compare(x.Fraction, y.Fraction)
	})
}

// ImpactPoint is the world position of a hit at the moment it happens.
func ImpactPoint(h components.HitRecord, dt float64) r3.Vec {
	return r3.Add(h.Point, r3.Scale(h.Fraction*dt, h.Frame))
}
