package scene

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
	"github.com/pthm-cable/ordnance/systems"
)

// SyncTransforms rebuilds the broad-phase grid when vessels moved.
func (s *Scene) SyncTransforms() {
	if !s.dirty {
		return
	}
	s.grid.Clear()
	query := s.vesselFilter.Query()
	for query.Next() {
		body, _ := query.Get()
		s.grid.Insert(body.ID, body.Position, body.Radius)
	}
	s.dirty = false
}

// RaycastNonAlloc writes up to len(dst) hits, nearest first.
func (s *Scene) RaycastNonAlloc(q systems.RayQuery, dst []components.HitRecord) int {
	hits := s.raycast(q, nil)
	return copy(dst, hits)
}

// RaycastAll returns every hit along the ray, nearest first.
func (s *Scene) RaycastAll(q systems.RayQuery) []components.HitRecord {
	return s.raycast(q, nil)
}

func (s *Scene) raycast(q systems.RayQuery, dst []components.HitRecord) []components.HitRecord {
	origin := toMgl(q.Origin)
	dir := toMgl(q.Direction)

	if q.Mask&(systems.LayerParts|systems.LayerEVA|systems.LayerWheels) != 0 {
		if q.Vessel != 0 {
			if e, ok := s.entities[q.Vessel]; ok {
				dst = s.castVessel(dst, s.bodyMap.Get(e), s.hullMap.Get(e), origin, dir, q)
			}
		} else {
			query := s.vesselFilter.Query()
			for query.Next() {
				body, hull := query.Get()
				dst = s.castVessel(dst, body, hull, origin, dir, q)
			}
		}
	}

	if q.Mask&systems.LayerScenery != 0 {
		for i := range s.scenery {
			b := &s.scenery[i]
			t, n, ok := rayBox(origin, dir, b.Center, b.HalfExtents, b.Rotation, q.MaxDistance)
			if !ok {
				continue
			}
			dst = append(dst, components.HitRecord{
				Point:    toR3(origin.Add(dir.Mul(t))),
				Normal:   toR3(n),
				Distance: t,
				Collider: components.ColliderRef{Kind: components.ColliderScenery},
			})
		}
	}

	slices.SortFunc(dst, func(a, b components.HitRecord) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return dst
}

func (s *Scene) castVessel(dst []components.HitRecord, body *components.Body, hull *components.Hull, origin, dir mgl64.Vec3, q systems.RayQuery) []components.HitRecord {
	center := toMgl(body.Position)

	// Reject vessels the ray cannot reach
	if body.Radius > 0 {
		oc := origin.Sub(center)
		along := math.Max(0, math.Min(q.MaxDistance, -oc.Dot(dir)))
		closest := oc.Add(dir.Mul(along))
		if closest.Len() > body.Radius {
			return dst
		}
	}

	for i := range hull.Parts {
		p := &hull.Parts[i]
		if p.Destroyed {
			continue
		}
		layer := systems.LayerParts
		kind := components.ColliderPart
		if p.EVA {
			layer = systems.LayerEVA
			kind = components.ColliderEVA
		}
		if q.Mask&layer == 0 {
			continue
		}

		pc := center.Add(p.Offset)
		var (
			t  float64
			n  mgl64.Vec3
			ok bool
		)
		if p.Shape == components.ShapeBox {
			t, n, ok = rayBox(origin, dir, pc, p.HalfExtents, p.Rotation, q.MaxDistance)
		} else {
			t, n, ok = raySphere(origin, dir, pc, p.Radius, q.MaxDistance)
		}
		if !ok {
			continue
		}
		dst = append(dst, components.HitRecord{
			Point:    toR3(origin.Add(dir.Mul(t))),
			Normal:   toR3(n),
			Distance: t,
			Collider: components.ColliderRef{Kind: kind, Vessel: body.ID, Part: p.ID},
		})
	}
	return dst
}

// OverlapSphereNonAlloc writes up to len(dst) vessels whose bounding sphere
// intersects the query sphere.
func (s *Scene) OverlapSphereNonAlloc(center r3.Vec, radius float64, dst []components.VesselID) int {
	return copy(dst, s.OverlapSphere(center, radius))
}

// OverlapSphere returns every vessel whose bounding sphere intersects the query sphere.
func (s *Scene) OverlapSphere(center r3.Vec, radius float64) []components.VesselID {
	s.SyncTransforms()
	candidates := s.grid.QuerySphere(nil, center, radius)
	out := candidates[:0]
	for _, id := range candidates {
		body := s.bodyMap.Get(s.entities[id])
		if r3.Norm(r3.Sub(body.Position, center)) <= radius+body.Radius {
			out = append(out, id)
		}
	}
	return out
}

// Kinematics implements systems.KinematicsProvider.
func (s *Scene) Kinematics(id components.VesselID) (components.Kinematics, bool) {
	e, ok := s.entities[id]
	if !ok {
		return components.Kinematics{}, false
	}
	b := s.bodyMap.Get(e)
	return components.Kinematics{
		Position:     b.Position,
		Velocity:     b.Velocity,
		Acceleration: b.Acceleration,
		Radius:       b.Radius,
		Team:         b.Team,
	}, true
}

// LoadedVessels appends every vessel in creation order.
func (s *Scene) LoadedVessels(dst []components.VesselID) []components.VesselID {
	return append(dst, s.order...)
}

// Part implements systems.ArmorProvider.
func (s *Scene) Part(ref components.ColliderRef) (components.PartInfo, bool) {
	p := s.part(ref.Part)
	if p == nil {
		return components.PartInfo{}, false
	}
	vessel := s.parts[ref.Part].vessel
	info := components.PartInfo{
		ID:             p.ID,
		Vessel:         vessel,
		CrashTolerance: p.CrashTolerance,
		Ignored:        p.Ignored || p.Destroyed,
		Armor:          &p.Armor,
	}
	if b, ok := s.Body(vessel); ok {
		info.Team = b.Team
	}
	return info, true
}

// Altitude is height above the sea; without a sea the world is all air.
func (s *Scene) Altitude(p r3.Vec) float64 {
	if !s.ocean {
		return math.MaxFloat64
	}
	return p.Z
}

// Up is +Z everywhere on a flat world.
func (s *Scene) Up(r3.Vec) r3.Vec {
	return r3.Vec{Z: 1}
}

// Gravity is uniform.
func (s *Scene) Gravity(r3.Vec) r3.Vec {
	return s.gravity
}

// AirDensity follows an exponential atmosphere.
func (s *Scene) AirDensity(p r3.Vec) float64 {
	if s.scaleHeight <= 0 {
		return s.airDensity
	}
	return s.airDensity * math.Exp(-math.Max(p.Z, 0)/s.scaleHeight)
}
