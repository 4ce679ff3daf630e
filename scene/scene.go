// Package scene is a self-contained host for the ballistics core: vessels with
// sphere and box colliders stored in an ECS world, static scenery, a flat sea
// and a simple hit-point damage model.
package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
	"github.com/pthm-cable/ordnance/config"
)

const gridCellSize = 50.0

// Box is a static scenery collider.
type Box struct {
	Name        string
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
	Rotation    mgl64.Quat
}

type partRef struct {
	vessel components.VesselID
	index  int
}

// Scene owns every target the simulation can hit.
type Scene struct {
	world *ecs.World

	vesselMapper *ecs.Map2[components.Body, components.Hull]
	vesselFilter *ecs.Filter2[components.Body, components.Hull]
	bodyMap      *ecs.Map1[components.Body]
	hullMap      *ecs.Map1[components.Hull]

	entities map[components.VesselID]ecs.Entity
	names    map[string]components.VesselID
	parts    map[components.PartID]partRef
	order    []components.VesselID

	scenery []Box
	grid    *Grid
	dirty   bool

	ocean       bool
	gravity     r3.Vec
	airDensity  float64
	scaleHeight float64

	nextVessel components.VesselID
	nextPart   components.PartID

	Log Log
}

// New creates an empty scene with the physics settings of cfg.
func New(cfg *config.Config, ocean bool) *Scene {
	world := ecs.NewWorld()
	return &Scene{
		world:        world,
		vesselMapper: ecs.NewMap2[components.Body, components.Hull](world),
		vesselFilter: ecs.NewFilter2[components.Body, components.Hull](world),
		bodyMap:      ecs.NewMap1[components.Body](world),
		hullMap:      ecs.NewMap1[components.Hull](world),
		entities:     make(map[components.VesselID]ecs.Entity),
		names:        make(map[string]components.VesselID),
		parts:        make(map[components.PartID]partRef),
		grid:         NewGrid(gridCellSize),
		ocean:        ocean,
		gravity:      cfg.Derived.Gravity,
		airDensity:   cfg.Physics.AirDensity,
		scaleHeight:  cfg.Physics.ScaleHeight,
		Log:          Log{Damage: make(map[string]float64)},
	}
}

// Build creates a scene populated from a scenario.
func Build(cfg *config.Config, sc *config.ScenarioConfig) (*Scene, error) {
	s := New(cfg, sc.Ocean)
	for _, vc := range sc.Vessels {
		if _, err := s.AddVessel(vc, cfg.Materials); err != nil {
			return nil, err
		}
	}
	for _, b := range sc.Scenery {
		s.AddScenery(b)
	}
	s.SyncTransforms()
	return s, nil
}

// AddVessel creates a vessel entity with its parts.
func (s *Scene) AddVessel(vc config.VesselConfig, materials map[string]config.MaterialConfig) (components.VesselID, error) {
	if _, dup := s.names[vc.Name]; dup {
		return 0, fmt.Errorf("vessel %q defined twice", vc.Name)
	}
	s.nextVessel++
	id := s.nextVessel

	hull := components.Hull{Parts: make([]components.Part, 0, len(vc.Parts))}
	var radius float64
	for _, pc := range vc.Parts {
		part, err := s.buildPart(pc, materials)
		if err != nil {
			return 0, fmt.Errorf("vessel %q: %w", vc.Name, err)
		}
		reach := part.Offset.Len() + partExtent(&part)
		radius = math.Max(radius, reach)
		s.parts[part.ID] = partRef{vessel: id, index: len(hull.Parts)}
		hull.Parts = append(hull.Parts, part)
	}

	body := components.Body{
		ID:           id,
		Name:         vc.Name,
		Team:         vc.Team,
		Position:     vec(vc.Position),
		Velocity:     vec(vc.Velocity),
		Acceleration: vec(vc.Acceleration),
		Radius:       radius,
	}
	s.entities[id] = s.vesselMapper.NewEntity(&body, &hull)
	s.names[vc.Name] = id
	s.order = append(s.order, id)
	s.dirty = true
	return id, nil
}

func (s *Scene) buildPart(pc config.PartConfig, materials map[string]config.MaterialConfig) (components.Part, error) {
	s.nextPart++
	part := components.Part{
		ID:             s.nextPart,
		Name:           pc.Name,
		Offset:         mgl64.Vec3(pc.Offset),
		Radius:         pc.Radius,
		HalfExtents:    mgl64.Vec3(pc.HalfExtents),
		Rotation:       rotation(pc.Rotation),
		EVA:            pc.EVA,
		Ignored:        pc.Ignored,
		CrashTolerance: pc.CrashTolerance,
		HP:             pc.HP,
		MaxHP:          pc.HP,
	}
	switch pc.Shape {
	case "", "sphere":
		part.Shape = components.ShapeSphere
		if part.Radius <= 0 {
			return part, fmt.Errorf("part %q: sphere needs a positive radius", pc.Name)
		}
	case "box":
		part.Shape = components.ShapeBox
		if part.HalfExtents[0] <= 0 || part.HalfExtents[1] <= 0 || part.HalfExtents[2] <= 0 {
			return part, fmt.Errorf("part %q: box needs positive half extents", pc.Name)
		}
	default:
		return part, fmt.Errorf("part %q: unknown shape %q", pc.Name, pc.Shape)
	}
	if part.HP <= 0 {
		part.HP, part.MaxHP = 100, 100
	}

	if pc.Material != "" {
		m, ok := materials[pc.Material]
		if !ok {
			return part, fmt.Errorf("part %q: unknown material %q", pc.Name, pc.Material)
		}
		part.Armor = components.Armor{
			Thickness:       pc.Thickness,
			Strength:        m.Strength,
			Ductility:       m.Ductility,
			Hardness:        m.Hardness,
			Density:         m.Density,
			SafeTemperature: m.SafeTemperature,
			Temperature:     pc.Temperature,
			Softening:       m.Softening,
			VFactor:         m.VFactor,
			Mu:              m.Mu,
			SabotMu:         m.SabotMu,
		}
	}
	if ra := pc.Reactive; ra != nil {
		part.Armor.Reactive = &components.ReactiveArmor{
			Modifier:     ra.Modifier,
			Sensitivity:  ra.Sensitivity,
			NonExplosive: ra.NonExplosive,
			Sections:     ra.Sections,
		}
	}
	return part, nil
}

// AddScenery adds a static box.
func (s *Scene) AddScenery(b config.SceneryConfig) {
	s.scenery = append(s.scenery, Box{
		Name:        b.Name,
		Center:      mgl64.Vec3(b.Center),
		HalfExtents: mgl64.Vec3(b.HalfExtents),
		Rotation:    rotation(b.Rotation),
	})
}

// RemoveVessel deletes a vessel and its parts.
func (s *Scene) RemoveVessel(id components.VesselID) {
	e, ok := s.entities[id]
	if !ok {
		return
	}
	hull := s.hullMap.Get(e)
	for _, p := range hull.Parts {
		delete(s.parts, p.ID)
	}
	body := s.bodyMap.Get(e)
	delete(s.names, body.Name)
	s.vesselMapper.Remove(e)
	delete(s.entities, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.dirty = true
}

// VesselByName looks up a vessel ID.
func (s *Scene) VesselByName(name string) (components.VesselID, bool) {
	id, ok := s.names[name]
	return id, ok
}

// PartByName finds a part on a vessel.
func (s *Scene) PartByName(vessel components.VesselID, name string) (components.PartID, bool) {
	e, ok := s.entities[vessel]
	if !ok {
		return 0, false
	}
	for _, p := range s.hullMap.Get(e).Parts {
		if p.Name == name {
			return p.ID, true
		}
	}
	return 0, false
}

// Body returns a copy of a vessel's body state.
func (s *Scene) Body(id components.VesselID) (components.Body, bool) {
	e, ok := s.entities[id]
	if !ok {
		return components.Body{}, false
	}
	return *s.bodyMap.Get(e), true
}

// PartState returns a copy of a part.
func (s *Scene) PartState(id components.PartID) (components.Part, bool) {
	p := s.part(id)
	if p == nil {
		return components.Part{}, false
	}
	return *p, true
}

// PartWorldPosition is the current world position of a part's center.
func (s *Scene) PartWorldPosition(id components.PartID) (r3.Vec, bool) {
	ref, ok := s.parts[id]
	if !ok {
		return r3.Vec{}, false
	}
	body := s.bodyMap.Get(s.entities[ref.vessel])
	p := s.hullMap.Get(s.entities[ref.vessel]).Parts[ref.index]
	return r3.Add(body.Position, toR3(p.Offset)), true
}

// Step moves every vessel along its constant-acceleration path.
func (s *Scene) Step(dt float64) {
	query := s.vesselFilter.Query()
	for query.Next() {
		body, _ := query.Get()
		body.Position = r3.Add(body.Position, r3.Add(r3.Scale(dt, body.Velocity), r3.Scale(0.5*dt*dt, body.Acceleration)))
		body.Velocity = r3.Add(body.Velocity, r3.Scale(dt, body.Acceleration))
	}
	s.dirty = true
}

// VesselCount returns the number of vessels.
func (s *Scene) VesselCount() int {
	return len(s.order)
}

func (s *Scene) part(id components.PartID) *components.Part {
	ref, ok := s.parts[id]
	if !ok {
		return nil
	}
	e, ok := s.entities[ref.vessel]
	if !ok {
		return nil
	}
	return &s.hullMap.Get(e).Parts[ref.index]
}

func partExtent(p *components.Part) float64 {
	if p.Shape == components.ShapeBox {
		return p.HalfExtents.Len()
	}
	return p.Radius
}

func vec(v [3]float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
