package sim

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
	"github.com/pthm-cable/ordnance/config"
	"github.com/pthm-cable/ordnance/systems"
	"github.com/pthm-cable/ordnance/telemetry"
)

// Shot asks for one projectile to be launched.
type Shot struct {
	Round string

	// Firing vessel and weapon part. Without a vessel the round starts at Origin.
	Vessel string
	Weapon string
	Origin r3.Vec

	// Launch direction; when zero the shot leads Target.
	Direction r3.Vec
	Target    string
}

// Fire launches a projectile. Returns nil without error when the pool is full.
func (s *Simulation) Fire(shot Shot) (*components.Projectile, error) {
	rc, ok := s.cfg.Rounds[shot.Round]
	if !ok {
		return nil, fmt.Errorf("unknown round %q", shot.Round)
	}

	var (
		src      components.Source
		origin   = shot.Origin
		carrierV r3.Vec
	)
	if shot.Vessel != "" {
		id, ok := s.scene.VesselByName(shot.Vessel)
		if !ok {
			return nil, fmt.Errorf("unknown vessel %q", shot.Vessel)
		}
		body, _ := s.scene.Body(id)
		src = components.Source{Vessel: id, Team: body.Team}
		origin = body.Position
		carrierV = body.Velocity
		if shot.Weapon != "" {
			part, ok := s.scene.PartByName(id, shot.Weapon)
			if !ok {
				return nil, fmt.Errorf("vessel %q has no part %q", shot.Vessel, shot.Weapon)
			}
			src.Weapon = part
			origin, _ = s.scene.PartWorldPosition(part)
		}
	}

	var targetRange float64
	dir := shot.Direction
	if dir == (r3.Vec{}) {
		if shot.Target == "" {
			return nil, fmt.Errorf("shot of %q has neither direction nor target", shot.Round)
		}
		tid, ok := s.scene.VesselByName(shot.Target)
		if !ok {
			return nil, fmt.Errorf("unknown target %q", shot.Target)
		}
		k, _ := s.scene.Kinematics(tid)
		aim := s.lead(rc, origin, carrierV, k)
		dir = r3.Sub(aim, origin)
		targetRange = r3.Norm(dir)
	}
	if r3.Norm(dir) == 0 {
		return nil, fmt.Errorf("shot of %q has a zero direction", shot.Round)
	}
	dir = r3.Unit(dir)

	p := s.pool.Acquire()
	if p == nil {
		slog.Warn("projectile pool exhausted", "round", shot.Round, "capacity", s.pool.Cap())
		return nil, nil
	}
	if err := s.load(p, shot.Round, rc); err != nil {
		p.Active = false
		s.pool.Release(p)
		return nil, err
	}
	p.Source = src
	p.Position = origin
	p.Velocity = r3.Add(carrierV, r3.Scale(rc.MuzzleVelocity, dir))
	s.launch(p, shot.Round, targetRange)
	return p, nil
}

// load fills a projectile from its round config.
func (s *Simulation) load(p *components.Projectile, name string, rc config.RoundConfig) error {
	kind := components.KindBullet
	switch rc.Kind {
	case "", "bullet":
	case "rocket":
		kind = components.KindRocket
	default:
		return fmt.Errorf("round %q: unknown kind %q", name, rc.Kind)
	}
	fuze, ok := components.ParseFuzeType(orDefault(rc.Fuze, "none"))
	if !ok {
		return fmt.Errorf("round %q: unknown fuze %q", name, rc.Fuze)
	}
	warhead, ok := components.ParseWarheadType(orDefault(rc.Warhead, "solid"))
	if !ok {
		return fmt.Errorf("round %q: unknown warhead %q", name, rc.Warhead)
	}
	drag, ok := components.ParseDragModel(orDefault(rc.Drag, s.cfg.Ballistics.DefaultDrag))
	if !ok {
		return fmt.Errorf("round %q: unknown drag model %q", name, rc.Drag)
	}

	p.Kind = kind
	p.Caliber, p.BaseCaliber = rc.Caliber, rc.Caliber
	p.Mass, p.BaseMass = rc.Mass, rc.Mass
	p.MuzzleVelocity = rc.MuzzleVelocity
	p.BallisticCoefficient = rc.BallisticCoefficient
	p.APMod = rc.APMod
	if p.APMod == 0 {
		p.APMod = 1
	}
	p.Sabot = rc.Sabot || systems.IsSabot(rc.Mass, rc.Caliber, &s.params)
	p.Length = systems.ProjectileLength(rc.Mass, rc.Caliber, p.Sabot, &s.params)
	p.Drag = drag

	p.TNTMass = rc.TNTMass
	p.Warhead = warhead
	p.Fuze = fuze
	if b := rc.Beehive; b != nil {
		p.Beehive = &components.SubmunitionSpec{
			Count:     b.Count,
			Caliber:   b.Caliber,
			Mass:      b.Mass,
			Fragments: b.Fragments,
			APMod:     b.APMod,
		}
	}
	p.Nuclear = rc.Nuclear
	p.NukeYield = rc.NukeYield

	p.DetonationRange = rc.DetonationRange
	p.BlastRadius = rc.BlastRadius
	p.FuzeDelay = rc.FuzeDelay
	p.Incendiary = rc.Incendiary
	p.StealResources = rc.StealResources
	p.DamageMult = rc.DamageMult
	p.TracerWidth = rc.TracerWidth
	p.Thrust = rc.Thrust
	p.BurnTime = rc.BurnTime
	if fuze.Proximity() {
		p.ArmingTime = systems.ArmingTime(rc.DetonationRange, rc.MuzzleVelocity, s.params.ArmingFactor)
	}

	lifetime := rc.Lifetime
	if lifetime <= 0 || lifetime > s.cfg.Ballistics.MaxLifetime {
		lifetime = s.cfg.Ballistics.MaxLifetime
	}
	p.LaunchTime = s.now
	p.TimeToLive = s.now + lifetime
	return nil
}

// launch finishes a loaded projectile once position and velocity are set.
func (s *Simulation) launch(p *components.Projectile, round string, targetRange float64) {
	if p.Fuze == components.FuzeFlak && targetRange > 0 {
		if ttl := systems.FlakTimeToLive(targetRange, p.MuzzleVelocity, p.DetonationRange); ttl > 0 {
			p.TimeToLive = math.Min(p.TimeToLive, s.now+ttl)
		}
	}
	if alt := s.scene.Altitude(p.Position); alt < 0 {
		p.Underwater = true
		p.StartsUnderwater = true
	}
	systems.ResetSpeedAdjust(p)
	systems.LogValidation(p, round)

	s.fired++
	speed := p.Speed()
	s.flights.Register(p.ID, round, s.tick, speed)
	s.collector.Record(telemetry.NewShotEvent(s.tick, p.ID, speed))
}

// lead returns the point to aim at so the round meets the target, allowing for
// target motion, gravity drop and drag-stretched flight time.
func (s *Simulation) lead(rc config.RoundConfig, origin, carrierV r3.Vec, k components.Kinematics) r3.Vec {
	if rc.Kind == "rocket" || rc.MuzzleVelocity <= 0 {
		return k.Position
	}
	var drag float64
	if orDefault(rc.Drag, s.cfg.Ballistics.DefaultDrag) != "none" {
		drag = systems.DragConstant(rc.BallisticCoefficient, s.scene.AirDensity(origin))
	}
	g := s.scene.Gravity(origin)
	relV := r3.Sub(k.Velocity, carrierV)

	aim := k.Position
	for i := 0; i < 4; i++ {
		t := flightTime(r3.Norm(r3.Sub(aim, origin)), rc.MuzzleVelocity, drag)
		aim = r3.Add(k.Position, r3.Add(r3.Scale(t, relV), r3.Scale(0.5*t*t, k.Acceleration)))
		aim = r3.Sub(aim, r3.Scale(0.5*t*t, g))
	}
	return aim
}

// flightTime inverts the quadratic-drag range x(t) = ln(1 + k v0 t) / k.
func flightTime(distance, muzzle, k float64) float64 {
	if k <= 0 || math.IsInf(k, 0) {
		return distance / muzzle
	}
	return math.Expm1(k*distance) / (k * muzzle)
}

// fireScheduled launches every scenario shot that is due.
func (s *Simulation) fireScheduled() {
	for i := range s.salvos {
		sv := &s.salvos[i]
		count := max(sv.gun.Count, 1)
		for sv.fired < count && s.now+1e-9 >= sv.next {
			_, err := s.Fire(Shot{
				Round:     sv.gun.Round,
				Vessel:    sv.gun.Vessel,
				Weapon:    sv.gun.Weapon,
				Direction: r3.Vec{X: sv.gun.Direction[0], Y: sv.gun.Direction[1], Z: sv.gun.Direction[2]},
				Target:    sv.gun.Target,
			})
			if err != nil {
				slog.Error("scheduled shot failed", "vessel", sv.gun.Vessel, "round", sv.gun.Round, "error", err)
				sv.fired = count
				break
			}
			sv.fired++
			sv.next += sv.gun.Interval
		}
	}
}

// spawnSubmunitions releases the beehive bursts queued this tick.
func (s *Simulation) spawnSubmunitions() {
	for _, b := range s.spawns {
		s.scatter = systems.SubmunitionVelocities(b.spawn, s.rng, s.scatter)
		spec := b.spawn.Spec
		for _, v := range s.scatter {
			p := s.pool.Acquire()
			if p == nil {
				slog.Warn("no room for sub-munitions", "count", spec.Count)
				break
			}
			p.Kind = components.KindBullet
			p.Caliber, p.BaseCaliber = spec.Caliber, spec.Caliber
			p.Mass, p.BaseMass = spec.Mass, spec.Mass
			p.MuzzleVelocity = r3.Norm(v)
			p.BallisticCoefficient = sectionalDensity(spec.Mass, spec.Caliber)
			p.APMod = spec.APMod
			if p.APMod == 0 {
				p.APMod = 1
			}
			p.Length = systems.ProjectileLength(spec.Mass, spec.Caliber, false, &s.params)
			p.Drag = components.DragAnalytic
			p.Source = b.source
			p.Position = b.spawn.Origin
			p.Velocity = v
			p.LaunchTime = s.now
			p.TimeToLive = s.now + s.cfg.Ballistics.MaxLifetime
			s.launch(p, "submunition", 0)
		}
	}
	s.spawns = s.spawns[:0]
}

// sectionalDensity is mass over frontal area in kg/m², a stand-in ballistic
// coefficient for fragments.
func sectionalDensity(mass, caliber float64) float64 {
	r := caliber / 2000
	if r <= 0 {
		return 0
	}
	return mass / (math.Pi * r * r)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
