package scene

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

// Damage scaling. Kinetic hits deal kJ of impact energy weighted by how far
// they got through the armor; blasts deal kJ of TNT energy falling off with
// the square of the distance.
const (
	kineticPerJoule    = 1e-3
	blastPerKgTNT      = 4184.0 // kJ
	blastRadiusPerCube = 8.0    // m per kg^(1/3)
	shapedConeCos      = 0.95
	nukeRadiusPerCube  = 400.0 // m per kt^(1/3)
)

// Log records what the scene received.
type Log struct {
	Hits        int
	Detonations []components.DetonationEvent
	Destroyed   []components.PartID
	Damage      map[string]float64 // dealt per source team
	Stolen      int
	Lethal      int
	ERASpent    int
}

// ApplyDamage implements systems.DamageSink.
func (s *Scene) ApplyDamage(ev components.DamageEvent) {
	p := s.part(ev.Target.Part)
	if p == nil || p.Destroyed {
		return
	}
	s.Log.Hits++

	var dmg float64
	switch ev.Kind {
	case components.DamageInstagib:
		dmg = p.HP
	default:
		weight := 1.0
		if !math.IsInf(ev.PenetrationFactor, 1) {
			weight = math.Min(math.Max(ev.PenetrationFactor, 0), 2) / 2
		}
		energy := 0.5 * ev.Mass * ev.Speed * ev.Speed
		dmg = energy * kineticPerJoule * weight * math.Abs(ev.Multiplier)
	}

	if ev.Incendiary {
		p.Burning = true
	}
	if ev.StealResources && ev.PenetrationFactor >= 1 {
		s.Log.Stolen++
	}
	s.hurt(p, dmg, ev.Source.Team)
}

// ConsumeReactiveArmor spends one explosive section.
func (s *Scene) ConsumeReactiveArmor(ref components.ColliderRef) {
	p := s.part(ref.Part)
	if p == nil || p.Armor.Reactive == nil || p.Armor.Reactive.Sections <= 0 {
		return
	}
	p.Armor.Reactive.Sections--
	s.Log.ERASpent++
}

// Detonate implements systems.DetonationSink with a spherical blast model.
// Shaped charges only reach parts inside a narrow cone along the jet.
func (s *Scene) Detonate(ev components.DetonationEvent) {
	s.Log.Detonations = append(s.Log.Detonations, ev)
	if ev.Kind == components.DetonationBeehive || ev.Yield <= 0 {
		return
	}

	energy := ev.Yield * blastPerKgTNT
	radius := ev.Radius
	if ev.Kind == components.DetonationNuclear {
		energy = ev.Yield * 1e6 * blastPerKgTNT
		radius = nukeRadiusPerCube * math.Cbrt(ev.Yield)
	} else if radius <= 0 {
		radius = blastRadiusPerCube * math.Cbrt(ev.Yield)
	}
	reach := radius
	if ev.Kind == components.DetonationShaped {
		reach = 2 * radius
	}

	for _, id := range s.OverlapSphere(ev.Position, reach) {
		e := s.entities[id]
		body := s.bodyMap.Get(e)
		hull := s.hullMap.Get(e)
		for i := range hull.Parts {
			p := &hull.Parts[i]
			if p.Destroyed {
				continue
			}
			rel := r3.Sub(r3.Add(body.Position, toR3(p.Offset)), ev.Position)
			d := math.Max(0, r3.Norm(rel)-partExtent(p))
			if d >= reach {
				continue
			}
			if ev.Kind == components.DetonationShaped {
				if n := r3.Norm(rel); n > 0 && r3.Dot(rel, ev.Direction)/n < shapedConeCos {
					continue
				}
			}
			f := 1 - d/reach
			s.hurt(p, energy*f*f, ev.Source.Team)
		}
	}
}

// RegisterHit implements systems.Scorer.
func (s *Scene) RegisterHit(ev components.ScoreEvent) {
	if ev.Lethal {
		s.Log.Lethal++
	}
}

func (s *Scene) hurt(p *components.Part, dmg float64, team string) {
	if dmg <= 0 {
		return
	}
	dealt := math.Min(dmg, p.HP)
	p.HP -= dealt
	s.Log.Damage[team] += dealt
	if p.HP <= 0 {
		p.HP = 0
		p.Destroyed = true
		s.Log.Destroyed = append(s.Log.Destroyed, p.ID)
		slog.Debug("part destroyed", "part", p.Name, "id", p.ID, "by", team)
	}
}
