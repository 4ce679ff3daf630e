package systems

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

// flatEnv is a flat planet with optional sea at Z = 0.
type flatEnv struct {
	ocean   bool
	gravity r3.Vec
	rho     float64
}

func (e flatEnv) Altitude(p r3.Vec) float64 {
	if !e.ocean {
		return 1e9
	}
	return p.Z
}
func (e flatEnv) Up(r3.Vec) r3.Vec { return r3.Vec{Z: 1} }
func (e flatEnv) Gravity(r3.Vec) r3.Vec { return e.gravity }
func (e flatEnv) AirDensity(r3.Vec) float64 { return e.rho }

// scriptedGeometry answers ray queries from a function.
type scriptedGeometry struct {
	hits     func(q RayQuery) []components.HitRecord
	vessels  []components.VesselID
	radius   float64
	allCalls int
	syncs    int
}

func (g *scriptedGeometry) RaycastNonAlloc(q RayQuery, dst []components.HitRecord) int {
	if g.hits == nil {
		return 0
	}
	return copy(dst, g.hits(q))
}

func (g *scriptedGeometry) RaycastAll(q RayQuery) []components.HitRecord {
	g.allCalls++
	if g.hits == nil {
		return nil
	}
	return g.hits(q)
}

func (g *scriptedGeometry) OverlapSphereNonAlloc(_ r3.Vec, radius float64, dst []components.VesselID) int {
	g.radius = radius
	return copy(dst, g.vessels)
}

func (g *scriptedGeometry) OverlapSphere(_ r3.Vec, radius float64) []components.VesselID {
	g.radius = radius
	return slices.Clone(g.vessels)
}

func (g *scriptedGeometry) SyncTransforms() { g.syncs++ }

type fakeKinematics map[components.VesselID]components.Kinematics

func (k fakeKinematics) Kinematics(id components.VesselID) (components.Kinematics, bool) {
	v, ok := k[id]
	return v, ok
}

func (k fakeKinematics) LoadedVessels(dst []components.VesselID) []components.VesselID {
	for id := range k {
		dst = append(dst, id)
	}
	slices.Sort(dst)
	return dst
}

type fakeArmor map[components.PartID]components.PartInfo

func (f fakeArmor) Part(ref components.ColliderRef) (components.PartInfo, bool) {
	info, ok := f[ref.Part]
	return info, ok
}

// recorder captures everything the core hands to the host.
type recorder struct {
	damage      []components.DamageEvent
	consumed    []components.ColliderRef
	detonations []components.DetonationEvent
	scores      []components.ScoreEvent
}

func (r *recorder) ApplyDamage(ev components.DamageEvent) { r.damage = append(r.damage, ev) }
func (r *recorder) ConsumeReactiveArmor(ref components.ColliderRef) { r.consumed = append(r.consumed, ref) }
func (r *recorder) Detonate(ev components.DetonationEvent) { r.detonations = append(r.detonations, ev) }
func (r *recorder) RegisterHit(ev components.ScoreEvent) { r.scores = append(r.scores, ev) }

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

// newTestWorld builds a world with zero gravity and no sea.
func newTestWorld() (*World, *recorder) {
	rec := &recorder{}
	return &World{
		Geometry: &scriptedGeometry{},
		Armor:    fakeArmor{},
		Damage:   rec,
		Effects:  rec,
		Scorer:   rec,
		Env:      flatEnv{},
		CPA:      PolynomialCPA{},
		Rand:     fixedRand(0.999),
	}, rec
}

func testParams() *Params {
	prm := DefaultParams()
	return &prm
}

func steelPlate(thickness float64) *components.Armor {
	return &components.Armor{
		Thickness:       thickness,
		Strength:        940,
		Ductility:       0.15,
		Hardness:        300,
		Density:         7850,
		SafeTemperature: 2500,
		Softening:       0.5,
	}
}

func apfsds() *components.Projectile {
	return &components.Projectile{
		Kind:        components.KindBullet,
		Caliber:     120,
		BaseCaliber: 120,
		Mass:        60,
		BaseMass:    60,
		APMod:       1,
		Sabot:       true,
		Velocity:    r3.Vec{X: 1500},
		Source:      components.Source{Vessel: 1, Weapon: 11, Team: "red"},
		Active:      true,
		TracerWidth: 0.6,
	}
}

func r3Vec(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}
