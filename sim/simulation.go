// Package sim runs the ballistics core against a scene: it owns the projectile
// pool, steps every projectile through the three tick phases and feeds
// telemetry.
package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/getsentry/sentry-go"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
	"github.com/pthm-cable/ordnance/config"
	"github.com/pthm-cable/ordnance/pool"
	"github.com/pthm-cable/ordnance/scene"
	"github.com/pthm-cable/ordnance/systems"
	"github.com/pthm-cable/ordnance/telemetry"
)

// Options configures a simulation run.
type Options struct {
	Seed           int64
	Scenario       string // empty starts with an empty scene
	LogStats       bool
	StatsWindowSec float64 // 0 = telemetry.stats_window
	OutputDir      string
}

// salvo is a scheduled gun from the scenario.
type salvo struct {
	gun   config.GunConfig
	fired int
	next  float64
}

// Simulation holds the complete run state.
type Simulation struct {
	cfg    *config.Config
	params systems.Params
	rng    *rand.Rand

	scene    *scene.Scene
	world    systems.World
	pool     *pool.Pool
	arena    *systems.Arena
	resolver *systems.Resolver

	// Per-tick scratch
	active  []*components.Projectile
	spawns  []burst
	scatter []r3.Vec

	salvos   []salvo
	duration float64

	// State
	tick      int32
	now       float64
	fired     int
	lastFlush int32

	// Telemetry
	collector *telemetry.Collector
	flights   *telemetry.FlightTracker
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool
}

// New creates a simulation. With a scenario name the scene and gun schedule
// come from the matching config entry.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	s := &Simulation{
		cfg:      cfg,
		params:   systems.NewParams(cfg),
		rng:      rand.New(rand.NewSource(opts.Seed)),
		arena:    systems.NewArena(cfg.Collision.HitBufferSize, cfg.Collision.VesselBufferSize),
		flights:  telemetry.NewFlightTracker(),
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats: opts.LogStats,
	}

	if opts.Scenario == "" {
		s.scene = scene.New(cfg, false)
	} else {
		sc, ok := cfg.Scenario(opts.Scenario)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", opts.Scenario)
		}
		sn, err := scene.Build(cfg, sc)
		if err != nil {
			return nil, fmt.Errorf("building scenario %q: %w", sc.Name, err)
		}
		s.scene = sn
		s.duration = sc.Duration
		for _, g := range sc.Guns {
			s.salvos = append(s.salvos, salvo{gun: g, next: g.Start})
		}
	}

	s.world = systems.World{
		Geometry:   s.scene,
		Kinematics: s.scene,
		Armor:      s.scene,
		Damage:     s.scene,
		Effects:    effects{s},
		Scorer:     s.scene,
		Env:        s.scene,
		CPA:        systems.PolynomialCPA{},
		Rand:       s.rng,
	}
	s.resolver = systems.NewResolver(&s.world, &s.params)
	s.pool = pool.New(cfg.Telemetry.PoolSize, pool.Hooks{OnDisable: s.onRelease})
	s.active = make([]*components.Projectile, 0, s.pool.Cap())

	window := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		window = opts.StatsWindowSec
	}
	s.collector = telemetry.NewCollector(window, cfg.Physics.DT)

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	s.output = out
	if err := s.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}
	return s, nil
}

// burst is a beehive release waiting for the cleanup phase.
type burst struct {
	spawn  components.SubmunitionSpawn
	source components.Source
}

// effects forwards detonations to the scene and queues beehive bursts.
type effects struct {
	s *Simulation
}

func (e effects) Detonate(ev components.DetonationEvent) {
	e.s.scene.Detonate(ev)
	if ev.Spawn != nil {
		e.s.spawns = append(e.s.spawns, burst{spawn: *ev.Spawn, source: ev.Source})
	}
}

// Step advances the simulation by one tick.
func (s *Simulation) Step() {
	dt := s.params.DT
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseSync, 0)
	s.fireScheduled()
	s.scene.SyncTransforms()
	s.active = s.pool.Snapshot(s.active[:0])
	loaded := s.arena.Loaded(s.scene)

	s.perf.StartPhase(telemetry.PhaseFuze, s.countActive())
	for _, p := range s.active {
		if p.Active {
			s.guard(p, "fuze", func(p *components.Projectile) { s.preCollision(p, dt, loaded) })
		}
	}

	s.perf.StartPhase(telemetry.PhaseCollision, s.countActive())
	for _, p := range s.active {
		if p.Active {
			s.guard(p, "collision", func(p *components.Projectile) { s.collide(p, dt) })
		}
	}

	// Lifetime is checked again against the end of this tick so a round
	// never flies a step past its expiry.
	s.perf.StartPhase(telemetry.PhaseIntegrate, s.countActive())
	end := float64(s.tick+1) * dt
	for _, p := range s.active {
		if p.Active {
			s.guard(p, "integrate", func(p *components.Projectile) {
				s.move(p, dt)
				if p.Active {
					s.endOfLife(p, end)
				}
			})
		}
	}

	s.perf.StartPhase(telemetry.PhaseCleanup, len(s.spawns))
	s.spawnSubmunitions()
	s.pool.ReleaseInactive()

	s.perf.StartPhase(telemetry.PhaseScene, 0)
	s.scene.Step(dt)
	s.tick++
	s.now = float64(s.tick) * dt

	s.perf.StartPhase(telemetry.PhaseTelemetry, 0)
	s.flushTelemetry()
	s.perf.EndTick()
}

// Run steps for the given simulated duration; 0 runs the scenario duration.
func (s *Simulation) Run(duration float64) {
	if duration <= 0 {
		duration = s.duration
	}
	ticks := int(math.Round(duration / s.params.DT))
	for i := 0; i < ticks; i++ {
		s.Step()
	}
}

// guard runs one projectile's phase step. A panic retires only that
// projectile; the rest of the pool keeps going.
func (s *Simulation) guard(p *components.Projectile, phase string, fn func(*components.Projectile)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("projectile fault", "phase", phase, "id", p.ID, "tick", s.tick, "panic", r)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("phase", phase)
				scope.SetTag("projectile", fmt.Sprint(p.ID))
			})
			hub.Recover(r)
			p.Active = false
			p.End = components.EndFault
			s.collector.Record(telemetry.NewFaultEvent(s.tick, p.ID))
			s.scene.SyncTransforms()
		}
	}()
	fn(p)
}

// preCollision handles end of life, armed delay fuzes and proximity fuzes.
func (s *Simulation) preCollision(p *components.Projectile, dt float64, loaded []components.VesselID) {
	if s.endOfLife(p, s.now) {
		return
	}

	if systems.TickFuzeTimer(p, dt) {
		s.detonate(p, p.Position)
		return
	}

	if d := systems.ProximityCheck(p, dt, s.now, &s.world, loaded); d.Detonate {
		slog.Debug("proximity fuze", "id", p.ID, "target", d.Target, "t", d.Time)
		s.detonate(p, d.Position)
	}
}

// endOfLife retires or bursts a projectile whose lifetime is up at now.
func (s *Simulation) endOfLife(p *components.Projectile, now float64) bool {
	switch systems.CheckLifetime(p, now) {
	case systems.LifetimeExpire:
		p.Active = false
		p.End = components.EndExpired
		s.collector.Record(telemetry.NewExpireEvent(s.tick, p.ID))
		return true
	case systems.LifetimeDetonate:
		s.detonate(p, p.Position)
		return true
	}
	return false
}

func (s *Simulation) countActive() int {
	n := 0
	for _, p := range s.active {
		if p.Active {
			n++
		}
	}
	return n
}

// collide sweeps the coming step and resolves the hits in order.
func (s *Simulation) collide(p *components.Projectile, dt float64) {
	p.BeginPass()
	s.arena.BeginProjectile()
	hits := systems.Detect(p, dt, &s.world, &s.params, s.arena)
	if len(hits) == 0 {
		return
	}
	before := s.resolver.Tally
	speed, mass := p.Speed(), p.Mass
	s.resolver.ResolveHits(p, hits, dt, s.arena)
	s.recordHits(p, before, speed)
	if p.Active {
		s.collector.RecordMassLoss(mass - p.Mass)
	}
}

// move integrates projectiles the resolver did not already place.
func (s *Simulation) move(p *components.Projectile, dt float64) {
	if p.Moved || p.Concluded() {
		return
	}
	switch systems.Advance(p, dt, &s.world, &s.params) {
	case systems.WaterDisintegrated:
		p.Active = false
		p.End = components.EndDisintegrated
	case systems.WaterExitDetonate:
		s.detonate(p, p.Position)
	}
	s.flights.UpdateSpeed(p.ID, p.Speed())
}

func (s *Simulation) detonate(p *components.Projectile, pos r3.Vec) {
	ev := s.resolver.Dispatcher.Detonate(p, pos)
	if ev.Kind == components.DetonationKinetic {
		return
	}
	s.collector.Record(telemetry.NewDetonationEvent(s.tick, p.ID))
}

// onRelease closes the projectile's flight record.
func (s *Simulation) onRelease(p *components.Projectile) {
	f := s.flights.Remove(p, s.tick, s.params.DT)
	if err := s.output.WriteFlight(f); err != nil {
		slog.Error("failed to write flight", "error", err)
	}
}

// Close flushes the last partial window and closes output files.
func (s *Simulation) Close() error {
	if s.tick > s.lastFlush {
		s.writeWindow()
	}
	return s.output.Close()
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int32 { return s.tick }

// Now returns simulated seconds.
func (s *Simulation) Now() float64 { return s.now }

// Duration returns the scenario duration, 0 without a scenario.
func (s *Simulation) Duration() float64 { return s.duration }

// Scene exposes the host scene.
func (s *Simulation) Scene() *scene.Scene { return s.scene }

// Pool exposes the projectile pool.
func (s *Simulation) Pool() *pool.Pool { return s.pool }

// Tally returns the hit outcome counts since the start of the run.
func (s *Simulation) Tally() systems.Tally { return s.resolver.Tally }

// Fired returns the number of projectiles launched, sub-munitions included.
func (s *Simulation) Fired() int { return s.fired }

// Collector exposes the telemetry window collector.
func (s *Simulation) Collector() *telemetry.Collector { return s.collector }
