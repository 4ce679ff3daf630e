package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
	"github.com/pthm-cable/ordnance/config"
	"github.com/pthm-cable/ordnance/telemetry"
)

// flatConfig removes gravity and drag from a round so shots fly straight.
func flatConfig(round string) *config.Config {
	cfg := config.Default()
	cfg.Derived.Gravity = r3.Vec{}
	rc := cfg.Rounds[round]
	rc.Drag = "none"
	cfg.Rounds[round] = rc
	return cfg
}

// ---------- Scenario runs ----------

func TestAntiArmor_PenetratesGlacis(t *testing.T) {
	s, err := New(flatConfig("120mm_apfsds"), Options{Seed: 1, Scenario: "anti_armor"})
	require.NoError(t, err)
	defer s.Close()

	s.Run(1.2)
	assert.Equal(t, int32(60), s.Tick())
	assert.Equal(t, 3, s.Fired())
	assert.GreaterOrEqual(t, s.Tally().Penetrated, 1)

	target, ok := s.Scene().VesselByName("target")
	require.True(t, ok)
	glacis, ok := s.Scene().PartByName(target, "glacis")
	require.True(t, ok)
	part, _ := s.Scene().PartState(glacis)
	assert.Less(t, part.HP, part.MaxHP)
}

func TestRun_Deterministic(t *testing.T) {
	run := func() (int, int, int) {
		s, err := New(config.Default(), Options{Seed: 7, Scenario: "air_defense"})
		require.NoError(t, err)
		defer s.Close()
		s.Run(0)
		return s.Fired(), s.Tally().Hits, len(s.Scene().Log.Detonations)
	}
	f1, h1, d1 := run()
	f2, h2, d2 := run()
	assert.Equal(t, 10, f1)
	assert.Equal(t, f1, f2)
	assert.Equal(t, h1, h2)
	assert.Equal(t, d1, d2)
}

func TestNew_UnknownScenario(t *testing.T) {
	_, err := New(config.Default(), Options{Scenario: "nope"})
	assert.Error(t, err)
}

// ---------- Firing ----------

func TestFire_Errors(t *testing.T) {
	s, err := New(config.Default(), Options{Scenario: "anti_armor"})
	require.NoError(t, err)

	tests := []struct {
		name string
		shot Shot
	}{
		{"unknown round", Shot{Round: "potato", Direction: r3.Vec{X: 1}}},
		{"unknown vessel", Shot{Round: "30mm_apds", Vessel: "ghost", Direction: r3.Vec{X: 1}}},
		{"unknown weapon", Shot{Round: "30mm_apds", Vessel: "tank", Weapon: "mortar", Direction: r3.Vec{X: 1}}},
		{"no aim", Shot{Round: "30mm_apds"}},
		{"unknown target", Shot{Round: "30mm_apds", Target: "ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s.Fire(tt.shot)
			assert.Error(t, err)
			assert.Nil(t, p)
		})
	}
	assert.Zero(t, s.Pool().Len())
	assert.Zero(t, s.Fired())
}

func TestFire_LoadsRound(t *testing.T) {
	s, err := New(config.Default(), Options{Scenario: "anti_armor"})
	require.NoError(t, err)

	p, err := s.Fire(Shot{Round: "120mm_apfsds", Vessel: "tank", Weapon: "gun", Target: "target"})
	require.NoError(t, err)
	require.NotNil(t, p)

	tank, _ := s.Scene().VesselByName("tank")
	assert.Equal(t, tank, p.Source.Vessel)
	assert.Equal(t, "red", p.Source.Team)
	assert.Equal(t, r3.Vec{X: 2, Z: 2}, p.Position)
	assert.InDelta(t, 1500, p.Speed(), 1e-9)
	// Leads upward against gravity drop
	assert.Greater(t, p.Velocity.Z, 0.0)
	assert.True(t, p.Sabot)
	assert.InDelta(t, 289.22, p.Length, 0.01)
	assert.Equal(t, components.DragAnalytic, p.Drag)
	assert.Equal(t, 10.0, p.TimeToLive)
	assert.Equal(t, 1500.0, p.SpeedAtAdjust)
	assert.Equal(t, 1, s.Collector().Count(telemetry.EventShot))
}

func TestFire_FlakFuzeTiming(t *testing.T) {
	s, err := New(config.Default(), Options{Scenario: "air_defense"})
	require.NoError(t, err)

	p, err := s.Fire(Shot{Round: "76mm_flak", Vessel: "ship", Weapon: "turret", Target: "bomber"})
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, components.FuzeFlak, p.Fuze)
	assert.InDelta(t, 1.5*15/900.0, p.ArmingTime, 1e-12)
	// Burst is timed short of the predicted intercept, well before the 12 s lifetime
	assert.Greater(t, p.TimeToLive, 1.0)
	assert.Less(t, p.TimeToLive, 4.0)
}

func TestFire_PoolExhausted(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.PoolSize = 1
	s, err := New(cfg, Options{})
	require.NoError(t, err)

	shot := Shot{Round: "30mm_apds", Origin: r3.Vec{Z: 100}, Direction: r3.Vec{X: 1}}
	p, err := s.Fire(shot)
	require.NoError(t, err)
	require.NotNil(t, p)

	p, err = s.Fire(shot)
	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 1, s.Pool().Exhausted)
}

// ---------- Lifecycle ----------

func TestStep_Expires(t *testing.T) {
	cfg := config.Default()
	rc := cfg.Rounds["30mm_apds"]
	rc.Lifetime = 0.1
	cfg.Rounds["30mm_apds"] = rc

	s, err := New(cfg, Options{})
	require.NoError(t, err)
	_, err = s.Fire(Shot{Round: "30mm_apds", Origin: r3.Vec{Z: 100}, Direction: r3.Vec{X: 1}})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		s.Step()
	}
	assert.Zero(t, s.Pool().Len())
	assert.Equal(t, 1, s.Collector().Count(telemetry.EventExpire))
}

func TestStep_EndsOnTheTickLifetimeRunsOut(t *testing.T) {
	tests := []struct {
		name  string
		round string
		check func(t *testing.T, s *Simulation)
	}{
		{"inert round expires", "30mm_apds", func(t *testing.T, s *Simulation) {
			assert.Equal(t, 1, s.Collector().Count(telemetry.EventExpire))
			assert.Empty(t, s.Scene().Log.Detonations)
		}},
		{"flak round bursts", "76mm_flak", func(t *testing.T, s *Simulation) {
			assert.Zero(t, s.Collector().Count(telemetry.EventExpire))
			assert.Len(t, s.Scene().Log.Detonations, 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := flatConfig(tt.round)
			rc := cfg.Rounds[tt.round]
			rc.Lifetime = 0.1
			cfg.Rounds[tt.round] = rc

			s, err := New(cfg, Options{})
			require.NoError(t, err)
			p, err := s.Fire(Shot{Round: tt.round, Origin: r3.Vec{Z: 500}, Direction: r3.Vec{X: 1}})
			require.NoError(t, err)
			require.NotNil(t, p)

			for i := 0; i < 4; i++ {
				s.Step()
			}
			assert.Equal(t, 1, s.Pool().Len())

			// Fifth tick ends at 0.1 s; no sixth move past the expiry
			s.Step()
			assert.Zero(t, s.Pool().Len())
			assert.InDelta(t, 0.1, s.Now(), 1e-12)
			tt.check(t, s)
		})
	}
}

func TestStep_BeehiveReleasesSubmunitions(t *testing.T) {
	s, err := New(config.Default(), Options{Seed: 3})
	require.NoError(t, err)
	_, err = s.Fire(Shot{Round: "canister", Origin: r3.Vec{Z: 500}, Direction: r3.Vec{X: 1, Z: 0.2}})
	require.NoError(t, err)

	s.Run(1.3)
	require.Len(t, s.Scene().Log.Detonations, 1)
	assert.Equal(t, components.DetonationBeehive, s.Scene().Log.Detonations[0].Kind)
	assert.Equal(t, 24, s.Pool().Len())
	assert.Equal(t, 25, s.Fired())
}

func TestStep_MovesStraightWithoutForces(t *testing.T) {
	s, err := New(flatConfig("30mm_apds"), Options{})
	require.NoError(t, err)
	p, err := s.Fire(Shot{Round: "30mm_apds", Origin: r3.Vec{Z: 100}, Direction: r3.Vec{Y: 1}})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		s.Step()
	}
	assert.InDelta(t, 5*0.02*1100, p.Position.Y, 1e-6)
	assert.InDelta(t, 100, p.Position.Z, 1e-9)
	assert.InDelta(t, 110, p.DistanceTraveled, 1e-6)
}

func TestGuard_RecoversFault(t *testing.T) {
	s, err := New(config.Default(), Options{})
	require.NoError(t, err)
	p, err := s.Fire(Shot{Round: "30mm_apds", Origin: r3.Vec{Z: 100}, Direction: r3.Vec{X: 1}})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.guard(p, "test", func(*components.Projectile) { panic("boom") })
	})
	assert.False(t, p.Active)
	assert.Equal(t, components.EndFault, p.End)
	assert.Equal(t, 1, s.Collector().Count(telemetry.EventFault))

	// The next tick releases it like any other ended round
	s.Step()
	assert.Zero(t, s.Pool().Len())
}

// ---------- Helpers ----------

func TestFlightTime(t *testing.T) {
	assert.InDelta(t, 2.0, flightTime(1000, 500, 0), 1e-12)
	// Drag stretches the flight
	assert.Greater(t, flightTime(1000, 500, 1e-4), 2.0)
}

func TestSectionalDensity(t *testing.T) {
	assert.InDelta(t, 198.94, sectionalDensity(0.01, 8), 0.01)
	assert.Zero(t, sectionalDensity(1, 0))
}

func TestOutput_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	s, err := New(cfg, Options{Scenario: "anti_armor", OutputDir: dir})
	require.NoError(t, err)

	s.Run(1.5)
	require.NoError(t, s.Close())

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "flights.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "shots")
}
