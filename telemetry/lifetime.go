package telemetry

import (
	"github.com/pthm-cable/ordnance/components"
)

// FlightRecord summarizes one projectile from launch to release.
type FlightRecord struct {
	ID           uint32  `csv:"id"`
	Round        string  `csv:"round"`
	LaunchTick   int32   `csv:"launch_tick"`
	EndTick      int32   `csv:"end_tick"`
	FlightTime   float64 `csv:"flight_time"`
	Distance     float64 `csv:"distance"`
	Hits         int     `csv:"hits"`
	Penetrations int     `csv:"penetrations"`
	PeakSpeed    float64 `csv:"peak_speed"`
	EndSpeed     float64 `csv:"end_speed"`
	MassKept     float64 `csv:"mass_kept"` // fraction of launch mass
	End          string  `csv:"end"`
}

// FlightTracker keeps a FlightRecord per live projectile. Pool slots are
// reused, so a record is keyed by slot ID and must be removed on release.
type FlightTracker struct {
	flights map[uint32]*FlightRecord
}

// NewFlightTracker creates an empty tracker.
func NewFlightTracker() *FlightTracker {
	return &FlightTracker{
		flights: make(map[uint32]*FlightRecord),
	}
}

// Register starts a record for a freshly fired projectile.
func (ft *FlightTracker) Register(id uint32, round string, launchTick int32, muzzleSpeed float64) {
	ft.flights[id] = &FlightRecord{
		ID:         id,
		Round:      round,
		LaunchTick: launchTick,
		PeakSpeed:  muzzleSpeed,
	}
}

// Get returns the record for a projectile, or nil if not found.
func (ft *FlightTracker) Get(id uint32) *FlightRecord {
	return ft.flights[id]
}

// RecordHit counts a resolved contact.
func (ft *FlightTracker) RecordHit(id uint32, penetrated bool) {
	if f := ft.flights[id]; f != nil {
		f.Hits++
		if penetrated {
			f.Penetrations++
		}
	}
}

// UpdateSpeed tracks peak speed; rockets accelerate after launch.
func (ft *FlightTracker) UpdateSpeed(id uint32, speed float64) {
	if f := ft.flights[id]; f != nil && speed > f.PeakSpeed {
		f.PeakSpeed = speed
	}
}

// Remove closes the record from the projectile's final state and drops it.
func (ft *FlightTracker) Remove(p *components.Projectile, endTick int32, dt float64) *FlightRecord {
	f := ft.flights[p.ID]
	if f == nil {
		return nil
	}
	delete(ft.flights, p.ID)

	f.EndTick = endTick
	f.FlightTime = float64(endTick-f.LaunchTick) * dt
	f.Distance = p.DistanceTraveled
	f.EndSpeed = p.Speed()
	if p.BaseMass > 0 {
		f.MassKept = p.Mass / p.BaseMass
	}
	f.End = p.End.String()
	return f
}

// Count returns the number of tracked projectiles.
func (ft *FlightTracker) Count() int {
	return len(ft.flights)
}
