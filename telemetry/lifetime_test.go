package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

func TestFlightTracker(t *testing.T) {
	ft := NewFlightTracker()
	ft.Register(3, "120mm_apfsds", 10, 1500)
	assert.Equal(t, 1, ft.Count())

	ft.RecordHit(3, true)
	ft.RecordHit(3, false)
	ft.RecordHit(99, true)
	ft.UpdateSpeed(3, 1400)
	ft.UpdateSpeed(3, 1600)

	p := &components.Projectile{
		ID:               3,
		Mass:             30,
		BaseMass:         60,
		Velocity:         r3.Vec{X: 900},
		DistanceTraveled: 1502,
		End:              components.EndStopped,
	}
	f := ft.Remove(p, 60, 0.02)
	require.NotNil(t, f)
	assert.Equal(t, "120mm_apfsds", f.Round)
	assert.Equal(t, 2, f.Hits)
	assert.Equal(t, 1, f.Penetrations)
	assert.Equal(t, 1600.0, f.PeakSpeed)
	assert.Equal(t, 900.0, f.EndSpeed)
	assert.InDelta(t, 1.0, f.FlightTime, 1e-12)
	assert.Equal(t, 0.5, f.MassKept)
	assert.Equal(t, "stopped", f.End)

	assert.Zero(t, ft.Count())
	assert.Nil(t, ft.Remove(p, 61, 0.02))
}
