package systems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/ordnance/components"
)

func TestPostPenetration_LowVelocityKeepsMass(t *testing.T) {
	prm := testParams()
	res := PostPenetration(2, 800, 40, 200, 100, 50, prm.Erosion)
	assert.Equal(t, 2.0, res.Mass)
	assert.InDelta(t, 800*math.Sqrt(0.5), res.Speed, 1e-9)
	assert.False(t, res.HighVelocity)
	assert.Zero(t, res.AblatedMass)
}

func TestPostPenetration_HighVelocityLengthFloor(t *testing.T) {
	prm := testParams()
	length := ProjectileLength(60, 120, true, prm)
	res := PostPenetration(60, 1500, 120, length, 249.2597, 200, prm.Erosion)

	require.True(t, res.HighVelocity)
	assert.False(t, res.Hypervelocity)
	// L/D floor of 1.1 binds: mass ratio 1.1*120/289.2
	assert.InDelta(t, 27.384, res.Mass, 0.01)
	assert.InDelta(t, 987.05, res.Speed, 0.5)
	assert.InDelta(t, 1.1*120, res.Length, 0.01)
}

func TestPostPenetration_HypervelocityAblates(t *testing.T) {
	prm := testParams()
	res := PostPenetration(10, 4000, 40, 600, 500, 100, prm.Erosion)

	require.True(t, res.Hypervelocity)
	hv := prm.Erosion.HyperBase + prm.Erosion.HyperSlope*prm.Erosion.Hypervelocity/4000
	assert.InDelta(t, 10*hv, res.Mass, 1e-9)
	assert.InDelta(t, 10-res.Mass, res.AblatedMass, 1e-9)
	assert.LessOrEqual(t, res.Speed, 4000.0)
}

func TestPostPenetration_ConservesEnergyBound(t *testing.T) {
	prm := testParams()
	for _, v := range []float64{300, 900, 1300, 2000, 2600, 5000} {
		for _, th := range []float64{10, 50, 99} {
			res := PostPenetration(5, v, 50, 500, 100, th, prm.Erosion)
			assert.LessOrEqual(t, res.Mass, 5.0)
			assert.GreaterOrEqual(t, res.Mass, 0.0)
			assert.LessOrEqual(t, res.Speed, v)
			assert.LessOrEqual(t, KineticEnergy(res.Mass, res.Speed), KineticEnergy(5, v)+1e-6)
		}
	}
}

func TestDistanceErosionFactor(t *testing.T) {
	prm := testParams()
	e := prm.Erosion
	// Within one caliber nothing is lost
	assert.Equal(t, 1.0, DistanceErosionFactor(0.02, 30, e))
	// At one normalization length past a caliber half the mass remains
	norm := e.JetFormationA * e.JetFormationB * 30
	assert.InDelta(t, 0.5, DistanceErosionFactor((30+norm)/1000, 30, e), 1e-12)

	prev := 1.0
	for d := 0.0; d < 50; d += 0.5 {
		f := DistanceErosionFactor(d, 30, e)
		assert.LessOrEqual(t, f, prev)
		assert.Greater(t, f, 0.0)
		prev = f
	}
}

func TestDecayPendingMass(t *testing.T) {
	tests := []struct {
		name     string
		pending  float64
		elapsed  float64
		tau      float64
		wantLost float64
		wantRest float64
	}{
		{"nothing pending", 0, 1, 1, 0, 0},
		{"no time passed", 2, 0, 1, 0, 2},
		{"half way", 2, 0.5, 1, 1, 1},
		{"fully relaxed", 2, 3, 1, 2, 0},
		{"zero tau sheds at once", 2, 0.1, 0, 2, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lost, rest := DecayPendingMass(tc.pending, tc.elapsed, tc.tau)
			assert.InDelta(t, tc.wantLost, lost, 1e-12)
			assert.InDelta(t, tc.wantRest, rest, 1e-12)
		})
	}
}

func TestApplyInterHitErosion_NeverNegative(t *testing.T) {
	prm := testParams()
	p := &components.Projectile{
		Caliber:  30,
		Mass:     0.2,
		Velocity: r3Vec(600, 0, 0),
		Erosion: components.ErosionState{
			HasHit:       true,
			DeltaMass:    5,
			TimeSinceHit: 10,
		},
	}
	lost := ApplyInterHitErosion(p, prm.Erosion)
	assert.Equal(t, 0.0, p.Mass)
	assert.InDelta(t, 0.2, lost, 1e-12)
}

func TestApplyInterHitErosion_HypervelocityUsesDistance(t *testing.T) {
	prm := testParams()
	p := &components.Projectile{
		Caliber:  30,
		Mass:     1,
		Length:   300,
		Velocity: r3Vec(800, 0, 0),
		Erosion: components.ErosionState{
			HasHit:           true,
			Hypervelocity:    true,
			DistanceSinceHit: 10,
		},
	}
	want := DistanceErosionFactor(10, 30, prm.Erosion)
	ApplyInterHitErosion(p, prm.Erosion)
	assert.InDelta(t, want, p.Mass, 1e-12)
	assert.InDelta(t, 300*want, p.Length, 1e-9)
	assert.Zero(t, p.Erosion.DistanceSinceHit)
}

func TestApplyInterHitErosion_FirstHitUntouched(t *testing.T) {
	prm := testParams()
	p := &components.Projectile{Caliber: 30, Mass: 1, Velocity: r3Vec(3000, 0, 0)}
	assert.Zero(t, ApplyInterHitErosion(p, prm.Erosion))
	assert.Equal(t, 1.0, p.Mass)
}
