package systems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basePen(prm *Params) PenetrationInput {
	return PenetrationInput{
		Caliber:  30,
		Speed:    900,
		Mass:     0.4,
		APMod:    1,
		Strength: ArmorStrength(30, 40, 0.15, 940, 7850, 2500),
		VFactor:  prm.VFactor,
		Mu:       prm.Mu,
	}
}

// ---------- Monotonicity ----------

func TestCalculatePenetration_NonDecreasingInSpeed(t *testing.T) {
	prm := testParams()
	in := basePen(prm)
	prev := 0.0
	for v := 100.0; v <= 3000; v += 100 {
		in.Speed = v
		p := CalculatePenetration(in, prm)
		assert.GreaterOrEqual(t, p, prev, "speed %.0f", v)
		prev = p
	}
}

func TestCalculatePenetration_NonDecreasingInMass(t *testing.T) {
	prm := testParams()
	in := basePen(prm)
	prev := 0.0
	for m := 0.1; m <= 10; m += 0.1 {
		in.Mass = m
		p := CalculatePenetration(in, prm)
		assert.GreaterOrEqual(t, p, prev, "mass %.1f", m)
		prev = p
	}
}

func TestCalculatePenetration_NonIncreasingInCaliberAtFixedMass(t *testing.T) {
	prm := testParams()
	in := basePen(prm)
	in.Mass = 5
	in.Speed = 800
	in.Strength = 900
	prev := math.Inf(1)
	for cal := 20.0; cal <= 60; cal += 5 {
		in.Caliber = cal
		require.GreaterOrEqual(t, ProjectileLength(in.Mass, cal, false, prm)/cal, 1.0)
		p := CalculatePenetration(in, prm)
		assert.LessOrEqual(t, p, prev, "caliber %.0f", cal)
		prev = p
	}
}

func TestCalculatePenetration_ZeroInputs(t *testing.T) {
	prm := testParams()
	in := basePen(prm)
	in.Speed = 0
	assert.Zero(t, CalculatePenetration(in, prm))
	in = basePen(prm)
	in.Mass = 0
	assert.Zero(t, CalculatePenetration(in, prm))
}

func TestPenetrationFactor_NonIncreasingInThickness(t *testing.T) {
	prev := math.Inf(1)
	for th := 1.0; th <= 500; th += 7 {
		pf := PenetrationFactor(250, th, 1)
		assert.LessOrEqual(t, pf, prev)
		prev = pf
	}
}

func TestProjectedThickness_GrowsWithObliquity(t *testing.T) {
	prm := testParams()
	prev := 0.0
	for a := 0.0; a <= 90; a += 5 {
		th := ProjectedThickness(100, a, prm.MinCosine)
		assert.GreaterOrEqual(t, th, prev)
		prev = th
	}
	assert.InDelta(t, 100, ProjectedThickness(100, 0, prm.MinCosine), 1e-9)
	assert.InDelta(t, 200, ProjectedThickness(100, 60, prm.MinCosine), 1e-9)
	// Floor keeps grazing hits finite
	assert.InDelta(t, 100/prm.MinCosine, ProjectedThickness(100, 90, prm.MinCosine), 1e-9)
}

func TestPenetrationFactor_ReactiveMultiplier(t *testing.T) {
	assert.InDelta(t, 2.0, PenetrationFactor(200, 100, 1), 1e-12)
	assert.InDelta(t, 1.0, PenetrationFactor(200, 100, 2), 1e-12)
	assert.True(t, math.IsInf(PenetrationFactor(10, 0, 1), 1))
}

// ---------- Material terms ----------

func TestEffectiveVFactor_NeverBelowBaseline(t *testing.T) {
	tests := []struct {
		name      string
		temp      float64
		safe      float64
		softening float64
		want      float64
	}{
		{"cold", 300, 2500, 0.5, 1},
		{"at limit", 2500, 2500, 0.5, 1},
		{"hot", 3750, 2500, 0.5, 1.25},
		{"negative softening ignored", 5000, 2500, -1, 1},
		{"no safe temperature", 9000, 0, 1, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectiveVFactor(1, tc.temp, tc.safe, tc.softening)
			assert.InDelta(t, tc.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 1.0)
		})
	}
}

func TestArmorStrength_Steel(t *testing.T) {
	s := ArmorStrength(120, 200, 0.15, 940, 7850, 2500)
	assert.InDelta(t, 1054.37, s, 0.01)

	// Thicker plates relative to caliber are confined harder
	assert.Greater(t, ArmorStrength(20, 200, 0.15, 940, 7850, 2500), ArmorStrength(200, 20, 0.15, 940, 7850, 2500))
}

func TestCalculateDeformation_Bounds(t *testing.T) {
	s := ArmorStrength(20, 10, 0.15, 940, 7850, 2500)
	for _, v := range []float64{100, 500, 1000, 2000, 4000} {
		c := CalculateDeformation(s, KineticEnergy(0.1, v), 20, v, 300, 7850, 0.95, 0.1)
		assert.GreaterOrEqual(t, c, 20.0)
		assert.LessOrEqual(t, c, 40.0)
	}
	assert.Equal(t, 20.0, CalculateDeformation(s, 0, 20, 0, 300, 7850, 0.1, 1))
}

func TestHERatio_Clamped(t *testing.T) {
	prm := testParams()
	assert.Equal(t, prm.HERatioMin, HERatio(0, 1, prm))
	assert.Equal(t, prm.HERatioMax, HERatio(5, 1, prm))
	assert.InDelta(t, 0.1, HERatio(0.01, 0.1, prm), 1e-12)
}

func TestIsSabot(t *testing.T) {
	prm := testParams()
	assert.True(t, IsSabot(60, 120, prm))
	assert.False(t, IsSabot(43, 155, prm))
	assert.False(t, IsSabot(1, 0, prm))
}

// ---------- Reference engagement ----------

func TestPenetration_LongRodAgainstSteel(t *testing.T) {
	prm := testParams()
	armor := steelPlate(200)
	length := ProjectileLength(60, 120, true, prm)
	assert.InDelta(t, 289.2, length, 0.1)

	depth := CalculatePenetration(PenetrationInput{
		Caliber:  120,
		Speed:    1500,
		Mass:     60,
		APMod:    1,
		Strength: ArmorStrength(120, armor.Thickness, armor.Ductility, armor.Strength, armor.Density, armor.SafeTemperature),
		VFactor:  prm.VFactor,
		Mu:       prm.SabotMu,
		Sabot:    true,
	}, prm)
	assert.InDelta(t, 249.26, depth, 0.05)

	pf := PenetrationFactor(depth, ProjectedThickness(200, 0, prm.MinCosine), 1)
	assert.InDelta(t, 1.246, pf, 0.001)
	assert.True(t, Penetrates(pf))
}

func TestPenetrates_Boundary(t *testing.T) {
	assert.True(t, Penetrates(1.0))
	assert.False(t, Penetrates(math.Nextafter(1, 0)))
	assert.True(t, Penetrates(PenetrationFactor(250, 250, 1)))
}
