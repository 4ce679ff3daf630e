package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/ordnance/config"
	"github.com/pthm-cable/ordnance/systems"
)

// ---------- Parameters ----------

func TestParamVector_RoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	raw := pv.ExtractFromConfig(cfg)
	require.Len(t, raw, pv.Dim())

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		assert.InDelta(t, raw[i], back[i], 1e-12, pv.Specs[i].Name)
	}
}

func TestParamVector_Clamp(t *testing.T) {
	pv := NewParamVector()
	v := make([]float64, pv.Dim())
	for i := range v {
		v[i] = -1
	}
	v[0] = 100
	c := pv.Clamp(v)
	assert.Equal(t, pv.Specs[0].Max, c[0])
	for i := 1; i < len(c); i++ {
		assert.Equal(t, pv.Specs[i].Min, c[i])
	}
}

func TestParamVector_ApplyExtract(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	want := []float64{0.7, 1.1, 1.9, 0.9, 1.0, 1.5, 9e-4}
	pv.ApplyToConfig(cfg, want)
	assert.Equal(t, want, pv.ExtractFromConfig(cfg))
	assert.Equal(t, [3]float64{0.9, 1.0, 1.5}, cfg.Penetration.SabotMu)
}

// ---------- References ----------

func TestLoadReferences_BuiltIn(t *testing.T) {
	refs, err := LoadReferences("")
	require.NoError(t, err)
	require.Len(t, refs, 10)
	assert.Equal(t, "12.7mm_ap", refs[0].Name)
	assert.Equal(t, 12.7, refs[0].Caliber)
	assert.False(t, refs[0].Sabot)
	assert.True(t, refs[7].Sabot)
	assert.Equal(t, "aluminium", refs[9].Material)

	_, err = NewFitnessEvaluator(NewParamVector(), refs, config.Default())
	assert.NoError(t, err)
}

func TestLoadReferences_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.csv")
	data := "name,caliber,mass,speed,ap_mod,tnt_mass,sabot,material,penetration\n" +
		"test,25,0.2,1000,1,0,false,steel,40\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	refs, err := LoadReferences(path)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, Reference{
		Name: "test", Caliber: 25, Mass: 0.2, Speed: 1000, APMod: 1,
		Material: "steel", Penetration: 40,
	}, refs[0])

	_, err = LoadReferences(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNewFitnessEvaluator_Rejects(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	tests := []struct {
		name string
		refs []Reference
	}{
		{"empty", nil},
		{"unknown material", []Reference{{Name: "a", Caliber: 20, Mass: 0.1, Speed: 900, Material: "cheese", Penetration: 30}}},
		{"zero penetration", []Reference{{Name: "a", Caliber: 20, Mass: 0.1, Speed: 900, Material: "steel"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFitnessEvaluator(pv, tt.refs, cfg)
			assert.Error(t, err)
		})
	}
}

// ---------- Fitness ----------

// syntheticReferences makes a table the default parameters reproduce. The
// plate thickness feeds back into armor strength, so iterate to a fixed point.
func syntheticReferences(cfg *config.Config) []Reference {
	prm := systems.NewParams(cfg)
	refs := []Reference{
		{Name: "small", Caliber: 20, Mass: 0.11, Speed: 1030, APMod: 1, Material: "steel", Penetration: 30},
		{Name: "medium", Caliber: 76, Mass: 7, Speed: 790, APMod: 1, Material: "steel", Penetration: 100},
		{Name: "he", Caliber: 88, Mass: 10, Speed: 770, APMod: 1, TNTMass: 0.06, Material: "steel", Penetration: 120},
		{Name: "rod", Caliber: 120, Mass: 60, Speed: 1500, APMod: 1, Sabot: true, Material: "steel", Penetration: 500},
		{Name: "light", Caliber: 30, Mass: 0.24, Speed: 1100, APMod: 1.5, Material: "aluminium", Penetration: 80},
	}
	for i := range refs {
		for range 100 {
			refs[i].Penetration = Predict(refs[i], cfg.Materials[refs[i].Material], &prm)
		}
	}
	return refs
}

func TestEvaluate_SelfConsistent(t *testing.T) {
	cfg := config.Default()
	pv := NewParamVector()
	fe, err := NewFitnessEvaluator(pv, syntheticReferences(cfg), cfg)
	require.NoError(t, err)

	defaults := pv.ExtractFromConfig(cfg)
	assert.InDelta(t, 0, fe.Evaluate(defaults), 1e-6)

	off := append([]float64(nil), defaults...)
	off[0] *= 1.5
	off[3] *= 0.6
	assert.Greater(t, fe.Evaluate(off), 0.01)

	// Evaluate never touches the base config
	assert.Equal(t, defaults, pv.ExtractFromConfig(cfg))
}

func TestPredict_CurveSelection(t *testing.T) {
	cfg := config.Default()
	steel := cfg.Materials["steel"]
	rod := Reference{Caliber: 120, Mass: 60, Speed: 1500, Sabot: true, Penetration: 500}
	slug := Reference{Caliber: 76, Mass: 7, Speed: 790, Penetration: 100}

	base := systems.NewParams(cfg)
	tweaked := base
	tweaked.SabotMu[0] *= 2

	assert.InDelta(t, 2*Predict(rod, steel, &base), Predict(rod, steel, &tweaked), 1e-9)
	assert.Equal(t, Predict(slug, steel, &base), Predict(slug, steel, &tweaked))
	assert.Greater(t, Predict(slug, steel, &base), 0.0)
}

func TestCalibrate_Improves(t *testing.T) {
	cfg := config.Default()
	pv := NewParamVector()
	fe, err := NewFitnessEvaluator(pv, syntheticReferences(cfg), cfg)
	require.NoError(t, err)

	start := pv.ExtractFromConfig(cfg)
	start[0] *= 1.3
	start[5] *= 0.8
	initial := fe.Evaluate(start)

	evals := 0
	res, err := calibrate(pv, fe, start, 400, func(float64, []float64) { evals++ })
	if err != nil {
		t.Logf("optimizer stopped: %v", err)
	}
	require.NotNil(t, res)
	assert.Greater(t, evals, 0)
	assert.Less(t, res.F, initial)
}
