package main

import (
	"github.com/pthm-cable/ordnance/config"
)

// ParamSpec defines a single fitted parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of all fitted parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of fitted parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Full-caliber curve
			{Name: "mu_0", Path: "penetration.mu[0]", Min: 0.2, Max: 2.0},
			{Name: "mu_1", Path: "penetration.mu[1]", Min: 0.1, Max: 3.0},
			{Name: "mu_2", Path: "penetration.mu[2]", Min: 0.1, Max: 4.0},
			// Sabot curve
			{Name: "sabot_mu_0", Path: "penetration.sabot_mu[0]", Min: 0.2, Max: 2.0},
			{Name: "sabot_mu_1", Path: "penetration.sabot_mu[1]", Min: 0.1, Max: 3.0},
			{Name: "sabot_mu_2", Path: "penetration.sabot_mu[2]", Min: 0.1, Max: 4.0},
			// Velocity saturation
			{Name: "v_factor", Path: "penetration.v_factor", Min: 1e-4, Max: 5e-3},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Penetration.Mu = [3]float64{c[0], c[1], c[2]}
	cfg.Penetration.SabotMu = [3]float64{c[3], c[4], c[5]}
	cfg.Penetration.VFactor = c[6]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	p := cfg.Penetration
	return []float64{
		p.Mu[0], p.Mu[1], p.Mu[2],
		p.SabotMu[0], p.SabotMu[1], p.SabotMu[2],
		p.VFactor,
	}
}
