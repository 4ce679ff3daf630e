package main

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/ordnance/config"
	"github.com/pthm-cable/ordnance/systems"
)

//go:embed reference.csv
var referenceCSV []byte

// Reference is one measured penetration: a round fired at a normal plate of
// the given material, defeating Penetration mm of it.
type Reference struct {
	Name        string  `csv:"name"`
	Caliber     float64 `csv:"caliber"` // mm
	Mass        float64 `csv:"mass"`    // kg
	Speed       float64 `csv:"speed"`   // m/s
	APMod       float64 `csv:"ap_mod"`
	TNTMass     float64 `csv:"tnt_mass"` // kg
	Sabot       bool    `csv:"sabot"`
	Material    string  `csv:"material"`
	Penetration float64 `csv:"penetration"` // mm
}

// LoadReferences reads a reference table; an empty path uses the built-in one.
func LoadReferences(path string) ([]Reference, error) {
	var refs []Reference
	if path == "" {
		if err := gocsv.UnmarshalBytes(referenceCSV, &refs); err != nil {
			return nil, fmt.Errorf("parsing built-in references: %w", err)
		}
		return refs, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, &refs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return refs, nil
}

// missPenalty is the squared log error charged for a zero prediction.
const missPenalty = 100.0

// FitnessEvaluator scores parameter vectors against a reference table.
type FitnessEvaluator struct {
	params *ParamVector
	base   *config.Config
	refs   []Reference
}

// NewFitnessEvaluator creates a new evaluator. Every reference must name a
// configured material and a positive penetration.
func NewFitnessEvaluator(params *ParamVector, refs []Reference, baseCfg *config.Config) (*FitnessEvaluator, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("no reference rows")
	}
	for _, r := range refs {
		if _, ok := baseCfg.Materials[r.Material]; !ok {
			return nil, fmt.Errorf("reference %q: unknown material %q", r.Name, r.Material)
		}
		if r.Penetration <= 0 {
			return nil, fmt.Errorf("reference %q: penetration must be positive", r.Name)
		}
	}
	return &FitnessEvaluator{params: params, base: baseCfg, refs: refs}, nil
}

// Evaluate returns the mean squared log error over the table (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := *fe.base
	fe.params.ApplyToConfig(&cfg, x)
	prm := systems.NewParams(&cfg)

	var sum float64
	for _, r := range fe.refs {
		pred := Predict(r, cfg.Materials[r.Material], &prm)
		if pred <= 0 {
			sum += missPenalty
			continue
		}
		e := math.Log(pred / r.Penetration)
		sum += e * e
	}
	return sum / float64(len(fe.refs))
}

// Predict runs the penetration model for one reference shot at normal
// incidence. Material-specific curves are ignored so the global ones are fitted.
func Predict(r Reference, m config.MaterialConfig, prm *systems.Params) float64 {
	sabot := r.Sabot || systems.IsSabot(r.Mass, r.Caliber, prm)
	strength := systems.ArmorStrength(r.Caliber, r.Penetration, m.Ductility, m.Strength, m.Density, m.SafeTemperature)
	vFactor := m.VFactor
	if vFactor == 0 {
		vFactor = prm.VFactor
	}
	apMod := r.APMod
	if apMod <= 0 {
		apMod = 1
	}

	caliber := r.Caliber
	if !sabot {
		he := systems.HERatio(r.TNTMass, r.Mass, prm)
		caliber = systems.CalculateDeformation(strength, systems.KineticEnergy(r.Mass, r.Speed), r.Caliber, r.Speed, m.Hardness, m.Density, he, apMod)
	}

	mu := prm.Mu
	if sabot {
		mu = prm.SabotMu
	}
	return systems.CalculatePenetration(systems.PenetrationInput{
		Caliber:  caliber,
		Speed:    r.Speed,
		Mass:     r.Mass,
		APMod:    apMod,
		Strength: strength,
		VFactor:  vFactor,
		Mu:       mu,
		Sabot:    sabot,
	}, prm)
}
