// Package main fits the penetration curve parameters so the model reproduces
// a reference table of measured penetrations.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/ordnance/config"
)

// evalRecord is one row of calibrate_log.csv.
type evalRecord struct {
	Eval     int     `csv:"eval"`
	Fitness  float64 `csv:"fitness"`
	Mu0      float64 `csv:"mu_0"`
	Mu1      float64 `csv:"mu_1"`
	Mu2      float64 `csv:"mu_2"`
	SabotMu0 float64 `csv:"sabot_mu_0"`
	SabotMu1 float64 `csv:"sabot_mu_1"`
	SabotMu2 float64 `csv:"sabot_mu_2"`
	VFactor  float64 `csv:"v_factor"`
}

func newEvalRecord(eval int, fitness float64, v []float64) evalRecord {
	return evalRecord{
		Eval: eval, Fitness: fitness,
		Mu0: v[0], Mu1: v[1], Mu2: v[2],
		SabotMu0: v[3], SabotMu1: v[4], SabotMu2: v[5],
		VFactor: v[6],
	}
}

// calibrate minimizes the evaluator's fitness with Nelder-Mead in normalized
// space, starting from start. onEval sees every evaluation with clamped values.
func calibrate(params *ParamVector, fe *FitnessEvaluator, start []float64, maxEvals int, onEval func(fitness float64, clamped []float64)) (*optimize.Result, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := fe.Evaluate(raw)
			if onEval != nil {
				onEval(fitness, params.Clamp(raw))
			}
			return fitness
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
	}
	method := &optimize.NelderMead{}
	return optimize.Minimize(problem, params.Normalize(start), settings, method)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	refPath := flag.String("reference", "", "Reference penetration CSV (empty = built-in table)")
	maxEvals := flag.Int("max-evals", 2000, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	refs, err := LoadReferences(*refPath)
	if err != nil {
		log.Fatalf("failed to load references: %v", err)
	}

	params := NewParamVector()
	evaluator, err := NewFitnessEvaluator(params, refs, baseCfg)
	if err != nil {
		log.Fatal(err)
	}

	logFile, err := os.Create(filepath.Join(*outputDir, "calibrate_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	start := params.ExtractFromConfig(baseCfg)
	initial := evaluator.Evaluate(start)

	evalCount := 0
	bestFitness := initial
	bestParams := params.Clamp(start)
	startTime := time.Now()
	onEval := func(fitness float64, clamped []float64) {
		evalCount++
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		rec := []evalRecord{newEvalRecord(evalCount, fitness, clamped)}
		var werr error
		if evalCount == 1 {
			werr = gocsv.Marshal(rec, logFile)
		} else {
			werr = gocsv.MarshalWithoutHeaders(rec, logFile)
		}
		if werr != nil {
			log.Printf("failed to log eval %d: %v", evalCount, werr)
		}

		if evalCount%100 == 0 {
			fmt.Printf("Eval %d/%d: fitness=%.6f (best=%.6f) | elapsed: %s\n",
				evalCount, *maxEvals, fitness, bestFitness, time.Since(startTime).Round(time.Millisecond))
		}
	}

	fmt.Printf("Calibrating %d parameters against %d references, max_evals=%d\n",
		params.Dim(), len(refs), *maxEvals)
	fmt.Printf("Initial fitness: %.6f\n", initial)

	if _, err := calibrate(params, evaluator, start, *maxEvals, onEval); err != nil {
		log.Printf("optimization ended: %v", err)
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("Best fitness: %.6f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.9g\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
