// Package main runs a CMA-ES search over diffusion and motion parameters for
// configurations that form sharp, stable trail networks.
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

	"github.com/nfagan/slime-mold/config"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval           int     `csv:"eval"`
	Fitness        float64 `csv:"fitness"`
	Decay          float64 `csv:"decay"`
	DiffuseSpeed   float64 `csv:"diffuse_speed"`
	TurnSpeedPower float64 `csv:"turn_speed_power"`
	SpeedPower     float64 `csv:"speed_power"`
}

func newEvalRecord(eval int, fitness float64, v []float64) evalRecord {
	return evalRecord{
		Eval:           eval,
		Fitness:        fitness,
		Decay:          v[0],
		DiffuseSpeed:   v[1],
		TurnSpeedPower: v[2],
		SpeedPower:     v[3],
	}
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 0, "Simulation steps per run (0 = use config)")
	seeds := flag.Int("seeds", 0, "Number of seeds per evaluation (0 = use config)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	population := flag.Int("population", -1, "CMA-ES population size (0 = auto, -1 = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *ticks <= 0 {
		*ticks = baseCfg.Tune.Ticks
	}
	if *seeds <= 0 {
		*seeds = max(baseCfg.Tune.Seeds, 1)
	}
	if *maxEvals <= 0 {
		*maxEvals = baseCfg.Tune.MaxEvals
	}
	if *population < 0 {
		*population = baseCfg.Tune.Population
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *ticks, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(&baseCfg.Sim))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	headerWritten := false

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		rows := []evalRecord{newEvalRecord(evalCount, fitness, clamped)}
		var werr error
		if headerWritten {
			werr = gocsv.MarshalWithoutHeaders(rows, logFile)
		} else {
			werr = gocsv.Marshal(rows, logFile)
			headerWritten = true
		}
		if werr != nil {
			log.Printf("failed to write log row: %v", werr)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: quality=%.3f (best=%.3f) decay=%.4f diffuse=%.3f turn=%+.0f speed=%+.0f | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, evaluator.LastQuality(), -bestFitness,
			clamped[0], clamped[1], clamped[2], clamped[3],
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d\n", *seeds, *ticks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best quality: %.4f\n", -bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	params.ApplyToConfig(&baseCfg.Sim, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := baseCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
