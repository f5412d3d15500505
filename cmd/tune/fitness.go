package main

import (
	"math"
	"sync"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/sim"
	"github.com/nfagan/slime-mold/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []int64
	baseConfig config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: *baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = computeQuality(fe.runSimulation(x, s))
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, q := range results {
		total += q
	}
	quality := total / float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -quality
}

// runSimulation executes one headless run and returns its window stats.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.WindowStats {
	cfg := fe.baseConfig.Sim
	fe.params.ApplyToConfig(&cfg, x)
	cfg.Seed = seed
	cfg.Workers = 1 // seeds already run in parallel

	s := sim.New(cfg)
	defer s.Close()
	s.Initialize()

	collector := telemetry.NewCollector(fe.baseConfig.Telemetry.StatsInterval)
	threshold := fe.baseConfig.Telemetry.CoverageThreshold

	var windows []telemetry.WindowStats
	var cells []float64
	for i := 0; i < fe.ticks; i++ {
		ms := s.Update()
		collector.RecordStep(ms, s.LastStep.PerturbFired)
		if it := s.Iteration(); collector.ShouldFlush(it) {
			summary := s.Summary(threshold, cells)
			cells = summary.CellIntensities
			windows = append(windows, collector.Flush(it, summary))
		}
	}
	return windows
}

// Quality component weights.
const (
	qualityWeightContrast  = 0.5
	qualityWeightCoverage  = 0.3
	qualityWeightStability = 0.2

	qualityWarmupWindows = 1    // skip first N windows
	targetCoverage       = 0.35 // network covers about a third of the field
	coverageTolerance    = 0.2
)

// computeQuality scores a run in [0, 1]. High scores mean sharp trails over a dark
// background that cover a moderate share of the field and hold steady over time.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var contrastSum, coverageSum float64
	masses := make([]float64, 0, len(valid))
	for _, w := range valid {
		contrastSum += clamp01(w.IntensityP90 - w.IntensityP10)
		d := (w.Coverage - targetCoverage) / coverageTolerance
		coverageSum += math.Exp(-d * d)
		masses = append(masses, w.Mass)
	}
	n := float64(len(valid))

	stability := 0.0
	if len(masses) >= 2 {
		c := cv(masses)
		stability = math.Exp(-c * c)
	}

	quality := qualityWeightContrast*contrastSum/n +
		qualityWeightCoverage*coverageSum/n +
		qualityWeightStability*stability
	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
