package main

import (
	"log/slog"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/sim"
	"github.com/nfagan/slime-mold/telemetry"
)

// recorder turns simulation steps into windowed stats for the log and CSV output.
type recorder struct {
	sim       *sim.Simulation
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	threshold float32
	logStats  bool

	cells    []float64
	lastIter uint64
}

func newRecorder(s *sim.Simulation, cfg config.TelemetryConfig, output *telemetry.OutputManager, logStats bool) *recorder {
	return &recorder{
		sim:       s,
		collector: telemetry.NewCollector(cfg.StatsInterval),
		output:    output,
		threshold: cfg.CoverageThreshold,
		logStats:  logStats,
	}
}

// observe records the last step and flushes a window when one is complete.
func (r *recorder) observe() {
	step := r.sim.LastStep
	if step.Iteration == 0 {
		return
	}
	if step.Iteration <= r.lastIter {
		// Reinitialized: the iteration count started over.
		slog.Debug("simulation restarted, resetting stats window", "iteration", step.Iteration, "previous", r.lastIter)
		r.collector.Reset(step.Iteration - 1)
	}
	r.lastIter = step.Iteration
	r.collector.RecordStep(float32(step.Elapsed.Seconds()*1e3), step.PerturbFired)

	if !r.collector.ShouldFlush(step.Iteration) {
		return
	}

	summary := r.sim.Summary(r.threshold, r.cells)
	r.cells = summary.CellIntensities
	stats := r.collector.Flush(step.Iteration, summary)
	perfStats := r.sim.Perf().Stats()

	if r.logStats {
		slog.Info("stats", "window", stats)
		slog.Info("perf", "window", perfStats)
	}

	if r.output != nil {
		if err := r.output.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := r.output.WritePerf(perfStats, stats.WindowEnd); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
