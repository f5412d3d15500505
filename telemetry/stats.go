package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated field statistics for one stats window.
type WindowStats struct {
	WindowStart uint64 `csv:"-"`
	WindowEnd   uint64 `csv:"window_end"`
	Agents      int    `csv:"agents"`

	// Field state at window end
	Mass     float64 `csv:"mass"`
	MeanR    float64 `csv:"mean_r"`
	MeanG    float64 `csv:"mean_g"`
	MeanB    float64 `csv:"mean_b"`
	Coverage float64 `csv:"coverage"`

	// Per-cell intensity distribution (channel mean)
	IntensityP10 float64 `csv:"intensity_p10"`
	IntensityP50 float64 `csv:"intensity_p50"`
	IntensityP90 float64 `csv:"intensity_p90"`

	// Events during window
	PerturbEvents int  `csv:"perturb_events"`
	PerturbActive bool `csv:"perturb_active"`

	StepMSMean float64 `csv:"step_ms_mean"`
	StepMSMax  float64 `csv:"step_ms_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// IntensityPercentiles sorts values in place and returns the 10th, 50th and 90th
// percentiles.
func IntensityPercentiles(values []float64) (p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sort.Float64s(values)
	return Percentile(values, 0.10), Percentile(values, 0.50), Percentile(values, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStart),
		slog.Uint64("window_end", s.WindowEnd),
		slog.Int("agents", s.Agents),
		slog.Float64("mass", s.Mass),
		slog.Float64("mean_r", s.MeanR),
		slog.Float64("mean_g", s.MeanG),
		slog.Float64("mean_b", s.MeanB),
		slog.Float64("coverage", s.Coverage),
		slog.Float64("intensity_p50", s.IntensityP50),
		slog.Float64("intensity_p90", s.IntensityP90),
		slog.Int("perturb_events", s.PerturbEvents),
		slog.Bool("perturb_active", s.PerturbActive),
		slog.Float64("step_ms_mean", s.StepMSMean),
	)
}
