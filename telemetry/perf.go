package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseMotion  = "motion"
	PhaseDeposit = "deposit"
	PhaseDiffuse = "diffuse"
	PhasePerturb = "perturb"
	PhaseSignal  = "signal"
	PhaseDisplay = "display"
)

// Phases lists the step phases in execution order.
var Phases = []string{
	PhaseMotion, PhaseDeposit, PhaseDiffuse, PhasePerturb, PhaseSignal, PhaseDisplay,
}

// PerfSample holds timing data for a single step.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks per-phase step timing over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of steps to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration, len(Phases)),
	}
}

// StartTick begins timing a new step.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration, len(Phases))
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and starts timing the next one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current step and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Average duration and share of step time per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var total, minTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration, len(Phases))

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.TickDuration
		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	n := time.Duration(p.sampleCount)
	avg := total / n

	phaseAvg := make(map[string]time.Duration, len(phaseSum))
	phasePct := make(map[string]float64, len(phaseSum))
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / n
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var tps float64
	if avg > 0 {
		tps = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgTickDuration: avg,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TicksPerSecond:  tps,
		FrameDuration:   p.frameDuration,
		FPS:             fps,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_step_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_step_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("steps_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd   uint64  `csv:"window_end"`
	AvgStepUS   int64   `csv:"avg_step_us"`
	MinStepUS   int64   `csv:"min_step_us"`
	MaxStepUS   int64   `csv:"max_step_us"`
	StepsPerSec float64 `csv:"steps_per_sec"`
	FPS         float64 `csv:"fps"`
	MotionPct   float64 `csv:"motion_pct"`
	DepositPct  float64 `csv:"deposit_pct"`
	DiffusePct  float64 `csv:"diffuse_pct"`
	PerturbPct  float64 `csv:"perturb_pct"`
	SignalPct   float64 `csv:"signal_pct"`
	DisplayPct  float64 `csv:"display_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:   windowEnd,
		AvgStepUS:   s.AvgTickDuration.Microseconds(),
		MinStepUS:   s.MinTickDuration.Microseconds(),
		MaxStepUS:   s.MaxTickDuration.Microseconds(),
		StepsPerSec: s.TicksPerSecond,
		FPS:         s.FPS,
		MotionPct:   s.PhasePct[PhaseMotion],
		DepositPct:  s.PhasePct[PhaseDeposit],
		DiffusePct:  s.PhasePct[PhaseDiffuse],
		PerturbPct:  s.PhasePct[PhasePerturb],
		SignalPct:   s.PhasePct[PhaseSignal],
		DisplayPct:  s.PhasePct[PhaseDisplay],
	}
}
