package telemetry

// FieldSummary is the field state handed to Flush. It mirrors field.Stats without
// importing the field package.
type FieldSummary struct {
	Mass                float64
	MeanR, MeanG, MeanB float64
	Coverage            float64
	CellIntensities     []float64 // sorted in place by Flush
	PerturbActive       bool
	Agents              int
}

// Collector accumulates step events within fixed-length windows and produces
// WindowStats.
type Collector struct {
	windowSteps uint64
	windowStart uint64

	// Counters for the current window
	steps         int
	perturbEvents int
	stepMSSum     float64
	stepMSMax     float64
}

// NewCollector creates a collector that flushes every windowSteps steps.
func NewCollector(windowSteps int) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{windowSteps: uint64(windowSteps)}
}

// RecordStep records the timing of one step and whether it started a perturbation.
func (c *Collector) RecordStep(stepMS float32, perturbFired bool) {
	c.steps++
	c.stepMSSum += float64(stepMS)
	c.stepMSMax = max(c.stepMSMax, float64(stepMS))
	if perturbFired {
		c.perturbEvents++
	}
}

// ShouldFlush reports whether the window ending at iteration is complete. An
// iteration before the window start never completes it.
func (c *Collector) ShouldFlush(iteration uint64) bool {
	return iteration >= c.windowStart && iteration-c.windowStart >= c.windowSteps
}

// Reset drops the counters of the current window and starts a new one at
// iteration. Call it when the simulation restarts its iteration count.
func (c *Collector) Reset(iteration uint64) {
	c.windowStart = iteration
	c.steps = 0
	c.perturbEvents = 0
	c.stepMSSum = 0
	c.stepMSMax = 0
}

// WindowStart returns the iteration the current window began at.
func (c *Collector) WindowStart() uint64 {
	return c.windowStart
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(iteration uint64, f FieldSummary) WindowStats {
	p10, p50, p90 := IntensityPercentiles(f.CellIntensities)

	var meanMS float64
	if c.steps > 0 {
		meanMS = c.stepMSSum / float64(c.steps)
	}

	stats := WindowStats{
		WindowStart:   c.windowStart,
		WindowEnd:     iteration,
		Agents:        f.Agents,
		Mass:          f.Mass,
		MeanR:         f.MeanR,
		MeanG:         f.MeanG,
		MeanB:         f.MeanB,
		Coverage:      f.Coverage,
		IntensityP10:  p10,
		IntensityP50:  p50,
		IntensityP90:  p90,
		PerturbEvents: c.perturbEvents,
		PerturbActive: f.PerturbActive,
		StepMSMean:    meanMS,
		StepMSMax:     c.stepMSMax,
	}

	c.Reset(iteration)

	return stats
}

// WindowSteps returns the number of steps per window.
func (c *Collector) WindowSteps() uint64 {
	return c.windowSteps
}
