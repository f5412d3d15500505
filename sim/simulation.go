// Package sim runs the slime mold agent simulation over a field.
//
// A Simulation owns its agents and every field buffer. Update advances one step in
// a fixed order: motion, deposit, diffusion, perturbation seeding and scheduling,
// signal, perturbation, optional channel averaging and finally conversion to the
// RGBA display buffer. Nothing here is safe for concurrent use with Update.
package sim

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/field"
	"github.com/nfagan/slime-mold/telemetry"
	"github.com/nfagan/slime-mold/vmath"
)

// StepReport describes the most recent Update.
type StepReport struct {
	Iteration      uint64
	PerturbFired   bool         // an event started this step
	PerturbApplied bool         // the pattern was added this step
	PerturbState   PerturbState // Active whenever the pattern was applied
	Elapsed        time.Duration
}

// pendingResize holds a deferred reinitialization request.
type pendingResize struct {
	numAgents, dim int
}

// Simulation is one slime mold instance.
type Simulation struct {
	cfg config.SimConfig

	agents  []Agent
	main    *field.Field
	scratch *field.Field
	tmp     *field.Field
	signal  *field.Field
	rgba    []byte

	perturb    Perturber
	params     *SignalParams
	directions *field.DirectionField
	ownDirs    bool // directions were generated here and follow Dim

	iter        uint64
	rng         *rand.Rand
	pool        *motionPool
	perf        *telemetry.PerfCollector
	world       vmath.Bounds2
	initialized bool
	pending     *pendingResize

	// LastStep describes the most recent Update.
	LastStep StepReport
}

// New creates an uninitialized simulation from a copy of cfg. Call Initialize
// before the first Update; until then every query returns zero values.
func New(cfg config.SimConfig) *Simulation {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Simulation{
		cfg:  cfg,
		rng:  rng,
		pool: newMotionPool(cfg.Workers, rng),
		perf: telemetry.NewPerfCollector(60),
	}
}

// SetPerfCollector replaces the phase timer.
func (s *Simulation) SetPerfCollector(pc *telemetry.PerfCollector) {
	if pc != nil {
		s.perf = pc
	}
}

// Perf returns the phase timer.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// SetSignal installs the caller-owned signal parameters. nil disables the signal
// regardless of SignalEnabled.
func (s *Simulation) SetSignal(p *SignalParams) {
	s.params = p
}

// SetDirectionField installs a caller-supplied direction field. It is kept across
// reinitialization. nil reverts to generating one from noise when needed.
func (s *Simulation) SetDirectionField(d *field.DirectionField) {
	s.directions = d
	s.ownDirs = false
	if d == nil {
		s.ensureDirections()
	}
}

// Initialize (re)allocates all buffers and agents from the current config.
func (s *Simulation) Initialize() {
	s.cfg.Sanitize()
	dim := s.cfg.Dim

	s.main = field.New(dim)
	s.scratch = field.New(dim)
	s.tmp = field.New(dim)
	s.signal = field.New(dim)
	s.rgba = make([]byte, field.RGBABytes(dim))
	s.perturb = newPerturber(dim)
	s.agents = NewAgents(&s.cfg, s.rng)
	s.world = vmath.CenteredSquare(s.cfg.WorldSpan)
	s.iter = 0
	s.pending = nil
	s.LastStep = StepReport{}

	if s.ownDirs {
		s.directions = nil
	}
	s.ensureDirections()

	s.initialized = true
	slog.Debug("simulation initialized",
		"dim", dim,
		"agents", len(s.agents),
		"circular_world", s.cfg.CircularWorld,
		"perturb_style", s.cfg.Perturb.Style.String(),
	)
}

// ensureDirections builds a noise direction field when direction influence is on
// and none is installed.
func (s *Simulation) ensureDirections() {
	if s.directions != nil || s.cfg.DirectionScale <= 0 || s.main == nil {
		return
	}
	s.directions = field.NewNoiseDirections(s.cfg.Dim, s.rng.Int63(), s.cfg.DirectionNoiseScale)
	s.ownDirs = true
}

// Initialized reports whether buffers have been allocated.
func (s *Simulation) Initialized() bool { return s.initialized }

// Close stops the motion workers.
func (s *Simulation) Close() {
	s.pool.stopWorkers()
}

// requestResize defers reallocation to the start of the next Update. Before
// Initialize it only records the sizes.
func (s *Simulation) requestResize(numAgents, dim int) {
	if !s.initialized {
		s.cfg.NumAgents = numAgents
		s.cfg.Dim = dim
		return
	}
	s.pending = &pendingResize{numAgents: numAgents, dim: dim}
}

// Update advances the simulation one step and returns the wall time of the
// simulation phases in milliseconds. It is a no-op before Initialize.
func (s *Simulation) Update() float32 {
	if !s.initialized {
		return 0
	}
	if s.pending != nil {
		s.cfg.NumAgents = s.pending.numAgents
		s.cfg.Dim = s.pending.dim
		s.pending = nil
		s.Initialize()
	}

	cfg := &s.cfg
	start := time.Now()
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseMotion)
	s.moveAgents(motionParams{
		dt:             cfg.DT(),
		circular:       cfg.CircularWorld,
		directions:     s.directions,
		directionScale: cfg.DirectionScale,
	})

	// Deposit runs after every agent has moved so all sensing saw the same field.
	s.perf.StartPhase(telemetry.PhaseDeposit)
	for i := range s.agents {
		a := &s.agents[i]
		s.main.Deposit(a.Position, a.Deposit, a.ChannelWeights)
	}

	if cfg.DiffuseEnabled {
		s.perf.StartPhase(telemetry.PhaseDiffuse)
		s.main.Diffuse(s.scratch, s.tmp, cfg.Decay, cfg.DiffuseSpeed, cfg.FilterSize)
	}

	s.perf.StartPhase(telemetry.PhasePerturb)
	s.perturb.seed(&cfg.Perturb, s.main, s.scratch, s.tmp, s.rng)

	s.iter++
	fired := false
	if cfg.Perturb.Enabled && cfg.Perturb.Interval > 0 && s.iter%uint64(cfg.Perturb.Interval) == 0 {
		s.perturb.trigger(&cfg.Perturb, s.main, s.scratch, s.tmp, s.rng)
		fired = true
		slog.Debug("perturbation event", "iteration", s.iter, "style", cfg.Perturb.Style.String())
	}

	if cfg.SignalEnabled && s.params != nil {
		s.perf.StartPhase(telemetry.PhaseSignal)
		applySignal(s.params, s.signal, s.main)
	}

	s.perf.StartPhase(telemetry.PhasePerturb)
	applied := s.perturb.apply(s.main)

	elapsed := time.Since(start)

	s.perf.StartPhase(telemetry.PhaseDisplay)
	if cfg.AverageImage {
		s.main.AverageChannels()
	}
	s.main.ToRGBA(s.rgba)
	s.perf.EndTick()

	state := s.perturb.State()
	if applied {
		state = PerturbActive
	}
	s.LastStep = StepReport{
		Iteration:      s.iter,
		PerturbFired:   fired,
		PerturbApplied: applied,
		PerturbState:   state,
		Elapsed:        elapsed,
	}

	return float32(elapsed.Seconds() * 1e3)
}

// Iteration returns the number of completed steps since initialization.
func (s *Simulation) Iteration() uint64 { return s.iter }

// PerturbState returns the perturbation state machine's current state.
func (s *Simulation) PerturbState() PerturbState { return s.perturb.State() }

// World returns the external world bounds used by the world-space queries.
func (s *Simulation) World() vmath.Bounds2 { return s.world }

// ToLength01 converts a world-space length to a field fraction.
func (s *Simulation) ToLength01(l float32) float32 {
	span := s.world.Size().X
	if span < vmath.Epsilon {
		return 0
	}
	return l / span
}

// ToPosition01 converts a world-space point to a field fraction.
func (s *Simulation) ToPosition01(p vmath.Vec2) vmath.Vec2 {
	return s.world.ToFraction(p)
}

// SampleQualityAt averages the field over a window of side worldRadius around
// worldPos, wrapping at the edges whatever the world topology. Each channel is in
// [0,1].
func (s *Simulation) SampleQualityAt(worldPos vmath.Vec2, worldRadius float32) vmath.Vec3 {
	if !s.initialized {
		return vmath.Vec3{}
	}
	p := s.ToPosition01(worldPos)
	r := s.ToLength01(worldRadius)
	return s.main.Sense(p, r, field.Wrapped, true).Clamp01()
}

// AddQualityAt adds v into a circle of worldRadius around worldPos, saturating at 1.
func (s *Simulation) AddQualityAt(worldPos vmath.Vec2, worldRadius float32, v vmath.Vec3) {
	if !s.initialized {
		return
	}
	s.main.ClampedAddInCircle(s.ToPosition01(worldPos), s.ToLength01(worldRadius), v)
}

// DisplayBuffer returns the packed RGBA8 image of the field, Dim*Dim*4 bytes. It is
// valid until the next Update or reinitialization and must not be modified.
func (s *Simulation) DisplayBuffer() []byte {
	if !s.initialized {
		return nil
	}
	return s.rgba
}

// Field returns the primary field for read-only use.
func (s *Simulation) Field() *field.Field {
	return s.main
}

// Agents returns the agents for read-only use.
func (s *Simulation) Agents() []Agent {
	return s.agents
}

// Config returns a copy of the configuration.
func (s *Simulation) Config() config.SimConfig {
	return s.cfg
}

// MutableConfig returns the live configuration. Scalar edits take effect on the
// next Update; changes to Dim or NumAgents need a Resize command.
func (s *Simulation) MutableConfig() *config.SimConfig {
	return &s.cfg
}

// Dim returns the current field dimension, or 0 before Initialize.
func (s *Simulation) Dim() int {
	if s.main == nil {
		return 0
	}
	return s.main.Dim()
}
