package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/field"
	"github.com/nfagan/slime-mold/vmath"
)

// quietConfig returns a small config with every optional process switched off.
func quietConfig(dim, agents int) config.SimConfig {
	cfg := config.Defaults().Sim
	cfg.Dim = dim
	cfg.NumAgents = agents
	cfg.DiffuseEnabled = false
	cfg.Perturb.Enabled = false
	cfg.SignalEnabled = false
	cfg.AverageImage = false
	cfg.DirectionScale = 0
	cfg.Seed = 42
	cfg.Workers = 2
	return cfg
}

func newSim(t *testing.T, cfg config.SimConfig) *Simulation {
	t.Helper()
	s := New(cfg)
	s.Initialize()
	t.Cleanup(s.Close)
	return s
}

func TestScenarioA_MassNonDecreasing(t *testing.T) {
	const (
		agents = 10
		steps  = 100
	)
	s := newSim(t, quietConfig(64, agents))

	// Channel weights are unit length, so a deposit adds at most sqrt(3).
	maxPerStep := float32(math.Sqrt(3))
	bound := float32(agents*steps) * maxPerStep

	prev := s.Field().Mass()
	for i := 0; i < steps; i++ {
		s.Update()
		m := s.Field().Mass()
		if m < prev-1e-3 {
			t.Fatalf("step %d: mass decreased from %v to %v", i+1, prev, m)
		}
		prev = m
	}
	if prev <= 0 {
		t.Errorf("no mass deposited after %d steps", steps)
	}
	if prev > bound {
		t.Errorf("mass = %v, exceeds bound %v", prev, bound)
	}
}

func TestScenarioB_ZeroAgentsDrains(t *testing.T) {
	cfg := quietConfig(32, 0)
	cfg.DiffuseEnabled = true
	cfg.Decay = 0.1
	cfg.DiffuseSpeed = 0.5
	cfg.FilterSize = 3
	s := newSim(t, cfg)

	for i := 0; i < 50; i++ {
		s.Update()
	}
	for i, v := range s.Field().Data() {
		if v != 0 {
			t.Fatalf("data[%d] = %v, want 0", i, v)
		}
	}
}

func TestScenarioC_PerturbCountdown(t *testing.T) {
	cfg := quietConfig(32, 0)
	cfg.Perturb = config.PerturbConfig{
		Enabled:  true,
		Interval: 5,
		Style:    config.PerturbCircles,
		Iters:    3,
		Circles:  1,
	}
	s := newSim(t, cfg)

	active := map[uint64]bool{5: true, 6: true, 7: true, 10: true, 11: true, 12: true, 15: true, 16: true, 17: true, 20: true}
	for step := uint64(1); step <= 20; step++ {
		s.Update()
		got := s.LastStep
		if got.Iteration != step {
			t.Fatalf("iteration = %d, want %d", got.Iteration, step)
		}
		want := PerturbIdle
		if active[step] {
			want = PerturbActive
		}
		if got.PerturbState != want {
			t.Errorf("step %d: state = %v, want %v", step, got.PerturbState, want)
		}
		if got.PerturbApplied != active[step] {
			t.Errorf("step %d: applied = %v, want %v", step, got.PerturbApplied, active[step])
		}
		if fired := step%5 == 0; got.PerturbFired != fired {
			t.Errorf("step %d: fired = %v, want %v", step, got.PerturbFired, fired)
		}
	}
}

func TestPerturb_RetriggerWhileActive(t *testing.T) {
	pc := config.PerturbConfig{Enabled: true, Interval: 2, Style: config.PerturbCircles, Iters: 3, Circles: 1}
	rng := rand.New(rand.NewSource(9))
	main, scratch, tmp := field.New(8), field.New(8), field.New(8)
	p := newPerturber(8)

	cellValue := func() float64 { return float64(main.Cell(3, 3).X) }
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-5 }

	p.trigger(&pc, main, scratch, tmp, rng)
	p.Pattern().Fill(0.1)
	if !p.apply(main) || p.Remaining() != 2 {
		t.Fatalf("first apply: remaining = %d, want 2", p.Remaining())
	}

	// Fire again before the countdown ends with a new pattern.
	p.trigger(&pc, main, scratch, tmp, rng)
	p.Pattern().Fill(0.2)
	if p.State() != PerturbActive || p.Remaining() != pc.Iters {
		t.Fatalf("after re-trigger: state = %v remaining = %d, want active %d", p.State(), p.Remaining(), pc.Iters)
	}
	if !p.apply(main) {
		t.Fatal("re-triggered pattern not applied")
	}
	if p.Remaining() != pc.Iters-1 {
		t.Errorf("remaining = %d, want %d", p.Remaining(), pc.Iters-1)
	}
	if got := cellValue(); !near(got, 0.3) {
		t.Errorf("cell = %v, want 0.3 (old pattern once, new pattern once)", got)
	}

	p.apply(main)
	p.apply(main)
	if p.State() != PerturbIdle {
		t.Errorf("state = %v, want idle after %d applications", p.State(), pc.Iters)
	}
	if p.apply(main) {
		t.Error("idle perturber applied its pattern")
	}
	if got := cellValue(); !near(got, 0.7) {
		t.Errorf("cell = %v, want 0.7", got)
	}
}

func TestPerturb_IntervalShorterThanIters(t *testing.T) {
	cfg := quietConfig(16, 0)
	cfg.Perturb = config.PerturbConfig{Enabled: true, Interval: 2, Style: config.PerturbCircles, Iters: 3, Circles: 1}
	s := newSim(t, cfg)

	wantRemaining := map[uint64]int{1: 0, 2: 2, 3: 1, 4: 2, 5: 1, 6: 2}
	for step := uint64(1); step <= 6; step++ {
		s.Update()
		if got := s.perturb.Remaining(); got != wantRemaining[step] {
			t.Errorf("step %d: remaining = %d, want %d", step, got, wantRemaining[step])
		}
		if applied := s.LastStep.PerturbApplied; applied != (step >= 2) {
			t.Errorf("step %d: applied = %v", step, applied)
		}
	}
}

func TestPerturb_ZeroItersNeverActive(t *testing.T) {
	cfg := quietConfig(16, 0)
	cfg.Perturb = config.PerturbConfig{Enabled: true, Interval: 2, Iters: 0, Circles: 1}
	s := newSim(t, cfg)

	for i := 0; i < 6; i++ {
		s.Update()
		if s.LastStep.PerturbApplied || s.PerturbState() != PerturbIdle {
			t.Fatalf("step %d: perturbation applied with zero iterations", i+1)
		}
	}
	if s.Field().Mass() != 0 {
		t.Errorf("mass = %v, want 0", s.Field().Mass())
	}
}

func TestPerturb_NoiseStyleStaysInRange(t *testing.T) {
	cfg := quietConfig(32, 0)
	cfg.Perturb = config.PerturbConfig{Enabled: true, Interval: 1, Style: config.PerturbNoise, Iters: 4}
	s := newSim(t, cfg)

	for i := 0; i < 4; i++ {
		s.Update()
	}
	for i, v := range s.Field().Data() {
		if v < 0 || v > 1 {
			t.Fatalf("data[%d] = %v, outside [0,1]", i, v)
		}
	}
}

func TestPowerRescale_RoundTrip(t *testing.T) {
	s := newSim(t, quietConfig(16, 20))

	orig := make([]float32, len(s.Agents()))
	for i, a := range s.Agents() {
		orig[i] = a.TurnSpeed
	}

	s.Apply(SetTurnSpeedPower{Power: 3})
	if s.Config().TurnSpeedPower != 3 {
		t.Fatalf("TurnSpeedPower = %d, want 3", s.Config().TurnSpeedPower)
	}
	for i, a := range s.Agents() {
		if want := orig[i] * 8; math.Abs(float64(a.TurnSpeed-want)) > 1e-5 {
			t.Fatalf("agent %d: turn speed = %v, want %v", i, a.TurnSpeed, want)
		}
	}

	s.Apply(SetTurnSpeedPower{Power: -2}, SetTurnSpeedPower{Power: 0})
	for i, a := range s.Agents() {
		if math.Abs(float64(a.TurnSpeed-orig[i])) > 1e-5 {
			t.Errorf("agent %d: turn speed = %v after round trip, want %v", i, a.TurnSpeed, orig[i])
		}
	}
}

func TestPowerToScale(t *testing.T) {
	tests := []struct {
		from, to int
		want     float32
	}{
		{0, 0, 1},
		{0, 3, 8},
		{3, 0, 0.125},
		{-1, 1, 4},
		{2, -2, 1.0 / 16},
	}
	for _, tt := range tests {
		if got := powerToScale(tt.from, tt.to); got != tt.want {
			t.Errorf("powerToScale(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSetSpeedPower_NoOpOnZeroDelta(t *testing.T) {
	s := newSim(t, quietConfig(16, 5))
	before := s.Agents()[0].Speed
	s.Apply(SetSpeedPower{Power: s.Config().SpeedPower})
	if got := s.Agents()[0].Speed; got != before {
		t.Errorf("speed = %v, want unchanged %v", got, before)
	}
}

func TestSetRightOnly_UpdatesAgents(t *testing.T) {
	s := newSim(t, quietConfig(16, 8))
	s.Apply(SetRightOnly{Value: false})
	for i, a := range s.Agents() {
		if a.RightOnly {
			t.Fatalf("agent %d still right-only", i)
		}
	}
	s.Apply(SetRightOnly{Value: true})
	if !s.Config().OnlyRightTurns {
		t.Error("config not updated")
	}
	for i, a := range s.Agents() {
		if !a.RightOnly {
			t.Fatalf("agent %d not right-only", i)
		}
	}
}

func TestBoundary_Clamped(t *testing.T) {
	f := field.New(16)
	rng := rand.New(rand.NewSource(1))
	cfg := quietConfig(16, 0)
	a := NewAgent(&cfg, vmath.V2(0.9995, 0.5), 0, rng)
	mp := motionParams{dt: cfg.DT(), circular: false}

	updateAgent(&a, f, mp, rng)

	lo, hi := float32(boundaryEps), float32(1-boundaryEps)
	if a.Position.X < lo || a.Position.X > hi || a.Position.Y < lo || a.Position.Y > hi {
		t.Errorf("position = %v, want inside [%v, %v]", a.Position, lo, hi)
	}
	if a.Heading == 0 {
		t.Error("heading not re-randomized after leaving the world")
	}
}

func TestBoundary_Wrapped(t *testing.T) {
	f := field.New(16)
	rng := rand.New(rand.NewSource(1))
	cfg := quietConfig(16, 0)
	a := NewAgent(&cfg, vmath.V2(0.9995, 0.3), 0, rng)
	mp := motionParams{dt: cfg.DT(), circular: true}

	updateAgent(&a, f, mp, rng)

	if a.Position.X >= 0.01 {
		t.Errorf("x = %v, want a small wrapped value", a.Position.X)
	}
	if a.Position.Y != 0.3 {
		t.Errorf("y = %v, want 0.3", a.Position.Y)
	}
	if a.Heading != 0 {
		t.Errorf("heading = %v, want 0", a.Heading)
	}
}

func TestMotion_RightOnlySuppressesLeft(t *testing.T) {
	f := field.New(256)
	rng := rand.New(rand.NewSource(3))
	cfg := quietConfig(256, 0)
	a := NewAgent(&cfg, vmath.V2(0.5, 0.5), 0, rng)
	a.ChannelWeights = vmath.Splat3(1)

	// Paint only the left probe's neighborhood.
	left := a.Position.Add(vmath.FromAngle(a.LeftSensor).Scale(a.SensorStep))
	f.ClampedAddInCircle(left, 0.01, vmath.Splat3(1))

	mp := motionParams{dt: cfg.DT(), circular: true}

	b := a
	b.RightOnly = false
	updateAgent(&b, f, mp, rng)
	if b.Heading <= 0 {
		t.Errorf("free agent heading = %v, want a left turn", b.Heading)
	}

	c := a
	c.RightOnly = true
	updateAgent(&c, f, mp, rng)
	if c.Heading != 0 {
		t.Errorf("right-only agent heading = %v, want 0", c.Heading)
	}
}

func TestMotion_SideSensorsAreAbsolute(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	cfg := quietConfig(256, 0)
	heading := float32(math.Pi)
	a := NewAgent(&cfg, vmath.V2(0.5, 0.5), heading, rng)
	a.ChannelWeights = vmath.Splat3(1)
	a.LeftSensor = math.Pi / 4
	a.RightSensor = -math.Pi / 4
	a.RightOnly = false
	mp := motionParams{dt: cfg.DT(), circular: true}

	paint := func(angle float32) *field.Field {
		f := field.New(256)
		p := a.Position.Add(vmath.FromAngle(angle).Scale(a.SensorStep))
		f.ClampedAddInCircle(p, 0.004, vmath.Splat3(1))
		return f
	}

	b := a
	updateAgent(&b, paint(a.LeftSensor), mp, rng)
	if want := heading + a.TurnSpeed*mp.dt; math.Abs(float64(b.Heading-want)) > 1e-5 {
		t.Errorf("trail at the absolute left sensor: heading = %v, want %v", b.Heading, want)
	}

	c := a
	updateAgent(&c, paint(heading+a.LeftSensor), mp, rng)
	if c.Heading != heading {
		t.Errorf("trail at heading+left offset: heading = %v, want unchanged %v", c.Heading, heading)
	}
}

func TestUninitialized_NoOps(t *testing.T) {
	s := New(quietConfig(16, 4))
	defer s.Close()

	if ms := s.Update(); ms != 0 {
		t.Errorf("Update() = %v, want 0", ms)
	}
	if s.DisplayBuffer() != nil {
		t.Error("DisplayBuffer() != nil before Initialize")
	}
	if q := s.SampleQualityAt(vmath.V2(0, 0), 10); q != (vmath.Vec3{}) {
		t.Errorf("SampleQualityAt() = %v, want zero", q)
	}
	s.AddQualityAt(vmath.V2(0, 0), 10, vmath.Splat3(1))
	if s.Iteration() != 0 || s.Dim() != 0 {
		t.Errorf("iteration = %d dim = %d, want 0, 0", s.Iteration(), s.Dim())
	}
}

func TestResize_BeforeInitializeOnlyRecordsSizes(t *testing.T) {
	s := New(quietConfig(32, 10))
	defer s.Close()

	s.Apply(Resize{NumAgents: 4, Dim: 16}, Reinitialize{})
	if ms := s.Update(); ms != 0 {
		t.Errorf("Update() = %v, want 0", ms)
	}
	if s.Initialized() || s.Iteration() != 0 || s.DisplayBuffer() != nil {
		t.Errorf("Update before Initialize stepped: initialized=%v iteration=%d", s.Initialized(), s.Iteration())
	}
	if cfg := s.Config(); cfg.Dim != 16 || cfg.NumAgents != 4 {
		t.Errorf("config sizes = %d/%d, want 16/4", cfg.Dim, cfg.NumAgents)
	}

	s.Initialize()
	if s.Dim() != 16 || len(s.Agents()) != 4 {
		t.Errorf("after Initialize: dim %d agents %d, want 16 and 4", s.Dim(), len(s.Agents()))
	}
	s.Update()
	if s.Iteration() != 1 {
		t.Errorf("iteration = %d, want 1", s.Iteration())
	}
}

func TestResize_Deferred(t *testing.T) {
	s := newSim(t, quietConfig(32, 10))
	s.Update()

	s.Apply(Resize{NumAgents: 5, Dim: 16})
	if s.Dim() != 32 || len(s.Agents()) != 10 {
		t.Fatalf("resize applied early: dim %d agents %d", s.Dim(), len(s.Agents()))
	}

	s.Update()
	if s.Dim() != 16 {
		t.Errorf("dim = %d, want 16", s.Dim())
	}
	if len(s.Agents()) != 5 {
		t.Errorf("agents = %d, want 5", len(s.Agents()))
	}
	if got, want := len(s.DisplayBuffer()), 16*16*4; got != want {
		t.Errorf("display buffer = %d bytes, want %d", got, want)
	}
	if s.Iteration() != 1 {
		t.Errorf("iteration = %d, want 1 after reinit", s.Iteration())
	}
}

func TestReinitialize_ClearsField(t *testing.T) {
	s := newSim(t, quietConfig(16, 10))
	for i := 0; i < 5; i++ {
		s.Update()
	}
	s.Apply(Reinitialize{})
	s.Update()
	if s.Iteration() != 1 {
		t.Errorf("iteration = %d, want 1", s.Iteration())
	}
}

func TestResetDiffusion(t *testing.T) {
	s := newSim(t, quietConfig(16, 0))
	s.Apply(SetDecay{Value: 0.5}, SetDiffuseSpeed{Value: 2}, ResetDiffusion{})
	cfg := s.Config()
	if cfg.Decay != config.DefaultDecay || cfg.DiffuseSpeed != config.DefaultDiffuseSpeed || !cfg.DiffuseEnabled {
		t.Errorf("after reset: decay %v speed %v enabled %v", cfg.Decay, cfg.DiffuseSpeed, cfg.DiffuseEnabled)
	}
}

func TestScalarCommands(t *testing.T) {
	s := newSim(t, quietConfig(16, 0))
	s.Apply(
		SetDiffuseSpeed{Value: 2},
		SetTimeScale{Value: 4},
		SetTopology{Topology: field.Clamped},
		SetPerturbEnabled{Value: true},
		SetPerturbStyle{Style: config.PerturbNoise},
		SetAverageImage{Value: true},
		SetSignalEnabled{Value: true},
	)
	cfg := s.Config()
	if cfg.DiffuseSpeed != 1 {
		t.Errorf("DiffuseSpeed = %v, want clamped to 1", cfg.DiffuseSpeed)
	}
	if cfg.TimeScale != 4 {
		t.Errorf("TimeScale = %v, want 4", cfg.TimeScale)
	}
	if cfg.CircularWorld {
		t.Error("CircularWorld = true, want false")
	}
	if !cfg.Perturb.Enabled || cfg.Perturb.Style != config.PerturbNoise {
		t.Errorf("perturb = %+v", cfg.Perturb)
	}
	if !cfg.AverageImage || !cfg.SignalEnabled {
		t.Errorf("average %v signal %v, want both true", cfg.AverageImage, cfg.SignalEnabled)
	}
}

func TestSetDirectionScale_GeneratesField(t *testing.T) {
	s := newSim(t, quietConfig(16, 100))
	s.Apply(SetDirectionScale{Value: 0.2})
	if s.directions == nil {
		t.Fatal("no direction field generated")
	}
	if s.directions.Dim() != 16 {
		t.Errorf("direction dim = %d, want 16", s.directions.Dim())
	}
	s.Update()

	s.Apply(Resize{NumAgents: 10, Dim: 8})
	s.Update()
	if s.directions == nil || s.directions.Dim() != 8 {
		t.Error("generated direction field did not follow resize")
	}
}

func TestSetDirectionField_KeptAcrossReinit(t *testing.T) {
	s := newSim(t, quietConfig(8, 0))
	d, err := field.FromRows(4, make([]float32, 16))
	if err != nil {
		t.Fatal(err)
	}
	s.SetDirectionField(d)
	s.Apply(Reinitialize{})
	s.Update()
	if s.directions != d {
		t.Error("caller-supplied direction field replaced on reinit")
	}
}

func TestPresets_Style(t *testing.T) {
	tests := []struct {
		name      string
		dim       int
		turn      int
		speed     int
		rightOnly bool
	}{
		{"mid_coh", 256, 2, 2, false},
		{"high_coh", 256, 3, 2, false},
		{"high_coherence", 1024, 4, 1, false},
		{"chaotic", 1024, 0, 1, true},
		{"fragile", 256, 2, 1, false},
		{"clustered", 256, 4, 2, true},
		{"clustered", 1024, 4, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(quietConfig(tt.dim, 0))
			defer s.Close()
			s.Apply(ApplyPreset{Name: tt.name})
			cfg := s.Config()
			if cfg.TurnSpeedPower != tt.turn || cfg.SpeedPower != tt.speed || cfg.OnlyRightTurns != tt.rightOnly {
				t.Errorf("got turn %d speed %d right-only %v, want %d %d %v",
					cfg.TurnSpeedPower, cfg.SpeedPower, cfg.OnlyRightTurns, tt.turn, tt.speed, tt.rightOnly)
			}
		})
	}
}

func TestPresets_QualityAndTime(t *testing.T) {
	s := newSim(t, quietConfig(32, 10))
	s.Apply(ApplyPreset{Name: "low"}, ApplyPreset{Name: "fast"})
	if s.Config().TimeScale != 4 {
		t.Errorf("TimeScale = %v, want 4", s.Config().TimeScale)
	}
	if s.Dim() != 32 {
		t.Fatalf("quality preset applied before Update")
	}
	s.Update()
	if s.Dim() != 256 || len(s.Agents()) != 1000 {
		t.Errorf("dim %d agents %d, want 256 1000", s.Dim(), len(s.Agents()))
	}
}

func TestPresets_Unknown(t *testing.T) {
	if _, ok := PresetCommands("bogus", &config.SimConfig{}); ok {
		t.Error("unknown preset accepted")
	}
	q, st, ts := PresetNames()
	if len(q) != 3 || len(st) != 5 || len(ts) != 5 {
		t.Errorf("preset counts %d %d %d, want 3 5 5", len(q), len(st), len(ts))
	}
}

func TestDeterminism(t *testing.T) {
	run := func() []float32 {
		s := New(quietConfig(32, 200))
		defer s.Close()
		s.Initialize()
		for i := 0; i < 20; i++ {
			s.Update()
		}
		return append([]float32(nil), s.Field().Data()...)
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("data[%d]: %v != %v", i, a[i], b[i])
		}
	}
}

func TestDisplayBuffer(t *testing.T) {
	s := newSim(t, quietConfig(4, 0))

	s.main.Fill(1)
	s.Update()
	buf := s.DisplayBuffer()
	for i := 0; i < len(buf); i += 4 {
		if buf[i] != 255 || buf[i+1] != 255 || buf[i+2] != 255 || buf[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want all 255", i/4, buf[i:i+4])
		}
	}

	s.main.Clear()
	s.Update()
	buf = s.DisplayBuffer()
	for i := 0; i < len(buf); i += 4 {
		if buf[i] != 0 || buf[i+1] != 0 || buf[i+2] != 0 || buf[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want 0,0,0,255", i/4, buf[i:i+4])
		}
	}
}

func TestQualityQueries(t *testing.T) {
	s := newSim(t, quietConfig(64, 0))

	if got := s.ToLength01(256); got != 0.5 {
		t.Errorf("ToLength01(256) = %v, want 0.5", got)
	}
	if got := s.ToPosition01(vmath.V2(0, 0)); got != vmath.V2(0.5, 0.5) {
		t.Errorf("ToPosition01(origin) = %v, want (0.5, 0.5)", got)
	}

	s.AddQualityAt(vmath.V2(0, 0), 32, vmath.V3(1, 0, 0.5))
	q := s.SampleQualityAt(vmath.V2(0, 0), 8)
	if q.X <= 0.9 || q.Y != 0 || q.Z <= 0.4 {
		t.Errorf("SampleQualityAt = %v, want about (1, 0, 0.5)", q)
	}
	if far := s.SampleQualityAt(vmath.V2(200, 200), 8); far != (vmath.Vec3{}) {
		t.Errorf("far sample = %v, want zero", far)
	}
}

func TestSignal_MaxBlend(t *testing.T) {
	cfg := quietConfig(32, 0)
	cfg.SignalEnabled = true
	s := newSim(t, cfg)

	p := DefaultSignalParams()
	p.Value = 0.6
	s.SetSignal(&p)
	s.Update()

	i, j := s.Field().Index(p.Position)
	if got := s.Field().Cell(i, j); math.Abs(float64(got.X-0.6)) > 1e-6 {
		t.Errorf("signal cell = %v, want 0.6", got)
	}

	s.SetSignal(nil)
	s.main.Clear()
	s.Update()
	if s.Field().Mass() != 0 {
		t.Error("nil signal painted the field")
	}
}

func TestSummary(t *testing.T) {
	s := newSim(t, quietConfig(16, 0))
	if got := s.Summary(0.05, nil); got.Agents != 0 || len(got.CellIntensities) != 256 {
		t.Errorf("summary = agents %d cells %d, want 0 and 256", got.Agents, len(got.CellIntensities))
	}

	s.main.Fill(0.5)
	got := s.Summary(0.05, nil)
	if got.Coverage != 1 {
		t.Errorf("coverage = %v, want 1", got.Coverage)
	}
	if math.Abs(got.MeanR-0.5) > 1e-6 {
		t.Errorf("mean r = %v, want 0.5", got.MeanR)
	}

	var empty Simulation
	if empty.Summary(0.05, nil).CellIntensities != nil {
		t.Error("uninitialized summary has cells")
	}
}
