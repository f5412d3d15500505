package sim

import (
	"math"
	"math/rand"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/field"
	"github.com/nfagan/slime-mold/vmath"
)

const (
	perturbCircleRadius = 0.1
	perturbNoiseKernel  = 5
)

// PerturbState is the state of the perturbation state machine.
type PerturbState uint8

const (
	PerturbIdle PerturbState = iota
	PerturbActive
)

func (s PerturbState) String() string {
	if s == PerturbActive {
		return "active"
	}
	return "idle"
}

// Perturber owns the perturbation pattern and its Idle/Active countdown.
type Perturber struct {
	buf       *field.Field
	state     PerturbState
	countdown int
	seeded    bool
}

func newPerturber(dim int) Perturber {
	return Perturber{buf: field.New(dim)}
}

// State returns the current state.
func (p *Perturber) State() PerturbState { return p.state }

// Remaining returns how many more steps the active pattern will be applied.
func (p *Perturber) Remaining() int { return p.countdown }

// Pattern returns the current perturbation buffer.
func (p *Perturber) Pattern() *field.Field { return p.buf }

// seed fills the buffer once so a pattern exists before the first event. The state
// is left unchanged.
func (p *Perturber) seed(cfg *config.PerturbConfig, main, scratch, tmp *field.Field, rng *rand.Rand) {
	if p.seeded {
		return
	}
	p.generate(cfg, main, scratch, tmp, rng)
	p.seeded = true
}

// trigger regenerates the pattern and (re)starts the countdown. Firing while
// already active replaces the old pattern.
func (p *Perturber) trigger(cfg *config.PerturbConfig, main, scratch, tmp *field.Field, rng *rand.Rand) {
	p.generate(cfg, main, scratch, tmp, rng)
	p.countdown = cfg.Iters
	if p.countdown > 0 {
		p.state = PerturbActive
	} else {
		p.state = PerturbIdle
	}
}

// apply adds the pattern into main while active and counts down. It reports
// whether the pattern was applied this step.
func (p *Perturber) apply(main *field.Field) bool {
	if p.state != PerturbActive {
		return false
	}
	main.AddSaturating(p.buf)
	p.countdown--
	if p.countdown <= 0 {
		p.countdown = 0
		p.state = PerturbIdle
	}
	return true
}

func (p *Perturber) generate(cfg *config.PerturbConfig, main, scratch, tmp *field.Field, rng *rand.Rand) {
	switch cfg.Style {
	case config.PerturbNoise:
		p.generateNoise(main, scratch, tmp, rng)
	default:
		p.generateCircles(cfg.Circles, rng)
	}
}

// generateNoise produces blurred noise sharpened by a high power and masked to
// where main is currently dim.
func (p *Perturber) generateNoise(main, scratch, tmp *field.Field, rng *rand.Rand) {
	p.buf.RandomFill(rng)
	field.BoxFilter(p.buf, scratch, tmp, perturbNoiseKernel)

	out := p.buf.Data()
	blurred := scratch.Data()
	cur := main.Data()
	for i := range out {
		b := float64(blurred[i])
		out[i] = (1 - cur[i]) * float32(math.Min(1, math.Pow(b, 8)*2))
	}
}

// generateCircles splats n circles, each with one dominant channel.
func (p *Perturber) generateCircles(n int, rng *rand.Rand) {
	p.buf.Clear()
	for i := 0; i < n; i++ {
		center := vmath.V2(rng.Float32(), rng.Float32())
		color := vmath.V3(rng.Float32(), rng.Float32(), rng.Float32()).Scale(0.5)
		color.Set(rng.Intn(3), rng.Float32()*0.25+0.75)
		p.buf.ClampedAddInCircle(center, perturbCircleRadius, color)
	}
}
