package sim

import (
	"log/slog"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/field"
)

// Command is a reconfiguration request applied between steps.
type Command interface {
	apply(s *Simulation)
}

// Apply runs cmds in slice order. Commands that reallocate are deferred to the
// start of the next Update; everything else takes effect immediately.
func (s *Simulation) Apply(cmds ...Command) {
	for _, c := range cmds {
		if c != nil {
			c.apply(s)
		}
	}
}

// powerToScale returns 2^(to-from) by repeated doubling or halving.
func powerToScale(from, to int) float32 {
	scale := float32(1)
	for p := from; p < to; p++ {
		scale *= 2
	}
	for p := from; p > to; p-- {
		scale *= 0.5
	}
	return scale
}

// SetTurnSpeedPower rescales every agent's turn speed to 2^Power of its base.
type SetTurnSpeedPower struct{ Power int }

func (c SetTurnSpeedPower) apply(s *Simulation) {
	scale := powerToScale(s.cfg.TurnSpeedPower, c.Power)
	if scale == 1 {
		return
	}
	for i := range s.agents {
		s.agents[i].TurnSpeed *= scale
	}
	s.cfg.TurnSpeedPower = c.Power
}

// SetSpeedPower rescales every agent's base speed to 2^Power of its base.
type SetSpeedPower struct{ Power int }

func (c SetSpeedPower) apply(s *Simulation) {
	scale := powerToScale(s.cfg.SpeedPower, c.Power)
	if scale == 1 {
		return
	}
	for i := range s.agents {
		s.agents[i].Speed *= scale
	}
	s.cfg.SpeedPower = c.Power
}

// SetRightOnly sets the right-turn-only flag on the config and every agent.
type SetRightOnly struct{ Value bool }

func (c SetRightOnly) apply(s *Simulation) {
	s.cfg.OnlyRightTurns = c.Value
	for i := range s.agents {
		s.agents[i].RightOnly = c.Value
	}
}

// ResetDiffusion restores the default decay and diffuse speed.
type ResetDiffusion struct{}

func (ResetDiffusion) apply(s *Simulation) { s.cfg.ResetDiffusion() }

// Resize requests new agent and grid sizes. It is applied at the start of the next
// Update by reallocating everything.
type Resize struct {
	NumAgents int
	Dim       int
}

func (c Resize) apply(s *Simulation) {
	slog.Debug("resize requested", "agents", c.NumAgents, "dim", c.Dim)
	s.requestResize(c.NumAgents, c.Dim)
}

// Reinitialize restarts at the current sizes on the next Update.
type Reinitialize struct{}

func (Reinitialize) apply(s *Simulation) {
	s.requestResize(s.cfg.NumAgents, s.cfg.Dim)
}

// SetDecay sets the per-step decay.
type SetDecay struct{ Value float32 }

func (c SetDecay) apply(s *Simulation) { s.cfg.Decay = max(c.Value, 0) }

// SetDiffuseSpeed sets the blend toward the blurred field, clamped to [0,1].
type SetDiffuseSpeed struct{ Value float32 }

func (c SetDiffuseSpeed) apply(s *Simulation) { s.cfg.DiffuseSpeed = min(max(c.Value, 0), 1) }

// SetDiffuseEnabled toggles diffusion and decay.
type SetDiffuseEnabled struct{ Value bool }

func (c SetDiffuseEnabled) apply(s *Simulation) { s.cfg.DiffuseEnabled = c.Value }

// SetPerturbEnabled toggles periodic perturbation. An event already running
// finishes its countdown.
type SetPerturbEnabled struct{ Value bool }

func (c SetPerturbEnabled) apply(s *Simulation) { s.cfg.Perturb.Enabled = c.Value }

// SetPerturbStyle selects the pattern generated by the next event.
type SetPerturbStyle struct{ Style config.PerturbStyle }

func (c SetPerturbStyle) apply(s *Simulation) {
	if c.Style != config.PerturbCircles && c.Style != config.PerturbNoise {
		return
	}
	s.cfg.Perturb.Style = c.Style
}

// SetTimeScale scales the fixed step.
type SetTimeScale struct{ Value float32 }

func (c SetTimeScale) apply(s *Simulation) { s.cfg.TimeScale = max(c.Value, 0) }

// SetTopology switches agents between a wrapping and a bounded world.
type SetTopology struct{ Topology field.Topology }

func (c SetTopology) apply(s *Simulation) { s.cfg.CircularWorld = c.Topology == field.Wrapped }

// SetAverageImage toggles the grey debug view.
type SetAverageImage struct{ Value bool }

func (c SetAverageImage) apply(s *Simulation) { s.cfg.AverageImage = c.Value }

// SetSignalEnabled toggles the external signal.
type SetSignalEnabled struct{ Value bool }

func (c SetSignalEnabled) apply(s *Simulation) { s.cfg.SignalEnabled = c.Value }

// SetDirectionScale sets how strongly agents follow the direction field. A noise
// field is generated the first time it becomes positive.
type SetDirectionScale struct{ Value float32 }

func (c SetDirectionScale) apply(s *Simulation) {
	s.cfg.DirectionScale = max(c.Value, 0)
	s.ensureDirections()
}

// ApplyPreset applies a named quality, style or time-scale preset. Unknown names
// are logged and ignored.
type ApplyPreset struct{ Name string }

func (c ApplyPreset) apply(s *Simulation) {
	cmds, ok := PresetCommands(c.Name, &s.cfg)
	if !ok {
		slog.Warn("unknown preset", "name", c.Name)
		return
	}
	s.Apply(cmds...)
}
