package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Diffusion defaults restored by ResetDiffusion.
const (
	DefaultDecay        = 0.004
	DefaultDiffuseSpeed = 0.95
	DefaultWorldSpan    = 512
)

// PerturbStyle selects how perturbation patterns are generated.
type PerturbStyle int

const (
	// PerturbCircles splats a few randomly colored circles.
	PerturbCircles PerturbStyle = iota
	// PerturbNoise generates blurred noise concentrated where the field is dim.
	PerturbNoise
)

func (s PerturbStyle) String() string {
	switch s {
	case PerturbCircles:
		return "circles"
	case PerturbNoise:
		return "noise"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// MarshalYAML writes the style by name.
func (s PerturbStyle) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML accepts either a style name or its integer value.
func (s *PerturbStyle) UnmarshalYAML(n *yaml.Node) error {
	var name string
	if err := n.Decode(&name); err == nil {
		switch strings.ToLower(name) {
		case "circles", "circle":
			*s = PerturbCircles
			return nil
		case "noise", "lightning":
			*s = PerturbNoise
			return nil
		}
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return fmt.Errorf("perturb style: unknown value %q", n.Value)
	}
	*s = PerturbStyle(v)
	return nil
}

// PerturbConfig holds periodic perturbation parameters.
type PerturbConfig struct {
	Enabled  bool         `yaml:"enabled"`
	Interval int          `yaml:"interval"` // Steps between events
	Style    PerturbStyle `yaml:"style"`
	Iters    int          `yaml:"iters"`   // Steps each event stays active
	Circles  int          `yaml:"circles"` // Circle count for PerturbCircles
}

// SimConfig holds the parameters of one simulation instance.
type SimConfig struct {
	Dim            int     `yaml:"dim"` // Field side length in cells
	NumAgents      int     `yaml:"num_agents"`
	FilterSize     int     `yaml:"filter_size"` // Box filter width, odd
	Decay          float32 `yaml:"decay"`
	DiffuseSpeed   float32 `yaml:"diffuse_speed"` // Blend toward the blurred field, [0,1]
	DiffuseEnabled bool    `yaml:"diffuse_enabled"`
	TimeScale      float32 `yaml:"time_scale"`

	Perturb PerturbConfig `yaml:"perturb"`

	CircularWorld  bool `yaml:"circular_world"`
	SignalEnabled  bool `yaml:"signal_enabled"`
	AverageImage   bool `yaml:"average_image"`
	TurnSpeedPower int  `yaml:"turn_speed_power"`
	SpeedPower     int  `yaml:"speed_power"`
	OnlyRightTurns bool `yaml:"only_right_turns"`

	WorldSpan           float32 `yaml:"world_span"`            // Side of the external world square
	DirectionScale      float32 `yaml:"direction_scale"`       // 0 disables direction influence
	DirectionNoiseScale float64 `yaml:"direction_noise_scale"` // Noise frequency of the direction field
	Seed                int64   `yaml:"seed"`
	Workers             int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// DT returns the fixed step scaled by TimeScale.
func (c SimConfig) DT() float32 {
	return 1.0 / 60.0 * c.TimeScale
}

// ResetDiffusion restores the default decay and diffuse speed and enables diffusion.
func (c *SimConfig) ResetDiffusion() {
	c.Decay = DefaultDecay
	c.DiffuseSpeed = DefaultDiffuseSpeed
	c.DiffuseEnabled = true
}

// ValidationError describes one invalid SimConfig field.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s = %v: %s", e.Field, e.Value, e.Reason)
}

// Validate reports every invalid field. Sanitize repairs the same conditions.
func (c *SimConfig) Validate() error {
	var errs []error
	add := func(field string, v any, reason string) {
		errs = append(errs, &ValidationError{Field: field, Value: v, Reason: reason})
	}

	if c.Dim < 1 {
		add("dim", c.Dim, "must be positive")
	}
	if c.NumAgents < 0 {
		add("num_agents", c.NumAgents, "must not be negative")
	}
	if c.FilterSize < 1 || c.FilterSize%2 == 0 {
		add("filter_size", c.FilterSize, "must be odd and at least 1")
	}
	if c.Decay < 0 {
		add("decay", c.Decay, "must not be negative")
	}
	if c.DiffuseSpeed < 0 || c.DiffuseSpeed > 1 {
		add("diffuse_speed", c.DiffuseSpeed, "must be in [0,1]")
	}
	if c.Perturb.Interval < 1 {
		add("perturb.interval", c.Perturb.Interval, "must be at least 1")
	}
	if c.Perturb.Iters < 0 {
		add("perturb.iters", c.Perturb.Iters, "must not be negative")
	}
	if c.Perturb.Style != PerturbCircles && c.Perturb.Style != PerturbNoise {
		add("perturb.style", c.Perturb.Style, "unknown style")
	}
	if c.WorldSpan <= 0 {
		add("world_span", c.WorldSpan, "must be positive")
	}

	return errors.Join(errs...)
}

// Sanitize clamps invalid fields to the nearest usable value. Zero agents is
// allowed and leaves the field to diffusion and external inputs.
func (c *SimConfig) Sanitize() {
	if c.Dim < 1 {
		c.Dim = 1
	}
	if c.NumAgents < 0 {
		c.NumAgents = 0
	}
	if c.FilterSize < 1 {
		c.FilterSize = 1
	}
	if c.FilterSize%2 == 0 {
		c.FilterSize++
	}
	if c.Decay < 0 {
		c.Decay = 0
	}
	c.DiffuseSpeed = min(max(c.DiffuseSpeed, 0), 1)
	if c.Perturb.Interval < 1 {
		c.Perturb.Interval = 1
	}
	if c.Perturb.Iters < 0 {
		c.Perturb.Iters = 0
	}
	if c.Perturb.Circles < 0 {
		c.Perturb.Circles = 0
	}
	if c.Perturb.Style != PerturbCircles && c.Perturb.Style != PerturbNoise {
		c.Perturb.Style = PerturbCircles
	}
	if c.WorldSpan <= 0 {
		c.WorldSpan = DefaultWorldSpan
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
}
