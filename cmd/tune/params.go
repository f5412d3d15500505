package main

import (
	"math"

	"github.com/nfagan/slime-mold/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded before use
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "decay", Path: "sim.decay", Min: 0.0005, Max: 0.02, Default: config.DefaultDecay},
			{Name: "diffuse_speed", Path: "sim.diffuse_speed", Min: 0.5, Max: 1.0, Default: config.DefaultDiffuseSpeed},
			{Name: "turn_speed_power", Path: "sim.turn_speed_power", Min: -2, Max: 5, Default: 0, Integer: true},
			{Name: "speed_power", Path: "sim.speed_power", Min: -2, Max: 4, Default: 0, Integer: true},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp bounds every value and rounds integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := min(max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes parameter values into a SimConfig. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.SimConfig, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Decay = float32(clamped[0])
	cfg.DiffuseSpeed = float32(clamped[1])
	cfg.TurnSpeedPower = int(clamped[2])
	cfg.SpeedPower = int(clamped[3])
	cfg.DiffuseEnabled = true
}

// ExtractFromConfig reads the current parameter values from a SimConfig.
func (pv *ParamVector) ExtractFromConfig(cfg *config.SimConfig) []float64 {
	return []float64{
		float64(cfg.Decay),
		float64(cfg.DiffuseSpeed),
		float64(cfg.TurnSpeedPower),
		float64(cfg.SpeedPower),
	}
}
