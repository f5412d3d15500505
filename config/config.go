// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all process configuration. The simulation core only ever sees a copy
// of the Sim section.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Sim       SimConfig       `yaml:"sim"`
	Signal    SignalConfig    `yaml:"signal"`
	Visitors  VisitorsConfig  `yaml:"visitors"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Tune      TuneConfig      `yaml:"tune"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	TargetFPS  int `yaml:"target_fps"`
	PanelWidth int `yaml:"panel_width"` // Control panel width in pixels
}

// SignalConfig holds the initial external signal parameters.
type SignalConfig struct {
	Value       float32    `yaml:"value"`
	Position    [2]float32 `yaml:"position"` // Field fraction
	Radius      float32    `yaml:"radius"`   // Field fraction
	ChannelMask [3]float32 `yaml:"channel_mask"`
}

// VisitorsConfig holds parameters for the world-space wanderers.
type VisitorsConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Count        int     `yaml:"count"`
	Speed        float32 `yaml:"speed"`         // World units per second
	SenseRadius  float32 `yaml:"sense_radius"`  // World units
	DropRadius   float32 `yaml:"drop_radius"`   // World units
	Threshold    float32 `yaml:"threshold"`     // Drop palette when local quality is below this
	DropStrength float32 `yaml:"drop_strength"` // Scales the palette before it is added
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsInterval       int     `yaml:"stats_interval"` // Steps between stats records
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	CoverageThreshold   float32 `yaml:"coverage_threshold"`
}

// TuneConfig holds defaults for the parameter search tool.
type TuneConfig struct {
	Ticks      int `yaml:"ticks"`
	Seeds      int `yaml:"seeds"`
	MaxEvals   int `yaml:"max_evals"`
	Population int `yaml:"population"` // 0 = auto
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Sim.DT()
	ScreenW32 float32
	ScreenH32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = c.Sim.DT()
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// WriteYAML saves the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
