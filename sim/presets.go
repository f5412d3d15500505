package sim

import (
	"maps"
	"slices"
	"strings"

	"github.com/nfagan/slime-mold/config"
)

// highResDim is the dimension above which style presets compensate for the finer grid.
const highResDim = 512

type qualityPreset struct {
	dim, agents int
}

var qualityPresets = map[string]qualityPreset{
	"low":  {dim: 256, agents: 1000},
	"med":  {dim: 512, agents: 8000},
	"high": {dim: 1024, agents: 25000},
}

type stylePreset struct {
	turnPower  func(highRes int) int
	speedPower func(highRes int) int
	rightOnly  bool
}

var stylePresets = map[string]stylePreset{
	"mid_coh": {
		turnPower:  func(int) int { return 2 },
		speedPower: func(hr int) int { return 2 - hr },
	},
	"high_coh": {
		turnPower:  func(hr int) int { return 3 + hr },
		speedPower: func(hr int) int { return 2 - hr },
	},
	"chaotic": {
		turnPower:  func(int) int { return 0 },
		speedPower: func(hr int) int { return 2 - hr },
		rightOnly:  true,
	},
	"fragile": {
		turnPower:  func(int) int { return 2 },
		speedPower: func(hr int) int { return 1 - hr },
	},
	"clustered": {
		turnPower: func(int) int { return 4 },
		speedPower: func(hr int) int {
			if hr == 1 {
				return 0
			}
			return 2
		},
		rightOnly: true,
	},
}

var timeScalePresets = map[string]float32{
	"default": 1,
	"fast":    4,
	"faster":  8,
	"slow":    0.5,
	"slower":  0.01,
}

var presetAliases = map[string]string{
	"mid_coherence":  "mid_coh",
	"high_coherence": "high_coh",
	"medium":         "med",
}

// PresetCommands expands a preset name into commands for cfg's current state.
// Quality presets resize, so their effect lands on the next Update.
func PresetCommands(name string, cfg *config.SimConfig) ([]Command, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := presetAliases[name]; ok {
		name = alias
	}

	if q, ok := qualityPresets[name]; ok {
		return []Command{Resize{NumAgents: q.agents, Dim: q.dim}}, true
	}
	if st, ok := stylePresets[name]; ok {
		hr := 0
		if cfg.Dim > highResDim {
			hr = 1
		}
		return []Command{
			SetTurnSpeedPower{Power: st.turnPower(hr)},
			SetSpeedPower{Power: st.speedPower(hr)},
			SetRightOnly{Value: st.rightOnly},
		}, true
	}
	if ts, ok := timeScalePresets[name]; ok {
		return []Command{SetTimeScale{Value: ts}}, true
	}
	return nil, false
}

// PresetNames lists the quality, style and time-scale presets, each group sorted.
func PresetNames() (quality, style, timeScale []string) {
	return slices.Sorted(maps.Keys(qualityPresets)),
		slices.Sorted(maps.Keys(stylePresets)),
		slices.Sorted(maps.Keys(timeScalePresets))
}
