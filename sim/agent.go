package sim

import (
	"math"
	"math/rand"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/vmath"
)

// Agent creation constants.
const (
	startSpan             = 0.1
	sensorStep            = 0.02
	sensorSize            = 0.01
	baseSpeed             = 0.1
	baseDeposit           = 1.0
	speedSensitivityScale = 0.1
	channelNoise          = 0.05

	// boundaryEps insets agents from the edge of a clamped world.
	boundaryEps = 0.001
)

// Agent is one simulated particle. Position is a field fraction in [0,1)².
type Agent struct {
	Position vmath.Vec2
	Heading  float32

	// Sensor angles are offsets from Heading.
	LeftSensor  float32
	RightSensor float32
	SensorStep  float32 // Probe distance, field fraction
	SensorSize  float32 // Probe window side, field fraction

	Speed          float32
	Deposit        float32
	ChannelWeights vmath.Vec3

	SpeedSensitivity      float32
	SpeedSensitivityScale float32
	TurnSpeed             float32 // Radians per second
	RightOnly             bool
}

// u11 returns a uniform value in [-1, 1).
func u11(rng *rand.Rand) float32 {
	return rng.Float32()*2 - 1
}

func randomHeading(rng *rand.Rand) float32 {
	return rng.Float32() * 2 * math.Pi
}

// randomChannelWeights favors one random channel with a little noise on all three.
func randomChannelWeights(rng *rand.Rand) vmath.Vec3 {
	var w vmath.Vec3
	w.Set(rng.Intn(3), 1)
	noise := vmath.V3(rng.Float32(), rng.Float32(), rng.Float32()).Scale(channelNoise)
	return w.Add(noise).Normalize().Clamp01()
}

// NewAgent creates an agent at pos with the given heading and randomized traits.
func NewAgent(cfg *config.SimConfig, pos vmath.Vec2, heading float32, rng *rand.Rand) Agent {
	a := Agent{
		Position:              pos,
		Heading:               heading,
		LeftSensor:            math.Pi * (0.25 + u11(rng)*0.1),
		RightSensor:           -math.Pi * (0.25 + u11(rng)*0.1),
		SensorStep:            sensorStep,
		SensorSize:            sensorSize,
		Speed:                 baseSpeed,
		Deposit:               baseDeposit,
		ChannelWeights:        randomChannelWeights(rng),
		SpeedSensitivity:      1 + u11(rng)*0.2,
		SpeedSensitivityScale: speedSensitivityScale,
		TurnSpeed:             math.Pi + u11(rng)*0.5,
		RightOnly:             cfg.OnlyRightTurns,
	}
	a.TurnSpeed *= vmath.Pow2(cfg.TurnSpeedPower)
	a.Speed *= vmath.Pow2(cfg.SpeedPower)
	return a
}

// NewAgents creates cfg.NumAgents agents clustered around the field center.
func NewAgents(cfg *config.SimConfig, rng *rand.Rand) []Agent {
	agents := make([]Agent, cfg.NumAgents)
	for i := range agents {
		pos := vmath.V2(u11(rng), u11(rng)).Scale(startSpan).Add(vmath.V2(0.5, 0.5))
		agents[i] = NewAgent(cfg, pos, randomHeading(rng), rng)
	}
	return agents
}
