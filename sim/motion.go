package sim

import (
	"math"
	"math/rand"

	"github.com/nfagan/slime-mold/field"
	"github.com/nfagan/slime-mold/vmath"
)

// motionParams is the per-step, read-only input to updateAgent.
type motionParams struct {
	dt             float32
	circular       bool
	directions     *field.DirectionField
	directionScale float32
}

// probe samples the field one sensor step from the agent along the absolute angle
// dir and weights the result by the agent's channel preferences. Side sensors are
// fixed world directions, not rotated by the heading.
func (a *Agent) probe(f *field.Field, dir float32) vmath.Vec3 {
	p := a.Position.Add(vmath.FromAngle(dir).Scale(a.SensorStep))
	return f.Sense(p, a.SensorSize, field.Clamped, true).Mul(a.ChannelWeights)
}

// updateAgent advances one agent by one step. The field is only read.
func updateAgent(a *Agent, f *field.Field, mp motionParams, rng *rand.Rand) {
	lens := [3]float32{
		a.probe(f, a.Heading).Length(),
		a.probe(f, a.LeftSensor).Length(),
		a.probe(f, a.RightSensor).Length(),
	}

	// Ties resolve to the earliest probe: forward, left, right.
	best := 0
	for i := 1; i < len(lens); i++ {
		if lens[i] > lens[best] {
			best = i
		}
	}

	heading := a.Heading
	switch best {
	case 1:
		if !a.RightOnly {
			heading += a.TurnSpeed * mp.dt
		}
	case 2:
		heading -= a.TurnSpeed * mp.dt
	}

	if mp.directions != nil && mp.directionScale > 0 {
		target := mp.directions.AngleAt(a.Position)
		heading += mp.directionScale * vmath.ShortestAngle(heading, target)
	}

	sens := 1 - float32(math.Exp(float64(-lens[best]*a.SpeedSensitivity)))
	speed := a.Speed + a.SpeedSensitivityScale*sens

	pos := a.Position.Add(vmath.FromAngle(heading).Scale(speed * mp.dt))
	if mp.circular {
		pos = vmath.V2(vmath.Wrap01(pos.X), vmath.Wrap01(pos.Y))
	} else if pos.X < 0 || pos.Y < 0 || pos.X >= 1 || pos.Y >= 1 {
		pos = pos.Clamp(vmath.V2(boundaryEps, boundaryEps), vmath.V2(1-boundaryEps, 1-boundaryEps))
		heading = randomHeading(rng)
	}

	a.Heading = heading
	a.Position = pos
}
