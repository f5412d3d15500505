package sim

import (
	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/field"
	"github.com/nfagan/slime-mold/vmath"
)

// SignalParams describes an externally controlled circle painted into the field.
// The caller owns it; the simulation only reads it during Update.
type SignalParams struct {
	Value       float32
	Position    vmath.Vec2 // Field fraction
	Radius      float32    // Field fraction
	ChannelMask vmath.Vec3
}

// DefaultSignalParams returns an inactive signal in the upper-left quadrant.
func DefaultSignalParams() SignalParams {
	return SignalParams{
		Position:    vmath.V2(0.25, 0.25),
		Radius:      0.05,
		ChannelMask: vmath.Splat3(1),
	}
}

// SignalParamsFromConfig converts the YAML signal section.
func SignalParamsFromConfig(c config.SignalConfig) SignalParams {
	return SignalParams{
		Value:       c.Value,
		Position:    vmath.V2(c.Position[0], c.Position[1]),
		Radius:      c.Radius,
		ChannelMask: vmath.V3(c.ChannelMask[0], c.ChannelMask[1], c.ChannelMask[2]),
	}
}

// applySignal paints params into buf and max-blends it into main. The result never
// falls below the signal but is not pushed above it either.
func applySignal(params *SignalParams, buf, main *field.Field) {
	if params == nil {
		return
	}
	buf.Clear()
	buf.ClampedAddInCircle(params.Position, params.Radius, params.ChannelMask.Scale(params.Value))
	main.MaxBlend(buf)
}
