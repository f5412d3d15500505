// Package visitors runs a small population of world-space wanderers that read
// from and write into a simulation field through its quality queries.
package visitors

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/nfagan/slime-mold/config"
	"github.com/nfagan/slime-mold/vmath"
)

// steerProbeAngle is the offset of the two steering probes from the heading.
const steerProbeAngle = 0.6

// turnRate is the maximum heading change in radians per second.
const turnRate = 2.5

// Field is the part of a simulation visitors interact with.
type Field interface {
	SampleQualityAt(worldPos vmath.Vec2, worldRadius float32) vmath.Vec3
	AddQualityAt(worldPos vmath.Vec2, worldRadius float32, v vmath.Vec3)
	World() vmath.Bounds2
}

// StepStats summarizes one Step.
type StepStats struct {
	Drops       int
	MeanQuality float32
}

// Swarm owns the visitor entities.
type Swarm struct {
	world  *ecs.World
	mapper *ecs.Map3[Position, Velocity, Palette]
	filter *ecs.Filter3[Position, Velocity, Palette]

	cfg   config.VisitorsConfig
	rng   *rand.Rand
	count int
}

// New creates an empty swarm.
func New(cfg config.VisitorsConfig, rng *rand.Rand) *Swarm {
	world := ecs.NewWorld()
	return &Swarm{
		world:  world,
		mapper: ecs.NewMap3[Position, Velocity, Palette](world),
		filter: ecs.NewFilter3[Position, Velocity, Palette](world),
		cfg:    cfg,
		rng:    rng,
	}
}

// Spawn adds cfg.Count visitors at random positions inside bounds.
func (s *Swarm) Spawn(bounds vmath.Bounds2) {
	for i := 0; i < s.cfg.Count; i++ {
		p := bounds.FromFraction(vmath.V2(s.rng.Float32(), s.rng.Float32()))
		heading := s.rng.Float32() * 2 * math.Pi
		s.Add(p, heading, s.randomPalette())
	}
}

// Add creates one visitor.
func (s *Swarm) Add(p vmath.Vec2, heading float32, color vmath.Vec3) ecs.Entity {
	v := vmath.FromAngle(heading).Scale(s.cfg.Speed)
	pos := Position{X: p.X, Y: p.Y}
	vel := Velocity{X: v.X, Y: v.Y}
	pal := Palette{R: color.X, G: color.Y, B: color.Z}
	s.count++
	return s.mapper.NewEntity(&pos, &vel, &pal)
}

// randomPalette picks one strong channel and a faint second one.
func (s *Swarm) randomPalette() vmath.Vec3 {
	var c vmath.Vec3
	main := s.rng.Intn(3)
	c.Set(main, 1)
	c.Set((main+1+s.rng.Intn(2))%3, s.rng.Float32()*0.3)
	return c
}

// Len returns the number of visitors.
func (s *Swarm) Len() int { return s.count }

// Step moves every visitor by dt seconds. Each one samples the field, turns away
// from the brighter of two forward probes and drops its palette where the field is
// dim. Positions wrap inside the field's world bounds.
func (s *Swarm) Step(f Field, dt float32) StepStats {
	var st StepStats
	bounds := f.World()
	size := bounds.Size()
	maxTurn := turnRate * dt

	query := s.filter.Query()
	for query.Next() {
		pos, vel, pal := query.Get()
		p := vmath.V2(pos.X, pos.Y)

		q := intensity(f.SampleQualityAt(p, s.cfg.SenseRadius))
		st.MeanQuality += q

		heading := float32(math.Atan2(float64(vel.Y), float64(vel.X)))
		ahead := s.cfg.SenseRadius * 2
		left := intensity(f.SampleQualityAt(p.Add(vmath.FromAngle(heading+steerProbeAngle).Scale(ahead)), s.cfg.SenseRadius))
		right := intensity(f.SampleQualityAt(p.Add(vmath.FromAngle(heading-steerProbeAngle).Scale(ahead)), s.cfg.SenseRadius))
		switch {
		case left > right:
			heading -= maxTurn
		case right > left:
			heading += maxTurn
		}

		if q < s.cfg.Threshold {
			color := vmath.V3(pal.R, pal.G, pal.B).Scale(s.cfg.DropStrength)
			f.AddQualityAt(p, s.cfg.DropRadius, color)
			st.Drops++
		}

		v := vmath.FromAngle(heading).Scale(s.cfg.Speed)
		vel.X, vel.Y = v.X, v.Y
		p = p.Add(v.Scale(dt))
		pos.X = bounds.Min.X + vmath.Wrap(p.X-bounds.Min.X, size.X)
		pos.Y = bounds.Min.Y + vmath.Wrap(p.Y-bounds.Min.Y, size.Y)
	}

	if s.count > 0 {
		st.MeanQuality /= float32(s.count)
	}
	return st
}

// Each calls fn with every visitor's position and palette.
func (s *Swarm) Each(fn func(pos vmath.Vec2, color vmath.Vec3)) {
	query := s.filter.Query()
	for query.Next() {
		pos, _, pal := query.Get()
		fn(vmath.V2(pos.X, pos.Y), vmath.V3(pal.R, pal.G, pal.B))
	}
}

func intensity(q vmath.Vec3) float32 {
	return (q.X + q.Y + q.Z) / 3
}
