package vmath

import "math"

// Vec2 is a 2D float32 vector.
type Vec2 struct {
	X, Y float32
}

// V2 is shorthand for Vec2{x, y}.
func V2(x, y float32) Vec2 { return Vec2{x, y} }

// FromAngle returns the unit vector (cos θ, sin θ).
func FromAngle(theta float32) Vec2 {
	s, c := math.Sincos(float64(theta))
	return Vec2{float32(c), float32(s)}
}

func (a Vec2) Add(b Vec2) Vec2        { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2        { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Mul(b Vec2) Vec2        { return Vec2{a.X * b.X, a.Y * b.Y} }
func (a Vec2) Div(b Vec2) Vec2        { return Vec2{a.X / b.X, a.Y / b.Y} }
func (a Vec2) Scale(s float32) Vec2   { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Dot(b Vec2) float32     { return a.X*b.X + a.Y*b.Y }
func (a Vec2) LengthSquared() float32 { return a.Dot(a) }

func (a Vec2) Length() float32 {
	return float32(math.Sqrt(float64(a.LengthSquared())))
}

// Normalize returns a unit vector, or the zero vector when a is degenerate.
func (a Vec2) Normalize() Vec2 {
	l := a.Length()
	if l < Epsilon {
		return Vec2{}
	}
	return a.Scale(1 / l)
}

func (a Vec2) Min(b Vec2) Vec2 { return Vec2{min(a.X, b.X), min(a.Y, b.Y)} }
func (a Vec2) Max(b Vec2) Vec2 { return Vec2{max(a.X, b.X), max(a.Y, b.Y)} }

func (a Vec2) Clamp(lo, hi Vec2) Vec2 {
	return Vec2{Clamp(a.X, lo.X, hi.X), Clamp(a.Y, lo.Y, hi.Y)}
}

func (a Vec2) Lt(b Vec2) Vec2b { return Vec2b{a.X < b.X, a.Y < b.Y} }
func (a Vec2) Ge(b Vec2) Vec2b { return Vec2b{a.X >= b.X, a.Y >= b.Y} }

// Vec2b is a per-component comparison mask.
type Vec2b struct {
	X, Y bool
}

func (m Vec2b) All() bool { return m.X && m.Y }

// Vec3 is a 3-component float32 vector. The field stores one Vec3 per cell.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float32) Vec3 { return Vec3{x, y, z} }

// Splat3 returns a Vec3 with every component set to v.
func Splat3(v float32) Vec3 { return Vec3{v, v, v} }

func (a Vec3) Add(b Vec3) Vec3        { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3        { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Mul(b Vec3) Vec3        { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }
func (a Vec3) Div(b Vec3) Vec3        { return Vec3{a.X / b.X, a.Y / b.Y, a.Z / b.Z} }
func (a Vec3) Scale(s float32) Vec3   { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float32     { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) LengthSquared() float32 { return a.Dot(a) }

func (a Vec3) Length() float32 {
	return float32(math.Sqrt(float64(a.LengthSquared())))
}

// Normalize returns a unit vector, or the zero vector when a is degenerate.
func (a Vec3) Normalize() Vec3 {
	l := a.Length()
	if l < Epsilon {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

func (a Vec3) Min(b Vec3) Vec3 { return Vec3{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)} }
func (a Vec3) Max(b Vec3) Vec3 { return Vec3{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)} }

func (a Vec3) Clamp(lo, hi Vec3) Vec3 {
	return Vec3{Clamp(a.X, lo.X, hi.X), Clamp(a.Y, lo.Y, hi.Y), Clamp(a.Z, lo.Z, hi.Z)}
}

// Clamp01 clamps every component to [0, 1].
func (a Vec3) Clamp01() Vec3 {
	return Vec3{Clamp01(a.X), Clamp01(a.Y), Clamp01(a.Z)}
}

// At returns component i (0=X, 1=Y, 2=Z).
func (a Vec3) At(i int) float32 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

// Set assigns component i.
func (a *Vec3) Set(i int, v float32) {
	switch i {
	case 0:
		a.X = v
	case 1:
		a.Y = v
	default:
		a.Z = v
	}
}
