package vmath

// Bounds2 is an axis-aligned rectangle.
type Bounds2 struct {
	Min, Max Vec2
}

// FromMinMaxComponents builds bounds from two arbitrary corners.
func FromMinMaxComponents(a, b Vec2) Bounds2 {
	return Bounds2{Min: a.Min(b), Max: a.Max(b)}
}

// CenteredSquare returns a square of the given span centered on the origin.
func CenteredSquare(span float32) Bounds2 {
	h := span / 2
	return Bounds2{Min: Vec2{-h, -h}, Max: Vec2{h, h}}
}

func (b Bounds2) Size() Vec2   { return b.Max.Sub(b.Min) }
func (b Bounds2) Center() Vec2 { return b.Min.Add(b.Max).Scale(0.5) }

// ToFraction maps p to (p-min)/(max-min). An axis with a degenerate span maps to 0.
func (b Bounds2) ToFraction(p Vec2) Vec2 {
	size := b.Size()
	var out Vec2
	if abs(size.X) >= Epsilon {
		out.X = (p.X - b.Min.X) / size.X
	}
	if abs(size.Y) >= Epsilon {
		out.Y = (p.Y - b.Min.Y) / size.Y
	}
	return out
}

// FromFraction is the inverse of ToFraction.
func (b Bounds2) FromFraction(f Vec2) Vec2 {
	return b.Min.Add(b.Size().Mul(f))
}

// Contains reports whether p lies in [min, max).
func (b Bounds2) Contains(p Vec2) bool {
	return p.Ge(b.Min).All() && p.Lt(b.Max).All()
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
