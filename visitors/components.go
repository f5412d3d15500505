package visitors

// Position is a visitor's location in world space.
type Position struct {
	X, Y float32
}

// Velocity is in world units per second.
type Velocity struct {
	X, Y float32
}

// Palette is the color a visitor drops into the field.
type Palette struct {
	R, G, B float32
}
