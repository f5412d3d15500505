// Package camera maps between screen pixels, world space and field fractions for
// a pan/zoom view over a toroidal field.
package camera

import "github.com/nfagan/slime-mold/vmath"

// Camera controls the viewport into the field.
type Camera struct {
	// Center of the view in world coordinates
	Center vmath.Vec2

	// Zoom 1 fits the whole world in the viewport
	Zoom float32

	Viewport vmath.Vec2
	World    vmath.Bounds2

	MinZoom, MaxZoom float32
}

// New creates a camera showing the whole world.
func New(viewport vmath.Vec2, world vmath.Bounds2) *Camera {
	return &Camera{
		Center:   world.Center(),
		Zoom:     1,
		Viewport: viewport,
		World:    world,
		MinZoom:  1,
		MaxZoom:  16,
	}
}

// pixelsPerUnit is the screen scale at the current zoom.
func (c *Camera) pixelsPerUnit() float32 {
	size := c.World.Size()
	if size.X < vmath.Epsilon || size.Y < vmath.Epsilon {
		return 0
	}
	fit := min(c.Viewport.X/size.X, c.Viewport.Y/size.Y)
	return fit * c.Zoom
}

// WorldToScreen converts a world point to screen pixels along the shortest
// toroidal path from the view center.
func (c *Camera) WorldToScreen(w vmath.Vec2) vmath.Vec2 {
	size := c.World.Size()
	d := vmath.V2(
		toroidalDelta(w.X, c.Center.X, size.X),
		toroidalDelta(w.Y, c.Center.Y, size.Y),
	)
	return c.Viewport.Scale(0.5).Add(d.Scale(c.pixelsPerUnit()))
}

// ScreenToWorld converts screen pixels to a world point wrapped into the world.
func (c *Camera) ScreenToWorld(s vmath.Vec2) vmath.Vec2 {
	ppu := c.pixelsPerUnit()
	if ppu == 0 {
		return c.Center
	}
	d := s.Sub(c.Viewport.Scale(0.5)).Scale(1 / ppu)
	return c.wrap(c.Center.Add(d))
}

// ScreenToField converts screen pixels to a field fraction in [0,1)².
func (c *Camera) ScreenToField(s vmath.Vec2) vmath.Vec2 {
	return c.World.ToFraction(c.ScreenToWorld(s))
}

// VisibleField returns the visible region in field fractions. Min may be below 0
// or Max above 1 when the view wraps; the texture is sampled with repeat.
func (c *Camera) VisibleField() vmath.Bounds2 {
	ppu := c.pixelsPerUnit()
	if ppu == 0 {
		return vmath.Bounds2{Max: vmath.V2(1, 1)}
	}
	half := c.Viewport.Scale(0.5 / ppu)
	size := c.World.Size()
	center := c.World.ToFraction(c.Center)
	halfFrac := half.Div(size)
	return vmath.Bounds2{Min: center.Sub(halfFrac), Max: center.Add(halfFrac)}
}

// Resize updates the viewport dimensions.
func (c *Camera) Resize(viewport vmath.Vec2) {
	c.Viewport = viewport
}

// SetWorld replaces the world bounds and recenters the view.
func (c *Camera) SetWorld(world vmath.Bounds2) {
	c.World = world
	c.Reset()
}

// Pan moves the view by a screen-space delta.
func (c *Camera) Pan(delta vmath.Vec2) {
	ppu := c.pixelsPerUnit()
	if ppu == 0 {
		return
	}
	c.Center = c.wrap(c.Center.Add(delta.Scale(1 / ppu)))
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = vmath.Clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomAt multiplies the zoom by factor keeping the world point under the screen
// position s fixed.
func (c *Camera) ZoomAt(s vmath.Vec2, factor float32) {
	before := c.ScreenToWorld(s)
	c.SetZoom(c.Zoom * factor)
	after := c.ScreenToWorld(s)
	size := c.World.Size()
	shift := vmath.V2(
		toroidalDelta(before.X, after.X, size.X),
		toroidalDelta(before.Y, after.Y, size.Y),
	)
	c.Center = c.wrap(c.Center.Add(shift))
}

// Reset returns the camera to the world center at zoom 1.
func (c *Camera) Reset() {
	c.Center = c.World.Center()
	c.Zoom = 1
}

func (c *Camera) wrap(p vmath.Vec2) vmath.Vec2 {
	size := c.World.Size()
	return vmath.V2(
		c.World.Min.X+vmath.Wrap(p.X-c.World.Min.X, size.X),
		c.World.Min.Y+vmath.Wrap(p.Y-c.World.Min.Y, size.Y),
	)
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}
