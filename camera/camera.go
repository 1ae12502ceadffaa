// Package camera maps between physics world space and screen pixels.
package camera

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Camera controls the viewport into the world. World space is y-up, screen
// space is y-down.
type Camera struct {
	// Center is the camera center in world coordinates
	Center r2.Vec

	// Zoom is pixels per world unit
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera centered on the origin with 1:1 zoom.
func New(viewportW, viewportH float64) *Camera {
	return &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   0.05,
		MaxZoom:   20,
	}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	sx = float32(c.ViewportW/2 + (p.X-c.Center.X)*c.Zoom)
	sy = float32(c.ViewportH/2 - (p.Y-c.Center.Y)*c.Zoom)
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	return r2.Vec{
		X: c.Center.X + (float64(sx)-c.ViewportW/2)/c.Zoom,
		Y: c.Center.Y - (float64(sy)-c.ViewportH/2)/c.Zoom,
	}
}

// Visible returns the world-space box covered by the viewport.
func (c *Camera) Visible() r2.Box {
	half := r2.Vec{X: c.ViewportW / (2 * c.Zoom), Y: c.ViewportH / (2 * c.Zoom)}
	return r2.Box{Min: r2.Sub(c.Center, half), Max: r2.Add(c.Center, half)}
}

// IsVisible reports whether box intersects the viewport (conservative
// check for culling).
func (c *Camera) IsVisible(box r2.Box) bool {
	v := c.Visible()
	return box.Min.X <= v.Max.X && box.Max.X >= v.Min.X &&
		box.Min.Y <= v.Max.Y && box.Max.Y >= v.Min.Y
}

// Fit centers the camera on box and zooms so the whole box is visible
// with the given margin in pixels on each side.
func (c *Camera) Fit(box r2.Box, margin float64) {
	c.Center = box.Center()
	size := box.Size()
	availW := max(c.ViewportW-2*margin, 1)
	availH := max(c.ViewportH-2*margin, 1)
	zoom := c.MaxZoom
	if size.X > 0 {
		zoom = min(zoom, availW/size.X)
	}
	if size.Y > 0 {
		zoom = min(zoom, availH/size.Y)
	}
	c.SetZoom(zoom)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.Center.X += dx / c.Zoom
	c.Center.Y -= dy / c.Zoom
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = min(max(zoom, c.MinZoom), c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the world point under the screen
// position (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy float32, factor float64) {
	before := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	after := c.ScreenToWorld(sx, sy)
	c.Center = r2.Add(c.Center, r2.Sub(before, after))
}
