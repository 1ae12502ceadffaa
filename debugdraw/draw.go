// Package debugdraw renders colliders, bounds and contacts with raylib.
package debugdraw

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/camera"
	"github.com/pthm-cable/collide2d/collision"
	"github.com/pthm-cable/collide2d/components"
	"github.com/pthm-cable/collide2d/geom"
	"github.com/pthm-cable/collide2d/scene"
)

// Options toggles the optional layers.
type Options struct {
	Bounds   bool // bounding boxes
	Contacts bool // resolution vectors
	Area     bool // broad-phase area
	HUD      bool
}

var (
	boundsColor  = rl.Color{R: 90, G: 90, B: 140, A: 160}
	contactColor = rl.Color{R: 255, G: 80, B: 60, A: 255}
	areaColor    = rl.Color{R: 60, G: 160, B: 90, A: 200}
	sensorColor  = rl.Color{R: 230, G: 200, B: 60, A: 200}
	hudColor     = rl.Color{R: 220, G: 220, B: 220, A: 255}
)

// Renderer draws a scene through a camera.
type Renderer struct {
	Options Options
	cam     *camera.Camera
	drawn   int
}

// New creates a renderer with all layers except bounds enabled.
func New(cam *camera.Camera) *Renderer {
	return &Renderer{
		Options: Options{Contacts: true, Area: true, HUD: true},
		cam:     cam,
	}
}

// Draw renders every visible collider of s. Call between BeginDrawing and
// EndDrawing.
func (r *Renderer) Draw(s *scene.Scene) {
	r.drawn = 0
	s.Visit(func(c *collision.Collider, contacts components.Contacts, tint components.Tint) {
		if !r.cam.IsVisible(c.Shape.Bounds) {
			return
		}
		r.drawn++
		r.shape(c.Shape, colliderColor(c, contacts, tint))
		if r.Options.Bounds {
			r.box(c.Shape.Bounds, 1, boundsColor)
		}
	})

	phys := s.Physics()
	if r.Options.Area {
		r.box(phys.Area(), 2, areaColor)
	}
	if r.Options.Contacts {
		for _, col := range phys.Collisions() {
			// Each overlap appears once per side; draw it from the lower handle.
			if col.Local.ID().Index > col.Remote.ID().Index {
				continue
			}
			r.contact(col)
		}
	}
	if r.Options.HUD {
		r.hud(s)
	}
}

// Highlight outlines shape with a thicker stroke.
func (r *Renderer) Highlight(s *geom.Shape, color rl.Color) {
	r.shape(s, color)
	r.box(s.Bounds, 2, color)
}

// Drawn returns how many colliders the last Draw rendered.
func (r *Renderer) Drawn() int { return r.drawn }

func (r *Renderer) shape(s *geom.Shape, color rl.Color) {
	switch s.Kind {
	case geom.Circle:
		x, y := r.cam.WorldToScreen(s.Position)
		radius := float32(s.Radius * r.cam.Zoom)
		rl.DrawCircleLinesV(rl.Vector2{X: x, Y: y}, radius, color)
		// Spoke shows rotation.
		ex, ey := r.cam.WorldToScreen(r2.Add(s.Position, r2.Rotate(r2.Vec{X: s.Radius}, s.Rotation, r2.Vec{})))
		rl.DrawLineEx(rl.Vector2{X: x, Y: y}, rl.Vector2{X: ex, Y: ey}, 1, color)
	default:
		n := len(s.Vertices)
		if s.Kind == geom.Line {
			n = 1
		}
		for i := range n {
			ax, ay := r.cam.WorldToScreen(s.Vertices[i])
			bx, by := r.cam.WorldToScreen(s.Vertices[(i+1)%len(s.Vertices)])
			rl.DrawLineEx(rl.Vector2{X: ax, Y: ay}, rl.Vector2{X: bx, Y: by}, 2, color)
		}
	}
}

func (r *Renderer) box(b r2.Box, thick float32, color rl.Color) {
	if b.Empty() {
		return
	}
	// Screen y grows downward, so the world max corner is the top-left.
	x0, y0 := r.cam.WorldToScreen(r2.Vec{X: b.Min.X, Y: b.Max.Y})
	x1, y1 := r.cam.WorldToScreen(r2.Vec{X: b.Max.X, Y: b.Min.Y})
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, thick, color)
}

func (r *Renderer) contact(col collision.Collision) {
	from := col.Local.Shape.Center
	to := r2.Add(from, col.Resolution.Displacement)
	fx, fy := r.cam.WorldToScreen(from)
	tx, ty := r.cam.WorldToScreen(to)
	rl.DrawLineEx(rl.Vector2{X: fx, Y: fy}, rl.Vector2{X: tx, Y: ty}, 2, contactColor)
	rl.DrawCircleV(rl.Vector2{X: tx, Y: ty}, 3, contactColor)
}

func (r *Renderer) hud(s *scene.Scene) {
	phys := s.Physics()
	st := phys.Stats()
	lines := []string{
		fmt.Sprintf("FPS %d  tick %d", rl.GetFPS(), phys.Tick()),
		fmt.Sprintf("%s / %s", phys.Method(), phys.BroadPhase()),
		fmt.Sprintf("entities %d  drawn %d", s.Len(), r.drawn),
		fmt.Sprintf("active %d  candidates %d", st.Active, st.Candidates),
		fmt.Sprintf("tests %d  pairs %d", st.NarrowTests, st.Pairs),
	}
	y := int32(10)
	for _, line := range lines {
		rl.DrawText(line, 10, y, 16, hudColor)
		y += 20
	}
}

// colliderColor picks the outline color. Sensors get a fixed color and
// colliders in contact are drawn brighter.
func colliderColor(c *collision.Collider, contacts components.Contacts, tint components.Tint) rl.Color {
	if !c.Physics {
		return sensorColor
	}
	col := rl.Color{R: tint.R, G: tint.G, B: tint.B, A: tint.A}
	if col.A == 0 {
		col = rl.LightGray
	}
	if !c.Active {
		col.A /= 3
	}
	if contacts.Count > 0 {
		col = brighten(col)
	}
	return col
}

func brighten(c rl.Color) rl.Color {
	lift := func(v uint8) uint8 { return v + (255-v)/2 }
	return rl.Color{R: lift(c.R), G: lift(c.G), B: lift(c.B), A: c.A}
}
