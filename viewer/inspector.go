package viewer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
)

// Panel dimensions
const (
	panelWidth   = 300
	panelPadding = 10
	headerHeight = 26
	lineHeight   = 18
)

// Panel colors
var (
	colorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	colorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	colorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	colorLabel       = rl.Color{R: 200, G: 200, B: 220, A: 255}
	colorHighlight   = rl.Color{R: 255, G: 255, B: 255, A: 255}
)

// inspector tracks the selected entity and renders its details.
type inspector struct {
	selected    ecs.Entity
	hasSelected bool
}

// handleInput selects the entity under a left click; right click or Escape
// deselects.
func (ins *inspector) handleInput(v *Viewer) {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.hasSelected = false
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	// Clicks on the control column belong to the buttons
	if mouse.X >= float32(rl.GetScreenWidth())-buttonW-20 {
		return
	}
	ins.selected, ins.hasSelected = v.demo.Scene().Pick(v.cam.ScreenToWorld(mouse.X, mouse.Y))
}

// draw renders the details panel for the selection.
func (ins *inspector) draw(v *Viewer) {
	if !ins.hasSelected {
		return
	}
	s := v.demo.Scene()
	if !s.World().Alive(ins.selected) {
		ins.hasSelected = false
		return
	}
	c := s.Collider(ins.selected)
	b := s.Body(ins.selected)
	if c == nil || b == nil {
		return
	}

	// Outline the selection
	v.renderer.Highlight(c.Shape, colorHighlight)

	lines := []string{
		fmt.Sprintf("collider %s  %s", c.ID(), c.Shape.Kind),
		fmt.Sprintf("layer %q  group %q", c.Layer, c.Group),
		fmt.Sprintf("physics %t  updates %t  active %t", c.Physics, c.UpdateCollisions, c.Active),
		fmt.Sprintf("pos (%.1f, %.1f)  rot %.2f", c.Shape.Position.X, c.Shape.Position.Y, c.Shape.Rotation),
		fmt.Sprintf("body %s  %s  gravity %.0f", b.ID(), b.Kind, b.Gravity),
		fmt.Sprintf("vel (%.1f, %.1f)", b.Velocity.X, b.Velocity.Y),
	}
	contacts := s.Physics().CollisionsFor(c.ID())
	lines = append(lines, fmt.Sprintf("contacts %d", len(contacts)))
	for i, col := range contacts {
		if i == 6 {
			lines = append(lines, fmt.Sprintf("  ... %d more", len(contacts)-i))
			break
		}
		r := col.Resolution
		lines = append(lines, fmt.Sprintf("  %s %q pen %.2f dir (%.2f, %.2f)",
			col.Remote.ID(), col.Remote.Layer, r.Penetration, r.Direction.X, r.Direction.Y))
	}

	drawPanel(10, int32(rl.GetScreenHeight())-int32(len(lines))*lineHeight-headerHeight-2*panelPadding-10, "Inspector", lines)
}

// drawPanel renders a titled text panel.
func drawPanel(x, y int32, title string, lines []string) {
	h := headerHeight + int32(len(lines))*lineHeight + 2*panelPadding
	rl.DrawRectangle(x, y, panelWidth, h, colorPanelBg)
	rl.DrawRectangle(x, y, panelWidth, headerHeight, colorPanelHeader)
	rl.DrawRectangleLines(x, y, panelWidth, h, colorPanelBorder)
	rl.DrawText(title, x+panelPadding, y+6, 16, colorHighlight)

	ty := y + headerHeight + panelPadding
	for _, line := range lines {
		rl.DrawText(line, x+panelPadding, ty, 14, colorLabel)
		ty += lineHeight
	}
}
