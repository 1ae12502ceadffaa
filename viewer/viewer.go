// Package viewer drives a demo inside a raylib window.
package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/collide2d/camera"
	"github.com/pthm-cable/collide2d/debugdraw"
	"github.com/pthm-cable/collide2d/demo"
)

// fitMargin is the world-space margin kept around the arena on reset.
const fitMargin = 40

// Viewer renders a demo and handles its controls.
type Viewer struct {
	demo     *demo.Demo
	cam      *camera.Camera
	renderer *debugdraw.Renderer
	inspect  inspector

	paused         bool
	stepsPerUpdate int
}

// New creates a viewer for d. The raylib window must already be open.
func New(d *demo.Demo, stepsPerUpdate int) *Viewer {
	cam := camera.New(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
	cam.Fit(d.Arena(), fitMargin)
	return &Viewer{
		demo:           d,
		cam:            cam,
		renderer:       debugdraw.New(cam),
		stepsPerUpdate: max(1, stepsPerUpdate),
	}
}

// Update handles input and runs the configured number of steps.
func (v *Viewer) Update() {
	v.handleInput()
	if v.paused {
		return
	}
	for range v.stepsPerUpdate {
		v.demo.Step()
	}
}

// Draw renders the scene and the control panel.
func (v *Viewer) Draw() {
	v.demo.Perf().RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 18, G: 20, B: 26, A: 255})
	v.renderer.Draw(v.demo.Scene())
	v.inspect.draw(v)
	v.drawControls()
	if v.paused {
		rl.DrawText("PAUSED", int32(rl.GetScreenWidth())/2-40, 10, 20, rl.Yellow)
	}
	rl.EndDrawing()
}
