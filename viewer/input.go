package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyN) && v.paused {
		v.demo.Step()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.stepsPerUpdate > 1 {
		v.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.stepsPerUpdate < 10 {
		v.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyM) {
		v.demo.ToggleMethod()
	}
	if rl.IsKeyPressed(rl.KeyG) {
		v.demo.ToggleBroadPhase()
	}

	opts := &v.renderer.Options
	if rl.IsKeyPressed(rl.KeyB) {
		opts.Bounds = !opts.Bounds
	}
	if rl.IsKeyPressed(rl.KeyC) {
		opts.Contacts = !opts.Contacts
	}
	if rl.IsKeyPressed(rl.KeyA) {
		opts.Area = !opts.Area
	}
	if rl.IsKeyPressed(rl.KeyH) {
		opts.HUD = !opts.HUD
	}
	if rl.IsKeyPressed(rl.KeyS) && v.demo.CanSnapshot() {
		v.snapshot()
	}

	v.handleCameraInput()
	v.inspect.handleInput(v)
}

// handleResize propagates window size changes to the camera.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	v.cam.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	// Pan speed is in screen pixels per frame
	const panSpeed = 8.0

	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}

	// Zoom toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		v.cam.ZoomAt(mouse.X, mouse.Y, 1+float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Fit(v.demo.Arena(), fitMargin)
	}
}
