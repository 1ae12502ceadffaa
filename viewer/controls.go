package viewer

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	buttonW   = 170
	buttonH   = 26
	buttonGap = 6
)

// drawControls renders the toggle buttons along the right edge.
func (v *Viewer) drawControls() {
	phys := v.demo.Scene().Physics()
	x := float32(rl.GetScreenWidth()) - buttonW - 10
	y := float32(10)
	next := func() rl.Rectangle {
		r := rl.Rectangle{X: x, Y: y, Width: buttonW, Height: buttonH}
		y += buttonH + buttonGap
		return r
	}

	if gui.Button(next(), fmt.Sprintf("Method: %s [M]", phys.Method())) {
		v.demo.ToggleMethod()
	}
	if gui.Button(next(), fmt.Sprintf("Broad: %s [G]", phys.BroadPhase())) {
		v.demo.ToggleBroadPhase()
	}
	if gui.Button(next(), toggleText(v.paused, "Resume [Space]", "Pause [Space]")) {
		v.paused = !v.paused
	}

	opts := &v.renderer.Options
	if gui.Button(next(), toggleText(opts.Bounds, "Hide bounds [B]", "Show bounds [B]")) {
		opts.Bounds = !opts.Bounds
	}
	if gui.Button(next(), toggleText(opts.Contacts, "Hide contacts [C]", "Show contacts [C]")) {
		opts.Contacts = !opts.Contacts
	}
	if gui.Button(next(), toggleText(opts.Area, "Hide area [A]", "Show area [A]")) {
		opts.Area = !opts.Area
	}
	if gui.Button(next(), "Drop 10 bodies") {
		if err := v.demo.SpawnBodies(10); err != nil {
			slog.Error("failed to spawn bodies", "error", err)
		}
	}
	if v.demo.CanSnapshot() && gui.Button(next(), "Snapshot [S]") {
		v.snapshot()
	}

	rl.DrawText(fmt.Sprintf("Speed: %dx  [</>]", v.stepsPerUpdate), int32(x), int32(y)+4, 16, rl.LightGray)
}

func (v *Viewer) snapshot() {
	if _, err := v.demo.SaveSnapshot(); err != nil {
		slog.Error("failed to save snapshot", "error", err)
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
