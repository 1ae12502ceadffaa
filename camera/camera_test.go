package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720)
	cam.Center = r2.Vec{X: 50, Y: 20}

	// Camera center should map to screen center
	sx, sy := cam.WorldToScreen(cam.Center)
	if sx != 640 || sy != 360 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestWorldIsYUp(t *testing.T) {
	cam := New(1280, 720)
	_, below := cam.WorldToScreen(r2.Vec{Y: -10})
	_, above := cam.WorldToScreen(r2.Vec{Y: 10})
	if above >= below {
		t.Errorf("higher world y should be higher on screen: above=%f below=%f", above, below)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720)
	cam.Center = r2.Vec{X: -30, Y: 200}
	cam.SetZoom(2.5)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}
	for _, tc := range testCases {
		w := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(w)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> %+v -> (%f,%f)", tc.sx, tc.sy, w, sx, sy)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720)

	cam.SetZoom(0.001)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}
	cam.SetZoom(1000)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
}

func TestFit(t *testing.T) {
	cam := New(800, 600)
	box := r2.Box{Min: r2.Vec{X: -100, Y: 0}, Max: r2.Vec{X: 300, Y: 100}}
	cam.Fit(box, 0)

	if cam.Center != (r2.Vec{X: 100, Y: 50}) {
		t.Errorf("center = %+v, want (100, 50)", cam.Center)
	}
	// width is the limiting dimension: 800 px / 400 units
	if cam.Zoom != 2 {
		t.Errorf("zoom = %f, want 2", cam.Zoom)
	}
	v := cam.Visible()
	if v.Min.X > box.Min.X || v.Max.X < box.Max.X || v.Min.Y > box.Min.Y || v.Max.Y < box.Max.Y {
		t.Errorf("visible %+v does not contain %+v", v, box)
	}
}

func TestPanMovesOppositeScreenY(t *testing.T) {
	cam := New(800, 600)
	cam.SetZoom(2)
	cam.Pan(20, 10)
	if cam.Center != (r2.Vec{X: 10, Y: -5}) {
		t.Errorf("center = %+v, want (10, -5)", cam.Center)
	}
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	cam := New(800, 600)
	before := cam.ScreenToWorld(100, 500)
	cam.ZoomAt(100, 500, 3)
	after := cam.ScreenToWorld(100, 500)
	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Errorf("anchor moved from %+v to %+v", before, after)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720)
	// Visible range: (-640, -360) to (640, 360)

	if !cam.IsVisible(r2.Box{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 1, Y: 1}}) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(r2.Box{Min: r2.Vec{X: 700, Y: 0}, Max: r2.Vec{X: 800, Y: 10}}) {
		t.Error("far box should not be visible")
	}
	if !cam.IsVisible(r2.Box{Min: r2.Vec{X: 600, Y: 300}, Max: r2.Vec{X: 800, Y: 500}}) {
		t.Error("box straddling the edge should be visible")
	}
}
