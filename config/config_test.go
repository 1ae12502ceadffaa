package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/collide2d/broadphase"
	"github.com/pthm-cable/collide2d/narrowphase"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Derived.Method != narrowphase.SAT {
		t.Errorf("method = %v, want sat", cfg.Derived.Method)
	}
	if cfg.Derived.BroadPhase != broadphase.QuadTreeKind {
		t.Errorf("broad phase = %v, want quadtree", cfg.Derived.BroadPhase)
	}
	if cfg.Derived.Tuning != broadphase.DefaultConfig() {
		t.Errorf("tuning = %+v, want %+v", cfg.Derived.Tuning, broadphase.DefaultConfig())
	}
	if cfg.Derived.FixedArea != nil {
		t.Error("defaults should not fix the area")
	}
	if cfg.Derived.Matrix != nil {
		t.Error("defaults should let every layer interact")
	}
	if cfg.Physics.DT <= 0 {
		t.Errorf("dt = %v, want positive", cfg.Physics.DT)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := writeFile(t, `
physics:
  collision_method: aabb
  broad_phase: grid
  fixed_area: {min_x: -10, min_y: -20, max_x: 30, max_y: 40}
  collision_matrix:
    - [body, ground]
grid:
  max_subdivisions: 8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.Method != narrowphase.AABB || cfg.Derived.BroadPhase != broadphase.GridKind {
		t.Errorf("derived = %v/%v, want aabb/grid", cfg.Derived.Method, cfg.Derived.BroadPhase)
	}
	if cfg.Grid.MaxSubdivisions != 8 || cfg.Grid.PopulationDivisor != 10 {
		t.Errorf("grid = %+v, want divisor kept from defaults", cfg.Grid)
	}
	if cfg.QuadTree.MaxItems != 16 {
		t.Errorf("quadtree.max_items = %d, want default 16", cfg.QuadTree.MaxItems)
	}
	area := cfg.Derived.FixedArea
	if area == nil || area.Min.X != -10 || area.Min.Y != -20 || area.Max.X != 30 || area.Max.Y != 40 {
		t.Errorf("fixed area = %+v", area)
	}
	m := cfg.Derived.Matrix
	if !m.Allows("ground", "body") || m.Allows("body", "body") {
		t.Errorf("matrix = %v", m)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown method", "physics: {collision_method: gjk}", "collision_method"},
		{"unknown broad phase", "physics: {broad_phase: bvh}", "broad_phase"},
		{"inverted area", "physics: {fixed_area: {min_x: 5, max_x: 1}}", "fixed_area"},
		{"zero divisor", "grid: {population_divisor: 0}", "grid"},
		{"bad yaml", "physics: [", "parsing config file"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Physics.BroadPhase = "grid"
	cfg.Physics.CollisionMatrix = [][2]string{{"a", "b"}}

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Derived.BroadPhase != broadphase.GridKind {
		t.Errorf("broad phase = %v, want grid", back.Derived.BroadPhase)
	}
	if !back.Derived.Matrix.Allows("b", "a") {
		t.Error("matrix lost in round trip")
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg should panic before Init")
		}
	}()
	Cfg()
}
