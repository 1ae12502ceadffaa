package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds every collider and body of a world so a layout can be
// replayed.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Tick    int64 `json:"tick"`

	Method     string `json:"method"`
	BroadPhase string `json:"broad_phase"`

	Colliders []ColliderState `json:"colliders"`
	Bodies    []BodyState     `json:"bodies"`
}

// Point is a JSON-friendly vector.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ColliderState holds one collider.
type ColliderState struct {
	Shape    string  `json:"shape"` // polygon | circle | line
	Rect     bool    `json:"rect,omitempty"`
	Points   []Point `json:"points,omitempty"` // local vertices
	Radius   float64 `json:"radius,omitempty"`
	Position Point   `json:"position"`
	Rotation float64 `json:"rotation"`

	Layer            string `json:"layer"`
	Group            string `json:"group,omitempty"`
	Physics          bool   `json:"physics"`
	UpdateCollisions bool   `json:"update_collisions"`
	Active           bool   `json:"active"`
}

// BodyState holds one body. Colliders index into Snapshot.Colliders.
type BodyState struct {
	Kind      string  `json:"kind"`
	Colliders []int   `json:"colliders"`
	Position  Point   `json:"position"`
	Velocity  Point   `json:"velocity"`
	Gravity   float64 `json:"gravity"`
	Active    bool    `json:"active"`
}

// SaveSnapshot writes a snapshot to dir and returns the file path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Tick))
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	for i, b := range snapshot.Bodies {
		for _, ci := range b.Colliders {
			if ci < 0 || ci >= len(snapshot.Colliders) {
				return nil, fmt.Errorf("body %d references collider %d of %d", i, ci, len(snapshot.Colliders))
			}
		}
	}
	return &snapshot, nil
}
