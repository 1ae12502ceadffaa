// Package config provides configuration loading and access for the engine
// and its demo.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/collide2d/broadphase"
	"github.com/pthm-cable/collide2d/collision"
	"github.com/pthm-cable/collide2d/narrowphase"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	QuadTree  QuadTreeConfig  `yaml:"quadtree"`
	Grid      GridConfig      `yaml:"grid"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Demo      DemoConfig      `yaml:"demo"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the graphical demo.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig selects the collision pipeline.
type PhysicsConfig struct {
	DT              float64     `yaml:"dt"`
	CollisionMethod string      `yaml:"collision_method"` // sat | aabb
	BroadPhase      string      `yaml:"broad_phase"`      // quadtree | grid
	FixedArea       *AreaConfig `yaml:"fixed_area,omitempty"`
	// CollisionMatrix lists layer pairs allowed to interact. Empty means all.
	CollisionMatrix [][2]string `yaml:"collision_matrix"`
	DefaultGravity  float64     `yaml:"default_gravity"`
}

// AreaConfig is a world-space rectangle.
type AreaConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// QuadTreeConfig tunes the quad-tree broad phase.
type QuadTreeConfig struct {
	MaxItems int `yaml:"max_items"` // items per node before it splits
	MaxDepth int `yaml:"max_depth"`
}

// GridConfig tunes the uniform-grid broad phase.
type GridConfig struct {
	PopulationDivisor int `yaml:"population_divisor"` // subdivisions = population/divisor + 1
	MaxSubdivisions   int `yaml:"max_subdivisions"`
}

// TelemetryConfig holds telemetry window sizes, in ticks.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`
	StatsWindow int `yaml:"stats_window"`
}

// DemoConfig describes the scene spawned by cmd/physdemo.
type DemoConfig struct {
	Bodies      int     `yaml:"bodies"`
	MinSize     float64 `yaml:"min_size"`
	MaxSize     float64 `yaml:"max_size"`
	SpawnHeight float64 `yaml:"spawn_height"`
	FloorWidth  float64 `yaml:"floor_width"`
	FloorHeight float64 `yaml:"floor_height"`
	WallHeight  float64 `yaml:"wall_height"`
	// Fraction of spawned bodies that are circles.
	CircleRatio float64 `yaml:"circle_ratio"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Method     narrowphase.MethodKind
	BroadPhase broadphase.Kind
	Tuning     broadphase.Config
	FixedArea  *r2.Box
	Matrix     collision.Matrix // nil when no pairs are listed
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that parsing cannot catch.
func (c *Config) Validate() error {
	var errs []error
	if c.Physics.DT < 0 {
		errs = append(errs, fmt.Errorf("physics.dt must not be negative, got %v", c.Physics.DT))
	}
	if _, err := narrowphase.ParseMethod(c.Physics.CollisionMethod); err != nil {
		errs = append(errs, fmt.Errorf("physics.collision_method: %w", err))
	}
	if _, err := broadphase.ParseKind(c.Physics.BroadPhase); err != nil {
		errs = append(errs, fmt.Errorf("physics.broad_phase: %w", err))
	}
	if a := c.Physics.FixedArea; a != nil && (a.MaxX < a.MinX || a.MaxY < a.MinY) {
		errs = append(errs, fmt.Errorf("physics.fixed_area is inverted: %+v", *a))
	}
	if c.QuadTree.MaxItems < 1 || c.QuadTree.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("quadtree: max_items must be positive and max_depth non-negative"))
	}
	if c.Grid.PopulationDivisor < 1 || c.Grid.MaxSubdivisions < 1 {
		errs = append(errs, fmt.Errorf("grid: population_divisor and max_subdivisions must be positive"))
	}
	return errors.Join(errs...)
}

// Recompute validates c and refreshes Derived after fields were edited in
// code.
func (c *Config) Recompute() error { return c.computeDerived() }

// computeDerived validates the config and parses enumerated names.
func (c *Config) computeDerived() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.Derived.Method, _ = narrowphase.ParseMethod(c.Physics.CollisionMethod)
	c.Derived.BroadPhase, _ = broadphase.ParseKind(c.Physics.BroadPhase)
	c.Derived.Tuning = broadphase.Config{
		MaxItems:          c.QuadTree.MaxItems,
		MaxDepth:          c.QuadTree.MaxDepth,
		PopulationDivisor: c.Grid.PopulationDivisor,
		MaxSubdivisions:   c.Grid.MaxSubdivisions,
	}

	c.Derived.FixedArea = nil
	if a := c.Physics.FixedArea; a != nil {
		c.Derived.FixedArea = &r2.Box{
			Min: r2.Vec{X: a.MinX, Y: a.MinY},
			Max: r2.Vec{X: a.MaxX, Y: a.MaxY},
		}
	}

	c.Derived.Matrix = nil
	if len(c.Physics.CollisionMatrix) > 0 {
		c.Derived.Matrix = collision.NewMatrix(c.Physics.CollisionMatrix...)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
