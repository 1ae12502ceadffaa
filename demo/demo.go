// Package demo runs a falling-bodies scene on the physics world. It has no
// rendering dependencies; see package viewer for the window.
package demo

import (
	"fmt"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/broadphase"
	"github.com/pthm-cable/collide2d/config"
	"github.com/pthm-cable/collide2d/narrowphase"
	"github.com/pthm-cable/collide2d/physics"
	"github.com/pthm-cable/collide2d/scene"
	"github.com/pthm-cable/collide2d/telemetry"
)

// Layer names used by the demo scene.
const (
	LayerGround = "ground"
	LayerBody   = "body"
	LayerSensor = "sensor"
)

// Options configures a Demo.
type Options struct {
	Seed         int64
	LogStats     bool
	SnapshotDir  string // save a snapshot at every stats window
	SnapshotPath string // start from this snapshot instead of spawning
	OutputDir    string
	Logger       *slog.Logger
}

// Demo holds the complete simulation state.
type Demo struct {
	cfg    *config.Config
	logger *slog.Logger
	rng    *rand.Rand
	seed   int64

	scene *scene.Scene
	// Entities whose transform leaves this box are culled and replaced.
	bounds r2.Box

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	logStats    bool
	snapshotDir string
}

// New creates a demo from cfg.
func New(cfg *config.Config, opts Options) (*Demo, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	d := &Demo{
		cfg:         cfg,
		logger:      logger,
		seed:        opts.Seed,
		perf:        perf,
		collector:   telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT),
		logStats:    opts.LogStats,
		snapshotDir: opts.SnapshotDir,
		bounds:      arenaBounds(cfg.Demo),
	}
	d.scene = scene.New(physics.NewFromConfig(cfg, logger, perf))

	if opts.SnapshotPath != "" {
		if err := d.restore(opts.SnapshotPath); err != nil {
			return nil, err
		}
	}
	d.rng = rand.New(rand.NewSource(d.seed))
	if opts.SnapshotPath == "" {
		if err := d.spawnArena(); err != nil {
			return nil, err
		}
		if err := d.SpawnBodies(cfg.Demo.Bodies); err != nil {
			return nil, err
		}
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("writing config: %w", err)
		}
		d.output = om
	}

	logger.Info("demo created",
		"seed", d.seed,
		"entities", d.scene.Len(),
		"method", d.scene.Physics().Method().String(),
		"broad_phase", d.scene.Physics().BroadPhase().String(),
	)
	return d, nil
}

// Step runs a single tick.
func (d *Demo) Step() {
	d.perf.StartTick()
	phys := d.scene.Physics()
	phys.Resolve(d.cfg.Physics.DT)

	d.perf.StartPhase(telemetry.PhaseSceneSync)
	d.scene.Sync()
	if n := d.scene.Cull(d.bounds); n > 0 {
		d.logger.Debug("bodies culled", "count", n, "tick", phys.Tick())
		if err := d.SpawnBodies(n); err != nil {
			d.logger.Error("failed to respawn bodies", "error", err)
		}
	}

	d.perf.StartPhase(telemetry.PhaseTelemetry)
	d.collector.Record(phys.Stats())
	d.flushTelemetry()
	d.perf.EndTick()
}

// Close flushes and closes the output files.
func (d *Demo) Close() error {
	return d.output.Close()
}

// Tick returns the current simulation tick.
func (d *Demo) Tick() int64 { return d.scene.Physics().Tick() }

// Scene returns the demo scene.
func (d *Demo) Scene() *scene.Scene { return d.scene }

// Perf returns the performance collector.
func (d *Demo) Perf() *telemetry.PerfCollector { return d.perf }

// Seed returns the RNG seed in use.
func (d *Demo) Seed() int64 { return d.seed }

// CanSnapshot reports whether a snapshot directory is configured.
func (d *Demo) CanSnapshot() bool { return d.snapshotDir != "" }

// Arena returns the box spanned by the floor, walls and spawn height.
func (d *Demo) Arena() r2.Box {
	dc := d.cfg.Demo
	half := dc.FloorWidth/2 + dc.FloorHeight
	return r2.Box{
		Min: r2.Vec{X: -half, Y: -dc.FloorHeight},
		Max: r2.Vec{X: half, Y: max(dc.WallHeight, dc.SpawnHeight+dc.MaxSize)},
	}
}

func arenaBounds(dc config.DemoConfig) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: -dc.FloorWidth, Y: -dc.WallHeight},
		Max: r2.Vec{X: dc.FloorWidth, Y: 2 * max(dc.WallHeight, dc.SpawnHeight)},
	}
}

// ToggleMethod switches between SAT and AABB narrow phases.
func (d *Demo) ToggleMethod() {
	opts := d.scene.Physics().Options()
	if opts.Method == narrowphase.SAT {
		opts.Method = narrowphase.AABB
	} else {
		opts.Method = narrowphase.SAT
	}
	d.switchWorld(opts)
}

// ToggleBroadPhase switches between the quadtree and the grid.
func (d *Demo) ToggleBroadPhase() {
	opts := d.scene.Physics().Options()
	if opts.BroadPhase == broadphase.QuadTreeKind {
		opts.BroadPhase = broadphase.GridKind
	} else {
		opts.BroadPhase = broadphase.QuadTreeKind
	}
	d.switchWorld(opts)
}

// switchWorld rebuilds the physics world with opts and rebinds the scene.
func (d *Demo) switchWorld(opts physics.Options) {
	next, remap, err := d.scene.Physics().Rebuild(opts)
	if err != nil {
		d.logger.Error("failed to rebuild world", "error", err)
		return
	}
	d.scene.Rebind(next, remap)
	d.logger.Info("world rebuilt",
		"method", opts.Method.String(),
		"broad_phase", opts.BroadPhase.String(),
		"entities", d.scene.Len(),
	)
}
