// Package physics ties the collision and rigid-body managers into a single
// world stepped once per fixed tick.
package physics

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/broadphase"
	"github.com/pthm-cable/collide2d/collision"
	"github.com/pthm-cable/collide2d/config"
	"github.com/pthm-cable/collide2d/narrowphase"
	"github.com/pthm-cable/collide2d/rigidbody"
	"github.com/pthm-cable/collide2d/telemetry"
)

// Options configures a World.
type Options struct {
	Method     narrowphase.MethodKind
	BroadPhase broadphase.Kind
	Tuning     broadphase.Config
	FixedArea  *r2.Box
	Matrix     collision.Matrix
	// Gravity applies to bodies that do not set their own.
	Gravity float64

	Logger *slog.Logger
	// Perf, when set, receives phase timings. The caller owns StartTick and
	// EndTick.
	Perf *telemetry.PerfCollector
}

// World owns every collider and body.
type World struct {
	colliders *collision.Manager
	bodies    *rigidbody.Manager
	opts      Options
	logger    *slog.Logger
	perf      *telemetry.PerfCollector

	tick int64
	last telemetry.StepStats
}

// New creates an empty world.
func New(opts Options) *World {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	colliders := collision.NewManager(collision.Options{
		Method:     opts.Method,
		BroadPhase: opts.BroadPhase,
		Tuning:     opts.Tuning,
		FixedArea:  opts.FixedArea,
		Matrix:     opts.Matrix,
		Logger:     logger,
	})
	w := &World{
		colliders: colliders,
		bodies:    rigidbody.NewManager(colliders, opts.Gravity, logger),
		opts:      opts,
		logger:    logger,
		perf:      opts.Perf,
	}
	logger.Debug("physics world created",
		"method", opts.Method.String(),
		"broad_phase", opts.BroadPhase.String(),
		"fixed_area", opts.FixedArea != nil,
	)
	return w
}

// NewFromConfig creates a world from a loaded configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, perf *telemetry.PerfCollector) *World {
	return New(Options{
		Method:     cfg.Derived.Method,
		BroadPhase: cfg.Derived.BroadPhase,
		Tuning:     cfg.Derived.Tuning,
		FixedArea:  cfg.Derived.FixedArea,
		Matrix:     cfg.Derived.Matrix,
		Gravity:    cfg.Physics.DefaultGravity,
		Logger:     logger,
		Perf:       perf,
	})
}

// AddCollider registers a collider.
func (w *World) AddCollider(desc collision.Descriptor) (*collision.Collider, error) {
	return w.colliders.Add(desc)
}

// RemoveCollider unregisters a collider. Bodies keep the stale handle and
// skip it from then on.
func (w *World) RemoveCollider(id collision.ID) bool {
	return w.colliders.Remove(id)
}

// Collider returns the collider for id, or nil.
func (w *World) Collider(id collision.ID) *collision.Collider {
	return w.colliders.Get(id)
}

// AddBody registers a rigid body over already registered colliders.
func (w *World) AddBody(desc rigidbody.Descriptor) (*rigidbody.Body, error) {
	return w.bodies.Add(desc)
}

// RemoveBody unregisters a body, keeping its colliders.
func (w *World) RemoveBody(id rigidbody.ID) bool {
	return w.bodies.Remove(id)
}

// Body returns the body for id, or nil.
func (w *World) Body(id rigidbody.ID) *rigidbody.Body {
	return w.bodies.Get(id)
}

// Colliders calls fn for every registered collider.
func (w *World) Colliders(fn func(*collision.Collider)) { w.colliders.Colliders(fn) }

// Bodies calls fn for every registered body.
func (w *World) Bodies(fn func(*rigidbody.Body)) { w.bodies.Bodies(fn) }

// Resolve advances the world by dt seconds: the collision set is rebuilt,
// then bodies are integrated against it.
func (w *World) Resolve(dt float64) {
	w.phase(telemetry.PhaseCollisionRebuild)
	w.colliders.Resolve()
	cs := w.colliders.Stats()

	w.phase(telemetry.PhaseBodies)
	w.bodies.Resolve(dt)

	w.tick++
	w.last = telemetry.StepStats{
		Tick:        w.tick,
		Active:      cs.Active,
		Candidates:  cs.Candidates,
		NarrowTests: cs.NarrowTests,
		Pairs:       len(w.colliders.Collisions()) / 2,
		Bodies:      w.bodies.Len(),
	}
}

func (w *World) phase(p telemetry.Phase) {
	if w.perf != nil {
		w.perf.StartPhase(p)
	}
}

// Clear drops every collider and body. The tick counter keeps running.
func (w *World) Clear() {
	w.bodies.Clear()
	w.colliders.Clear()
	w.logger.Debug("physics world cleared", "tick", w.tick)
}

// Collisions returns the records of the last step.
func (w *World) Collisions() []collision.Collision { return w.colliders.Collisions() }

// CollisionsFor returns the records whose local side is id.
func (w *World) CollisionsFor(id collision.ID) []collision.Collision {
	return w.colliders.CollisionsFor(id)
}

// CollisionsForLayer returns the records whose local side is id and whose
// remote side is on layer.
func (w *World) CollisionsForLayer(id collision.ID, layer string) []collision.Collision {
	return w.colliders.CollisionsForLayer(id, layer)
}

// Tick returns the number of completed steps.
func (w *World) Tick() int64 { return w.tick }

// Stats returns the counters of the last step.
func (w *World) Stats() telemetry.StepStats { return w.last }

// Area returns the broad-phase area of the last step.
func (w *World) Area() r2.Box { return w.colliders.Area() }

// Method returns the narrow-phase method in use.
func (w *World) Method() narrowphase.MethodKind { return w.opts.Method }

// Options returns the options the world was created with.
func (w *World) Options() Options { return w.opts }

// BroadPhase returns the broad-phase kind in use.
func (w *World) BroadPhase() broadphase.Kind { return w.opts.BroadPhase }
