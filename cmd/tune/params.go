// Package main tunes broad-phase parameters with CMA-ES.
package main

import (
	"math"

	"github.com/pthm-cable/collide2d/broadphase"
	"github.com/pthm-cable/collide2d/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the parameters of one broad-phase kind.
type ParamVector struct {
	Kind  broadphase.Kind
	Specs []ParamSpec
}

// NewParamVector creates the tunable parameters for kind, with defaults
// taken from cfg.
func NewParamVector(kind broadphase.Kind, cfg *config.Config) *ParamVector {
	if kind == broadphase.GridKind {
		return &ParamVector{Kind: kind, Specs: []ParamSpec{
			{Name: "population_divisor", Path: "grid.population_divisor", Min: 1, Max: 64, Default: float64(cfg.Grid.PopulationDivisor)},
			{Name: "max_subdivisions", Path: "grid.max_subdivisions", Min: 1, Max: 128, Default: float64(cfg.Grid.MaxSubdivisions)},
		}}
	}
	return &ParamVector{Kind: kind, Specs: []ParamSpec{
		{Name: "max_items", Path: "quadtree.max_items", Min: 1, Max: 64, Default: float64(cfg.QuadTree.MaxItems)},
		{Name: "max_depth", Path: "quadtree.max_depth", Min: 1, Max: 16, Default: float64(cfg.QuadTree.MaxDepth)},
	}}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp bounds every value and rounds it to the integer the config holds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Round(min(max(v[i], spec.Min), spec.Max))
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg and refreshes its derived
// values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	if pv.Kind == broadphase.GridKind {
		cfg.Grid.PopulationDivisor = int(clamped[0])
		cfg.Grid.MaxSubdivisions = int(clamped[1])
	} else {
		cfg.QuadTree.MaxItems = int(clamped[0])
		cfg.QuadTree.MaxDepth = int(clamped[1])
	}
	return cfg.Recompute()
}
