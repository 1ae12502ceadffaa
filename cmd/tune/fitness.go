package main

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/collide2d/config"
	"github.com/pthm-cable/collide2d/demo"
)

// FitnessEvaluator runs headless demos and scores their step cost.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu        sync.Mutex
	lastTests float64 // mean narrow-phase tests from the last Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastTests returns the mean narrow-phase tests per step from the most
// recent evaluation.
func (fe *FitnessEvaluator) LastTests() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastTests
}

// runResult holds the results from a single demo run.
type runResult struct {
	tickMicros float64 // mean tick duration
	tests      float64 // mean narrow-phase tests per step
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Fitness is the mean tick duration in microseconds across all seeds.
// Invalid parameter sets score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return math.Inf(1)
	}

	// Seeds run one after another so timings do not contend for cores.
	micros := make([]float64, 0, len(fe.seeds))
	tests := make([]float64, 0, len(fe.seeds))
	for _, seed := range fe.seeds {
		r, err := fe.runDemo(cfg, seed)
		if err != nil {
			fe.logger.Error("run failed", "seed", seed, "error", err)
			return math.Inf(1)
		}
		micros = append(micros, r.tickMicros)
		tests = append(tests, r.tests)
	}

	fitness := stat.Mean(micros, nil)
	fe.mu.Lock()
	fe.lastTests = stat.Mean(tests, nil)
	fe.mu.Unlock()
	return fitness
}

// runDemo runs one headless demo for the configured number of ticks.
func (fe *FitnessEvaluator) runDemo(cfg *config.Config, seed int64) (runResult, error) {
	d, err := demo.New(cfg, demo.Options{Seed: seed, Logger: fe.logger})
	if err != nil {
		return runResult{}, err
	}
	defer d.Close()

	var total time.Duration
	var tests int
	for range fe.ticks {
		start := time.Now()
		d.Step()
		total += time.Since(start)
		tests += d.Scene().Physics().Stats().NarrowTests
	}

	n := float64(max(fe.ticks, 1))
	return runResult{
		tickMicros: float64(total.Microseconds()) / n,
		tests:      float64(tests) / n,
	}, nil
}

// copyConfig returns a copy of the base config that ApplyToConfig may edit.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
