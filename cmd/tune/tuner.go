package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gocarina/gocsv"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval       int     `csv:"eval"`
	TickUS     float64 `csv:"tick_us"`
	NarrowMean float64 `csv:"narrow_tests_mean"`
	ParamA     float64 `csv:"param_a"`
	ParamB     float64 `csv:"param_b"`
}

// tuner is the CMA-ES objective. Every call is scored by the evaluator,
// appended to the log and compared against the best so far.
type tuner struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	log       io.Writer
	budget    int
	progress  io.Writer
	now       func() time.Time

	started  time.Time
	evals    int
	best     evalRecord
	bestRaw  []float64
	logError error
}

func newTuner(params *ParamVector, evaluator *FitnessEvaluator, log io.Writer, budget int) *tuner {
	return &tuner{
		params:    params,
		evaluator: evaluator,
		log:       log,
		budget:    budget,
		progress:  io.Discard,
		now:       time.Now,
		best:      evalRecord{TickUS: math.Inf(1)},
	}
}

// objective scores a point in normalized parameter space.
func (t *tuner) objective(x []float64) float64 {
	if t.evals == 0 {
		t.started = t.now()
	}
	raw := t.params.Clamp(t.params.Denormalize(x))
	fitness := t.evaluator.Evaluate(raw)
	t.record(raw, fitness, t.evaluator.LastTests())
	return fitness
}

// record logs one evaluation of the clamped parameters raw.
func (t *tuner) record(raw []float64, fitness, tests float64) {
	t.evals++
	rec := evalRecord{Eval: t.evals, TickUS: fitness, NarrowMean: tests, ParamA: raw[0], ParamB: raw[1]}
	if fitness < t.best.TickUS {
		t.best = rec
		t.bestRaw = append(t.bestRaw[:0], raw...)
	}

	rows := []evalRecord{rec}
	var err error
	if t.evals == 1 {
		err = gocsv.Marshal(rows, t.log)
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, t.log)
	}
	if err != nil && t.logError == nil {
		t.logError = fmt.Errorf("writing eval %d: %w", t.evals, err)
	}

	fmt.Fprintln(t.progress, t.status(rec))
}

// status is the one-line progress report after rec.
func (t *tuner) status(rec evalRecord) string {
	elapsed := t.now().Sub(t.started)
	var eta time.Duration
	if t.evals < t.budget {
		eta = elapsed / time.Duration(t.evals) * time.Duration(t.budget-t.evals)
	}
	return fmt.Sprintf("[%d/%d] %s=%.0f %s=%.0f tick=%.1fus tests=%.0f best=%.1fus@%d elapsed=%s eta=%s",
		t.evals, t.budget,
		t.params.Specs[0].Name, rec.ParamA, t.params.Specs[1].Name, rec.ParamB,
		rec.TickUS, rec.NarrowMean, t.best.TickUS, t.best.Eval,
		elapsed.Round(time.Second), eta.Round(time.Second))
}

// result returns the best clamped parameters seen, or nil if every
// evaluation failed.
func (t *tuner) result() []float64 {
	if math.IsInf(t.best.TickUS, 1) {
		return nil
	}
	return t.bestRaw
}
