package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// StepStats holds the counters of a single physics step.
type StepStats struct {
	Tick        int64
	Active      int // active colliders
	Candidates  int // broad-phase candidates returned
	NarrowTests int // narrow-phase tests run
	Pairs       int // overlapping pairs found
	Bodies      int // registered rigid bodies
}

// WindowStats holds aggregated step statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Steps           int     `csv:"steps"`

	// Population at window end
	Active int `csv:"active"`
	Bodies int `csv:"bodies"`

	CandidatesMean  float64 `csv:"candidates_mean"`
	NarrowTestsMean float64 `csv:"narrow_tests_mean"`
	NarrowTestsStd  float64 `csv:"narrow_tests_std"`

	PairsMean float64 `csv:"pairs_mean"`
	PairsStd  float64 `csv:"pairs_std"`
	PairsP50  float64 `csv:"pairs_p50"`
	PairsP90  float64 `csv:"pairs_p90"`
	PairsMax  int     `csv:"pairs_max"`

	// Share of narrow tests that found an overlap
	HitRate float64 `csv:"hit_rate"`
	// Narrow tests per broad-phase candidate; lower means more pairs were
	// filtered by layer, group or dedupe
	TestRate float64 `csv:"test_rate"`
}

// Summary holds the distribution of a series of samples.
type Summary struct {
	Mean, Std, P50, P90 float64
}

// Summarize computes mean, standard deviation and quantiles of values.
// Returns the zero Summary for an empty slice.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var s Summary
	if len(sorted) == 1 {
		s.Mean = sorted[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	}
	s.P50 = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.LinInterp, sorted, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("active", s.Active),
		slog.Int("bodies", s.Bodies),
		slog.Float64("pairs_mean", s.PairsMean),
		slog.Int("pairs_max", s.PairsMax),
		slog.Float64("narrow_tests_mean", s.NarrowTestsMean),
		slog.Float64("hit_rate", s.HitRate),
	)
}

// LogStats logs the window summary.
func (s WindowStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stats", "window", s)
}
