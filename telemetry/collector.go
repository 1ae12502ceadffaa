package telemetry

// Collector accumulates step counters within tick windows and produces
// WindowStats.
type Collector struct {
	windowTicks int64
	dt          float64

	windowStartTick int64
	last            StepStats

	candidates  []float64
	narrowTests []float64
	pairs       []float64
	totalTests  int
	totalPairs  int
	totalCands  int
	maxPairs    int
}

// NewCollector creates a collector flushing every windowTicks ticks.
// dt is the step length in seconds, used for tick-to-time conversion.
func NewCollector(windowTicks int, dt float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int64(windowTicks),
		dt:          dt,
	}
}

// Record adds one step to the current window.
func (c *Collector) Record(s StepStats) {
	c.last = s
	c.candidates = append(c.candidates, float64(s.Candidates))
	c.narrowTests = append(c.narrowTests, float64(s.NarrowTests))
	c.pairs = append(c.pairs, float64(s.Pairs))
	c.totalCands += s.Candidates
	c.totalTests += s.NarrowTests
	c.totalPairs += s.Pairs
	c.maxPairs = max(c.maxPairs, s.Pairs)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64) WindowStats {
	pairs := Summarize(c.pairs)
	tests := Summarize(c.narrowTests)

	w := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Steps:           len(c.pairs),
		Active:          c.last.Active,
		Bodies:          c.last.Bodies,
		CandidatesMean:  Summarize(c.candidates).Mean,
		NarrowTestsMean: tests.Mean,
		NarrowTestsStd:  tests.Std,
		PairsMean:       pairs.Mean,
		PairsStd:        pairs.Std,
		PairsP50:        pairs.P50,
		PairsP90:        pairs.P90,
		PairsMax:        c.maxPairs,
	}
	if c.totalTests > 0 {
		w.HitRate = float64(c.totalPairs) / float64(c.totalTests)
	}
	if c.totalCands > 0 {
		w.TestRate = float64(c.totalTests) / float64(c.totalCands)
	}

	c.windowStartTick = currentTick
	c.candidates = c.candidates[:0]
	c.narrowTests = c.narrowTests[:0]
	c.pairs = c.pairs[:0]
	c.totalCands, c.totalTests, c.totalPairs, c.maxPairs = 0, 0, 0, 0
	return w
}
