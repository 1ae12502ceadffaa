package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies a timed section of a step.
type Phase uint8

const (
	PhaseCollisionRebuild Phase = iota
	PhaseBodies
	PhaseSceneSync
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{"collision_rebuild", "bodies", "scene_sync", "telemetry"}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// PerfSample is the timing of one step. Time spent before the first phase
// counts toward Tick only.
type PerfSample struct {
	Tick   time.Duration
	Phases [NumPhases]time.Duration
}

// PerfCollector keeps the timings of the most recent steps.
type PerfCollector struct {
	ring  []PerfSample
	head  int
	count int

	now     func() time.Time
	cur     PerfSample
	started time.Time
	mark    time.Time
	running Phase
	inPhase bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector over the last window steps.
func NewPerfCollector(window int) *PerfCollector {
	return newPerfCollector(window, time.Now)
}

func newPerfCollector(window int, now func() time.Time) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]PerfSample, window), now: now}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	p.cur = PerfSample{}
	p.started = p.now()
	p.inPhase = false
}

// StartPhase closes the running phase and starts timing phase, which must
// be one of the Phase constants.
func (p *PerfCollector) StartPhase(phase Phase) {
	t := p.now()
	p.closePhase(t)
	p.running, p.mark, p.inPhase = phase, t, true
}

// EndTick closes the step and pushes it into the window, evicting the
// oldest sample once the window is full.
func (p *PerfCollector) EndTick() {
	t := p.now()
	p.closePhase(t)
	p.inPhase = false
	p.cur.Tick = t.Sub(p.started)

	p.ring[p.head] = p.cur
	p.head = (p.head + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.inPhase {
		p.cur.Phases[p.running] += t.Sub(p.mark)
	}
}

// RecordFrame marks a rendered frame; the gap to the previous call is the
// frame time.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = t.Sub(p.lastFrame)
	}
	p.lastFrame = t
}

// Samples returns the window, oldest first.
func (p *PerfCollector) Samples() []PerfSample {
	out := make([]PerfSample, 0, p.count)
	start := (p.head - p.count + len(p.ring)) % len(p.ring)
	for i := range p.count {
		out = append(out, p.ring[(start+i)%len(p.ring)])
	}
	return out
}

// PerfStats summarizes the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// PhaseAvg is the mean time per step spent in each phase, PhasePct its
	// share of the mean tick in percent.
	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{FrameDuration: p.frame}
	if p.frame > 0 {
		out.FPS = float64(time.Second) / float64(p.frame)
	}

	samples := p.Samples()
	if len(samples) == 0 {
		return out
	}

	ticks := make([]float64, len(samples))
	var sums [NumPhases]time.Duration
	for i, s := range samples {
		ticks[i] = float64(s.Tick)
		for ph, d := range s.Phases {
			sums[ph] += d
		}
	}
	slices.Sort(ticks)

	mean := stat.Mean(ticks, nil)
	out.AvgTickDuration = time.Duration(mean)
	out.MinTickDuration = time.Duration(ticks[0])
	out.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	out.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))

	n := time.Duration(len(samples))
	for ph := range sums {
		out.PhaseAvg[ph] = sums[ph] / n
		if mean > 0 {
			out.PhasePct[ph] = 100 * float64(out.PhaseAvg[ph]) / mean
		}
	}
	if mean > 0 {
		out.TicksPerSecond = float64(time.Second) / mean
	}
	return out
}

// attrs flattens the stats for logging. Phases under 0.1% are left out.
func (s PerfStats) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph := range NumPhases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", math.Round(pct*10)/10))
		}
	}
	return attrs
}

// LogStats logs the stats as one "perf" record.
func (s PerfStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, "perf", s.attrs()...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(s.attrs()...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd           int64   `csv:"window_end"`
	AvgTickUS           int64   `csv:"avg_tick_us"`
	MinTickUS           int64   `csv:"min_tick_us"`
	MaxTickUS           int64   `csv:"max_tick_us"`
	P95TickUS           int64   `csv:"p95_tick_us"`
	TicksPerSec         float64 `csv:"ticks_per_sec"`
	FPS                 float64 `csv:"fps"`
	CollisionRebuildPct float64 `csv:"collision_rebuild_pct"`
	BodiesPct           float64 `csv:"bodies_pct"`
	SceneSyncPct        float64 `csv:"scene_sync_pct"`
	TelemetryPct        float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:           windowEnd,
		AvgTickUS:           s.AvgTickDuration.Microseconds(),
		MinTickUS:           s.MinTickDuration.Microseconds(),
		MaxTickUS:           s.MaxTickDuration.Microseconds(),
		P95TickUS:           s.P95TickDuration.Microseconds(),
		TicksPerSec:         s.TicksPerSecond,
		FPS:                 s.FPS,
		CollisionRebuildPct: s.PhasePct[PhaseCollisionRebuild],
		BodiesPct:           s.PhasePct[PhaseBodies],
		SceneSyncPct:        s.PhasePct[PhaseSceneSync],
		TelemetryPct:        s.PhasePct[PhaseTelemetry],
	}
}
