package telemetry

import (
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakePerf(window int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	return newPerfCollector(window, clock.now), clock
}

// tick records one step with the given phase durations, in phase order.
func tick(pc *PerfCollector, clock *fakeClock, durations ...time.Duration) {
	pc.StartTick()
	for i, d := range durations {
		pc.StartPhase(Phase(i))
		clock.advance(d)
	}
	pc.EndTick()
}

func TestPerfCollector_PhaseBreakdown(t *testing.T) {
	pc, clock := newFakePerf(10)
	for range 5 {
		tick(pc, clock, 100*time.Microsecond, 300*time.Microsecond)
	}

	s := pc.Stats()
	if s.AvgTickDuration != 400*time.Microsecond {
		t.Errorf("avg tick = %v, want 400µs", s.AvgTickDuration)
	}
	if s.PhaseAvg[PhaseCollisionRebuild] != 100*time.Microsecond {
		t.Errorf("rebuild avg = %v, want 100µs", s.PhaseAvg[PhaseCollisionRebuild])
	}
	if !scalar.EqualWithinAbs(s.PhasePct[PhaseBodies], 75, 1e-9) {
		t.Errorf("bodies share = %v, want 75", s.PhasePct[PhaseBodies])
	}
	if s.PhaseAvg[PhaseSceneSync] != 0 {
		t.Errorf("untimed phase avg = %v, want 0", s.PhaseAvg[PhaseSceneSync])
	}
	if !scalar.EqualWithinAbs(s.TicksPerSecond, 2500, 1e-6) {
		t.Errorf("ticks/s = %v, want 2500", s.TicksPerSecond)
	}
}

func TestPerfCollector_TimeBeforeFirstPhase(t *testing.T) {
	pc, clock := newFakePerf(4)
	pc.StartTick()
	clock.advance(50 * time.Microsecond)
	pc.StartPhase(PhaseBodies)
	clock.advance(50 * time.Microsecond)
	pc.EndTick()

	s := pc.Stats()
	if s.AvgTickDuration != 100*time.Microsecond {
		t.Errorf("tick = %v, want 100µs", s.AvgTickDuration)
	}
	if !scalar.EqualWithinAbs(s.PhasePct[PhaseBodies], 50, 1e-9) {
		t.Errorf("bodies share = %v, want 50", s.PhasePct[PhaseBodies])
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc, clock := newFakePerf(3)
	for i := 1; i <= 5; i++ {
		tick(pc, clock, time.Duration(i)*time.Millisecond)
	}

	samples := pc.Samples()
	if len(samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(samples))
	}
	for i, s := range samples {
		if want := time.Duration(i+3) * time.Millisecond; s.Tick != want {
			t.Errorf("sample %d = %v, want %v", i, s.Tick, want)
		}
	}

	s := pc.Stats()
	if s.MinTickDuration != 3*time.Millisecond || s.MaxTickDuration != 5*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 3ms/5ms", s.MinTickDuration, s.MaxTickDuration)
	}
	if s.AvgTickDuration != 4*time.Millisecond {
		t.Errorf("avg = %v, want 4ms", s.AvgTickDuration)
	}
}

func TestPerfCollector_P95(t *testing.T) {
	pc, clock := newFakePerf(20)
	for i := 1; i <= 20; i++ {
		tick(pc, clock, time.Duration(i)*time.Millisecond)
	}

	s := pc.Stats()
	if s.P95TickDuration < s.AvgTickDuration || s.P95TickDuration > s.MaxTickDuration {
		t.Errorf("p95 %v outside [%v, %v]", s.P95TickDuration, s.AvgTickDuration, s.MaxTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc, _ := newFakePerf(10)
	s := pc.Stats()
	if s.AvgTickDuration != 0 || s.TicksPerSecond != 0 || len(pc.Samples()) != 0 {
		t.Errorf("empty collector stats = %+v", s)
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc, clock := newFakePerf(10)
	pc.RecordFrame()
	if pc.Stats().FPS != 0 {
		t.Error("single frame should not report FPS")
	}
	clock.advance(20 * time.Millisecond)
	pc.RecordFrame()

	s := pc.Stats()
	if s.FrameDuration != 20*time.Millisecond {
		t.Errorf("frame = %v, want 20ms", s.FrameDuration)
	}
	if !scalar.EqualWithinAbs(s.FPS, 50, 1e-9) {
		t.Errorf("fps = %v, want 50", s.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseCollisionRebuild, "collision_rebuild"},
		{PhaseBodies, "bodies"},
		{PhaseSceneSync, "scene_sync"},
		{PhaseTelemetry, "telemetry"},
		{NumPhases, "phase(4)"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", uint8(tt.phase), got, tt.want)
		}
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTickDuration = 1500 * time.Microsecond
	s.P95TickDuration = 3 * time.Millisecond
	s.PhasePct[PhaseCollisionRebuild] = 70
	s.PhasePct[PhaseBodies] = 25

	row := s.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 1500 || row.P95TickUS != 3000 {
		t.Errorf("timings = %+v", row)
	}
	if row.CollisionRebuildPct != 70 || row.BodiesPct != 25 || row.SceneSyncPct != 0 {
		t.Errorf("phase shares = %+v", row)
	}
}
