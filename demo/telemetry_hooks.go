package demo

import (
	"errors"

	"github.com/pthm-cable/collide2d/telemetry"
)

// flushTelemetry closes the stats window when it is due.
func (d *Demo) flushTelemetry() {
	tick := d.Tick()
	if !d.collector.ShouldFlush(tick) {
		return
	}

	stats := d.collector.Flush(tick)
	perfStats := d.perf.Stats()

	if d.logStats {
		stats.LogStats(d.logger)
		perfStats.LogStats(d.logger)
	}

	if err := d.output.WriteSteps(stats); err != nil {
		d.logger.Error("failed to write steps", "error", err)
	}
	if err := d.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		d.logger.Error("failed to write perf", "error", err)
	}

	if d.snapshotDir != "" {
		if _, err := d.SaveSnapshot(); err != nil {
			d.logger.Error("failed to save snapshot", "error", err)
		}
	}
}

// SaveSnapshot writes the current world to the snapshot directory and
// returns the file path.
func (d *Demo) SaveSnapshot() (string, error) {
	if d.snapshotDir == "" {
		return "", errors.New("no snapshot directory configured")
	}
	path, err := telemetry.SaveSnapshot(d.scene.Physics().Snapshot(d.seed), d.snapshotDir)
	if err != nil {
		return "", err
	}
	d.logger.Info("snapshot saved", "path", path, "tick", d.Tick())
	return path, nil
}
