package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/collide2d/config"
	"github.com/pthm-cable/collide2d/demo"
	"github.com/pthm-cable/collide2d/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	snapshot := flag.String("snapshot", "", "Start from this snapshot file")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per frame in graphical mode")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed; a snapshot supplies its own when none is given
	rngSeed := *seed
	if rngSeed == 0 && *snapshot == "" {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts := demo.Options{
		Seed:         rngSeed,
		LogStats:     *logStats,
		SnapshotDir:  *snapshotDir,
		SnapshotPath: *snapshot,
		OutputDir:    *outputDir,
		Logger:       logger,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		d, err := demo.New(cfg, opts)
		if err != nil {
			slog.Error("failed to create demo", "error", err)
			os.Exit(1)
		}
		defer closeDemo(d)

		slog.Info("starting headless simulation",
			"seed", d.Seed(),
			"max_ticks", *maxTicks,
		)

		for {
			d.Step()

			if *maxTicks > 0 && int(d.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", d.Tick())
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "collide2d")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	d, err := demo.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create demo", "error", err)
		return
	}
	defer closeDemo(d)

	v := viewer.New(d, *stepsPerUpdate)
	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if *maxTicks > 0 && int(d.Tick()) >= *maxTicks {
			break
		}
	}
}

func closeDemo(d *demo.Demo) {
	if err := d.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
