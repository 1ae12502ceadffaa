package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/collide2d/config"
)

type options struct {
	configPath string
	ticks      int
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.ticks, "ticks", 600, "Simulation ticks per run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 60, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("--output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	baseCfg := config.Cfg()

	// Only the active broad phase is tuned
	params := NewParamVector(baseCfg.Derived.BroadPhase, baseCfg)
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, opts.ticks, seeds, baseCfg)

	logFile, err := os.Create(filepath.Join(opts.outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log: %w", err)
	}
	defer logFile.Close()

	t := newTuner(params, evaluator, logFile, opts.maxEvals)
	t.progress = os.Stdout

	population := opts.population
	if population == 0 {
		population = 4 + 3*params.Dim()/2
	}
	fmt.Printf("tuning %s: %d evals, population %d, %d seeds x %d ticks\n",
		params.Kind, opts.maxEvals, population, opts.seeds, opts.ticks)

	_, err = optimize.Minimize(
		optimize.Problem{Func: t.objective},
		params.Normalize(params.DefaultVector()),
		&optimize.Settings{FuncEvaluations: opts.maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: population},
	)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if t.logError != nil {
		log.Printf("tune log incomplete: %v", t.logError)
	}

	best := t.result()
	if best == nil {
		return errors.New("no evaluation produced a finite tick time")
	}
	fmt.Printf("best mean tick %.1fus at eval %d\n", t.best.TickUS, t.best.Eval)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.0f\n", spec.Path, best[i])
	}

	bestCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	if err := params.ApplyToConfig(bestCfg, best); err != nil {
		return fmt.Errorf("applying best parameters: %w", err)
	}
	out := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("best config saved to %s\n", out)
	return nil
}
