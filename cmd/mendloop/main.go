// Command mendloop runs the adaptive patch simulation: a deliberately
// impoverished shipping-quote skill processes generated requests, learns
// corrective patches from carrier feedback, and reports how far the patched
// skill pulled ahead of its baseline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/mendloop/pkg/audit"
	"github.com/XiaoConstantine/mendloop/pkg/config"
	"github.com/XiaoConstantine/mendloop/pkg/datasets"
	"github.com/XiaoConstantine/mendloop/pkg/engine"
	"github.com/XiaoConstantine/mendloop/pkg/logging"
	"github.com/XiaoConstantine/mendloop/pkg/report"
)

func main() {
	ctx := context.Background()

	configPath := flag.String("config", "", "YAML config file; flags override its values")
	runs := flag.Int("runs", 0, "Number of simulated requests (default from config)")
	seed := flag.Int64("seed", -1, "Request generator seed (default from config)")
	seeds := flag.String("seeds", "", "Comma-separated seed list; runs one simulation per seed")
	noise := flag.Float64("noise", -1, "Noise rate in [0,1] (default from config)")
	show := flag.Int("show", -1, "Sample patches to print in the report (default from config)")
	goldenSize := flag.Int("golden", -1, "Golden set size cap (default from config)")
	goldenFile := flag.String("golden-file", "", "Parquet file of extra golden requests")
	auditPath := flag.String("audit", "", "SQLite file to archive finished runs into")
	verbose := flag.Bool("verbose", false, "Print step traces for the first few runs")
	traceRuns := flag.Int("trace", -1, "How many runs to trace when verbose (default from config)")
	logLevel := flag.String("log-level", "INFO", "Log severity: DEBUG, INFO, WARN, ERROR")
	flag.Parse()

	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(*logLevel),
		Outputs:  []logging.Output{logging.NewConsoleOutput(true, logging.WithColor(true))},
	}))
	logger := logging.GetLogger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load config: %v", err)
		os.Exit(1)
	}
	applyFlags(cfg, *runs, *seed, *noise, *show, *goldenSize, *verbose, *traceRuns)
	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration: %v", err)
		os.Exit(1)
	}

	var opts []engine.Option
	if *goldenFile != "" {
		extra, err := datasets.LoadGoldenRequests(ctx, *goldenFile)
		if err != nil {
			logger.Error(ctx, "Failed to load golden file: %v", err)
			os.Exit(1)
		}
		logger.Info(ctx, "Loaded %d extra golden requests from %s", len(extra), *goldenFile)
		opts = append(opts, engine.WithExtraGolden(extra))
	}

	var archive *audit.Archive
	if *auditPath != "" {
		archive, err = audit.Open(*auditPath)
		if err != nil {
			logger.Error(ctx, "Failed to open audit archive: %v", err)
			os.Exit(1)
		}
		defer archive.Close()
	}

	var results []*engine.RunResult
	if *seeds != "" {
		results, err = runSweep(ctx, cfg, *seeds, opts)
	} else {
		var result *engine.RunResult
		result, err = engine.NewSimulation(cfg, opts...).Run(ctx)
		results = append(results, result)
	}
	if err != nil {
		logger.Error(ctx, "Simulation failed: %v", err)
		os.Exit(1)
	}

	for _, result := range results {
		fmt.Println(report.Format(result, cfg.ShowPatches))
		if archive != nil {
			if err := archive.SaveRun(ctx, result, cfg); err != nil {
				logger.Error(ctx, "Failed to archive run %s: %v", result.RunID, err)
				os.Exit(1)
			}
		}
	}
	if len(results) > 1 {
		fmt.Println(report.FormatSweep(results))
	}
}

func loadConfig(path string) (*config.SimulationConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

// applyFlags overlays explicitly set flags on the configuration. Sentinel
// defaults mean "keep the config value".
func applyFlags(cfg *config.SimulationConfig, runs int, seed int64, noise float64, show, goldenSize int, verbose bool, traceRuns int) {
	if runs > 0 {
		cfg.Runs = runs
	}
	if seed >= 0 {
		cfg.Seed = seed
	}
	if noise >= 0 {
		cfg.NoiseRate = noise
	}
	if show >= 0 {
		cfg.ShowPatches = show
	}
	if goldenSize >= 0 {
		cfg.GoldenSize = goldenSize
	}
	if verbose {
		cfg.Verbose = true
	}
	if traceRuns >= 0 {
		cfg.TraceRuns = traceRuns
	}
}

// runSweep runs one fully isolated simulation per seed, in parallel, and
// returns results sorted by seed.
func runSweep(ctx context.Context, base *config.SimulationConfig, seedList string, opts []engine.Option) ([]*engine.RunResult, error) {
	var seeds []int64
	for _, field := range strings.Split(seedList, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		seed, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", field, err)
		}
		seeds = append(seeds, seed)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds in %q", seedList)
	}

	results := make([]*engine.RunResult, len(seeds))
	p := pool.New().WithMaxGoroutines(4).WithErrors()
	for i, seed := range seeds {
		i, seed := i, seed
		p.Go(func() error {
			cfg := *base
			cfg.Seed = seed
			cfg.Verbose = false
			result, err := engine.NewSimulation(&cfg, opts...).Run(ctx)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Seed < results[j].Seed })
	return results, nil
}
