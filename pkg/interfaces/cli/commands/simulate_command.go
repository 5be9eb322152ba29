package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/supplysim/pkg/application/dto"
	"github.com/vsinha/supplysim/pkg/application/services/demand"
	"github.com/vsinha/supplysim/pkg/application/services/kpi"
	"github.com/vsinha/supplysim/pkg/application/services/orchestration"
	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/domain/repositories"
	"github.com/vsinha/supplysim/pkg/infrastructure/config"
	"github.com/vsinha/supplysim/pkg/infrastructure/events"
	"github.com/vsinha/supplysim/pkg/infrastructure/export"
	"github.com/vsinha/supplysim/pkg/infrastructure/logger"
	"github.com/vsinha/supplysim/pkg/infrastructure/metrics"
	"github.com/vsinha/supplysim/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/supplysim/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/supplysim/pkg/interfaces/cli/output"
)

// Config holds the command line settings. Zero values leave the loaded
// configuration untouched.
type Config struct {
	ConfigFile      string
	CatalogDir      string
	Days            int
	PickingCapacity int64
	Scenario        string
	Seed            *uint64
	Format          string
	OutputDir       string
	CSVDir          string
	SQLitePath      string
	MetricsPath     string
	ListRuns        bool
	Verbose         bool
	Help            bool
}

// SimulateCommand runs one simulation and writes its outputs
type SimulateCommand struct {
	config Config
	out    io.Writer
}

// NewSimulateCommand creates a command writing its report to out
func NewSimulateCommand(config Config, out io.Writer) *SimulateCommand {
	if out == nil {
		out = os.Stdout
	}
	return &SimulateCommand{config: config, out: out}
}

// Execute runs the simulate command. A run that aborts still reports and
// exports the days it completed before returning the error.
func (c *SimulateCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	cfg, err := c.resolveConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	level := cfg.Log.Level
	if c.config.Verbose {
		level = "debug"
	}
	log := logger.New("supplysim", cfg.Log.Environment, level)

	if c.config.ListRuns {
		return c.listRuns(ctx, cfg)
	}

	catalog, err := c.loadCatalog(cfg)
	if err != nil {
		return err
	}

	store := events.NewInMemoryEventStore()
	recorder := metrics.NewRecorder(prometheus.Labels{"scenario": cfg.Simulation.Scenario})
	if err := recorder.Subscribe(store); err != nil {
		return fmt.Errorf("subscribe metrics: %w", err)
	}

	sim, err := orchestration.NewSimulator(catalog, orchestration.Config{
		Demand:     demand.Config(cfg.Demand),
		Thresholds: kpi.Thresholds(cfg.Alerts),
	}, store, log)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	startTime := time.Now()
	result, runErr := sim.Run(ctx, dto.SimulationParams{
		Days:            cfg.Simulation.Days,
		PickingCapacity: entities.Quantity(cfg.Simulation.PickingCapacity),
		Scenario:        entities.ScenarioID(cfg.Simulation.Scenario),
		Seed:            cfg.Simulation.Seed,
	})
	elapsed := time.Since(startTime)
	log.Debug().Int("events", store.Position()).Msg("events published")
	if result == nil {
		return fmt.Errorf("simulation failed: %w", runErr)
	}

	err = output.Generate(c.out, result, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Elapsed:   elapsed,
	})
	if err != nil {
		return errors.Join(runErr, fmt.Errorf("error generating output: %w", err))
	}

	if err := c.export(ctx, cfg, result, recorder); err != nil {
		return errors.Join(runErr, err)
	}

	if runErr != nil {
		return fmt.Errorf("simulation stopped after %d days: %w", len(result.Days), runErr)
	}
	return nil
}

// resolveConfig loads file and environment configuration and applies the
// command line overrides on top
func (c *SimulateCommand) resolveConfig() (*config.Config, error) {
	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return nil, err
	}

	if c.config.CatalogDir != "" {
		cfg.Catalog.Dir = c.config.CatalogDir
	}
	if c.config.Days != 0 {
		cfg.Simulation.Days = c.config.Days
	}
	if c.config.PickingCapacity != 0 {
		cfg.Simulation.PickingCapacity = c.config.PickingCapacity
	}
	if c.config.Scenario != "" {
		cfg.Simulation.Scenario = c.config.Scenario
	}
	if c.config.Seed != nil {
		cfg.Simulation.Seed = *c.config.Seed
	}
	if c.config.CSVDir != "" {
		cfg.Export.CSVDir = c.config.CSVDir
	}
	if c.config.SQLitePath != "" {
		cfg.Export.SQLitePath = c.config.SQLitePath
	}
	if c.config.MetricsPath != "" {
		cfg.Export.MetricsPath = c.config.MetricsPath
	}

	return cfg, cfg.Validate()
}

func (c *SimulateCommand) loadCatalog(cfg *config.Config) (repositories.Catalog, error) {
	if cfg.Catalog.Dir == "" {
		catalog, err := memory.NewDefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("error building default catalog: %w", err)
		}
		return catalog, nil
	}

	catalog, err := csv.NewLoader().LoadCatalog(cfg.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog: %w", err)
	}
	return catalog, nil
}

// export writes the run tables, the SQLite run row and the metrics dump
// for every configured destination
func (c *SimulateCommand) export(ctx context.Context, cfg *config.Config, result *dto.SimulationResult, recorder *metrics.Recorder) error {
	if dir := cfg.Export.CSVDir; dir != "" {
		if _, err := export.WriteCSV(dir, result); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
		if c.config.Verbose {
			fmt.Fprintf(c.out, "Run tables written to: %s\n", dir)
		}
	}

	if path := cfg.Export.SQLitePath; path != "" {
		store, err := export.OpenSQLite(ctx, path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveRun(ctx, result); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		if c.config.Verbose {
			fmt.Fprintf(c.out, "Run %s saved to: %s\n", result.RunID, path)
		}
	}

	if path := cfg.Export.MetricsPath; path != "" {
		if err := writeMetrics(path, recorder); err != nil {
			return err
		}
		if c.config.Verbose {
			fmt.Fprintf(c.out, "Metrics written to: %s\n", path)
		}
	}

	return nil
}

func writeMetrics(path string, recorder *metrics.Recorder) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return recorder.WriteText(file)
}

// listRuns prints the runs stored in the SQLite database
func (c *SimulateCommand) listRuns(ctx context.Context, cfg *config.Config) error {
	if cfg.Export.SQLitePath == "" {
		return fmt.Errorf("listing runs requires -sqlite")
	}
	store, err := export.OpenSQLite(ctx, cfg.Export.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%-36s  %-16s %-5s %-8s %-8s %-8s\n", "Run", "Scenario", "Days", "Seed", "Fill %", "OTIF %")
	for _, r := range runs {
		fmt.Fprintf(c.out, "%-36s  %-16s %-5d %-8s %-8.1f %-8.1f\n",
			r.RunID, r.Scenario, r.Days, r.Seed, r.AvgFillRatePct, r.AvgOTIFPct)
	}
	return nil
}

func (c *SimulateCommand) showHelp() {
	fmt.Fprint(c.out, `supplysim - day-stepped supply chain simulation

Usage:
  supplysim [flags]

Flags:
  -config string     Path to a yaml configuration file
  -catalog string    Directory with products.csv, customers.csv, zones.csv and fleet.csv
                     (default: built-in catalog)
  -days int          Number of days to simulate
  -picking int       Picking capacity in units per day
  -scenario string   normal, slow_supplier, seasonal_demand or economic_lot
  -seed uint         Random seed
  -format string     Output format: text, json, csv (default "text")
  -output string     Output directory for json/csv results
  -csv string        Directory for the run table export
  -sqlite string     SQLite database file to store the run in
  -metrics string    File for the prometheus text metrics dump
  -list-runs         List runs stored in the -sqlite database and exit
  -verbose           Print the daily table, alerts and debug logs
  -help              Show this message

Configuration is read from defaults, the yaml file and SUPPLYSIM_* environment
variables; flags override all of them.
`)
}
