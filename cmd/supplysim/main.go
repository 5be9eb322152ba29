package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/supplysim/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		configFile      = flag.String("config", "", "Path to a yaml configuration file")
		catalogDir      = flag.String("catalog", "", "Directory with the catalog CSV files")
		days            = flag.Int("days", 0, "Number of days to simulate")
		pickingCapacity = flag.Int64("picking", 0, "Picking capacity in units per day")
		scenario        = flag.String("scenario", "", "normal, slow_supplier, seasonal_demand or economic_lot")
		seed            = flag.Uint64("seed", 0, "Random seed")
		format          = flag.String("format", "text", "Output format: text, json, csv")
		outputDir       = flag.String("output", "", "Output directory for json/csv results")
		csvDir          = flag.String("csv", "", "Directory for the run table export")
		sqlitePath      = flag.String("sqlite", "", "SQLite database file to store the run in")
		metricsPath     = flag.String("metrics", "", "File for the prometheus text metrics dump")
		listRuns        = flag.Bool("list-runs", false, "List runs stored in the -sqlite database")
		verbose         = flag.Bool("verbose", false, "Enable verbose output")
		help            = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	config := commands.Config{
		ConfigFile:      *configFile,
		CatalogDir:      *catalogDir,
		Days:            *days,
		PickingCapacity: *pickingCapacity,
		Scenario:        *scenario,
		Format:          *format,
		OutputDir:       *outputDir,
		CSVDir:          *csvDir,
		SQLitePath:      *sqlitePath,
		MetricsPath:     *metricsPath,
		ListRuns:        *listRuns,
		Verbose:         *verbose,
		Help:            *help,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			config.Seed = seed
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := commands.NewSimulateCommand(config, os.Stdout)
	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
