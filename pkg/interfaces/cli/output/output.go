// Package output renders simulation results for the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/supplysim/pkg/application/dto"
	"github.com/vsinha/supplysim/pkg/infrastructure/export"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Elapsed   time.Duration
}

// Generate writes the result in the configured format. Text goes to w; json
// goes to w or, with an output directory, to simulation_result.json; csv
// requires an output directory.
func Generate(w io.Writer, result *dto.SimulationResult, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(w, result, config)
	case "json":
		return generateJSONOutput(w, result, config)
	case "csv":
		return generateCSVOutput(w, result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func generateTextOutput(w io.Writer, result *dto.SimulationResult, config Config) error {
	s := result.Summary

	fmt.Fprintf(w, "Simulation %s\n", result.RunID)
	fmt.Fprintf(w, "==========================================================\n\n")
	fmt.Fprintf(w, "Scenario:          %s\n", result.Params.Scenario)
	fmt.Fprintf(w, "Days simulated:    %d of %d\n", s.Days, result.Params.Days)
	fmt.Fprintf(w, "Seed:              %d\n", result.Params.Seed)
	fmt.Fprintf(w, "Picking capacity:  %d units/day\n", result.Params.PickingCapacity)
	if config.Elapsed > 0 {
		fmt.Fprintf(w, "Elapsed:           %v\n", config.Elapsed)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Orders:            %d\n", s.Orders)
	fmt.Fprintf(w, "Units requested:   %d\n", s.UnitsRequested)
	fmt.Fprintf(w, "Units delivered:   %d\n", s.UnitsDelivered)
	fmt.Fprintf(w, "Units lost:        %d\n", s.UnitsLost)
	fmt.Fprintf(w, "Avg fill rate:     %.1f%%\n", s.AvgFillRatePct)
	fmt.Fprintf(w, "Avg OTIF:          %.1f%%\n", s.AvgOTIFPct)
	fmt.Fprintf(w, "Avg fleet use:     %.1f%%\n", s.AvgFleetUtilizationPct)
	fmt.Fprintf(w, "Avg picking use:   %.1f%%\n", s.AvgPickingUtilizationPct)
	fmt.Fprintf(w, "Transport cost:    %s\n", s.TotalTransportCost.StringFixed(2))
	fmt.Fprintf(w, "Inventory value:   %s\n", s.FinalInventoryValue.StringFixed(2))
	fmt.Fprintf(w, "Lost revenue:      %s\n", s.LostRevenue.StringFixed(2))
	fmt.Fprintf(w, "Purchase orders:   %d\n", s.PurchaseOrders)
	fmt.Fprintf(w, "Dispatches:        %d\n", s.Dispatches)
	fmt.Fprintf(w, "Alerts:            %d\n", s.Alerts)
	fmt.Fprintf(w, "Open backlog:      %d entries\n\n", len(result.OpenBacklog))

	if config.Verbose && len(result.Days) > 0 {
		fmt.Fprintf(w, "%-5s %-7s %-9s %-9s %-7s %-8s %-8s %-8s %-10s\n",
			"Day", "Orders", "Fill %", "OTIF %", "Lost", "Backlog", "Fleet %", "Trips", "Cost")
		fmt.Fprintf(w, "%-5s %-7s %-9s %-9s %-7s %-8s %-8s %-8s %-10s\n",
			"-----", "-------", "---------", "---------", "-------", "--------", "--------", "--------", "----------")
		for _, day := range result.Days {
			k := day.KPI
			fmt.Fprintf(w, "%-5d %-7d %-9.1f %-9.1f %-7d %-8d %-8.1f %-8d %-10s\n",
				k.Day, k.Orders, k.FillRatePct, k.OTIFPct, k.UnitsLost, k.BacklogUnits,
				k.FleetUtilizationPct, k.Dispatches, k.TransportCost.StringFixed(2))
		}
		fmt.Fprintln(w)

		if alerts := result.Alerts(); len(alerts) > 0 {
			fmt.Fprintf(w, "Alerts:\n")
			for _, a := range alerts {
				fmt.Fprintf(w, "  day %-3d %-6s %s\n", a.Day, a.Severity, a.Message)
			}
			fmt.Fprintln(w)
		}
	}

	return nil
}

func generateJSONOutput(w io.Writer, result *dto.SimulationResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "simulation_result.json")
	if err := os.WriteFile(filename, jsonData, 0o640); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(w, "JSON results saved to: %s\n", filename)
	}
	return nil
}

func generateCSVOutput(w io.Writer, result *dto.SimulationResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	paths, err := export.WriteCSV(config.OutputDir, result)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(w, "CSV results saved to:\n")
		for _, p := range paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	return nil
}
