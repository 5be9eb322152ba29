package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vsinha/supplysim/pkg/application/dto"
)

// WriteCSV writes one <table>.csv file per run table into dir, creating it
// if needed, and returns the written paths.
func WriteCSV(dir string, result *dto.SimulationResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	var paths []string
	for _, table := range Tables(result) {
		path := filepath.Join(dir, table.Name+".csv")
		if err := writeTable(path, table); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTable(path string, table Table) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(table.Columns); err != nil {
		return fmt.Errorf("write %s header: %w", table.Name, err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write %s row: %w", table.Name, err)
		}
	}
	w.Flush()
	return w.Error()
}
