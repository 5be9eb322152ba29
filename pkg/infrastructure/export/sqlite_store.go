package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	// Pure-Go SQLite driver registered as "sqlite"
	_ "modernc.org/sqlite"

	"github.com/vsinha/supplysim/pkg/application/dto"
)

const driverName = "sqlite"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		days INTEGER NOT NULL,
		seed TEXT NOT NULL,
		picking_capacity INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		avg_fill_rate_pct REAL NOT NULL,
		avg_otif_pct REAL NOT NULL,
		total_transport_cost TEXT NOT NULL,
		final_inventory_value TEXT NOT NULL,
		lost_revenue TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movements (
		run_id TEXT NOT NULL, seq INTEGER NOT NULL, day INTEGER NOT NULL, product TEXT NOT NULL,
		type TEXT NOT NULL, quantity INTEGER NOT NULL, balance INTEGER NOT NULL,
		ref_id TEXT NOT NULL, ref_type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_orders (
		run_id TEXT NOT NULL, id TEXT NOT NULL, product TEXT NOT NULL, quantity INTEGER NOT NULL,
		day_created INTEGER NOT NULL, day_due INTEGER NOT NULL, lead_time INTEGER NOT NULL,
		status TEXT NOT NULL, day_received INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dispatches (
		run_id TEXT NOT NULL, id TEXT NOT NULL, day INTEGER NOT NULL, zone TEXT NOT NULL,
		vehicle TEXT NOT NULL, vehicle_type TEXT NOT NULL, weight_kg REAL NOT NULL,
		capacity_kg REAL NOT NULL, occupancy_pct REAL NOT NULL, trip_cost TEXT NOT NULL,
		order_ids TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lost_sales (
		run_id TEXT NOT NULL, day INTEGER NOT NULL, order_id TEXT NOT NULL, customer TEXT NOT NULL,
		product TEXT NOT NULL, requested INTEGER NOT NULL, served INTEGER NOT NULL, lost INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS backlog_history (
		run_id TEXT NOT NULL, day INTEGER NOT NULL, order_id TEXT NOT NULL, customer TEXT NOT NULL,
		product TEXT NOT NULL, quantity INTEGER NOT NULL, kind TEXT NOT NULL, wait_probability REAL NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_kpis (
		run_id TEXT NOT NULL, day INTEGER NOT NULL, orders INTEGER NOT NULL, orders_full INTEGER NOT NULL,
		units_requested INTEGER NOT NULL, units_shipped INTEGER NOT NULL, units_recovered INTEGER NOT NULL,
		units_backlogged INTEGER NOT NULL, units_lost INTEGER NOT NULL, fill_rate_pct REAL NOT NULL,
		otif_pct REAL NOT NULL, lost_sale_rate_pct REAL NOT NULL, fleet_utilization_pct REAL NOT NULL,
		picking_utilization_pct REAL NOT NULL, dispatches INTEGER NOT NULL, unassigned_orders INTEGER NOT NULL,
		transport_cost TEXT NOT NULL, backlog_units INTEGER NOT NULL, inventory_value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_fulfillment (
		run_id TEXT NOT NULL, day INTEGER NOT NULL, product TEXT NOT NULL, zone TEXT NOT NULL,
		requested INTEGER NOT NULL, shipped INTEGER NOT NULL, backlogged INTEGER NOT NULL,
		lost INTEGER NOT NULL, recovered INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		run_id TEXT NOT NULL, day INTEGER NOT NULL, kind TEXT NOT NULL, severity TEXT NOT NULL,
		product TEXT NOT NULL, value REAL NOT NULL, threshold REAL NOT NULL, message TEXT NOT NULL
	)`,
}

// RunRecord is one row of the runs table
type RunRecord struct {
	RunID               string    `db:"run_id"`
	Scenario            string    `db:"scenario"`
	Days                int       `db:"days"`
	Seed                string    `db:"seed"`
	PickingCapacity     int64     `db:"picking_capacity"`
	StartedAt           time.Time `db:"started_at"`
	FinishedAt          time.Time `db:"finished_at"`
	AvgFillRatePct      float64   `db:"avg_fill_rate_pct"`
	AvgOTIFPct          float64   `db:"avg_otif_pct"`
	TotalTransportCost  string    `db:"total_transport_cost"`
	FinalInventoryValue string    `db:"final_inventory_value"`
	LostRevenue         string    `db:"lost_revenue"`
}

// Store persists simulation runs to a SQL database
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an existing connection
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// OpenSQLite opens (creating if needed) a SQLite database file and
// migrates the schema.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the run tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SaveRun writes the run header and every run table in one transaction
func (s *Store) SaveRun(ctx context.Context, result *dto.SimulationResult) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, insertRunQuery, runRecord(result)); err != nil {
		return fmt.Errorf("insert run %s: %w", result.RunID, err)
	}

	for _, table := range Tables(result) {
		if err = insertTable(ctx, tx, table); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", result.RunID, err)
	}
	return nil
}

// ListRuns returns the stored run headers, oldest first
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	var runs []RunRecord
	query := `SELECT run_id, scenario, days, seed, picking_capacity, started_at, finished_at,
		avg_fill_rate_pct, avg_otif_pct, total_transport_cost, final_inventory_value, lost_revenue
		FROM runs ORDER BY started_at`
	if err := s.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// CountRows returns the number of rows a run wrote to a table
func (s *Store) CountRows(ctx context.Context, table, runID string) (int, error) {
	if !knownTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	query := s.db.Rebind("SELECT COUNT(*) FROM " + table + " WHERE run_id = ?")
	if err := s.db.GetContext(ctx, &n, query, runID); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

const insertRunQuery = `INSERT INTO runs (run_id, scenario, days, seed, picking_capacity, started_at,
	finished_at, avg_fill_rate_pct, avg_otif_pct, total_transport_cost, final_inventory_value, lost_revenue)
	VALUES (:run_id, :scenario, :days, :seed, :picking_capacity, :started_at, :finished_at,
	:avg_fill_rate_pct, :avg_otif_pct, :total_transport_cost, :final_inventory_value, :lost_revenue)`

func runRecord(result *dto.SimulationResult) RunRecord {
	return RunRecord{
		RunID:               result.RunID,
		Scenario:            string(result.Params.Scenario),
		Days:                result.Params.Days,
		Seed:                strconv.FormatUint(result.Params.Seed, 10),
		PickingCapacity:     int64(result.Params.PickingCapacity),
		StartedAt:           result.StartedAt,
		FinishedAt:          result.FinishedAt,
		AvgFillRatePct:      result.Summary.AvgFillRatePct,
		AvgOTIFPct:          result.Summary.AvgOTIFPct,
		TotalTransportCost:  decimalText(result.Summary.TotalTransportCost),
		FinalInventoryValue: decimalText(result.Summary.FinalInventoryValue),
		LostRevenue:         decimalText(result.Summary.LostRevenue),
	}
}

func insertTable(ctx context.Context, tx *sqlx.Tx, table Table) error {
	if len(table.Rows) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(table.Columns)), ", ")
	query := tx.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table.Name, strings.Join(table.Columns, ", "), placeholders))

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", table.Name, err)
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		args := make([]any, len(row))
		for i, v := range row {
			if d, ok := v.(decimal.Decimal); ok {
				v = decimalText(d)
			}
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table.Name, err)
		}
	}
	return nil
}

func decimalText(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func knownTable(name string) bool {
	if name == "runs" {
		return true
	}
	for _, t := range Tables(&dto.SimulationResult{}) {
		if t.Name == name {
			return true
		}
	}
	return false
}
