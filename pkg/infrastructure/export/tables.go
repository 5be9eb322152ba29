// Package export writes the append-only run tables to external formats.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplysim/pkg/application/dto"
)

// Table is a flat, append-only run table
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Tables flattens a simulation result into its export tables. Every row
// carries the run id so tables from several runs can share a database.
func Tables(result *dto.SimulationResult) []Table {
	id := result.RunID

	movements := Table{
		Name:    "movements",
		Columns: []string{"run_id", "seq", "day", "product", "type", "quantity", "balance", "ref_id", "ref_type"},
	}
	for _, m := range result.Movements {
		movements.Rows = append(movements.Rows, []any{
			id, m.Seq, m.Day, string(m.Product), m.Type.String(), int64(m.Quantity), int64(m.Balance), m.RefID, m.RefType,
		})
	}

	purchases := Table{
		Name:    "purchase_orders",
		Columns: []string{"run_id", "id", "product", "quantity", "day_created", "day_due", "lead_time", "status", "day_received"},
	}
	for _, po := range result.PurchaseOrders {
		purchases.Rows = append(purchases.Rows, []any{
			id, po.ID, string(po.Product), int64(po.Quantity), po.DayCreated, po.DayDue, po.LeadTimeApplied, po.Status.String(), po.DayReceived,
		})
	}

	dispatches := Table{
		Name:    "dispatches",
		Columns: []string{"run_id", "id", "day", "zone", "vehicle", "vehicle_type", "weight_kg", "capacity_kg", "occupancy_pct", "trip_cost", "order_ids"},
	}
	for _, d := range result.Dispatches {
		dispatches.Rows = append(dispatches.Rows, []any{
			id, d.ID, d.Day, string(d.Zone), string(d.Vehicle), d.VehicleType, d.WeightKg, d.CapacityKg, d.OccupancyPct, d.TripCost, strings.Join(d.OrderIDs, ";"),
		})
	}

	lost := Table{
		Name:    "lost_sales",
		Columns: []string{"run_id", "day", "order_id", "customer", "product", "requested", "served", "lost"},
	}
	for _, ls := range result.LostSales {
		lost.Rows = append(lost.Rows, []any{
			id, ls.Day, ls.OrderID, string(ls.Customer), string(ls.Product), int64(ls.Requested), int64(ls.Served), int64(ls.Lost),
		})
	}

	backlog := Table{
		Name:    "backlog_history",
		Columns: []string{"run_id", "day", "order_id", "customer", "product", "quantity", "kind", "wait_probability"},
	}
	for _, e := range result.BacklogHistory {
		backlog.Rows = append(backlog.Rows, []any{
			id, e.Day, e.OrderID, string(e.Customer), string(e.Product), int64(e.Quantity), e.Kind.String(), e.WaitProbability,
		})
	}

	kpis := Table{
		Name: "daily_kpis",
		Columns: []string{
			"run_id", "day", "orders", "orders_full", "units_requested", "units_shipped", "units_recovered",
			"units_backlogged", "units_lost", "fill_rate_pct", "otif_pct", "lost_sale_rate_pct",
			"fleet_utilization_pct", "picking_utilization_pct", "dispatches", "unassigned_orders",
			"transport_cost", "backlog_units", "inventory_value",
		},
	}
	fulfillment := Table{
		Name:    "daily_fulfillment",
		Columns: []string{"run_id", "day", "product", "zone", "requested", "shipped", "backlogged", "lost", "recovered"},
	}
	alerts := Table{
		Name:    "alerts",
		Columns: []string{"run_id", "day", "kind", "severity", "product", "value", "threshold", "message"},
	}
	for _, day := range result.Days {
		k := day.KPI
		kpis.Rows = append(kpis.Rows, []any{
			id, k.Day, k.Orders, k.OrdersFull, int64(k.UnitsRequested), int64(k.UnitsShipped), int64(k.UnitsRecovered),
			int64(k.UnitsBacklogged), int64(k.UnitsLost), k.FillRatePct, k.OTIFPct, k.LostSaleRatePct,
			k.FleetUtilizationPct, k.PickingUtilizationPct, k.Dispatches, k.UnassignedOrders,
			k.TransportCost, int64(k.BacklogUnits), k.InventoryValue,
		})
		for _, f := range k.Fulfillment {
			fulfillment.Rows = append(fulfillment.Rows, []any{
				id, k.Day, string(f.Product), string(f.Zone), int64(f.Requested), int64(f.Shipped),
				int64(f.Backlogged), int64(f.Lost), int64(f.Recovered),
			})
		}
		for _, a := range day.Alerts {
			alerts.Rows = append(alerts.Rows, []any{
				id, a.Day, string(a.Kind), a.Severity.String(), string(a.Product), a.Value, a.Limit, a.Message,
			})
		}
	}

	return []Table{movements, purchases, dispatches, lost, backlog, kpis, fulfillment, alerts}
}

// formatValue renders a table cell for text formats
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case decimal.Decimal:
		return x.StringFixed(2)
	default:
		return fmt.Sprint(x)
	}
}
