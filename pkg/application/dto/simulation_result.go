package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplysim/pkg/domain/entities"
)

// SimulationParams are the inputs of one simulation run
type SimulationParams struct {
	Days            int                 `validate:"gte=1"`
	PickingCapacity entities.Quantity   `validate:"gt=0"`
	Scenario        entities.ScenarioID `validate:"required"`
	Seed            uint64
}

// Severity ranks an alert
type Severity int

const (
	SeverityMedium Severity = iota
	SeverityHigh
)

// String method for Severity enum
func (s Severity) String() string {
	switch s {
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// AlertKind names the predicate that raised an alert
type AlertKind string

const (
	AlertStockAtSafety AlertKind = "stock_at_safety"
	AlertLowOTIF       AlertKind = "low_otif"
	AlertLowFillRate   AlertKind = "low_fill_rate"
)

// Alert is a triggered alert predicate
type Alert struct {
	Day      int
	Kind     AlertKind
	Severity Severity
	Product  entities.ProductID
	Value    float64
	Limit    float64
	Message  string
}

// ZoneFulfillment holds the raw unit counts of one product delivered to one zone on one day
type ZoneFulfillment struct {
	Product    entities.ProductID
	Zone       entities.ZoneID
	Requested  entities.Quantity
	Shipped    entities.Quantity
	Backlogged entities.Quantity
	Lost       entities.Quantity
	Recovered  entities.Quantity
}

// DailyKPI contains the service and utilisation indicators of one day
type DailyKPI struct {
	Day                   int
	Orders                int
	OrdersFull            int
	UnitsRequested        entities.Quantity
	UnitsShipped          entities.Quantity
	UnitsRecovered        entities.Quantity
	UnitsBacklogged       entities.Quantity
	UnitsLost             entities.Quantity
	FillRatePct           float64
	OTIFPct               float64
	LostSaleRatePct       float64
	FleetUtilizationPct   float64
	PickingUtilizationPct float64
	Dispatches            int
	UnassignedOrders      int
	TransportCost         decimal.Decimal
	BacklogUnits          entities.Quantity
	InventoryValue        decimal.Decimal
	Fulfillment           []ZoneFulfillment
}

// DaySnapshot is the state captured at the end of a simulated day
type DaySnapshot struct {
	Day        int
	Positions  []entities.InventoryPosition
	Received   []entities.PurchaseOrder
	Created    []entities.PurchaseOrder
	Dispatches []entities.Dispatch
	Unassigned []string
	Alerts     []Alert
	KPI        DailyKPI
}

// RunSummary aggregates the daily KPIs of a run
type RunSummary struct {
	Days                     int
	Orders                   int
	UnitsRequested           entities.Quantity
	UnitsDelivered           entities.Quantity
	UnitsLost                entities.Quantity
	AvgFillRatePct           float64
	AvgOTIFPct               float64
	AvgFleetUtilizationPct   float64
	AvgPickingUtilizationPct float64
	TotalTransportCost       decimal.Decimal
	FinalInventoryValue      decimal.Decimal
	LostRevenue              decimal.Decimal
	PurchaseOrders           int
	Dispatches               int
	Alerts                   int
}

// SimulationResult contains the complete output of a simulation run
type SimulationResult struct {
	RunID          string
	Params         SimulationParams
	StartedAt      time.Time
	FinishedAt     time.Time
	Days           []DaySnapshot
	Movements      []entities.LedgerMovement
	PurchaseOrders []entities.PurchaseOrder
	Dispatches     []entities.Dispatch
	LostSales      []entities.LostSale
	BacklogHistory []entities.BacklogEvent
	OpenBacklog    []entities.BacklogEntry
	Summary        RunSummary
}

// Alerts flattens the alerts of every day
func (r *SimulationResult) Alerts() []Alert {
	var out []Alert
	for _, d := range r.Days {
		out = append(out, d.Alerts...)
	}
	return out
}
