// Package kpi reduces the daily outputs of the simulation into service-level
// and utilisation indicators and evaluates the alert predicates.
package kpi

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplysim/pkg/application/dto"
	"github.com/vsinha/supplysim/pkg/application/services/ledger"
	"github.com/vsinha/supplysim/pkg/application/services/shared"
	"github.com/vsinha/supplysim/pkg/application/services/transport"
	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/domain/repositories"
)

// Thresholds are the service levels below which a medium alert is raised
type Thresholds struct {
	OTIFPct     float64 `mapstructure:"otif_pct" validate:"gte=0,lte=100"`
	FillRatePct float64 `mapstructure:"fill_rate_pct" validate:"gte=0,lte=100"`
}

// DefaultThresholds returns OTIF 90% and fill rate 95%
func DefaultThresholds() Thresholds {
	return Thresholds{OTIFPct: 90, FillRatePct: 95}
}

// DayInput is everything the calculator reads for one day
type DayInput struct {
	Day          int
	Results      []*ledger.DispatchResult
	Recoveries   []ledger.Recovery
	Plan         *transport.Plan
	Positions    []entities.InventoryPosition
	BacklogUnits entities.Quantity
	Value        decimal.Decimal
}

// Calculator computes daily KPIs, alerts and the run summary
type Calculator struct {
	catalog         repositories.Catalog
	pickingCapacity entities.Quantity
	thresholds      Thresholds
}

// NewCalculator creates a calculator for a picking capacity in units per day
func NewCalculator(catalog repositories.Catalog, pickingCapacity entities.Quantity, thresholds Thresholds) (*Calculator, error) {
	if pickingCapacity <= 0 {
		return nil, fmt.Errorf("picking capacity must be positive, got %d", pickingCapacity)
	}
	return &Calculator{
		catalog:         catalog,
		pickingCapacity: pickingCapacity,
		thresholds:      thresholds,
	}, nil
}

// Tally folds the day's order outcomes and backlog recoveries by product and zone
func Tally(results []*ledger.DispatchResult, recoveries []ledger.Recovery) shared.FulfillmentTally {
	tally := shared.NewFulfillmentTally()
	for _, r := range results {
		for _, line := range r.Lines {
			tally.Record(line.Product, r.Zone, shared.FulfillmentContext{
				Requested:  line.Requested,
				Shipped:    line.Shipped,
				Backlogged: line.Backlogged,
				Lost:       line.Lost,
			})
		}
	}
	for _, rec := range recoveries {
		tally.Record(rec.Product, rec.Zone, shared.FulfillmentContext{Recovered: rec.Quantity})
	}
	return tally
}

// Daily computes the KPIs of one day. An order counts as on time in full
// only when every line shipped completely on the day it was placed.
func (c *Calculator) Daily(in DayInput) dto.DailyKPI {
	tally := Tally(in.Results, in.Recoveries)
	totals := tally.Totals()

	kpi := dto.DailyKPI{
		Day:             in.Day,
		Orders:          len(in.Results),
		UnitsRequested:  totals.Requested,
		UnitsShipped:    totals.Shipped,
		UnitsRecovered:  totals.Recovered,
		UnitsBacklogged: totals.Backlogged,
		UnitsLost:       totals.Lost,
		FillRatePct:     tally.FillRatio() * 100,
		OTIFPct:         100,
		TransportCost:   decimal.Zero,
		BacklogUnits:    in.BacklogUnits,
		InventoryValue:  in.Value,
	}

	for _, e := range tally.Entries() {
		kpi.Fulfillment = append(kpi.Fulfillment, dto.ZoneFulfillment{
			Product:    e.Product,
			Zone:       e.Zone,
			Requested:  e.Requested,
			Shipped:    e.Shipped,
			Backlogged: e.Backlogged,
			Lost:       e.Lost,
			Recovered:  e.Recovered,
		})
	}

	for _, r := range in.Results {
		if r.Status() == entities.FullyServed {
			kpi.OrdersFull++
		}
	}
	if kpi.Orders > 0 {
		kpi.OTIFPct = float64(kpi.OrdersFull) / float64(kpi.Orders) * 100
	}
	if totals.Requested > 0 {
		kpi.LostSaleRatePct = float64(totals.Lost) / float64(totals.Requested) * 100
	}

	kpi.PickingUtilizationPct = float64(totals.Delivered()) / float64(c.pickingCapacity) * 100

	if in.Plan != nil {
		kpi.Dispatches = len(in.Plan.Dispatches)
		kpi.UnassignedOrders = len(in.Plan.Unassigned)
		var occupancy float64
		for _, d := range in.Plan.Dispatches {
			occupancy += d.OccupancyPct
			kpi.TransportCost = kpi.TransportCost.Add(d.TripCost)
		}
		if kpi.Dispatches > 0 {
			kpi.FleetUtilizationPct = occupancy / float64(kpi.Dispatches)
		}
	}

	return kpi
}

// Alerts evaluates the alert predicates for a day: high severity for every
// product whose physical stock is at or below its safety stock, medium
// severity when OTIF or fill rate falls below threshold.
func (c *Calculator) Alerts(kpi dto.DailyKPI, positions []entities.InventoryPosition) ([]dto.Alert, error) {
	var alerts []dto.Alert

	for _, pos := range positions {
		p, err := c.catalog.GetProduct(pos.Product)
		if err != nil {
			return alerts, err
		}
		if pos.Physical <= p.SafetyStock {
			alerts = append(alerts, dto.Alert{
				Day:      kpi.Day,
				Kind:     dto.AlertStockAtSafety,
				Severity: dto.SeverityHigh,
				Product:  pos.Product,
				Value:    float64(pos.Physical),
				Limit:    float64(p.SafetyStock),
				Message:  fmt.Sprintf("%s stock %d at or below safety stock %d", pos.Product, pos.Physical, p.SafetyStock),
			})
		}
	}

	if kpi.OTIFPct < c.thresholds.OTIFPct {
		alerts = append(alerts, dto.Alert{
			Day:      kpi.Day,
			Kind:     dto.AlertLowOTIF,
			Severity: dto.SeverityMedium,
			Value:    kpi.OTIFPct,
			Limit:    c.thresholds.OTIFPct,
			Message:  fmt.Sprintf("OTIF %.1f%% below %.1f%%", kpi.OTIFPct, c.thresholds.OTIFPct),
		})
	}
	if kpi.FillRatePct < c.thresholds.FillRatePct {
		alerts = append(alerts, dto.Alert{
			Day:      kpi.Day,
			Kind:     dto.AlertLowFillRate,
			Severity: dto.SeverityMedium,
			Value:    kpi.FillRatePct,
			Limit:    c.thresholds.FillRatePct,
			Message:  fmt.Sprintf("fill rate %.1f%% below %.1f%%", kpi.FillRatePct, c.thresholds.FillRatePct),
		})
	}

	return alerts, nil
}

// Summarize aggregates the run. Lost revenue values lost units at unit price.
func (c *Calculator) Summarize(result *dto.SimulationResult, finalValue decimal.Decimal) dto.RunSummary {
	summary := dto.RunSummary{
		Days:                len(result.Days),
		TotalTransportCost:  decimal.Zero,
		FinalInventoryValue: finalValue,
		LostRevenue:         decimal.Zero,
		PurchaseOrders:      len(result.PurchaseOrders),
		Dispatches:          len(result.Dispatches),
	}

	for _, day := range result.Days {
		k := day.KPI
		summary.Orders += k.Orders
		summary.UnitsRequested += k.UnitsRequested
		summary.UnitsDelivered += k.UnitsShipped + k.UnitsRecovered
		summary.UnitsLost += k.UnitsLost
		summary.AvgFillRatePct += k.FillRatePct
		summary.AvgOTIFPct += k.OTIFPct
		summary.AvgFleetUtilizationPct += k.FleetUtilizationPct
		summary.AvgPickingUtilizationPct += k.PickingUtilizationPct
		summary.TotalTransportCost = summary.TotalTransportCost.Add(k.TransportCost)
		summary.Alerts += len(day.Alerts)
	}

	if n := float64(summary.Days); n > 0 {
		summary.AvgFillRatePct /= n
		summary.AvgOTIFPct /= n
		summary.AvgFleetUtilizationPct /= n
		summary.AvgPickingUtilizationPct /= n
	}

	for _, ls := range result.LostSales {
		p, err := c.catalog.GetProduct(ls.Product)
		if err != nil {
			continue
		}
		summary.LostRevenue = summary.LostRevenue.Add(p.UnitPrice.Mul(decimal.NewFromInt(int64(ls.Lost))))
	}

	return summary
}
