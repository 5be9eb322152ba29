package kpi

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplysim/pkg/application/dto"
	"github.com/vsinha/supplysim/pkg/application/services/ledger"
	"github.com/vsinha/supplysim/pkg/application/services/transport"
	"github.com/vsinha/supplysim/pkg/domain/entities"
	testhelpers "github.com/vsinha/supplysim/pkg/infrastructure/testing"
)

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator(testhelpers.BuildSingleProductCatalog(100), 200, DefaultThresholds())
	require.NoError(t, err)
	return c
}

func sampleInput() DayInput {
	return DayInput{
		Day: 3,
		Results: []*ledger.DispatchResult{
			{OrderID: "O03-001", Zone: "Z1", Lines: []ledger.LineOutcome{
				{Product: "P1", Requested: 40, Shipped: 40},
			}},
			{OrderID: "O03-002", Zone: "Z2", Lines: []ledger.LineOutcome{
				{Product: "P1", Requested: 60, Shipped: 30, Backlogged: 20, Lost: 10},
			}},
		},
		Recoveries: []ledger.Recovery{{OrderID: "O01-004", Zone: "Z1", Product: "P1", Quantity: 30}},
		Plan: &transport.Plan{
			Day: 3,
			Dispatches: []entities.Dispatch{
				{ID: "D-0001", OccupancyPct: 80, TripCost: decimal.NewFromInt(150)},
				{ID: "D-0002", OccupancyPct: 40, TripCost: decimal.NewFromInt(80)},
			},
			Unassigned: []string{"O03-009"},
		},
		BacklogUnits: 20,
		Value:        decimal.NewFromInt(500),
	}
}

func TestNewCalculator_RejectsZeroCapacity(t *testing.T) {
	_, err := NewCalculator(testhelpers.BuildSingleProductCatalog(100), 0, DefaultThresholds())
	assert.Error(t, err)
}

func TestDaily(t *testing.T) {
	kpi := newCalculator(t).Daily(sampleInput())

	assert.Equal(t, 3, kpi.Day)
	assert.Equal(t, 2, kpi.Orders)
	assert.Equal(t, 1, kpi.OrdersFull)
	assert.Equal(t, entities.Quantity(100), kpi.UnitsRequested)
	assert.Equal(t, entities.Quantity(70), kpi.UnitsShipped)
	assert.Equal(t, entities.Quantity(30), kpi.UnitsRecovered)
	assert.Equal(t, entities.Quantity(20), kpi.UnitsBacklogged)
	assert.Equal(t, entities.Quantity(10), kpi.UnitsLost)
	assert.InDelta(t, 70.0, kpi.FillRatePct, 1e-9)
	assert.InDelta(t, 50.0, kpi.OTIFPct, 1e-9)
	assert.InDelta(t, 10.0, kpi.LostSaleRatePct, 1e-9)
	assert.InDelta(t, 60.0, kpi.FleetUtilizationPct, 1e-9)
	assert.InDelta(t, 50.0, kpi.PickingUtilizationPct, 1e-9, "100 delivered of 200")
	assert.True(t, decimal.NewFromInt(230).Equal(kpi.TransportCost))
	assert.Equal(t, 2, kpi.Dispatches)
	assert.Equal(t, 1, kpi.UnassignedOrders)
	assert.Equal(t, entities.Quantity(20), kpi.BacklogUnits)
	assert.Equal(t, []dto.ZoneFulfillment{
		{Product: "P1", Zone: "Z1", Requested: 40, Shipped: 40, Recovered: 30},
		{Product: "P1", Zone: "Z2", Requested: 60, Shipped: 30, Backlogged: 20, Lost: 10},
	}, kpi.Fulfillment)
}

func TestDaily_QuietDay(t *testing.T) {
	c := newCalculator(t)
	kpi := c.Daily(DayInput{Day: 1})

	assert.Equal(t, 100.0, kpi.FillRatePct)
	assert.Equal(t, 100.0, kpi.OTIFPct)
	assert.Zero(t, kpi.LostSaleRatePct)
	assert.Zero(t, kpi.FleetUtilizationPct)
	assert.True(t, kpi.TransportCost.IsZero())

	// No orders means nothing was late or short, so no service alert fires
	alerts, err := c.Alerts(kpi, nil)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlerts(t *testing.T) {
	c := newCalculator(t)

	tests := []struct {
		name      string
		kpi       dto.DailyKPI
		physical  entities.Quantity
		wantKinds []dto.AlertKind
	}{
		{
			name:     "healthy day",
			kpi:      dto.DailyKPI{Day: 1, OTIFPct: 100, FillRatePct: 100},
			physical: 50,
		},
		{
			name:      "stock at safety",
			kpi:       dto.DailyKPI{Day: 1, OTIFPct: 100, FillRatePct: 100},
			physical:  10,
			wantKinds: []dto.AlertKind{dto.AlertStockAtSafety},
		},
		{
			name:      "service below thresholds",
			kpi:       dto.DailyKPI{Day: 1, OTIFPct: 89.9, FillRatePct: 94},
			physical:  50,
			wantKinds: []dto.AlertKind{dto.AlertLowOTIF, dto.AlertLowFillRate},
		},
		{
			name:     "exactly at thresholds",
			kpi:      dto.DailyKPI{Day: 1, OTIFPct: 90, FillRatePct: 95},
			physical: 11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts, err := c.Alerts(tt.kpi, []entities.InventoryPosition{{Product: "P1", Physical: tt.physical}})
			require.NoError(t, err)

			var kinds []dto.AlertKind
			for _, a := range alerts {
				kinds = append(kinds, a.Kind)
				if a.Kind == dto.AlertStockAtSafety {
					assert.Equal(t, dto.SeverityHigh, a.Severity)
					assert.Equal(t, entities.ProductID("P1"), a.Product)
				} else {
					assert.Equal(t, dto.SeverityMedium, a.Severity)
				}
				assert.NotEmpty(t, a.Message)
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestAlerts_UnknownProduct(t *testing.T) {
	_, err := newCalculator(t).Alerts(dto.DailyKPI{}, []entities.InventoryPosition{{Product: "NOPE"}})
	assert.ErrorIs(t, err, entities.ErrUnknownProduct)
}

func TestSummarize(t *testing.T) {
	c := newCalculator(t)
	day := c.Daily(sampleInput())

	result := &dto.SimulationResult{
		Days: []dto.DaySnapshot{
			{Day: 1, KPI: dto.DailyKPI{Day: 1, FillRatePct: 100, OTIFPct: 100, TransportCost: decimal.Zero}},
			{Day: 2, KPI: day, Alerts: []dto.Alert{{Kind: dto.AlertLowOTIF}}},
		},
		LostSales:      []entities.LostSale{{Product: "P1", Lost: 10}},
		PurchaseOrders: []entities.PurchaseOrder{{ID: "PO-00001"}},
		Dispatches:     []entities.Dispatch{{ID: "D-0001"}, {ID: "D-0002"}},
	}

	summary := c.Summarize(result, decimal.NewFromInt(900))
	assert.Equal(t, 2, summary.Days)
	assert.Equal(t, 2, summary.Orders)
	assert.Equal(t, entities.Quantity(100), summary.UnitsRequested)
	assert.Equal(t, entities.Quantity(100), summary.UnitsDelivered)
	assert.InDelta(t, 85.0, summary.AvgFillRatePct, 1e-9)
	assert.InDelta(t, 75.0, summary.AvgOTIFPct, 1e-9)
	assert.True(t, decimal.NewFromInt(230).Equal(summary.TotalTransportCost))
	assert.True(t, decimal.NewFromInt(150).Equal(summary.LostRevenue), "10 units at price 15")
	assert.True(t, decimal.NewFromInt(900).Equal(summary.FinalInventoryValue))
	assert.Equal(t, 1, summary.PurchaseOrders)
	assert.Equal(t, 2, summary.Dispatches)
	assert.Equal(t, 1, summary.Alerts)
}

func TestTally(t *testing.T) {
	in := sampleInput()
	tally := Tally(in.Results, in.Recoveries)

	entries := tally.Entries()
	require.Len(t, entries, 2)
	z1 := entries[0]
	assert.Equal(t, entities.ZoneID("Z1"), z1.Zone)
	assert.Equal(t, entities.Quantity(40), z1.Shipped)
	assert.Equal(t, entities.Quantity(30), z1.Recovered)
	assert.Equal(t, entities.Quantity(70), z1.Delivered())
}
