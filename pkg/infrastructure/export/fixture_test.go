package export

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplysim/pkg/application/dto"
	"github.com/vsinha/supplysim/pkg/domain/entities"
)

func sampleResult() *dto.SimulationResult {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return &dto.SimulationResult{
		RunID:      "8d6f0a5e-1f0b-4c57-9d1e-6f3c2b7a9e10",
		Params:     dto.SimulationParams{Days: 1, PickingCapacity: 200, Scenario: entities.ScenarioNormal, Seed: 42},
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Movements: []entities.LedgerMovement{
			{Seq: 1, Day: 0, Product: "P1", Type: entities.InitialBalance, Quantity: 100, Balance: 100, RefID: "P1", RefType: "initial"},
			{Seq: 2, Day: 1, Product: "P1", Type: entities.SaleDispatch, Quantity: -40, Balance: 60, RefID: "O01-001", RefType: entities.RefOrder},
		},
		Days: []dto.DaySnapshot{{
			Day: 1,
			KPI: dto.DailyKPI{
				Day: 1, Orders: 1, OrdersFull: 1, UnitsRequested: 40, UnitsShipped: 40,
				FillRatePct: 100, OTIFPct: 100, TransportCost: decimal.NewFromInt(100),
				InventoryValue: decimal.NewFromInt(600),
				Fulfillment: []dto.ZoneFulfillment{
					{Product: "P1", Zone: "Z1", Requested: 40, Shipped: 40},
				},
			},
		}},
		Summary: dto.RunSummary{
			Days: 1, AvgFillRatePct: 100, AvgOTIFPct: 100,
			TotalTransportCost: decimal.NewFromInt(100), FinalInventoryValue: decimal.NewFromInt(600),
			LostRevenue: decimal.Zero,
		},
	}
}
