package orchestration

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplysim/pkg/application/dto"
	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/domain/repositories"
	"github.com/vsinha/supplysim/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/supplysim/pkg/infrastructure/testing"
)

// scriptedOrders replays fixed orders per day
type scriptedOrders map[int][]*entities.CustomerOrder

func (s scriptedOrders) Generate(day int, _ entities.Scenario) ([]*entities.CustomerOrder, error) {
	return s[day], nil
}

func newSimulator(t *testing.T, catalog repositories.Catalog, orders OrderSource, publisher events.Publisher) *Simulator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Orders = orders
	sim, err := NewSimulator(catalog, cfg, publisher, nil)
	require.NoError(t, err)
	return sim
}

func params(days int, scenario entities.ScenarioID, seed uint64) dto.SimulationParams {
	return dto.SimulationParams{Days: days, PickingCapacity: 2000, Scenario: scenario, Seed: seed}
}

func TestRun_NormalFlow(t *testing.T) {
	catalog := testhelpers.CatalogFixture{
		Products: []*entities.Product{testhelpers.MustProduct("P1", 1, 3, 10, 50, 100, 80, 100)},
		Customers: []*entities.Customer{
			testhelpers.MustCustomer("CW", entities.FrequencyHigh, 1.0),
			testhelpers.MustCustomer("CL", entities.FrequencyLow, 0.0),
		},
		Zones: []*entities.Zone{{ID: "Z1", Name: "North"}},
		Fleet: []*entities.Vehicle{testhelpers.MustVehicle("V1", 1000, 100)},
	}.Build()

	orders := scriptedOrders{
		1: {testhelpers.MustOrder("O01-001", "CW", "Z1", 1, testhelpers.Line("P1", 40))},
		2: {testhelpers.MustOrder("O02-001", "CL", "Z1", 2, testhelpers.Line("P1", 70))},
	}
	sim := newSimulator(t, catalog, orders, nil)

	result, err := sim.Run(context.Background(), params(2, entities.ScenarioNormal, 1))
	require.NoError(t, err)
	require.Len(t, result.Days, 2)

	day1 := result.Days[0]
	assert.Equal(t, entities.Quantity(60), day1.Positions[0].Physical)
	assert.Empty(t, day1.Created, "position 60 is not below reorder point 50")
	assert.Equal(t, 100.0, day1.KPI.FillRatePct)
	require.Len(t, day1.Dispatches, 1)
	assert.InDelta(t, 40.0, day1.Dispatches[0].WeightKg, 1e-9)

	day2 := result.Days[1]
	assert.Equal(t, entities.Quantity(0), day2.Positions[0].Physical)
	assert.Equal(t, entities.Quantity(10), day2.KPI.UnitsLost)
	require.Len(t, day2.Created, 1)
	assert.Equal(t, entities.Quantity(100), day2.Created[0].Quantity, "max(lot 80, target 100 - position 0)")
	assert.Equal(t, 5, day2.Created[0].DayDue)
	assert.Equal(t, 0.0, day2.KPI.OTIFPct)

	require.Len(t, result.LostSales, 1)
	assert.Equal(t, "O02-001", result.LostSales[0].OrderID)
	assert.Empty(t, result.OpenBacklog)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Summary.Days)
}

func TestRun_RecoveredOrdersShipFirst(t *testing.T) {
	orders := scriptedOrders{
		1: {testhelpers.MustOrder("O01-001", "CW", "Z1", 1, testhelpers.Line("P1", 120))},
		3: {testhelpers.MustOrder("O03-001", "CW", "Z2", 3, testhelpers.Line("P1", 10))},
	}
	sim := newSimulator(t, testhelpers.BuildSingleProductCatalog(100), orders, nil)

	result, err := sim.Run(context.Background(), params(3, entities.ScenarioNormal, 7))
	require.NoError(t, err)

	day1 := result.Days[0]
	assert.Equal(t, entities.Quantity(20), day1.KPI.UnitsBacklogged)
	require.Len(t, day1.Created, 1)
	assert.Equal(t, entities.Quantity(120), day1.Created[0].Quantity)
	assert.Equal(t, 3, day1.Created[0].DayDue)

	day3 := result.Days[2]
	require.Len(t, day3.Received, 1)
	assert.Equal(t, entities.Quantity(20), day3.KPI.UnitsRecovered)
	require.Len(t, day3.Dispatches, 2)
	assert.Equal(t, []string{"O01-001"}, day3.Dispatches[0].OrderIDs)
	assert.Equal(t, entities.ZoneID("Z1"), day3.Dispatches[0].Zone)
	assert.Equal(t, entities.VehicleID("V1"), day3.Dispatches[0].Vehicle)
	assert.Equal(t, []string{"O03-001"}, day3.Dispatches[1].OrderIDs)
	assert.Equal(t, entities.VehicleID("V2"), day3.Dispatches[1].Vehicle)
	assert.Equal(t, entities.Quantity(90), day3.Positions[0].Physical)
	assert.Empty(t, result.OpenBacklog)

	kinds := make([]entities.BacklogEventKind, 0, len(result.BacklogHistory))
	for _, e := range result.BacklogHistory {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []entities.BacklogEventKind{entities.BacklogEntered, entities.BacklogServed}, kinds)
}

func TestRun_Deterministic(t *testing.T) {
	sim := newSimulator(t, testhelpers.BuildDefaultCatalog(), nil, nil)

	a, err := sim.Run(context.Background(), params(20, entities.ScenarioNormal, 99))
	require.NoError(t, err)
	b, err := sim.Run(context.Background(), params(20, entities.ScenarioNormal, 99))
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	require.Len(t, b.Days, len(a.Days))
	for i := range a.Days {
		assert.Equal(t, a.Days[i].KPI.Orders, b.Days[i].KPI.Orders)
		assert.Equal(t, a.Days[i].Positions, b.Days[i].Positions)
		assert.Equal(t, a.Days[i].KPI.FillRatePct, b.Days[i].KPI.FillRatePct)
	}
	assert.Equal(t, a.Movements, b.Movements)
	assert.Equal(t, a.PurchaseOrders, b.PurchaseOrders)
	assert.Equal(t, a.LostSales, b.LostSales)

	c, err := sim.Run(context.Background(), params(20, entities.ScenarioNormal, 100))
	require.NoError(t, err)
	assert.NotEqual(t, a.Movements, c.Movements)
}

func TestRun_Invariants(t *testing.T) {
	catalog := testhelpers.BuildDefaultCatalog()

	for _, scenario := range []entities.ScenarioID{
		entities.ScenarioNormal,
		entities.ScenarioSlowSupplier,
		entities.ScenarioSeasonalDemand,
		entities.ScenarioEconomicLot,
	} {
		t.Run(string(scenario), func(t *testing.T) {
			sim := newSimulator(t, catalog, nil, nil)
			result, err := sim.Run(context.Background(), params(30, scenario, 42))
			require.NoError(t, err)
			require.Len(t, result.Days, 30)

			for _, day := range result.Days {
				for _, pos := range day.Positions {
					assert.GreaterOrEqual(t, pos.Physical, entities.Quantity(0), "day %d %s", day.Day, pos.Product)
					assert.GreaterOrEqual(t, pos.Committed, entities.Quantity(0), "day %d %s", day.Day, pos.Product)
					assert.GreaterOrEqual(t, pos.InTransit, entities.Quantity(0), "day %d %s", day.Day, pos.Product)
				}
				for _, d := range day.Dispatches {
					assert.LessOrEqual(t, d.WeightKg, d.CapacityKg, "dispatch %s", d.ID)
				}
			}

			// The movement log reconciles with the closing positions
			sums := make(map[entities.ProductID]entities.Quantity)
			for _, m := range result.Movements {
				sums[m.Product] += m.Quantity
				assert.Equal(t, sums[m.Product], m.Balance, "movement %d", m.Seq)
			}
			for _, pos := range result.Days[len(result.Days)-1].Positions {
				assert.Equal(t, pos.Physical, sums[pos.Product], "product %s", pos.Product)
			}

			require.NotEmpty(t, result.PurchaseOrders)
		})
	}
}

func TestStep_LedgerReconcilesEveryDay(t *testing.T) {
	sim := newSimulator(t, testhelpers.BuildDefaultCatalog(), nil, nil)
	p := params(20, entities.ScenarioSeasonalDemand, 7)
	scenario, err := entities.LookupScenario(p.Scenario)
	require.NoError(t, err)

	r, err := sim.newRun(p, scenario)
	require.NoError(t, err)

	for day := 1; day <= p.Days; day++ {
		_, err := sim.step(r, day)
		require.NoError(t, err, "day %d", day)
		require.NoError(t, r.ledger.Reconcile(), "day %d", day)
	}
	assert.NotEmpty(t, r.ledger.Movements())
}

func TestRun_ScenarioPolicies(t *testing.T) {
	catalog := testhelpers.BuildDefaultCatalog()
	sim := newSimulator(t, catalog, nil, nil)
	ctx := context.Background()

	slow, err := sim.Run(ctx, params(30, entities.ScenarioSlowSupplier, 5))
	require.NoError(t, err)
	for _, po := range slow.PurchaseOrders {
		assert.GreaterOrEqual(t, po.LeadTimeApplied, 10, "purchase order %s", po.ID)
	}

	lots, err := sim.Run(ctx, params(30, entities.ScenarioEconomicLot, 5))
	require.NoError(t, err)
	for _, po := range lots.PurchaseOrders {
		assert.Zero(t, po.Quantity%50, "purchase order %s quantity %d", po.ID, po.Quantity)
	}

	seasonal, err := sim.Run(ctx, params(20, entities.ScenarioSeasonalDemand, 5))
	require.NoError(t, err)
	for _, day := range seasonal.Days {
		if day.Day >= 15 {
			assert.GreaterOrEqual(t, day.KPI.Orders, 20, "day %d", day.Day)
		} else {
			assert.LessOrEqual(t, day.KPI.Orders, 15, "day %d", day.Day)
		}
	}
}

func TestRun_InvalidOrderAbortsWithPartialResult(t *testing.T) {
	orders := scriptedOrders{
		1: {testhelpers.MustOrder("O01-001", "CW", "Z1", 1, testhelpers.Line("P1", 5))},
		2: {testhelpers.MustOrder("O02-001", "CW", "Z1", 2, testhelpers.Line("P404", 5))},
	}
	sim := newSimulator(t, testhelpers.BuildSingleProductCatalog(100), orders, nil)

	result, err := sim.Run(context.Background(), params(5, entities.ScenarioNormal, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrUnknownProduct)
	assert.Contains(t, err.Error(), "day 2")

	require.NotNil(t, result)
	assert.Len(t, result.Days, 1)
	assert.Equal(t, 1, result.Summary.Days)
	assert.NotEmpty(t, result.Movements)
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	orders := cancelAfter{day: 3, cancel: cancel}
	sim := newSimulator(t, testhelpers.BuildSingleProductCatalog(100), orders, nil)

	result, err := sim.Run(ctx, params(10, entities.ScenarioNormal, 1))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Len(t, result.Days, 3, "the running day completes")
}

type cancelAfter struct {
	day    int
	cancel context.CancelFunc
}

func (c cancelAfter) Generate(day int, _ entities.Scenario) ([]*entities.CustomerOrder, error) {
	if day == c.day {
		c.cancel()
	}
	return nil, nil
}

func TestRun_InvalidParams(t *testing.T) {
	sim := newSimulator(t, testhelpers.BuildSingleProductCatalog(100), scriptedOrders{}, nil)
	ctx := context.Background()

	_, err := sim.Run(ctx, dto.SimulationParams{Days: 0, PickingCapacity: 10, Scenario: entities.ScenarioNormal})
	assert.Error(t, err)

	_, err = sim.Run(ctx, dto.SimulationParams{Days: 1, PickingCapacity: 0, Scenario: entities.ScenarioNormal})
	assert.Error(t, err)

	_, err = sim.Run(ctx, params(1, "black_swan", 1))
	assert.ErrorIs(t, err, entities.ErrUnknownScenario)
}

func TestNewSimulator_RejectsInvalidCatalog(t *testing.T) {
	catalog := testhelpers.CatalogFixture{
		Products: []*entities.Product{testhelpers.MustProduct("P1", 1, 2, 10, 20, 100, 50, 100)},
	}.Build()

	_, err := NewSimulator(catalog, DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, entities.ErrInvalidCatalog)
}

func TestRun_PublishesDayEvents(t *testing.T) {
	store := events.NewInMemoryEventStore()

	var closed []int
	require.NoError(t, store.Subscribe([]string{events.DayClosedEvent}, &events.HandlerFunc{
		Types: []string{events.DayClosedEvent},
		Fn: func(e events.Event) error {
			closed = append(closed, e.Data().(events.DayClosed).Day)
			return nil
		},
	}))

	orders := scriptedOrders{
		1: {testhelpers.MustOrder("O01-001", "CL", "Z1", 1, testhelpers.Line("P1", 150))},
	}
	sim := newSimulator(t, testhelpers.BuildSingleProductCatalog(100), orders, store)

	result, err := sim.Run(context.Background(), params(3, entities.ScenarioNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, closed)

	stream, err := store.ReadEvents(result.RunID, 1)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(stream), 6)
	types := make([]string, 0, 6)
	for _, e := range stream[:6] {
		types = append(types, e.Type())
	}
	assert.Equal(t, []string{
		events.OrderDispatchedEvent,
		events.SaleLostEvent,
		events.VehicleDispatchedEvent,
		events.PurchaseOrderCreatedEvent,
		events.AlertRaisedEvent,
		events.AlertRaisedEvent,
	}, types)
}

func TestRun_HandlerErrorAbortsRun(t *testing.T) {
	store := events.NewInMemoryEventStore()
	require.NoError(t, store.Subscribe([]string{events.DayClosedEvent}, &events.HandlerFunc{
		Types: []string{events.DayClosedEvent},
		Fn: func(e events.Event) error {
			if e.Data().(events.DayClosed).Day == 2 {
				return fmt.Errorf("sink unavailable")
			}
			return nil
		},
	}))

	sim := newSimulator(t, testhelpers.BuildSingleProductCatalog(100), scriptedOrders{}, store)
	result, err := sim.Run(context.Background(), params(4, entities.ScenarioNormal, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink unavailable")
	assert.Len(t, result.Days, 1)
}
