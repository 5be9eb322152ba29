// Package orchestration sequences the daily simulation loop over the
// demand generator, inventory ledger, transport allocator and KPI reducers.
package orchestration

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vsinha/supplysim/pkg/application/dto"
	"github.com/vsinha/supplysim/pkg/application/services/demand"
	"github.com/vsinha/supplysim/pkg/application/services/kpi"
	"github.com/vsinha/supplysim/pkg/application/services/ledger"
	"github.com/vsinha/supplysim/pkg/application/services/transport"
	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/domain/repositories"
	"github.com/vsinha/supplysim/pkg/domain/services"
	"github.com/vsinha/supplysim/pkg/infrastructure/events"
	"github.com/vsinha/supplysim/pkg/infrastructure/logger"
)

// OrderSource produces the customer orders of a simulated day
type OrderSource interface {
	Generate(day int, scenario entities.Scenario) ([]*entities.CustomerOrder, error)
}

// Config tunes a Simulator. A nil Orders builds a seeded demand generator per run.
type Config struct {
	Demand     demand.Config
	Thresholds kpi.Thresholds
	Orders     OrderSource
}

// DefaultConfig returns the default demand ranges and alert thresholds
func DefaultConfig() Config {
	return Config{
		Demand:     demand.DefaultConfig(),
		Thresholds: kpi.DefaultThresholds(),
	}
}

// Simulator runs day-stepped simulations over a fixed catalog
type Simulator struct {
	catalog   repositories.Catalog
	config    Config
	publisher events.Publisher
	logger    *logger.Logger
	orders    *services.OrderValidator
	params    *validator.Validate
}

// NewSimulator creates a simulator after checking the catalog's master data.
// The publisher may be nil.
func NewSimulator(
	catalog repositories.Catalog,
	config Config,
	publisher events.Publisher,
	log *logger.Logger,
) (*Simulator, error) {
	if log == nil {
		log = logger.Nop()
	}
	orders := services.NewOrderValidator(catalog)
	if err := orders.ValidateCatalog(); err != nil {
		return nil, err
	}
	return &Simulator{
		catalog:   catalog,
		config:    config,
		publisher: publisher,
		logger:    log.WithComponent("simulator"),
		orders:    orders,
		params:    validator.New(),
	}, nil
}

// run holds the per-run state; nothing is shared between runs
type run struct {
	id         string
	scenario   entities.Scenario
	params     dto.SimulationParams
	source     OrderSource
	chance     ledger.Chance
	ledger     *ledger.Ledger
	allocator  *transport.Allocator
	calculator *kpi.Calculator
	logger     *logger.Logger

	lostMark    int
	backlogMark int
}

// Run simulates days 1..params.Days. Any error aborts the run; the result
// built so far is returned alongside it. ctx is checked between days only.
func (s *Simulator) Run(ctx context.Context, params dto.SimulationParams) (*dto.SimulationResult, error) {
	if err := s.params.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid simulation parameters: %w", err)
	}
	scenario, err := entities.LookupScenario(params.Scenario)
	if err != nil {
		return nil, err
	}

	r, err := s.newRun(params, scenario)
	if err != nil {
		return nil, err
	}

	result := &dto.SimulationResult{
		RunID:     r.id,
		Params:    params,
		StartedAt: time.Now(),
		Days:      make([]dto.DaySnapshot, 0, params.Days),
	}

	r.logger.Info().
		Int("days", params.Days).
		Int64("picking_capacity", int64(params.PickingCapacity)).
		Uint64("seed", params.Seed).
		Msg("simulation started")

	for day := 1; day <= params.Days; day++ {
		if err := ctx.Err(); err != nil {
			s.finish(r, result)
			return result, fmt.Errorf("run stopped before day %d: %w", day, err)
		}

		snapshot, err := s.step(r, day)
		if err != nil {
			s.finish(r, result)
			r.logger.Error().Err(err).Int("day", day).Msg("simulation aborted")
			return result, fmt.Errorf("day %d: %w", day, err)
		}
		result.Days = append(result.Days, *snapshot)
	}

	s.finish(r, result)
	r.logger.Info().
		Float64("avg_fill_rate_pct", result.Summary.AvgFillRatePct).
		Float64("avg_otif_pct", result.Summary.AvgOTIFPct).
		Int("purchase_orders", result.Summary.PurchaseOrders).
		Int("dispatches", result.Summary.Dispatches).
		Dur("elapsed", result.FinishedAt.Sub(result.StartedAt)).
		Msg("simulation finished")

	return result, nil
}

func (s *Simulator) newRun(params dto.SimulationParams, scenario entities.Scenario) (*run, error) {
	id := uuid.NewString()
	log := s.logger.WithRunID(id).WithScenario(string(scenario.ID))

	// Demand and stockout decisions draw from separate streams so a change
	// in stock levels never shifts the generated orders.
	demandRand := rand.New(rand.NewPCG(params.Seed, 1))
	chanceRand := rand.New(rand.NewPCG(params.Seed, 2))

	source := s.config.Orders
	if source == nil {
		gen, err := demand.NewGenerator(s.catalog, s.config.Demand, demandRand)
		if err != nil {
			return nil, fmt.Errorf("demand generator: %w", err)
		}
		log.Debug().Int("customer_pool", gen.PoolSize()).Msg("demand generator ready")
		source = gen
	}

	l, err := ledger.New(s.catalog, log)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	calc, err := kpi.NewCalculator(s.catalog, params.PickingCapacity, s.config.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("kpi: %w", err)
	}

	return &run{
		id:         id,
		scenario:   scenario,
		params:     params,
		source:     source,
		chance:     chanceRand,
		ledger:     l,
		allocator:  transport.NewAllocator(s.catalog, log),
		calculator: calc,
		logger:     log,
	}, nil
}

// step runs one day in the fixed order: intake, receipts, backlog, new
// orders, close, transport, replenishment, KPIs.
func (s *Simulator) step(r *run, day int) (*dto.DaySnapshot, error) {
	orders, err := r.source.Generate(day, r.scenario)
	if err != nil {
		return nil, fmt.Errorf("generate orders: %w", err)
	}
	if err := s.orders.ValidateOrders(orders); err != nil {
		return nil, err
	}

	received, err := r.ledger.ReceivePurchaseOrders(day)
	if err != nil {
		return nil, fmt.Errorf("receive purchase orders: %w", err)
	}
	recoveries, err := r.ledger.ResolveBacklog(day)
	if err != nil {
		return nil, fmt.Errorf("resolve backlog: %w", err)
	}

	results := make([]*ledger.DispatchResult, 0, len(orders))
	for _, order := range orders {
		res, err := r.ledger.CommitAndDispatch(order, day, r.chance)
		if err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}
		results = append(results, res)
	}
	if err := r.ledger.CloseDay(day); err != nil {
		return nil, err
	}
	if err := r.ledger.Reconcile(); err != nil {
		return nil, err
	}

	queue := recoveredOrders(recoveries)
	for _, res := range results {
		if o := res.ToDispatchOrder(); o != nil {
			queue = append(queue, o)
		}
	}
	plan, err := r.allocator.Plan(day, queue)
	if err != nil {
		return nil, fmt.Errorf("plan transport: %w", err)
	}

	created, err := r.ledger.Replenish(day, r.scenario)
	if err != nil {
		return nil, fmt.Errorf("replenish: %w", err)
	}

	positions := r.ledger.Positions()
	daily := r.calculator.Daily(kpi.DayInput{
		Day:          day,
		Results:      results,
		Recoveries:   recoveries,
		Plan:         plan,
		Positions:    positions,
		BacklogUnits: r.ledger.BacklogUnits(),
		Value:        r.ledger.InventoryValue(),
	})
	alerts, err := r.calculator.Alerts(daily, positions)
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}

	snapshot := &dto.DaySnapshot{
		Day:        day,
		Positions:  positions,
		Received:   received,
		Created:    created,
		Dispatches: plan.Dispatches,
		Unassigned: plan.Unassigned,
		Alerts:     alerts,
		KPI:        daily,
	}

	if err := s.publishDay(r, snapshot, results, recoveries); err != nil {
		return nil, fmt.Errorf("publish events: %w", err)
	}

	r.logger.Debug().
		Int("day", day).
		Int("orders", daily.Orders).
		Float64("fill_rate_pct", daily.FillRatePct).
		Float64("otif_pct", daily.OTIFPct).
		Int("dispatches", daily.Dispatches).
		Float64("carried_kg", plan.CarriedWeightKg()).
		Float64("capacity_kg", plan.CapacityKg()).
		Int("alerts", len(alerts)).
		Msg("day closed")

	return snapshot, nil
}

// recoveredOrders folds the day's backlog recoveries into transport orders,
// one per backlogged order, in recovery order
func recoveredOrders(recoveries []ledger.Recovery) []*entities.DispatchOrder {
	var queue []*entities.DispatchOrder
	byOrder := make(map[string]*entities.DispatchOrder)

	for _, rec := range recoveries {
		o, ok := byOrder[rec.OrderID]
		if !ok {
			o = &entities.DispatchOrder{
				OrderID:   rec.OrderID,
				Customer:  rec.Customer,
				Zone:      rec.Zone,
				Recovered: true,
			}
			byOrder[rec.OrderID] = o
			queue = append(queue, o)
		}
		o.Lines = append(o.Lines, entities.ShippedLine{Product: rec.Product, Quantity: rec.Quantity})
	}
	return queue
}

func (s *Simulator) finish(r *run, result *dto.SimulationResult) {
	result.Movements = r.ledger.Movements()
	result.PurchaseOrders = r.ledger.PurchaseOrders()
	result.Dispatches = r.allocator.Dispatches()
	result.LostSales = r.ledger.LostSales()
	result.BacklogHistory = r.ledger.BacklogHistory()
	result.OpenBacklog = r.ledger.Backlog()
	result.FinishedAt = time.Now()
	result.Summary = r.calculator.Summarize(result, r.ledger.InventoryValue())
}
