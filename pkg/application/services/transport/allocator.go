package transport

import (
	"fmt"
	"sort"

	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/domain/repositories"
	"github.com/vsinha/supplysim/pkg/infrastructure/logger"
)

// Plan is the outcome of one day's load assignment
type Plan struct {
	Day        int
	Dispatches []entities.Dispatch
	Unassigned []string
}

// CarriedWeightKg returns the total weight loaded across the plan
func (p *Plan) CarriedWeightKg() float64 {
	var total float64
	for _, d := range p.Dispatches {
		total += d.WeightKg
	}
	return total
}

// CapacityKg returns the total capacity of the vehicles that left
func (p *Plan) CapacityKg() float64 {
	var total float64
	for _, d := range p.Dispatches {
		total += d.CapacityKg
	}
	return total
}

// Allocator assigns dispatch-ready orders to fleet vehicles per zone with a
// first-fit-decreasing heuristic. It reads product weights only and never
// touches inventory.
type Allocator struct {
	catalog repositories.Catalog
	logger  *logger.Logger
	fleet   []entities.Vehicle

	dispatches []entities.Dispatch
	counter    int
}

// NewAllocator snapshots the catalog fleet sorted by capacity descending.
// Vehicles of equal capacity keep their catalog order.
func NewAllocator(catalog repositories.Catalog, log *logger.Logger) *Allocator {
	if log == nil {
		log = logger.Nop()
	}

	var fleet []entities.Vehicle
	for _, v := range catalog.GetFleet() {
		fleet = append(fleet, *v)
	}
	sort.SliceStable(fleet, func(i, j int) bool {
		return fleet[i].CapacityKg > fleet[j].CapacityKg
	})

	return &Allocator{
		catalog: catalog,
		logger:  log.WithComponent("transport"),
		fleet:   fleet,
	}
}

type weighedOrder struct {
	order    *entities.DispatchOrder
	weightKg float64
}

type load struct {
	vehicle   entities.Vehicle
	remaining float64
	orders    []weighedOrder
}

// WeightKg returns the shipped weight of an order
func (a *Allocator) WeightKg(order *entities.DispatchOrder) (float64, error) {
	var total float64
	for _, line := range order.Lines {
		p, err := a.catalog.GetProduct(line.Product)
		if err != nil {
			return 0, fmt.Errorf("order %s: %w", order.OrderID, err)
		}
		total += float64(line.Quantity) * p.UnitWeightKg
	}
	return total, nil
}

// Plan loads the day's dispatch-ready orders. Zones are visited in the order
// they first appear in orders. A vehicle loaded for one zone is not offered
// to later zones until every vehicle has been loaded once that day, after
// which the whole fleet becomes eligible again. Orders that fit no vehicle
// are returned as unassigned.
func (a *Allocator) Plan(day int, orders []*entities.DispatchOrder) (*Plan, error) {
	plan := &Plan{Day: day}

	var zones []entities.ZoneID
	byZone := make(map[entities.ZoneID][]weighedOrder)
	for _, o := range orders {
		w, err := a.WeightKg(o)
		if err != nil {
			return nil, err
		}
		if w <= 0 {
			continue
		}
		if _, ok := byZone[o.Zone]; !ok {
			zones = append(zones, o.Zone)
		}
		byZone[o.Zone] = append(byZone[o.Zone], weighedOrder{order: o, weightKg: w})
	}

	used := make(map[entities.VehicleID]bool, len(a.fleet))

	for _, zone := range zones {
		zoneOrders := byZone[zone]
		sort.SliceStable(zoneOrders, func(i, j int) bool {
			return zoneOrders[i].weightKg > zoneOrders[j].weightKg
		})

		loads := a.candidates(used)
		for _, wo := range zoneOrders {
			placed := false
			for i := range loads {
				if loads[i].remaining >= wo.weightKg {
					loads[i].remaining -= wo.weightKg
					loads[i].orders = append(loads[i].orders, wo)
					placed = true
					break
				}
			}
			if !placed {
				plan.Unassigned = append(plan.Unassigned, wo.order.OrderID)
			}
		}

		for _, l := range loads {
			if len(l.orders) == 0 {
				continue
			}
			used[l.vehicle.ID] = true
			plan.Dispatches = append(plan.Dispatches, a.dispatch(day, zone, l))
		}
	}

	a.dispatches = append(a.dispatches, plan.Dispatches...)

	a.logger.Debug().
		Int("day", day).
		Int("dispatches", len(plan.Dispatches)).
		Int("unassigned", len(plan.Unassigned)).
		Msg("transport planned")

	return plan, nil
}

// Dispatches returns a copy of every dispatch planned so far
func (a *Allocator) Dispatches() []entities.Dispatch {
	return append([]entities.Dispatch(nil), a.dispatches...)
}

func (a *Allocator) candidates(used map[entities.VehicleID]bool) []load {
	var loads []load
	for _, v := range a.fleet {
		if !used[v.ID] {
			loads = append(loads, load{vehicle: v, remaining: v.CapacityKg})
		}
	}
	if len(loads) > 0 {
		return loads
	}
	for _, v := range a.fleet {
		loads = append(loads, load{vehicle: v, remaining: v.CapacityKg})
	}
	return loads
}

func (a *Allocator) dispatch(day int, zone entities.ZoneID, l load) entities.Dispatch {
	a.counter++

	var weight float64
	ids := make([]string, 0, len(l.orders))
	for _, wo := range l.orders {
		weight += wo.weightKg
		ids = append(ids, wo.order.OrderID)
	}

	return entities.Dispatch{
		ID:           fmt.Sprintf("D-%04d", a.counter),
		Day:          day,
		Zone:         zone,
		Vehicle:      l.vehicle.ID,
		VehicleType:  l.vehicle.Type,
		WeightKg:     weight,
		CapacityKg:   l.vehicle.CapacityKg,
		OccupancyPct: weight / l.vehicle.CapacityKg * 100,
		TripCost:     l.vehicle.TripCost,
		OrderIDs:     ids,
	}
}
