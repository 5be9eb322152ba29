package entities

import (
	"fmt"
	"math"
)

// ScenarioID names an operating policy under study
type ScenarioID string

const (
	ScenarioNormal         ScenarioID = "normal"
	ScenarioSlowSupplier   ScenarioID = "slow_supplier"
	ScenarioSeasonalDemand ScenarioID = "seasonal_demand"
	ScenarioEconomicLot    ScenarioID = "economic_lot"
)

// LotSizeRule represents how replenishment quantities are sized
type LotSizeRule int

const (
	// LotOrTarget orders max(lot size, target - position)
	LotOrTarget LotSizeRule = iota
	// RoundedLot orders max(lot size, target - position) rounded up to the lot multiple
	RoundedLot
)

// String method for LotSizeRule enum
func (l LotSizeRule) String() string {
	switch l {
	case LotOrTarget:
		return "LotOrTarget"
	case RoundedLot:
		return "RoundedLot"
	default:
		return "Unknown"
	}
}

// Scenario holds the policy knobs applied to demand, lead times and lot sizing
type Scenario struct {
	ID                 ScenarioID
	LeadTimeMultiplier float64
	MinLeadTimeDays    int
	DemandMultiplier   float64
	// DemandWindowStart and DemandWindowEnd bound the days on which DemandMultiplier
	// applies. Both zero means every day.
	DemandWindowStart int
	DemandWindowEnd   int
	LotRule           LotSizeRule
	LotMultiple       Quantity
}

// DefaultScenarios returns the built-in scenario set
func DefaultScenarios() map[ScenarioID]Scenario {
	return map[ScenarioID]Scenario{
		ScenarioNormal: {
			ID:                 ScenarioNormal,
			LeadTimeMultiplier: 1.0,
			DemandMultiplier:   1.0,
			LotRule:            LotOrTarget,
		},
		ScenarioSlowSupplier: {
			ID:                 ScenarioSlowSupplier,
			LeadTimeMultiplier: 1.0,
			MinLeadTimeDays:    10,
			DemandMultiplier:   1.0,
			LotRule:            LotOrTarget,
		},
		ScenarioSeasonalDemand: {
			ID:                 ScenarioSeasonalDemand,
			LeadTimeMultiplier: 1.0,
			DemandMultiplier:   2.0,
			DemandWindowStart:  15,
			DemandWindowEnd:    20,
			LotRule:            LotOrTarget,
		},
		ScenarioEconomicLot: {
			ID:                 ScenarioEconomicLot,
			LeadTimeMultiplier: 1.0,
			DemandMultiplier:   1.0,
			LotRule:            RoundedLot,
			LotMultiple:        50,
		},
	}
}

// LookupScenario returns the built-in scenario with the given id
func LookupScenario(id ScenarioID) (Scenario, error) {
	s, ok := DefaultScenarios()[id]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrUnknownScenario, id)
	}
	return s, nil
}

// DemandMultiplierOn returns the demand scale factor for a simulated day
func (s Scenario) DemandMultiplierOn(day int) float64 {
	if s.DemandMultiplier <= 0 {
		return 1.0
	}
	if s.DemandWindowStart == 0 && s.DemandWindowEnd == 0 {
		return s.DemandMultiplier
	}
	if day >= s.DemandWindowStart && day <= s.DemandWindowEnd {
		return s.DemandMultiplier
	}
	return 1.0
}

// EffectiveLeadTime applies the scenario's lead-time policy to a product lead time
func (s Scenario) EffectiveLeadTime(baseDays int) int {
	days := baseDays
	if s.LeadTimeMultiplier > 0 {
		days = int(math.Ceil(float64(baseDays) * s.LeadTimeMultiplier))
	}
	if days < s.MinLeadTimeDays {
		days = s.MinLeadTimeDays
	}
	return days
}

// OrderQuantity sizes a replenishment for a product whose position fell below reorder point
func (s Scenario) OrderQuantity(p *Product, position Quantity) Quantity {
	qty := p.LotSize
	if deficit := p.TargetStock - position; deficit > qty {
		qty = deficit
	}
	if s.LotRule == RoundedLot && s.LotMultiple > 0 {
		qty = ((qty + s.LotMultiple - 1) / s.LotMultiple) * s.LotMultiple
	}
	return qty
}
