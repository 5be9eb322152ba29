package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// VehicleID represents a unique fleet unit identifier
type VehicleID string

// Vehicle is a truck or van available for daily dispatch
type Vehicle struct {
	ID         VehicleID
	Type       string
	CapacityKg float64
	TripCost   decimal.Decimal
}

// NewVehicle creates a validated Vehicle
func NewVehicle(id VehicleID, vehicleType string, capacityKg float64, tripCost decimal.Decimal) (*Vehicle, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("vehicle id cannot be empty")
	}
	if capacityKg <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %v", capacityKg)
	}
	if tripCost.IsNegative() {
		return nil, fmt.Errorf("trip cost cannot be negative, got %s", tripCost)
	}

	return &Vehicle{
		ID:         id,
		Type:       vehicleType,
		CapacityKg: capacityKg,
		TripCost:   tripCost,
	}, nil
}

// Dispatch is one loaded vehicle trip to a zone on a given day
type Dispatch struct {
	ID           string
	Day          int
	Zone         ZoneID
	Vehicle      VehicleID
	VehicleType  string
	WeightKg     float64
	CapacityKg   float64
	OccupancyPct float64
	TripCost     decimal.Decimal
	OrderIDs     []string
}
