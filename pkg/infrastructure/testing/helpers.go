package testing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/infrastructure/repositories/memory"
)

// MustProduct is a helper for tests - panics on validation error
func MustProduct(
	id string,
	weightKg float64,
	leadDays int,
	safety, reorder, target, lot, initial entities.Quantity,
) *entities.Product {
	p, err := entities.NewProduct(
		entities.ProductID(id), id, "Test", weightKg,
		decimal.NewFromInt(10), decimal.NewFromInt(15),
		leadDays, safety, reorder, target, lot, initial,
	)
	if err != nil {
		panic(err)
	}
	return p
}

// MustCustomer is a helper for tests - panics on validation error
func MustCustomer(id string, frequency entities.PurchaseFrequency, wait float64) *entities.Customer {
	c, err := entities.NewCustomer(entities.CustomerID(id), id, "Test", frequency, wait, decimal.NewFromInt(1000))
	if err != nil {
		panic(err)
	}
	return c
}

// MustVehicle is a helper for tests - panics on validation error
func MustVehicle(id string, capacityKg float64, tripCost int64) *entities.Vehicle {
	v, err := entities.NewVehicle(entities.VehicleID(id), "Truck", capacityKg, decimal.NewFromInt(tripCost))
	if err != nil {
		panic(err)
	}
	return v
}

// MustOrder is a helper for tests - panics on validation error
func MustOrder(id, customer, zone string, day int, lines ...entities.OrderLine) *entities.CustomerOrder {
	o, err := entities.NewCustomerOrder(id, entities.CustomerID(customer), entities.ZoneID(zone), day, lines)
	if err != nil {
		panic(err)
	}
	return o
}

// Line builds an order line
func Line(product string, qty entities.Quantity) entities.OrderLine {
	return entities.OrderLine{Product: entities.ProductID(product), Quantity: qty}
}

// CatalogFixture groups the master data of a test catalog
type CatalogFixture struct {
	Products  []*entities.Product
	Customers []*entities.Customer
	Zones     []*entities.Zone
	Fleet     []*entities.Vehicle
}

// Build loads the fixture into an in-memory catalog
func (f CatalogFixture) Build() *memory.Catalog {
	catalog := memory.NewCatalog()
	if err := catalog.LoadProducts(f.Products); err != nil {
		panic(err)
	}
	if err := catalog.LoadCustomers(f.Customers); err != nil {
		panic(err)
	}
	if err := catalog.LoadZones(f.Zones); err != nil {
		panic(err)
	}
	if err := catalog.LoadFleet(f.Fleet); err != nil {
		panic(err)
	}
	return catalog
}

// BuildSingleProductCatalog builds a one-SKU catalog with a patient and an
// impatient customer, two zones and two vehicles.
//
//	P1: 1 kg, lead time 2, safety 10, reorder 20, target 100, lot 50
//	CW: always waits, CL: never waits
func BuildSingleProductCatalog(initial entities.Quantity) *memory.Catalog {
	return CatalogFixture{
		Products: []*entities.Product{
			MustProduct("P1", 1, 2, 10, 20, 100, 50, initial),
		},
		Customers: []*entities.Customer{
			MustCustomer("CW", entities.FrequencyHigh, 1.0),
			MustCustomer("CL", entities.FrequencyLow, 0.0),
		},
		Zones: []*entities.Zone{
			{ID: "Z1", Name: "North"},
			{ID: "Z2", Name: "South"},
		},
		Fleet: []*entities.Vehicle{
			MustVehicle("V1", 1000, 100),
			MustVehicle("V2", 500, 60),
		},
	}.Build()
}

// BuildDefaultCatalog returns the reference distributor catalog
func BuildDefaultCatalog() *memory.Catalog {
	catalog, err := memory.NewDefaultCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

// FixedChance always returns the same draw
type FixedChance float64

// Float64 returns the fixed draw
func (f FixedChance) Float64() float64 { return float64(f) }

// SequenceChance returns draws in order, repeating the last one
type SequenceChance struct {
	Draws []float64
	next  int
}

// Float64 returns the next draw
func (s *SequenceChance) Float64() float64 {
	if len(s.Draws) == 0 {
		return 0
	}
	i := min(s.next, len(s.Draws)-1)
	s.next++
	return s.Draws[i]
}
