package memory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplysim/pkg/domain/entities"
)

type productSeed struct {
	id       entities.ProductID
	name     string
	category string
	weightKg float64
	cost     string
	price    string
	leadDays int
	minimum  entities.Quantity
	target   entities.Quantity
}

type customerSeed struct {
	id        entities.CustomerID
	name      string
	segment   string
	frequency entities.PurchaseFrequency
	wait      float64
	credit    int64
}

var defaultProducts = []productSeed{
	{"P001", "Hydraulic filter 3/4", "Hydraulics", 0.5, "45.50", "68.25", 3, 200, 800},
	{"P002", "Centrifugal pump 1HP", "Equipment", 12.0, "320.00", "480.00", 5, 150, 600},
	{"P003", "Pressure valve 2in", "Valves", 2.5, "85.75", "128.63", 3, 180, 700},
	{"P004", "Seal kit", "Accessories", 0.1, "25.00", "37.50", 2, 250, 1000},
	{"P005", "Electric motor 5HP", "Equipment", 45.0, "850.00", "1275.00", 7, 100, 400},
}

var defaultCustomers = []customerSeed{
	{"C01", "Southern Mining Industries", "Corporate", entities.FrequencyHigh, 0.95, 50000},
	{"C02", "Edificar Builders", "Mid-size", entities.FrequencyMedium, 0.60, 25000},
	{"C03", "Northern Fruit Exporters", "Large", entities.FrequencyHigh, 0.85, 40000},
	{"C04", "United Textile Manufacturing", "Mid-size", entities.FrequencyMedium, 0.60, 20000},
	{"C05", "Express Logistics Services", "Large", entities.FrequencyVeryHigh, 0.90, 60000},
	{"C06", "Pacific Fisheries", "Corporate", entities.FrequencyHigh, 0.95, 45000},
	{"C07", "Industrial Plastics", "Small", entities.FrequencyLow, 0.30, 10000},
	{"C08", "Precision Metalworks", "Small", entities.FrequencyLow, 0.30, 8000},
	{"C09", "Chemicals and Solvents", "Mid-size", entities.FrequencyMedium, 0.60, 30000},
	{"C10", "Heavy Cargo Transport", "Large", entities.FrequencyHigh, 0.80, 35000},
}

var defaultZones = []entities.Zone{
	{ID: "Z01", Name: "North"},
	{ID: "Z02", Name: "South"},
	{ID: "Z03", Name: "Center"},
	{ID: "Z04", Name: "East"},
	{ID: "Z05", Name: "West"},
}

var defaultFleet = []struct {
	id       entities.VehicleID
	kind     string
	capacity float64
	tripCost int64
}{
	{"V-001", "Truck 5t", 5000, 150},
	{"V-002", "Truck 5t", 5000, 150},
	{"V-003", "Truck 10t", 10000, 280},
	{"V-004", "Van 1t", 1000, 80},
	{"V-005", "Truck 5t", 5000, 150},
}

// NewDefaultCatalog builds the reference distributor catalog: five SKUs, ten
// customers, five zones and a five-vehicle fleet. Reorder point is twice the
// safety stock, lot size is 80% of target stock and opening stock is two lots.
func NewDefaultCatalog() (*Catalog, error) {
	catalog := NewCatalog()

	products := make([]*entities.Product, 0, len(defaultProducts))
	for _, s := range defaultProducts {
		lot := s.target * 8 / 10
		p, err := entities.NewProduct(
			s.id, s.name, s.category, s.weightKg,
			decimal.RequireFromString(s.cost), decimal.RequireFromString(s.price),
			s.leadDays,
			s.minimum, s.minimum*2, s.target, lot, lot*2,
		)
		if err != nil {
			return nil, fmt.Errorf("default product %s: %w", s.id, err)
		}
		products = append(products, p)
	}
	if err := catalog.LoadProducts(products); err != nil {
		return nil, err
	}

	customers := make([]*entities.Customer, 0, len(defaultCustomers))
	for _, s := range defaultCustomers {
		c, err := entities.NewCustomer(s.id, s.name, s.segment, s.frequency, s.wait, decimal.NewFromInt(s.credit))
		if err != nil {
			return nil, fmt.Errorf("default customer %s: %w", s.id, err)
		}
		customers = append(customers, c)
	}
	if err := catalog.LoadCustomers(customers); err != nil {
		return nil, err
	}

	zones := make([]*entities.Zone, 0, len(defaultZones))
	for i := range defaultZones {
		zone := defaultZones[i]
		zones = append(zones, &zone)
	}
	if err := catalog.LoadZones(zones); err != nil {
		return nil, err
	}

	vehicles := make([]*entities.Vehicle, 0, len(defaultFleet))
	for _, s := range defaultFleet {
		v, err := entities.NewVehicle(s.id, s.kind, s.capacity, decimal.NewFromInt(s.tripCost))
		if err != nil {
			return nil, fmt.Errorf("default vehicle %s: %w", s.id, err)
		}
		vehicles = append(vehicles, v)
	}
	if err := catalog.LoadFleet(vehicles); err != nil {
		return nil, err
	}

	return catalog, nil
}
