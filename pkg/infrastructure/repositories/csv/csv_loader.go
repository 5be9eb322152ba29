package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/infrastructure/repositories/memory"
)

// Catalog file names inside a catalog directory
const (
	ProductsFile  = "products.csv"
	CustomersFile = "customers.csv"
	ZonesFile     = "zones.csv"
	FleetFile     = "fleet.csv"
)

var (
	productsHeader  = []string{"id", "name", "category", "unit_weight_kg", "unit_cost", "unit_price", "lead_time_days", "safety_stock", "reorder_point", "target_stock", "lot_size", "initial_stock"}
	customersHeader = []string{"id", "name", "segment", "frequency", "wait_probability", "credit_limit"}
	zonesHeader     = []string{"id", "name"}
	fleetHeader     = []string{"id", "type", "capacity_kg", "trip_cost"}
)

// Loader handles loading catalog master data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadCatalog reads products, customers, zones and fleet from dir
func (l *Loader) LoadCatalog(dir string) (*memory.Catalog, error) {
	products, err := l.LoadProducts(filepath.Join(dir, ProductsFile))
	if err != nil {
		return nil, err
	}
	customers, err := l.LoadCustomers(filepath.Join(dir, CustomersFile))
	if err != nil {
		return nil, err
	}
	zones, err := l.LoadZones(filepath.Join(dir, ZonesFile))
	if err != nil {
		return nil, err
	}
	fleet, err := l.LoadFleet(filepath.Join(dir, FleetFile))
	if err != nil {
		return nil, err
	}

	catalog := memory.NewCatalog()
	if err := catalog.LoadProducts(products); err != nil {
		return nil, err
	}
	if err := catalog.LoadCustomers(customers); err != nil {
		return nil, err
	}
	if err := catalog.LoadZones(zones); err != nil {
		return nil, err
	}
	if err := catalog.LoadFleet(fleet); err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadProducts loads products from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	records, err := readTable(filename, "products", productsHeader)
	if err != nil {
		return nil, err
	}

	var products []*entities.Product
	for i, record := range records {
		p, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// LoadCustomers loads customers from a CSV file
func (l *Loader) LoadCustomers(filename string) ([]*entities.Customer, error) {
	records, err := readTable(filename, "customers", customersHeader)
	if err != nil {
		return nil, err
	}

	var customers []*entities.Customer
	for i, record := range records {
		c, err := parseCustomer(record)
		if err != nil {
			return nil, fmt.Errorf("customers CSV row %d: %w", i+2, err)
		}
		customers = append(customers, c)
	}
	return customers, nil
}

// LoadZones loads zones from a CSV file
func (l *Loader) LoadZones(filename string) ([]*entities.Zone, error) {
	records, err := readTable(filename, "zones", zonesHeader)
	if err != nil {
		return nil, err
	}

	var zones []*entities.Zone
	for i, record := range records {
		if record[0] == "" {
			return nil, fmt.Errorf("zones CSV row %d: zone id cannot be empty", i+2)
		}
		zones = append(zones, &entities.Zone{ID: entities.ZoneID(record[0]), Name: record[1]})
	}
	return zones, nil
}

// LoadFleet loads vehicles from a CSV file
func (l *Loader) LoadFleet(filename string) ([]*entities.Vehicle, error) {
	records, err := readTable(filename, "fleet", fleetHeader)
	if err != nil {
		return nil, err
	}

	var vehicles []*entities.Vehicle
	for i, record := range records {
		capacity, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("fleet CSV row %d: invalid capacity_kg: %w", i+2, err)
		}
		cost, err := decimal.NewFromString(record[3])
		if err != nil {
			return nil, fmt.Errorf("fleet CSV row %d: invalid trip_cost: %w", i+2, err)
		}
		v, err := entities.NewVehicle(entities.VehicleID(record[0]), record[1], capacity, cost)
		if err != nil {
			return nil, fmt.Errorf("fleet CSV row %d: %w", i+2, err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// readTable returns the data rows of a CSV file after checking its header
// and the column count of every row
func readTable(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.TrimSpace(strings.ToLower(actual[i])) != col {
			return false
		}
	}
	return true
}

func parseProduct(record []string) (*entities.Product, error) {
	weight, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid unit_weight_kg: %w", err)
	}
	cost, err := decimal.NewFromString(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid unit_cost: %w", err)
	}
	price, err := decimal.NewFromString(record[5])
	if err != nil {
		return nil, fmt.Errorf("invalid unit_price: %w", err)
	}
	lead, err := strconv.Atoi(record[6])
	if err != nil {
		return nil, fmt.Errorf("invalid lead_time_days: %w", err)
	}

	names := productsHeader[7:]
	quantities := make([]entities.Quantity, len(names))
	for i, name := range names {
		q, err := strconv.ParseInt(record[7+i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		quantities[i] = entities.Quantity(q)
	}

	return entities.NewProduct(
		entities.ProductID(record[0]), record[1], record[2],
		weight, cost, price, lead,
		quantities[0], quantities[1], quantities[2], quantities[3], quantities[4],
	)
}

func parseCustomer(record []string) (*entities.Customer, error) {
	frequency, err := entities.ParsePurchaseFrequency(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, err
	}
	wait, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid wait_probability: %w", err)
	}
	credit := decimal.Zero
	if record[5] != "" {
		credit, err = decimal.NewFromString(record[5])
		if err != nil {
			return nil, fmt.Errorf("invalid credit_limit: %w", err)
		}
	}
	return entities.NewCustomer(entities.CustomerID(record[0]), record[1], record[2], frequency, wait, credit)
}
