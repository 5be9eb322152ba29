package memory

import (
	"errors"
	"strings"
	"testing"

	"github.com/vsinha/supplysim/pkg/domain/entities"
)

func TestCatalog_LoadAndGet(t *testing.T) {
	catalog := NewCatalog()

	err := catalog.LoadProducts([]*entities.Product{
		{ID: "P2", Name: "Pump", UnitWeightKg: 12, LotSize: 10},
		{ID: "P1", Name: "Filter", UnitWeightKg: 0.5, LotSize: 10},
	})
	if err != nil {
		t.Fatalf("Failed to load products: %v", err)
	}

	retrieved, err := catalog.GetProduct("P1")
	if err != nil {
		t.Fatalf("Failed to get product: %v", err)
	}
	if retrieved.Name != "Filter" {
		t.Errorf("Expected name Filter, got %s", retrieved.Name)
	}

	all := catalog.GetAllProducts()
	if len(all) != 2 || all[0].ID != "P2" {
		t.Errorf("Expected products in load order starting with P2, got %v", all)
	}
}

func TestCatalog_Duplicates(t *testing.T) {
	catalog := NewCatalog()

	if err := catalog.LoadZones([]*entities.Zone{{ID: "Z1"}, {ID: "Z1"}}); err == nil {
		t.Error("Expected duplicate zone to fail")
	} else if !strings.Contains(err.Error(), "duplicate zone: Z1") {
		t.Errorf("Expected duplicate zone error, got %v", err)
	}

	vehicle := &entities.Vehicle{ID: "V1", CapacityKg: 100}
	if err := catalog.LoadFleet([]*entities.Vehicle{vehicle}); err != nil {
		t.Fatalf("Failed to load fleet: %v", err)
	}
	if err := catalog.LoadFleet([]*entities.Vehicle{vehicle}); err == nil {
		t.Error("Expected vehicle loaded twice to fail")
	}
}

func TestCatalog_UnknownIDs(t *testing.T) {
	catalog := NewCatalog()

	if _, err := catalog.GetProduct("NOPE"); !errors.Is(err, entities.ErrUnknownProduct) {
		t.Errorf("Expected ErrUnknownProduct, got %v", err)
	}
	if _, err := catalog.GetCustomer("NOPE"); !errors.Is(err, entities.ErrUnknownCustomer) {
		t.Errorf("Expected ErrUnknownCustomer, got %v", err)
	}
	if _, err := catalog.GetZone("NOPE"); !errors.Is(err, entities.ErrUnknownZone) {
		t.Errorf("Expected ErrUnknownZone, got %v", err)
	}
}

func TestNewDefaultCatalog(t *testing.T) {
	catalog, err := NewDefaultCatalog()
	if err != nil {
		t.Fatalf("Failed to build default catalog: %v", err)
	}

	if n := len(catalog.GetAllProducts()); n != 5 {
		t.Errorf("Expected 5 products, got %d", n)
	}
	if n := len(catalog.GetAllCustomers()); n != 10 {
		t.Errorf("Expected 10 customers, got %d", n)
	}
	if n := len(catalog.GetAllZones()); n != 5 {
		t.Errorf("Expected 5 zones, got %d", n)
	}
	if n := len(catalog.GetFleet()); n != 5 {
		t.Errorf("Expected 5 vehicles, got %d", n)
	}

	p, err := catalog.GetProduct("P001")
	if err != nil {
		t.Fatalf("Failed to get P001: %v", err)
	}
	if p.ReorderPoint != 2*p.SafetyStock {
		t.Errorf("Expected reorder point twice safety stock, got %d vs %d", p.ReorderPoint, p.SafetyStock)
	}
	if p.InitialStock != 2*p.LotSize {
		t.Errorf("Expected opening stock of two lots, got %d vs lot %d", p.InitialStock, p.LotSize)
	}
}
