package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestInventoryPosition_Derived(t *testing.T) {
	pos := InventoryPosition{Product: "P1", Physical: 60, Committed: 20, InTransit: 80}

	if pos.Available() != 40 {
		t.Errorf("Expected available 40, got %d", pos.Available())
	}
	if pos.Position() != 120 {
		t.Errorf("Expected position 120, got %d", pos.Position())
	}

	backlogged := InventoryPosition{Product: "P1", Physical: 0, Committed: 20}
	if backlogged.Position() != -20 {
		t.Errorf("Expected backlog commitment to push position to -20, got %d", backlogged.Position())
	}
}

func TestProduct_Validation(t *testing.T) {
	cost, price := decimal.NewFromInt(10), decimal.NewFromInt(15)

	if _, err := NewProduct("P1", "Widget", "Parts", 1.5, cost, price, 3, 10, 50, 100, 80, 100); err != nil {
		t.Fatalf("Expected valid product creation to succeed: %v", err)
	}

	testCases := []struct {
		name        string
		weight      float64
		safety      Quantity
		reorder     Quantity
		target      Quantity
		lot         Quantity
		expectError string
	}{
		{"zero weight", 0, 10, 50, 100, 80, "unit weight must be positive, got 0"},
		{"reorder below safety", 1, 60, 50, 100, 80, "reorder point 50 cannot be below safety stock 60"},
		{"target below reorder", 1, 10, 50, 40, 80, "target stock 40 cannot be below reorder point 50"},
		{"zero lot", 1, 10, 50, 100, 0, "lot size must be positive, got 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProduct("P1", "Widget", "Parts", tc.weight, cost, price, 3, tc.safety, tc.reorder, tc.target, tc.lot, 100)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestPurchaseFrequency_Weight(t *testing.T) {
	expected := map[PurchaseFrequency]int{
		FrequencyVeryHigh: 5,
		FrequencyHigh:     3,
		FrequencyMedium:   2,
		FrequencyLow:      1,
	}
	for f, w := range expected {
		if f.Weight() != w {
			t.Errorf("%s: expected weight %d, got %d", f, w, f.Weight())
		}
	}

	if _, err := ParsePurchaseFrequency("sometimes"); err == nil {
		t.Error("Expected unknown frequency to fail")
	}
}
