package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductID represents a unique SKU identifier
type ProductID string

// Quantity represents an integer quantity of discrete units
type Quantity int64

// Product represents a stocked SKU with its replenishment parameters
type Product struct {
	ID           ProductID `validate:"required"`
	Name         string    `validate:"required"`
	Category     string
	UnitWeightKg float64 `validate:"gt=0"`
	UnitCost     decimal.Decimal
	UnitPrice    decimal.Decimal
	LeadTimeDays int      `validate:"gte=0"`
	SafetyStock  Quantity `validate:"gte=0"`
	ReorderPoint Quantity `validate:"gtefield=SafetyStock"`
	TargetStock  Quantity `validate:"gtefield=ReorderPoint"`
	LotSize      Quantity `validate:"gt=0"`
	InitialStock Quantity `validate:"gte=0"`
}

// NewProduct creates a validated Product
func NewProduct(
	id ProductID,
	name, category string,
	unitWeightKg float64,
	unitCost, unitPrice decimal.Decimal,
	leadTimeDays int,
	safetyStock, reorderPoint, targetStock, lotSize, initialStock Quantity,
) (*Product, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if unitWeightKg <= 0 {
		return nil, fmt.Errorf("unit weight must be positive, got %v", unitWeightKg)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price cannot be negative, got %s", unitPrice)
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %d", leadTimeDays)
	}
	if safetyStock < 0 {
		return nil, fmt.Errorf("safety stock cannot be negative, got %d", safetyStock)
	}
	if reorderPoint < safetyStock {
		return nil, fmt.Errorf("reorder point %d cannot be below safety stock %d", reorderPoint, safetyStock)
	}
	if targetStock < reorderPoint {
		return nil, fmt.Errorf("target stock %d cannot be below reorder point %d", targetStock, reorderPoint)
	}
	if lotSize <= 0 {
		return nil, fmt.Errorf("lot size must be positive, got %d", lotSize)
	}
	if initialStock < 0 {
		return nil, fmt.Errorf("initial stock cannot be negative, got %d", initialStock)
	}

	return &Product{
		ID:           id,
		Name:         name,
		Category:     category,
		UnitWeightKg: unitWeightKg,
		UnitCost:     unitCost,
		UnitPrice:    unitPrice,
		LeadTimeDays: leadTimeDays,
		SafetyStock:  safetyStock,
		ReorderPoint: reorderPoint,
		TargetStock:  targetStock,
		LotSize:      lotSize,
		InitialStock: initialStock,
	}, nil
}
