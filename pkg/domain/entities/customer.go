package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CustomerID represents a unique customer identifier
type CustomerID string

// ZoneID represents a delivery destination zone
type ZoneID string

// PurchaseFrequency represents how often a customer places orders
type PurchaseFrequency int

const (
	FrequencyLow PurchaseFrequency = iota
	FrequencyMedium
	FrequencyHigh
	FrequencyVeryHigh
)

// String method for PurchaseFrequency enum
func (f PurchaseFrequency) String() string {
	switch f {
	case FrequencyLow:
		return "Low"
	case FrequencyMedium:
		return "Medium"
	case FrequencyHigh:
		return "High"
	case FrequencyVeryHigh:
		return "VeryHigh"
	default:
		return "Unknown"
	}
}

// Weight returns how many times the customer appears in the demand sampling pool
func (f PurchaseFrequency) Weight() int {
	switch f {
	case FrequencyVeryHigh:
		return 5
	case FrequencyHigh:
		return 3
	case FrequencyMedium:
		return 2
	default:
		return 1
	}
}

// ParsePurchaseFrequency parses the textual form used in catalog files
func ParsePurchaseFrequency(s string) (PurchaseFrequency, error) {
	switch s {
	case "very_high", "VeryHigh":
		return FrequencyVeryHigh, nil
	case "high", "High":
		return FrequencyHigh, nil
	case "medium", "Medium":
		return FrequencyMedium, nil
	case "low", "Low":
		return FrequencyLow, nil
	default:
		return FrequencyLow, fmt.Errorf("unknown purchase frequency: %s", s)
	}
}

// Customer represents a buying account and its willingness to wait for stock
type Customer struct {
	ID              CustomerID `validate:"required"`
	Name            string     `validate:"required"`
	Segment         string
	Frequency       PurchaseFrequency
	WaitProbability float64 `validate:"gte=0,lte=1"`
	CreditLimit     decimal.Decimal
}

// NewCustomer creates a validated Customer
func NewCustomer(
	id CustomerID,
	name, segment string,
	frequency PurchaseFrequency,
	waitProbability float64,
	creditLimit decimal.Decimal,
) (*Customer, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("customer id cannot be empty")
	}
	if waitProbability < 0 || waitProbability > 1 {
		return nil, fmt.Errorf("wait probability must be within [0,1], got %v", waitProbability)
	}

	return &Customer{
		ID:              id,
		Name:            name,
		Segment:         segment,
		Frequency:       frequency,
		WaitProbability: waitProbability,
		CreditLimit:     creditLimit,
	}, nil
}

// Zone is a delivery destination
type Zone struct {
	ID   ZoneID
	Name string
}
