package entities

import (
	"fmt"
)

// OrderLine is a single product request within a customer order
type OrderLine struct {
	Product  ProductID `validate:"required"`
	Quantity Quantity  `validate:"gt=0"`
}

// CustomerOrder represents a customer's request for one or more products on a day
type CustomerOrder struct {
	ID        string      `validate:"required"`
	Customer  CustomerID  `validate:"required"`
	Zone      ZoneID      `validate:"required"`
	DayPlaced int         `validate:"gte=1"`
	Lines     []OrderLine `validate:"required,min=1,dive"`
}

// NewCustomerOrder creates a validated CustomerOrder
func NewCustomerOrder(id string, customer CustomerID, zone ZoneID, dayPlaced int, lines []OrderLine) (*CustomerOrder, error) {
	if id == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if string(customer) == "" {
		return nil, fmt.Errorf("customer cannot be empty")
	}
	if string(zone) == "" {
		return nil, fmt.Errorf("zone cannot be empty")
	}
	if dayPlaced < 1 {
		return nil, fmt.Errorf("day placed must be positive, got %d", dayPlaced)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("order must have at least one line")
	}
	seen := make(map[ProductID]bool, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive, got %d", line.Quantity)
		}
		if seen[line.Product] {
			return nil, fmt.Errorf("product %s repeated within order", line.Product)
		}
		seen[line.Product] = true
	}

	return &CustomerOrder{
		ID:        id,
		Customer:  customer,
		Zone:      zone,
		DayPlaced: dayPlaced,
		Lines:     lines,
	}, nil
}

// TotalRequested returns the sum of requested units across lines
func (o *CustomerOrder) TotalRequested() Quantity {
	var total Quantity
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}

// FulfillmentStatus summarizes how much of an order shipped on its day
type FulfillmentStatus int

const (
	NotServed FulfillmentStatus = iota
	PartiallyServed
	FullyServed
)

// String method for FulfillmentStatus enum
func (s FulfillmentStatus) String() string {
	switch s {
	case NotServed:
		return "NotServed"
	case PartiallyServed:
		return "PartiallyServed"
	case FullyServed:
		return "FullyServed"
	default:
		return "Unknown"
	}
}

// StatusFor derives the fulfilment status from requested and shipped units
func StatusFor(requested, shipped Quantity) FulfillmentStatus {
	switch {
	case shipped >= requested:
		return FullyServed
	case shipped > 0:
		return PartiallyServed
	default:
		return NotServed
	}
}

// PurchaseOrderStatus represents the state of a supplier order
type PurchaseOrderStatus int

const (
	InTransit PurchaseOrderStatus = iota
	Received
)

// String method for PurchaseOrderStatus enum
func (s PurchaseOrderStatus) String() string {
	switch s {
	case InTransit:
		return "InTransit"
	case Received:
		return "Received"
	default:
		return "Unknown"
	}
}

// PurchaseOrder is a replenishment order placed with a supplier
type PurchaseOrder struct {
	ID              string
	Product         ProductID
	Quantity        Quantity
	DayCreated      int
	DayDue          int
	LeadTimeApplied int
	Status          PurchaseOrderStatus
	DayReceived     int
}

// NewPurchaseOrder creates a validated in-transit PurchaseOrder
func NewPurchaseOrder(id string, product ProductID, quantity Quantity, dayCreated, leadTimeDays int) (*PurchaseOrder, error) {
	if id == "" {
		return nil, fmt.Errorf("purchase order id cannot be empty")
	}
	if string(product) == "" {
		return nil, fmt.Errorf("product cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %d", leadTimeDays)
	}

	return &PurchaseOrder{
		ID:              id,
		Product:         product,
		Quantity:        quantity,
		DayCreated:      dayCreated,
		DayDue:          dayCreated + leadTimeDays,
		LeadTimeApplied: leadTimeDays,
		Status:          InTransit,
	}, nil
}
