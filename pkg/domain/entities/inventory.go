package entities

// InventoryPosition holds the per-product counters owned by the inventory ledger
type InventoryPosition struct {
	Product   ProductID
	Physical  Quantity
	Committed Quantity
	InTransit Quantity
}

// Available returns physical stock not reserved for any order
func (p InventoryPosition) Available() Quantity {
	return p.Physical - p.Committed
}

// Position returns available plus in-transit stock, used for reorder decisions
func (p InventoryPosition) Position() Quantity {
	return p.Available() + p.InTransit
}

// MovementType represents the kind of physical stock change
type MovementType int

const (
	InitialBalance MovementType = iota
	PurchaseReceipt
	SaleDispatch
	BacklogDispatch
)

// String method for MovementType enum
func (m MovementType) String() string {
	switch m {
	case InitialBalance:
		return "InitialBalance"
	case PurchaseReceipt:
		return "PurchaseReceipt"
	case SaleDispatch:
		return "SaleDispatch"
	case BacklogDispatch:
		return "BacklogDispatch"
	default:
		return "Unknown"
	}
}

// Reference types attached to ledger movements
const (
	RefPurchase = "purchase"
	RefOrder    = "order"
)

// LedgerMovement is one immutable row of the stock card
type LedgerMovement struct {
	Seq      int
	Day      int
	Product  ProductID
	Type     MovementType
	Quantity Quantity // signed: receipts positive, dispatches negative
	Balance  Quantity // physical balance after the movement
	RefID    string
	RefType  string
}

// BacklogEntry is demand a customer agreed to wait for
type BacklogEntry struct {
	Seq        int
	OrderID    string
	Customer   CustomerID
	Zone       ZoneID
	Product    ProductID
	Pending    Quantity
	DayEntered int
}

// BacklogEventKind represents a transition recorded in the backlog history
type BacklogEventKind int

const (
	BacklogEntered BacklogEventKind = iota
	BacklogPartiallyServed
	BacklogServed
)

// String method for BacklogEventKind enum
func (k BacklogEventKind) String() string {
	switch k {
	case BacklogEntered:
		return "Entered"
	case BacklogPartiallyServed:
		return "PartiallyServed"
	case BacklogServed:
		return "Served"
	default:
		return "Unknown"
	}
}

// BacklogEvent is one row of the backlog history log
type BacklogEvent struct {
	Day             int
	OrderID         string
	Customer        CustomerID
	Product         ProductID
	Quantity        Quantity
	Kind            BacklogEventKind
	WaitProbability float64
}

// LostSale records demand a customer declined to wait for
type LostSale struct {
	Day       int
	OrderID   string
	Customer  CustomerID
	Product   ProductID
	Requested Quantity
	Served    Quantity
	Lost      Quantity
}

// ShippedLine is a quantity that physically left the warehouse for an order
type ShippedLine struct {
	Product  ProductID
	Quantity Quantity
}

// DispatchOrder is an order (or its recovered backlog part) ready for transport planning
type DispatchOrder struct {
	OrderID   string
	Customer  CustomerID
	Zone      ZoneID
	Lines     []ShippedLine
	Recovered bool
}
