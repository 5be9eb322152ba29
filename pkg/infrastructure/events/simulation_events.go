package events

import (
	"github.com/vsinha/supplysim/pkg/domain/entities"
)

const (
	PurchaseOrderCreatedEvent  = "purchase_order.created"
	PurchaseOrderReceivedEvent = "purchase_order.received"

	OrderDispatchedEvent = "order.dispatched"
	SaleLostEvent        = "sale.lost"

	BacklogEnteredEvent   = "backlog.entered"
	BacklogRecoveredEvent = "backlog.recovered"

	VehicleDispatchedEvent = "vehicle.dispatched"
	OrderUnassignedEvent   = "order.unassigned"

	AlertRaisedEvent = "alert.raised"
	DayClosedEvent   = "day.closed"
)

// AllEventTypes lists every simulation event type
var AllEventTypes = []string{
	PurchaseOrderCreatedEvent,
	PurchaseOrderReceivedEvent,
	OrderDispatchedEvent,
	SaleLostEvent,
	BacklogEnteredEvent,
	BacklogRecoveredEvent,
	VehicleDispatchedEvent,
	OrderUnassignedEvent,
	AlertRaisedEvent,
	DayClosedEvent,
}

type PurchaseOrderCreated struct {
	PurchaseOrder entities.PurchaseOrder `json:"purchase_order"`
}

type PurchaseOrderReceived struct {
	PurchaseOrder entities.PurchaseOrder `json:"purchase_order"`
}

type OrderDispatched struct {
	Day       int                        `json:"day"`
	OrderID   string                     `json:"order_id"`
	Customer  entities.CustomerID        `json:"customer"`
	Zone      entities.ZoneID            `json:"zone"`
	Requested entities.Quantity          `json:"requested"`
	Shipped   entities.Quantity          `json:"shipped"`
	Status    entities.FulfillmentStatus `json:"status"`
}

type SaleLost struct {
	LostSale entities.LostSale `json:"lost_sale"`
}

type BacklogEntered struct {
	Event entities.BacklogEvent `json:"event"`
}

type BacklogRecovered struct {
	Day       int                 `json:"day"`
	OrderID   string              `json:"order_id"`
	Customer  entities.CustomerID `json:"customer"`
	Product   entities.ProductID  `json:"product"`
	Quantity  entities.Quantity   `json:"quantity"`
	Remaining entities.Quantity   `json:"remaining"`
	WaitDays  int                 `json:"wait_days"`
}

type VehicleDispatched struct {
	Dispatch entities.Dispatch `json:"dispatch"`
}

type OrderUnassigned struct {
	Day     int    `json:"day"`
	OrderID string `json:"order_id"`
}

type AlertRaised struct {
	Day      int                `json:"day"`
	Kind     string             `json:"kind"`
	Severity string             `json:"severity"`
	Product  entities.ProductID `json:"product,omitempty"`
	Message  string             `json:"message"`
}

type DayClosed struct {
	Day                   int                          `json:"day"`
	FillRatePct           float64                      `json:"fill_rate_pct"`
	OTIFPct               float64                      `json:"otif_pct"`
	FleetUtilizationPct   float64                      `json:"fleet_utilization_pct"`
	PickingUtilizationPct float64                      `json:"picking_utilization_pct"`
	BacklogUnits          entities.Quantity            `json:"backlog_units"`
	Positions             []entities.InventoryPosition `json:"positions"`
}
