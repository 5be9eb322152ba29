package orchestration

import (
	"github.com/vsinha/supplysim/pkg/application/dto"
	"github.com/vsinha/supplysim/pkg/application/services/ledger"
	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/infrastructure/events"
)

// publishDay appends the day's events to the run stream in the order they
// happened. Lost sales and backlog entries are read from the ledger logs
// since the previous day.
func (s *Simulator) publishDay(r *run, snap *dto.DaySnapshot, results []*ledger.DispatchResult, recoveries []ledger.Recovery) error {
	lost := r.ledger.LostSales()
	history := r.ledger.BacklogHistory()
	newLost, newHistory := lost[r.lostMark:], history[r.backlogMark:]
	r.lostMark, r.backlogMark = len(lost), len(history)

	if s.publisher == nil {
		return nil
	}

	day := snap.Day
	var pending []events.Event
	add := func(eventType string, data interface{}) {
		pending = append(pending, events.NewEvent(eventType, r.id, data))
	}

	for _, po := range snap.Received {
		add(events.PurchaseOrderReceivedEvent, events.PurchaseOrderReceived{PurchaseOrder: po})
	}
	for _, rec := range recoveries {
		add(events.BacklogRecoveredEvent, events.BacklogRecovered{
			Day:       day,
			OrderID:   rec.OrderID,
			Customer:  rec.Customer,
			Product:   rec.Product,
			Quantity:  rec.Quantity,
			Remaining: rec.Remaining,
			WaitDays:  day - rec.DayEntered,
		})
	}
	for _, res := range results {
		add(events.OrderDispatchedEvent, events.OrderDispatched{
			Day:       day,
			OrderID:   res.OrderID,
			Customer:  res.Customer,
			Zone:      res.Zone,
			Requested: res.Requested(),
			Shipped:   res.Shipped(),
			Status:    res.Status(),
		})
	}
	for _, ls := range newLost {
		add(events.SaleLostEvent, events.SaleLost{LostSale: ls})
	}
	for _, ev := range newHistory {
		if ev.Kind == entities.BacklogEntered {
			add(events.BacklogEnteredEvent, events.BacklogEntered{Event: ev})
		}
	}
	for _, d := range snap.Dispatches {
		add(events.VehicleDispatchedEvent, events.VehicleDispatched{Dispatch: d})
	}
	for _, id := range snap.Unassigned {
		add(events.OrderUnassignedEvent, events.OrderUnassigned{Day: day, OrderID: id})
	}
	for _, po := range snap.Created {
		add(events.PurchaseOrderCreatedEvent, events.PurchaseOrderCreated{PurchaseOrder: po})
	}
	for _, a := range snap.Alerts {
		add(events.AlertRaisedEvent, events.AlertRaised{
			Day:      a.Day,
			Kind:     string(a.Kind),
			Severity: a.Severity.String(),
			Product:  a.Product,
			Message:  a.Message,
		})
	}
	add(events.DayClosedEvent, events.DayClosed{
		Day:                   day,
		FillRatePct:           snap.KPI.FillRatePct,
		OTIFPct:               snap.KPI.OTIFPct,
		FleetUtilizationPct:   snap.KPI.FleetUtilizationPct,
		PickingUtilizationPct: snap.KPI.PickingUtilizationPct,
		BacklogUnits:          snap.KPI.BacklogUnits,
		Positions:             snap.Positions,
	})

	for _, e := range pending {
		if err := s.publisher.AppendEvent(r.id, e); err != nil {
			return err
		}
	}
	return nil
}
