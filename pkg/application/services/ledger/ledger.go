// Package ledger implements the inventory state machine of the simulation:
// physical, committed and in-transit stock per product, the purchase order
// book, the backlog and the append-only movement log.
//
// The daily protocol is ReceivePurchaseOrders, ResolveBacklog, Commit and
// Dispatch for every new order, CloseDay, then Replenish. Only the ledger
// mutates its counters; every accessor hands out copies.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/domain/repositories"
	"github.com/vsinha/supplysim/pkg/infrastructure/logger"
)

// Chance is the random source consulted for backlog-or-lost decisions
type Chance interface {
	Float64() float64
}

// Ledger owns all inventory state of one simulation run
type Ledger struct {
	catalog repositories.Catalog
	logger  *logger.Logger

	products  []entities.ProductID
	positions map[entities.ProductID]*entities.InventoryPosition
	initial   map[entities.ProductID]entities.Quantity

	purchaseOrders []entities.PurchaseOrder
	backlog        []entities.BacklogEntry
	backlogHistory []entities.BacklogEvent
	lostSales      []entities.LostSale
	movements      []entities.LedgerMovement

	poCounter  int
	backlogSeq int
}

// New creates a ledger seeded with each catalog product's opening stock.
// An InitialBalance movement is written on day 0 for every product.
func New(catalog repositories.Catalog, log *logger.Logger) (*Ledger, error) {
	if log == nil {
		log = logger.Nop()
	}
	products := catalog.GetAllProducts()
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog has no products")
	}

	l := &Ledger{
		catalog:   catalog,
		logger:    log.WithComponent("ledger"),
		products:  make([]entities.ProductID, 0, len(products)),
		positions: make(map[entities.ProductID]*entities.InventoryPosition, len(products)),
		initial:   make(map[entities.ProductID]entities.Quantity, len(products)),
		poCounter: 1,
	}

	for _, p := range products {
		l.products = append(l.products, p.ID)
		l.positions[p.ID] = &entities.InventoryPosition{
			Product:  p.ID,
			Physical: p.InitialStock,
		}
		l.initial[p.ID] = p.InitialStock
		l.record(0, p.ID, entities.InitialBalance, p.InitialStock, "", "")
	}

	return l, nil
}

// ReceivePurchaseOrders books every in-transit purchase order due on or before day
func (l *Ledger) ReceivePurchaseOrders(day int) ([]entities.PurchaseOrder, error) {
	var received []entities.PurchaseOrder

	for i := range l.purchaseOrders {
		po := &l.purchaseOrders[i]
		if po.Status != entities.InTransit || po.DayDue > day {
			continue
		}
		pos, err := l.position(po.Product)
		if err != nil {
			return received, err
		}

		pos.Physical += po.Quantity
		pos.InTransit -= po.Quantity
		po.Status = entities.Received
		po.DayReceived = day

		l.record(day, po.Product, entities.PurchaseReceipt, po.Quantity, po.ID, entities.RefPurchase)
		received = append(received, *po)
	}

	if len(received) > 0 {
		l.logger.Debug().Int("day", day).Int("purchase_orders", len(received)).Msg("purchase orders received")
	}
	return received, nil
}

// Recovery is backlog demand served from physical stock
type Recovery struct {
	OrderID    string
	Customer   entities.CustomerID
	Zone       entities.ZoneID
	Product    entities.ProductID
	Quantity   entities.Quantity
	Remaining  entities.Quantity
	DayEntered int
}

// ResolveBacklog serves waiting demand strictly first-in first-out by the day
// it entered the backlog, ties broken by insertion order. It must run before
// the day's new orders so the backlog has priority on scarce stock.
func (l *Ledger) ResolveBacklog(day int) ([]Recovery, error) {
	sort.SliceStable(l.backlog, func(i, j int) bool {
		if l.backlog[i].DayEntered != l.backlog[j].DayEntered {
			return l.backlog[i].DayEntered < l.backlog[j].DayEntered
		}
		return l.backlog[i].Seq < l.backlog[j].Seq
	})

	var recovered []Recovery
	remaining := l.backlog[:0:0]

	for _, entry := range l.backlog {
		pos, err := l.position(entry.Product)
		if err != nil {
			return recovered, err
		}
		if pos.Physical <= 0 {
			remaining = append(remaining, entry)
			continue
		}

		served := min(entry.Pending, pos.Physical)
		pos.Physical -= served
		pos.Committed -= min(served, pos.Committed)
		entry.Pending -= served

		l.record(day, entry.Product, entities.BacklogDispatch, -served, entry.OrderID, entities.RefOrder)

		kind := entities.BacklogServed
		if entry.Pending > 0 {
			kind = entities.BacklogPartiallyServed
			remaining = append(remaining, entry)
		}
		l.backlogHistory = append(l.backlogHistory, entities.BacklogEvent{
			Day:             day,
			OrderID:         entry.OrderID,
			Customer:        entry.Customer,
			Product:         entry.Product,
			Quantity:        served,
			Kind:            kind,
			WaitProbability: l.waitProbability(entry.Customer),
		})

		recovered = append(recovered, Recovery{
			OrderID:    entry.OrderID,
			Customer:   entry.Customer,
			Zone:       entry.Zone,
			Product:    entry.Product,
			Quantity:   served,
			Remaining:  entry.Pending,
			DayEntered: entry.DayEntered,
		})
	}

	l.backlog = remaining
	return recovered, nil
}

// LineCommit is the reservation outcome for one order line
type LineCommit struct {
	Product   entities.ProductID
	Requested entities.Quantity
	Reserved  entities.Quantity
	Shortfall entities.Quantity
}

// CommitResult is the reservation outcome for a whole order
type CommitResult struct {
	OrderID string
	Lines   []LineCommit
}

// Complete reports whether every line was fully reserved
func (r *CommitResult) Complete() bool {
	for _, line := range r.Lines {
		if line.Shortfall > 0 {
			return false
		}
	}
	return true
}

func (r *CommitResult) line(product entities.ProductID) (LineCommit, bool) {
	for _, line := range r.Lines {
		if line.Product == product {
			return line, true
		}
	}
	return LineCommit{}, false
}

// Commit reserves min(requested, available) for every line. Shortfalls are
// reported but not resolved here. No counter changes if any line references
// a product outside the catalog.
func (l *Ledger) Commit(order *entities.CustomerOrder) (*CommitResult, error) {
	for _, line := range order.Lines {
		if _, err := l.position(line.Product); err != nil {
			return nil, fmt.Errorf("order %s: %w", order.ID, err)
		}
	}

	result := &CommitResult{OrderID: order.ID, Lines: make([]LineCommit, 0, len(order.Lines))}
	for _, line := range order.Lines {
		pos := l.positions[line.Product]
		reserved := max(min(line.Quantity, pos.Available()), 0)
		pos.Committed += reserved
		result.Lines = append(result.Lines, LineCommit{
			Product:   line.Product,
			Requested: line.Quantity,
			Reserved:  reserved,
			Shortfall: line.Quantity - reserved,
		})
	}
	return result, nil
}

// LineOutcome is what happened to one order line on its day
type LineOutcome struct {
	Product    entities.ProductID
	Requested  entities.Quantity
	Shipped    entities.Quantity
	Backlogged entities.Quantity
	Lost       entities.Quantity
}

// DispatchResult is what happened to an order on its day
type DispatchResult struct {
	OrderID  string
	Customer entities.CustomerID
	Zone     entities.ZoneID
	Lines    []LineOutcome
}

// Requested returns total units requested by the order
func (r *DispatchResult) Requested() entities.Quantity {
	var total entities.Quantity
	for _, line := range r.Lines {
		total += line.Requested
	}
	return total
}

// Shipped returns total units that left the warehouse for the order
func (r *DispatchResult) Shipped() entities.Quantity {
	var total entities.Quantity
	for _, line := range r.Lines {
		total += line.Shipped
	}
	return total
}

// Status derives the order-level fulfilment status
func (r *DispatchResult) Status() entities.FulfillmentStatus {
	return entities.StatusFor(r.Requested(), r.Shipped())
}

// ToDispatchOrder returns the shipped part of the order for transport planning,
// or nil when nothing shipped
func (r *DispatchResult) ToDispatchOrder() *entities.DispatchOrder {
	var lines []entities.ShippedLine
	for _, line := range r.Lines {
		if line.Shipped > 0 {
			lines = append(lines, entities.ShippedLine{Product: line.Product, Quantity: line.Shipped})
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return &entities.DispatchOrder{
		OrderID:  r.OrderID,
		Customer: r.Customer,
		Zone:     r.Zone,
		Lines:    lines,
	}
}

// Dispatch ships min(requested, physical) per line and settles each line's
// shortfall independently: with probability equal to the customer's wait
// probability it joins the backlog and stays committed, otherwise it is a
// lost sale and any reservation the line still holds is released.
func (l *Ledger) Dispatch(order *entities.CustomerOrder, commit *CommitResult, day int, rnd Chance) (*DispatchResult, error) {
	customer, err := l.catalog.GetCustomer(order.Customer)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", order.ID, err)
	}
	for _, line := range order.Lines {
		if _, err := l.position(line.Product); err != nil {
			return nil, fmt.Errorf("order %s: %w", order.ID, err)
		}
	}

	result := &DispatchResult{
		OrderID:  order.ID,
		Customer: order.Customer,
		Zone:     order.Zone,
		Lines:    make([]LineOutcome, 0, len(order.Lines)),
	}

	for _, line := range order.Lines {
		pos := l.positions[line.Product]
		outcome := LineOutcome{Product: line.Product, Requested: line.Quantity}

		var held entities.Quantity
		if commit != nil {
			if lc, ok := commit.line(line.Product); ok {
				held = lc.Reserved
			}
		}

		ship := max(min(line.Quantity, pos.Physical), 0)
		if ship > 0 {
			pos.Physical -= ship
			release := min(held, pos.Committed)
			pos.Committed -= release
			held -= release
			outcome.Shipped = ship
			l.record(day, line.Product, entities.SaleDispatch, -ship, order.ID, entities.RefOrder)
		}

		if shortfall := line.Quantity - ship; shortfall > 0 {
			if rnd.Float64() < customer.WaitProbability {
				pos.Committed += shortfall - held
				l.backlogSeq++
				l.backlog = append(l.backlog, entities.BacklogEntry{
					Seq:        l.backlogSeq,
					OrderID:    order.ID,
					Customer:   order.Customer,
					Zone:       order.Zone,
					Product:    line.Product,
					Pending:    shortfall,
					DayEntered: day,
				})
				l.backlogHistory = append(l.backlogHistory, entities.BacklogEvent{
					Day:             day,
					OrderID:         order.ID,
					Customer:        order.Customer,
					Product:         line.Product,
					Quantity:        shortfall,
					Kind:            entities.BacklogEntered,
					WaitProbability: customer.WaitProbability,
				})
				outcome.Backlogged = shortfall
			} else {
				pos.Committed -= min(held, pos.Committed)
				l.lostSales = append(l.lostSales, entities.LostSale{
					Day:       day,
					OrderID:   order.ID,
					Customer:  order.Customer,
					Product:   line.Product,
					Requested: line.Quantity,
					Served:    ship,
					Lost:      shortfall,
				})
				outcome.Lost = shortfall
			}
		}

		result.Lines = append(result.Lines, outcome)
	}

	return result, nil
}

// CommitAndDispatch runs Commit followed by Dispatch for one order
func (l *Ledger) CommitAndDispatch(order *entities.CustomerOrder, day int, rnd Chance) (*DispatchResult, error) {
	if _, err := l.catalog.GetCustomer(order.Customer); err != nil {
		return nil, fmt.Errorf("order %s: %w", order.ID, err)
	}
	commit, err := l.Commit(order)
	if err != nil {
		return nil, err
	}
	return l.Dispatch(order, commit, day, rnd)
}

// CloseDay clamps physical and committed stock at zero after the day's
// dispatching. A clamp means the accounting drifted; it is reported as an
// ErrAccountingDrift error for every affected product.
func (l *Ledger) CloseDay(day int) error {
	var errs []error
	for _, id := range l.products {
		pos := l.positions[id]
		if pos.Physical < 0 {
			errs = append(errs, fmt.Errorf("%w: day %d product %s physical %d", entities.ErrAccountingDrift, day, id, pos.Physical))
			pos.Physical = 0
		}
		if pos.Committed < 0 {
			errs = append(errs, fmt.Errorf("%w: day %d product %s committed %d", entities.ErrAccountingDrift, day, id, pos.Committed))
			pos.Committed = 0
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		l.logger.Error().Err(err).Int("day", day).Msg("inventory counters clamped")
		return err
	}
	return nil
}

// Replenish raises a purchase order for every product whose position is
// below its reorder point. Calling it again on the same day without
// intervening demand or receipts creates nothing, because each order lifts
// the position to at least target stock.
func (l *Ledger) Replenish(day int, scenario entities.Scenario) ([]entities.PurchaseOrder, error) {
	var created []entities.PurchaseOrder

	for _, id := range l.products {
		product, err := l.catalog.GetProduct(id)
		if err != nil {
			return created, err
		}
		pos := l.positions[id]
		position := pos.Position()
		if position >= product.ReorderPoint {
			continue
		}

		qty := scenario.OrderQuantity(product, position)
		leadTime := scenario.EffectiveLeadTime(product.LeadTimeDays)
		po, err := entities.NewPurchaseOrder(fmt.Sprintf("PO-%05d", l.poCounter), id, qty, day, leadTime)
		if err != nil {
			return created, fmt.Errorf("replenish %s: %w", id, err)
		}
		l.poCounter++

		pos.InTransit += qty
		l.purchaseOrders = append(l.purchaseOrders, *po)
		created = append(created, *po)

		l.logger.Debug().
			Int("day", day).
			Str("product", string(id)).
			Int64("quantity", int64(qty)).
			Int("day_due", po.DayDue).
			Msg("purchase order created")
	}

	return created, nil
}

// Position returns a copy of a product's counters
func (l *Ledger) Position(id entities.ProductID) (entities.InventoryPosition, error) {
	pos, err := l.position(id)
	if err != nil {
		return entities.InventoryPosition{}, err
	}
	return *pos, nil
}

// Positions returns a copy of every product's counters in catalog order
func (l *Ledger) Positions() []entities.InventoryPosition {
	out := make([]entities.InventoryPosition, 0, len(l.products))
	for _, id := range l.products {
		out = append(out, *l.positions[id])
	}
	return out
}

// Movements returns a copy of the movement log
func (l *Ledger) Movements() []entities.LedgerMovement {
	return append([]entities.LedgerMovement(nil), l.movements...)
}

// PurchaseOrders returns a copy of the purchase order log
func (l *Ledger) PurchaseOrders() []entities.PurchaseOrder {
	return append([]entities.PurchaseOrder(nil), l.purchaseOrders...)
}

// Backlog returns the open backlog entries in FIFO order
func (l *Ledger) Backlog() []entities.BacklogEntry {
	out := append([]entities.BacklogEntry(nil), l.backlog...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayEntered != out[j].DayEntered {
			return out[i].DayEntered < out[j].DayEntered
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// BacklogUnits returns the total pending backlog quantity
func (l *Ledger) BacklogUnits() entities.Quantity {
	var total entities.Quantity
	for _, entry := range l.backlog {
		total += entry.Pending
	}
	return total
}

// BacklogHistory returns a copy of the backlog history log
func (l *Ledger) BacklogHistory() []entities.BacklogEvent {
	return append([]entities.BacklogEvent(nil), l.backlogHistory...)
}

// LostSales returns a copy of the lost sales log
func (l *Ledger) LostSales() []entities.LostSale {
	return append([]entities.LostSale(nil), l.lostSales...)
}

// InventoryValue values physical stock at unit cost
func (l *Ledger) InventoryValue() decimal.Decimal {
	total := decimal.Zero
	for _, id := range l.products {
		product, err := l.catalog.GetProduct(id)
		if err != nil {
			continue
		}
		total = total.Add(product.UnitCost.Mul(decimal.NewFromInt(int64(l.positions[id].Physical))))
	}
	return total
}

// Reconcile checks the movement log against the counters: for every product
// the signed movements after the opening balance must add up to the change
// in physical stock, and the last recorded balance must equal physical stock.
// Every mismatch is reported as ErrAccountingDrift.
func (l *Ledger) Reconcile() error {
	sums := make(map[entities.ProductID]entities.Quantity, len(l.products))
	last := make(map[entities.ProductID]entities.Quantity, len(l.products))
	for _, m := range l.movements {
		if m.Type != entities.InitialBalance {
			sums[m.Product] += m.Quantity
		}
		last[m.Product] = m.Balance
	}

	var errs []error
	for _, id := range l.products {
		physical := l.positions[id].Physical
		if got, want := sums[id], physical-l.initial[id]; got != want {
			errs = append(errs, fmt.Errorf("%w: product %s movements sum to %d, physical changed by %d", entities.ErrAccountingDrift, id, got, want))
		}
		if last[id] != physical {
			errs = append(errs, fmt.Errorf("%w: product %s last balance %d, physical %d", entities.ErrAccountingDrift, id, last[id], physical))
		}
	}
	return errors.Join(errs...)
}

func (l *Ledger) position(id entities.ProductID) (*entities.InventoryPosition, error) {
	pos, ok := l.positions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnknownProduct, id)
	}
	return pos, nil
}

func (l *Ledger) waitProbability(id entities.CustomerID) float64 {
	customer, err := l.catalog.GetCustomer(id)
	if err != nil {
		return 0
	}
	return customer.WaitProbability
}

func (l *Ledger) record(day int, id entities.ProductID, kind entities.MovementType, qty entities.Quantity, refID, refType string) {
	l.movements = append(l.movements, entities.LedgerMovement{
		Seq:      len(l.movements) + 1,
		Day:      day,
		Product:  id,
		Type:     kind,
		Quantity: qty,
		Balance:  l.positions[id].Physical,
		RefID:    refID,
		RefType:  refType,
	})
}
