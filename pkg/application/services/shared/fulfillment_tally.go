package shared

import (
	"sort"

	"github.com/vsinha/supplysim/pkg/domain/entities"
)

// FulfillmentContext holds fulfilment counts for a specific product and zone
type FulfillmentContext struct {
	Requested  entities.Quantity
	Shipped    entities.Quantity
	Backlogged entities.Quantity
	Lost       entities.Quantity
	Recovered  entities.Quantity
}

// Add accumulates other into c
func (c *FulfillmentContext) Add(other FulfillmentContext) {
	c.Requested += other.Requested
	c.Shipped += other.Shipped
	c.Backlogged += other.Backlogged
	c.Lost += other.Lost
	c.Recovered += other.Recovered
}

// Delivered returns units shipped for new demand plus recovered backlog
func (c FulfillmentContext) Delivered() entities.Quantity {
	return c.Shipped + c.Recovered
}

// TallyKey identifies one product delivered to one zone
type TallyKey struct {
	Product entities.ProductID
	Zone    entities.ZoneID
}

// TallyEntry is a keyed context as returned by Entries
type TallyEntry struct {
	TallyKey
	FulfillmentContext
}

// FulfillmentTally manages fulfilment context by product and zone
type FulfillmentTally map[TallyKey]*FulfillmentContext

// NewFulfillmentTally creates a new empty tally
func NewFulfillmentTally() FulfillmentTally {
	return make(FulfillmentTally)
}

// Record accumulates counts for a product and zone
func (ft FulfillmentTally) Record(product entities.ProductID, zone entities.ZoneID, counts FulfillmentContext) {
	key := TallyKey{Product: product, Zone: zone}
	ctx, ok := ft[key]
	if !ok {
		ctx = &FulfillmentContext{}
		ft[key] = ctx
	}
	ctx.Add(counts)
}

// Totals sums every context
func (ft FulfillmentTally) Totals() FulfillmentContext {
	var total FulfillmentContext
	for _, ctx := range ft {
		total.Add(*ctx)
	}
	return total
}

// Entries returns a copy of every context ordered by product, then zone
func (ft FulfillmentTally) Entries() []TallyEntry {
	entries := make([]TallyEntry, 0, len(ft))
	for key, ctx := range ft {
		entries = append(entries, TallyEntry{TallyKey: key, FulfillmentContext: *ctx})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Product != entries[j].Product {
			return entries[i].Product < entries[j].Product
		}
		return entries[i].Zone < entries[j].Zone
	})
	return entries
}

// FillRatio returns shipped over requested for new demand (0.0 to 1.0).
// A tally with no demand has nothing unfilled and reports 1.0.
func (ft FulfillmentTally) FillRatio() float64 {
	total := ft.Totals()
	if total.Requested == 0 {
		return 1.0
	}
	return float64(total.Shipped) / float64(total.Requested)
}
