package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplysim/pkg/domain/entities"
)

func TestFulfillmentTally_Record(t *testing.T) {
	tally := NewFulfillmentTally()
	assert.Empty(t, tally.Entries())
	assert.Equal(t, 1.0, tally.FillRatio())

	tally.Record("P1", "Z1", FulfillmentContext{Requested: 10, Shipped: 7, Backlogged: 3})
	tally.Record("P1", "Z1", FulfillmentContext{Requested: 5, Shipped: 5})
	tally.Record("P2", "Z2", FulfillmentContext{Requested: 5, Lost: 5, Recovered: 2})

	entries := tally.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, TallyKey{Product: "P1", Zone: "Z1"}, entries[0].TallyKey)
	assert.Equal(t, entities.Quantity(15), entries[0].Requested)
	assert.Equal(t, entities.Quantity(12), entries[0].Shipped)
	assert.Equal(t, entities.Quantity(3), entries[0].Backlogged)
	assert.Equal(t, entities.Quantity(2), entries[1].Delivered())
}

func TestFulfillmentTally_Aggregates(t *testing.T) {
	tally := NewFulfillmentTally()
	tally.Record("P2", "Z1", FulfillmentContext{Requested: 10, Shipped: 10})
	tally.Record("P1", "Z2", FulfillmentContext{Requested: 20, Shipped: 15, Backlogged: 5, Recovered: 4})
	tally.Record("P1", "Z1", FulfillmentContext{Requested: 10, Shipped: 5, Lost: 5})

	total := tally.Totals()
	assert.Equal(t, entities.Quantity(40), total.Requested)
	assert.Equal(t, entities.Quantity(30), total.Shipped)
	assert.Equal(t, entities.Quantity(34), total.Delivered())
	assert.InDelta(t, 0.75, tally.FillRatio(), 1e-9)

	var keys []TallyKey
	for _, e := range tally.Entries() {
		keys = append(keys, e.TallyKey)
	}
	assert.Equal(t, []TallyKey{
		{Product: "P1", Zone: "Z1"},
		{Product: "P1", Zone: "Z2"},
		{Product: "P2", Zone: "Z1"},
	}, keys)
}

func TestFulfillmentTally_EntriesAreCopies(t *testing.T) {
	tally := NewFulfillmentTally()
	tally.Record("P1", "Z1", FulfillmentContext{Requested: 4, Shipped: 4})

	entries := tally.Entries()
	entries[0].Shipped = 0
	assert.Equal(t, entities.Quantity(4), tally.Entries()[0].Shipped)
}
