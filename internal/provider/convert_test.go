package provider_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/stocksync/internal/provider"
)

func TestToStockRecords(t *testing.T) {
	t.Parallel()

	items := []provider.StockItem{
		{
			SKU:          "WIDGET-1",
			Name:         "Widget",
			Quantity:     42,
			Allocated:    2,
			CostPrice:    "3.50",
			SellingPrice: "9.99",
			LastUpdated:  "2026-08-30T12:00:00Z",
		},
		{
			SKU:         "GADGET-2",
			Name:        "Gadget",
			Quantity:    5,
			CostPrice:   "not-a-price",
			LastUpdated: "2026-08-29 08:30:00",
		},
	}

	records := provider.ToStockRecords(items)
	require.Len(t, records, 2)

	assert.Equal(t, "WIDGET-1", records[0].SKU)
	assert.Equal(t, "Widget", records[0].ProductName)
	assert.Equal(t, 42, records[0].Quantity)
	assert.Equal(t, 2, records[0].AllocatedQuantity)
	assert.InDelta(t, 3.50, records[0].CostPrice, 0.001)
	assert.InDelta(t, 9.99, records[0].SellingPrice, 0.001)
	assert.Equal(t,
		time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		records[0].LastUpdated,
	)

	// Unparsable price is left at zero rather than failing the record.
	assert.Zero(t, records[1].CostPrice)
	assert.Equal(t,
		time.Date(2026, 8, 29, 8, 30, 0, 0, time.UTC),
		records[1].LastUpdated,
	)
}

func TestToStockRecords_BadTimestamp(t *testing.T) {
	t.Parallel()

	records := provider.ToStockRecords([]provider.StockItem{
		{SKU: "X", LastUpdated: "yesterday"},
	})
	require.Len(t, records, 1)
	assert.True(t, records[0].LastUpdated.IsZero())
}

func TestStockRecord_Available(t *testing.T) {
	t.Parallel()

	records := provider.ToStockRecords([]provider.StockItem{
		{SKU: "A", Quantity: 10, Allocated: 3},
		{SKU: "B", Quantity: 2, Allocated: 5},
	})

	assert.Equal(t, 7, records[0].Available())
	assert.Equal(t, 0, records[1].Available())
}
