package provider

import (
	"strconv"
	"time"

	domain "github.com/mhollis/stocksync/pkg/types"
)

// timeFormats lists the timestamp layouts the provider has been seen
// emitting, tried in order.
var timeFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToStockRecords converts wire-level stock items into domain records.
func ToStockRecords(items []StockItem) []domain.StockRecord {
	records := make([]domain.StockRecord, 0, len(items))
	for i := range items {
		records = append(records, toStockRecord(&items[i]))
	}
	return records
}

func toStockRecord(item *StockItem) domain.StockRecord {
	r := domain.StockRecord{
		SKU:               item.SKU,
		ProductName:       item.Name,
		Quantity:          item.Quantity,
		AllocatedQuantity: item.Allocated,
	}

	if p, err := strconv.ParseFloat(item.CostPrice, 64); err == nil {
		r.CostPrice = p
	}
	if p, err := strconv.ParseFloat(item.SellingPrice, 64); err == nil {
		r.SellingPrice = p
	}

	r.LastUpdated = parseTimestamp(item.LastUpdated)

	return r
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
