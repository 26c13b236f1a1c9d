package history

import (
	domain "github.com/mhollis/stocksync/pkg/types"
)

// Diff classifies every SKU in the union of two snapshots as modified,
// added, or removed; unchanged products are omitted. A removed product
// is reported with NewQuantity 0, an added one with OldQuantity 0.
// Pure, no I/O: the service wires it to snapshot lookup.
func Diff(from, to *domain.Snapshot) *domain.SnapshotComparison {
	fromBySKU := make(map[string]*domain.SnapshotProduct, len(from.Products))
	for i := range from.Products {
		fromBySKU[from.Products[i].SKU] = &from.Products[i]
	}
	toBySKU := make(map[string]*domain.SnapshotProduct, len(to.Products))
	for i := range to.Products {
		toBySKU[to.Products[i].SKU] = &to.Products[i]
	}

	comparison := &domain.SnapshotComparison{
		FromID:       from.ID,
		ToID:         to.ID,
		Elapsed:      to.Timestamp.Sub(from.Timestamp),
		ProductDelta: to.TotalProducts - from.TotalProducts,
		ValueDelta:   to.TotalValue - from.TotalValue,
	}

	// Old products first, in snapshot order, so removals and
	// modifications come out deterministically; additions follow in
	// the new snapshot's order.
	for i := range from.Products {
		old := &from.Products[i]
		current, stillPresent := toBySKU[old.SKU]

		if !stillPresent {
			comparison.Changes = append(comparison.Changes, domain.ProductChange{
				SKU:          old.SKU,
				ProductName:  old.ProductName,
				Status:       "removed",
				OldQuantity:  old.Quantity,
				NewQuantity:  0,
				QuantityDiff: -old.Quantity,
				OldPrice:     old.SellingPrice,
				NewPrice:     0,
			})
			continue
		}

		if current.Quantity == old.Quantity && current.SellingPrice == old.SellingPrice {
			continue
		}

		comparison.Changes = append(comparison.Changes, domain.ProductChange{
			SKU:          old.SKU,
			ProductName:  current.ProductName,
			Status:       "modified",
			OldQuantity:  old.Quantity,
			NewQuantity:  current.Quantity,
			QuantityDiff: current.Quantity - old.Quantity,
			OldPrice:     old.SellingPrice,
			NewPrice:     current.SellingPrice,
		})
	}

	for i := range to.Products {
		current := &to.Products[i]
		if _, existed := fromBySKU[current.SKU]; existed {
			continue
		}
		comparison.Changes = append(comparison.Changes, domain.ProductChange{
			SKU:          current.SKU,
			ProductName:  current.ProductName,
			Status:       "added",
			OldQuantity:  0,
			NewQuantity:  current.Quantity,
			QuantityDiff: current.Quantity,
			OldPrice:     0,
			NewPrice:     current.SellingPrice,
		})
	}

	return comparison
}
