package relation

import (
	domain "github.com/mhollis/stocksync/pkg/types"
)

// defaultVendorPrefixes are brand prefixes whose numeric product codes
// group more reliably than name normalization.
var defaultVendorPrefixes = []string{"acme"}

// Resolver groups stock records into master/kit relationships.
type Resolver struct {
	vendorPrefixes []string
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithVendorPrefixes overrides the vendor brand prefixes checked before
// falling back to generic name-pattern grouping.
func WithVendorPrefixes(prefixes []string) ResolverOption {
	return func(r *Resolver) {
		r.vendorPrefixes = prefixes
	}
}

// NewResolver creates a new Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		vendorPrefixes: defaultVendorPrefixes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result holds the resolved product graph. Masters includes degenerate
// single-product groups; Relationships only contains groups with kits.
type Result struct {
	Masters       []domain.StockRecord
	Kits          []domain.StockRecord
	Relationships []domain.ProductRelationship
}

// Resolve partitions records into master and kit products. The result is
// independent of input order for grouping, and deterministic for master
// selection: ties are broken by stable input order.
func (r *Resolver) Resolve(records []domain.StockRecord) *Result {
	groups := make(map[string][]int)
	var order []string

	for i := range records {
		pattern := r.patternFor(&records[i])
		if _, seen := groups[pattern]; !seen {
			order = append(order, pattern)
		}
		groups[pattern] = append(groups[pattern], i)
	}

	result := &Result{}

	for _, pattern := range order {
		idxs := groups[pattern]

		if len(idxs) == 1 {
			result.Masters = append(result.Masters, records[idxs[0]])
			continue
		}

		masterIdx := chooseMaster(records, idxs)

		rel := domain.ProductRelationship{
			MasterSKU:   records[masterIdx].SKU,
			MasterName:  records[masterIdx].ProductName,
			BasePattern: pattern,
		}

		result.Masters = append(result.Masters, records[masterIdx])
		for _, i := range idxs {
			if i == masterIdx {
				continue
			}
			result.Kits = append(result.Kits, records[i])
			rel.KitSKUs = append(rel.KitSKUs, records[i].SKU)
		}

		result.Relationships = append(result.Relationships, rel)
	}

	return result
}

func (r *Resolver) patternFor(rec *domain.StockRecord) string {
	for _, prefix := range r.vendorPrefixes {
		if p := VendorPattern(rec.ProductName, prefix); p != "" {
			return p
		}
	}

	if p := BasePattern(rec.ProductName); p != "" {
		return p
	}

	// Names that are pure noise fall back to the SKU.
	return "sku:" + rec.SKU
}

// chooseMaster picks the canonical record of a group. Preference order:
// no quantity indicator in name or SKU, then a base-product keyword,
// then the shortest name. Each pass keeps the first qualifying record
// in input order so the choice is deterministic.
func chooseMaster(records []domain.StockRecord, idxs []int) int {
	for _, i := range idxs {
		if !HasQuantityIndicator(records[i].ProductName) &&
			!HasQuantityIndicator(records[i].SKU) {
			return i
		}
	}

	for _, i := range idxs {
		if HasMasterKeyword(records[i].ProductName) {
			return i
		}
	}

	best := idxs[0]
	for _, i := range idxs[1:] {
		if len(records[i].ProductName) < len(records[best].ProductName) {
			best = i
		}
	}
	return best
}
