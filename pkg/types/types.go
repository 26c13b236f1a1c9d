// Package domain defines the core business types for stocksync.
package domain

import (
	"time"
)

// ChangeType categorizes the origin of a quantity change.
type ChangeType string

// Change type constants.
const (
	ChangeUpdate ChangeType = "update"
	ChangeUpload ChangeType = "upload"
	ChangeManual ChangeType = "manual"
	ChangeSync   ChangeType = "sync"
)

// SnapshotType categorizes the cadence that produced a snapshot.
type SnapshotType string

// Snapshot type constants.
const (
	SnapshotDaily   SnapshotType = "daily"
	SnapshotWeekly  SnapshotType = "weekly"
	SnapshotMonthly SnapshotType = "monthly"
	SnapshotManual  SnapshotType = "manual"
)

// Severity represents alert severity levels.
type Severity string

// Severity constants.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// StockRecord is a single product's stock state as reported by the
// remote provider. Identity is the SKU, unique within one sync run.
type StockRecord struct {
	SKU               string    `json:"sku"                db:"sku"`
	ProductName       string    `json:"product_name"       db:"product_name"`
	Quantity          int       `json:"quantity"           db:"quantity"`
	AllocatedQuantity int       `json:"allocated_quantity" db:"allocated_quantity"`
	CostPrice         float64   `json:"cost_price"         db:"cost_price"`
	SellingPrice      float64   `json:"selling_price"      db:"selling_price"`
	LastUpdated       time.Time `json:"last_updated"       db:"last_updated"`
}

// Available returns the quantity not reserved by open orders.
func (r *StockRecord) Available() int {
	avail := r.Quantity - r.AllocatedQuantity
	if avail < 0 {
		return 0
	}
	return avail
}

// Value returns the record's inventory value at cost.
func (r *StockRecord) Value() float64 {
	return float64(r.Quantity) * r.CostPrice
}

// ProductRelationship links a master product to its kit products.
// A master with zero kits is a valid degenerate relationship.
type ProductRelationship struct {
	MasterSKU   string   `json:"master_sku"`
	MasterName  string   `json:"master_name"`
	KitSKUs     []string `json:"kit_skus"`
	BasePattern string   `json:"base_pattern"`
}

// UploadRecord is one normalized row from a bulk upload file.
type UploadRecord struct {
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Category     string  `json:"category,omitempty"`
	Supplier     string  `json:"supplier,omitempty"`
	MinThreshold int     `json:"min_threshold,omitempty"`
	MaxStock     int     `json:"max_stock,omitempty"`
	Location     string  `json:"location,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// UploadResult summarizes one bulk upload invocation. It is immutable
// after creation. Rows that fail validation count into ErrorCount, so
// SuccessCount + ErrorCount <= TotalItems always holds.
type UploadResult struct {
	UploadID     string    `json:"upload_id"     db:"upload_id"`
	TotalItems   int       `json:"total_items"   db:"total_items"`
	SuccessCount int       `json:"success_count" db:"success_count"`
	ErrorCount   int       `json:"error_count"   db:"error_count"`
	Errors       []string  `json:"errors"        db:"errors"`
	Warnings     []string  `json:"warnings"      db:"warnings"`
	Timestamp    time.Time `json:"timestamp"     db:"timestamp"`
}

// HistoryEntry is a single logged quantity change event. Entries are
// append-only; they are never mutated and only removed by retention
// pruning.
type HistoryEntry struct {
	ID          string     `json:"id"           db:"id"`
	Timestamp   time.Time  `json:"timestamp"    db:"timestamp"`
	Type        ChangeType `json:"type"         db:"type"`
	SKU         string     `json:"sku"          db:"sku"`
	OldQuantity int        `json:"old_quantity" db:"old_quantity"`
	NewQuantity int        `json:"new_quantity" db:"new_quantity"`
	Difference  int        `json:"difference"   db:"difference"`
	User        string     `json:"user"         db:"username"`
	Source      string     `json:"source"       db:"source"`
	Notes       string     `json:"notes"        db:"notes"`
}

// SnapshotProduct is the per-product subset captured in a snapshot.
type SnapshotProduct struct {
	SKU          string  `json:"sku"           db:"sku"`
	ProductName  string  `json:"product_name"  db:"product_name"`
	Quantity     int     `json:"quantity"      db:"quantity"`
	CostPrice    float64 `json:"cost_price"    db:"cost_price"`
	SellingPrice float64 `json:"selling_price" db:"selling_price"`
}

// Snapshot is a full point-in-time capture of inventory state.
// Immutable once created.
type Snapshot struct {
	ID            string            `json:"id"             db:"id"`
	Timestamp     time.Time         `json:"timestamp"      db:"timestamp"`
	Type          SnapshotType      `json:"type"           db:"type"`
	TotalProducts int               `json:"total_products" db:"total_products"`
	TotalValue    float64           `json:"total_value"    db:"total_value"`
	Products      []SnapshotProduct `json:"products"       db:"products"`
}

// ProductChange classifies how one SKU differs between two snapshots.
type ProductChange struct {
	SKU          string  `json:"sku"`
	ProductName  string  `json:"product_name"`
	Status       string  `json:"status"` // "modified", "added", "removed"
	OldQuantity  int     `json:"old_quantity"`
	NewQuantity  int     `json:"new_quantity"`
	QuantityDiff int     `json:"quantity_diff"`
	OldPrice     float64 `json:"old_price"`
	NewPrice     float64 `json:"new_price"`
}

// SnapshotComparison holds the diff between two snapshots.
type SnapshotComparison struct {
	FromID       string          `json:"from_id"`
	ToID         string          `json:"to_id"`
	Elapsed      time.Duration   `json:"elapsed"`
	ProductDelta int             `json:"product_delta"`
	ValueDelta   float64         `json:"value_delta"`
	Changes      []ProductChange `json:"changes"`
}

// Alert is a threshold violation generated during one evaluation cycle.
type Alert struct {
	ID           string    `json:"id"            db:"id"`
	Type         string    `json:"type"          db:"type"`
	Severity     Severity  `json:"severity"      db:"severity"`
	SKU          string    `json:"sku"           db:"sku"`
	ProductName  string    `json:"product_name"  db:"product_name"`
	CurrentStock int       `json:"current_stock" db:"current_stock"`
	Threshold    int       `json:"threshold"     db:"threshold"`
	Message      string    `json:"message"       db:"message"`
	Timestamp    time.Time `json:"timestamp"     db:"timestamp"`
}
