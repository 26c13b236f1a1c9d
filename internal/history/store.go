// Package history implements the append-only change log, point-in-time
// inventory snapshots, and the upload/alert record stores. All business
// logic depends on the Store interface, never on concrete
// implementations, so the backends (memory, Postgres, Redis) are
// swappable by configuration.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/mhollis/stocksync/pkg/types"
)

// ErrSnapshotNotFound is returned when a referenced snapshot ID does
// not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

const defaultQueryLimit = 50

// Filter defines optional filters for history queries. Zero values mean
// "no constraint". SKU and User match as case-insensitive substrings;
// the date range is inclusive at both ends.
type Filter struct {
	SKU   string
	Type  domain.ChangeType
	User  string
	From  time.Time
	To    time.Time
	Limit int // default 50
}

// Matches reports whether an entry passes every set filter field. The
// in-memory and Redis backends filter with it; the Postgres backend
// compiles the same semantics to SQL.
func (f *Filter) Matches(e *domain.HistoryEntry) bool {
	if f.SKU != "" && !strings.Contains(strings.ToLower(e.SKU), strings.ToLower(f.SKU)) {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.User != "" && !strings.Contains(strings.ToLower(e.User), strings.ToLower(f.User)) {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}

// SnapshotFilter narrows snapshot listings.
type SnapshotFilter struct {
	Type  domain.SnapshotType
	From  time.Time
	To    time.Time
	Limit int
}

// Store defines all data access operations for the change-management
// subsystem. History entries and snapshots are append-only; backends
// evict oldest-first when their configured caps are exceeded.
type Store interface {
	// History
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error
	QueryHistory(ctx context.Context, filter Filter) ([]domain.HistoryEntry, error)
	PruneHistory(ctx context.Context, before time.Time) (int, error)

	// Snapshots
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]domain.Snapshot, error)
	PruneSnapshots(ctx context.Context, before time.Time) (int, error)

	// Uploads (most-recent-N ring)
	RecordUpload(ctx context.Context, result domain.UploadResult) error
	ListUploads(ctx context.Context, limit int) ([]domain.UploadResult, error)

	// Alerts (most-recent-N ring)
	RecordAlert(ctx context.Context, alert domain.Alert) error
	ListRecentAlerts(ctx context.Context, limit int) ([]domain.Alert, error)

	// Health
	Ping(ctx context.Context) error
}

// Caps bound the retained size of each append-only collection.
type Caps struct {
	MaxHistory   int
	MaxSnapshots int
	MaxUploads   int
	MaxAlerts    int
}

// DefaultCaps mirrors the configuration defaults.
func DefaultCaps() Caps {
	return Caps{
		MaxHistory:   10000,
		MaxSnapshots: 120,
		MaxUploads:   50,
		MaxAlerts:    200,
	}
}
