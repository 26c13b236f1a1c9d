package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mhollis/stocksync/internal/metrics"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// Change describes a quantity change to be logged. The service fills
// in the ID, timestamp, and computed difference.
type Change struct {
	Type        domain.ChangeType
	SKU         string
	OldQuantity int
	NewQuantity int
	User        string
	Source      string
	Notes       string
}

// Service is the write/query facade over a Store. It owns entry
// construction so callers never hand-build IDs or timestamps.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a history service over the given store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogChange records one quantity change and returns the stored entry.
func (s *Service) LogChange(ctx context.Context, change Change) (*domain.HistoryEntry, error) {
	entry := domain.HistoryEntry{
		ID:          uuid.New().String(),
		Timestamp:   s.now().UTC(),
		Type:        change.Type,
		SKU:         change.SKU,
		OldQuantity: change.OldQuantity,
		NewQuantity: change.NewQuantity,
		Difference:  change.NewQuantity - change.OldQuantity,
		User:        change.User,
		Source:      change.Source,
		Notes:       change.Notes,
	}

	if err := s.store.AppendHistory(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending history entry: %w", err)
	}

	metrics.HistoryEntriesTotal.Inc()
	return &entry, nil
}

// CreateSnapshot captures a point-in-time copy of the tracked fields of
// every record and stores it.
func (s *Service) CreateSnapshot(ctx context.Context, snapType domain.SnapshotType, records []domain.StockRecord) (*domain.Snapshot, error) {
	snap := domain.Snapshot{
		ID:            uuid.New().String(),
		Timestamp:     s.now().UTC(),
		Type:          snapType,
		TotalProducts: len(records),
		Products:      make([]domain.SnapshotProduct, 0, len(records)),
	}

	for i := range records {
		rec := &records[i]
		snap.TotalValue += rec.Value()
		snap.Products = append(snap.Products, domain.SnapshotProduct{
			SKU:          rec.SKU,
			ProductName:  rec.ProductName,
			Quantity:     rec.Quantity,
			CostPrice:    rec.CostPrice,
			SellingPrice: rec.SellingPrice,
		})
	}

	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	metrics.SnapshotsTotal.WithLabelValues(string(snapType)).Inc()
	s.logger.Info("snapshot created",
		"snapshot_id", snap.ID,
		"type", snapType,
		"products", snap.TotalProducts)
	return &snap, nil
}

// Query returns history entries matching the filter, newest-first.
func (s *Service) Query(ctx context.Context, filter Filter) ([]domain.HistoryEntry, error) {
	return s.store.QueryHistory(ctx, filter)
}

// CompareSnapshots diffs two stored snapshots by ID.
func (s *Service) CompareSnapshots(ctx context.Context, fromID, toID string) (*domain.SnapshotComparison, error) {
	from, err := s.store.GetSnapshot(ctx, fromID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", fromID, err)
	}
	to, err := s.store.GetSnapshot(ctx, toID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", toID, err)
	}
	return Diff(from, to), nil
}

// ClearOldHistory removes entries and snapshots older than daysToKeep
// days and returns the number of history entries removed. Maintenance
// operation, not part of the write hot path.
func (s *Service) ClearOldHistory(ctx context.Context, daysToKeep int) (int, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -daysToKeep)

	removed, err := s.store.PruneHistory(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}

	snapsRemoved, err := s.store.PruneSnapshots(ctx, cutoff)
	if err != nil {
		return removed, fmt.Errorf("pruning snapshots: %w", err)
	}

	s.logger.Info("retention prune finished",
		"days_kept", daysToKeep,
		"entries_removed", removed,
		"snapshots_removed", snapsRemoved)
	return removed, nil
}
