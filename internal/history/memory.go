package history

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/mhollis/stocksync/pkg/types"
)

// MemoryStore is the default in-process Store. A single mutex guards
// all collections so ring-buffer truncation stays atomic when uploads
// and syncs run concurrently.
type MemoryStore struct {
	mu        sync.Mutex
	caps      Caps
	history   []domain.HistoryEntry
	snapshots []domain.Snapshot
	uploads   []domain.UploadResult
	alerts    []domain.Alert
}

// NewMemoryStore creates an empty in-memory store with the given caps.
func NewMemoryStore(caps Caps) *MemoryStore {
	return &MemoryStore{caps: caps}
}

// AppendHistory adds an entry, evicting the oldest when over cap.
func (s *MemoryStore) AppendHistory(_ context.Context, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, entry)
	if s.caps.MaxHistory > 0 && len(s.history) > s.caps.MaxHistory {
		s.history = s.history[len(s.history)-s.caps.MaxHistory:]
	}
	return nil
}

// QueryHistory returns matching entries newest-first.
func (s *MemoryStore) QueryHistory(_ context.Context, filter Filter) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.HistoryEntry
	for i := range s.history {
		if filter.Matches(&s.history[i]) {
			out = append(out, s.history[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PruneHistory removes entries older than the cutoff and returns the
// count removed.
func (s *MemoryStore) PruneHistory(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.history[:0]
	removed := 0
	for i := range s.history {
		if s.history[i].Timestamp.Before(before) {
			removed++
			continue
		}
		kept = append(kept, s.history[i])
	}
	s.history = kept
	return removed, nil
}

// SaveSnapshot stores a snapshot, evicting the oldest when over cap.
func (s *MemoryStore) SaveSnapshot(_ context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, snap)
	if s.caps.MaxSnapshots > 0 && len(s.snapshots) > s.caps.MaxSnapshots {
		s.snapshots = s.snapshots[len(s.snapshots)-s.caps.MaxSnapshots:]
	}
	return nil
}

// GetSnapshot returns the snapshot with the given ID, or
// ErrSnapshotNotFound.
func (s *MemoryStore) GetSnapshot(_ context.Context, id string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snapshots {
		if s.snapshots[i].ID == id {
			snap := s.snapshots[i]
			return &snap, nil
		}
	}
	return nil, ErrSnapshotNotFound
}

// ListSnapshots returns matching snapshots newest-first.
func (s *MemoryStore) ListSnapshots(_ context.Context, filter SnapshotFilter) ([]domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Snapshot
	for i := range s.snapshots {
		snap := &s.snapshots[i]
		if filter.Type != "" && snap.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && snap.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && snap.Timestamp.After(filter.To) {
			continue
		}
		out = append(out, *snap)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// PruneSnapshots removes snapshots older than the cutoff.
func (s *MemoryStore) PruneSnapshots(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.snapshots[:0]
	removed := 0
	for i := range s.snapshots {
		if s.snapshots[i].Timestamp.Before(before) {
			removed++
			continue
		}
		kept = append(kept, s.snapshots[i])
	}
	s.snapshots = kept
	return removed, nil
}

// RecordUpload appends an upload result to the most-recent-N ring.
func (s *MemoryStore) RecordUpload(_ context.Context, result domain.UploadResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploads = append(s.uploads, result)
	if s.caps.MaxUploads > 0 && len(s.uploads) > s.caps.MaxUploads {
		s.uploads = s.uploads[len(s.uploads)-s.caps.MaxUploads:]
	}
	return nil
}

// ListUploads returns the most recent upload results, newest-first.
func (s *MemoryStore) ListUploads(_ context.Context, limit int) ([]domain.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.UploadResult, 0, len(s.uploads))
	for i := len(s.uploads) - 1; i >= 0; i-- {
		out = append(out, s.uploads[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// RecordAlert appends an alert to the most-recent-N ring.
func (s *MemoryStore) RecordAlert(_ context.Context, alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, alert)
	if s.caps.MaxAlerts > 0 && len(s.alerts) > s.caps.MaxAlerts {
		s.alerts = s.alerts[len(s.alerts)-s.caps.MaxAlerts:]
	}
	return nil
}

// ListRecentAlerts returns the most recent alerts, newest-first.
func (s *MemoryStore) ListRecentAlerts(_ context.Context, limit int) ([]domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Alert, 0, len(s.alerts))
	for i := len(s.alerts) - 1; i >= 0; i-- {
		out = append(out, s.alerts[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
