package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/mhollis/stocksync/pkg/types"
)

const (
	keyHistory     = "stocksync:history"
	keyUploads     = "stocksync:uploads"
	keyAlerts      = "stocksync:alerts"
	keySnapshotIDs = "stocksync:snapshots"
	keySnapshot    = "stocksync:snapshot:" // + id
)

// RedisStore implements Store on Redis lists. New records are pushed to
// the head and lists are trimmed to their caps, which gives the
// ring-buffer semantics natively. History filtering happens client-side
// after an LRANGE; the list is already bounded by MaxHistory so the
// read amplification is capped.
type RedisStore struct {
	client *redis.Client
	caps   Caps
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int, caps Caps) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisStore{client: client, caps: caps}, nil
}

// Close releases the client's connections.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping verifies the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// AppendHistory pushes an entry and trims the list to cap.
func (s *RedisStore) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	return s.pushBounded(ctx, keyHistory, entry, s.caps.MaxHistory)
}

// QueryHistory returns matching entries newest-first.
func (s *RedisStore) QueryHistory(ctx context.Context, filter Filter) ([]domain.HistoryEntry, error) {
	raw, err := s.client.LRange(ctx, keyHistory, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history list: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	var entries []domain.HistoryEntry
	for _, item := range raw {
		var e domain.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decoding history entry: %w", err)
		}
		if !filter.Matches(&e) {
			continue
		}
		entries = append(entries, e)
		if len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// PruneHistory rewrites the list without entries older than the cutoff.
func (s *RedisStore) PruneHistory(ctx context.Context, before time.Time) (int, error) {
	return s.pruneList(ctx, keyHistory, func(item string) (bool, error) {
		var e domain.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return false, err
		}
		return e.Timestamp.Before(before), nil
	})
}

// SaveSnapshot stores the snapshot under its own key and registers the
// ID, evicting the oldest snapshot when over cap.
func (s *RedisStore) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, keySnapshot+snap.ID, payload, 0)
	pipe.LPush(ctx, keySnapshotIDs, snap.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}

	if s.caps.MaxSnapshots <= 0 {
		return nil
	}

	for {
		size, err := s.client.LLen(ctx, keySnapshotIDs).Result()
		if err != nil {
			return fmt.Errorf("sizing snapshot index: %w", err)
		}
		if size <= int64(s.caps.MaxSnapshots) {
			return nil
		}
		evicted, err := s.client.RPop(ctx, keySnapshotIDs).Result()
		if err != nil {
			return fmt.Errorf("evicting snapshot: %w", err)
		}
		if err := s.client.Del(ctx, keySnapshot+evicted).Err(); err != nil {
			return fmt.Errorf("deleting evicted snapshot: %w", err)
		}
	}
}

// GetSnapshot returns the snapshot with the given ID, or
// ErrSnapshotNotFound.
func (s *RedisStore) GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	payload, err := s.client.Get(ctx, keySnapshot+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshots returns matching snapshots newest-first.
func (s *RedisStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]domain.Snapshot, error) {
	ids, err := s.client.LRange(ctx, keySnapshotIDs, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading snapshot index: %w", err)
	}

	var snaps []domain.Snapshot
	for _, id := range ids {
		snap, err := s.GetSnapshot(ctx, id)
		if err != nil {
			if errors.Is(err, ErrSnapshotNotFound) {
				continue
			}
			return nil, err
		}
		if filter.Type != "" && snap.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && snap.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && snap.Timestamp.After(filter.To) {
			continue
		}
		snaps = append(snaps, *snap)
		if filter.Limit > 0 && len(snaps) >= filter.Limit {
			break
		}
	}
	return snaps, nil
}

// PruneSnapshots removes snapshots older than the cutoff.
func (s *RedisStore) PruneSnapshots(ctx context.Context, before time.Time) (int, error) {
	ids, err := s.client.LRange(ctx, keySnapshotIDs, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("reading snapshot index: %w", err)
	}

	removed := 0
	for _, id := range ids {
		snap, err := s.GetSnapshot(ctx, id)
		if err != nil {
			if errors.Is(err, ErrSnapshotNotFound) {
				continue
			}
			return removed, err
		}
		if !snap.Timestamp.Before(before) {
			continue
		}
		pipe := s.client.TxPipeline()
		pipe.LRem(ctx, keySnapshotIDs, 1, id)
		pipe.Del(ctx, keySnapshot+id)
		if _, err := pipe.Exec(ctx); err != nil {
			return removed, fmt.Errorf("removing snapshot %s: %w", id, err)
		}
		removed++
	}
	return removed, nil
}

// RecordUpload pushes an upload result and trims to cap.
func (s *RedisStore) RecordUpload(ctx context.Context, result domain.UploadResult) error {
	return s.pushBounded(ctx, keyUploads, result, s.caps.MaxUploads)
}

// ListUploads returns the most recent upload results, newest-first.
func (s *RedisStore) ListUploads(ctx context.Context, limit int) ([]domain.UploadResult, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	raw, err := s.client.LRange(ctx, keyUploads, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading upload list: %w", err)
	}

	var results []domain.UploadResult
	for _, item := range raw {
		var r domain.UploadResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("decoding upload result: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}

// RecordAlert pushes an alert and trims to cap.
func (s *RedisStore) RecordAlert(ctx context.Context, alert domain.Alert) error {
	return s.pushBounded(ctx, keyAlerts, alert, s.caps.MaxAlerts)
}

// ListRecentAlerts returns the most recent alerts, newest-first.
func (s *RedisStore) ListRecentAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	raw, err := s.client.LRange(ctx, keyAlerts, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading alert list: %w", err)
	}

	var alerts []domain.Alert
	for _, item := range raw {
		var a domain.Alert
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("decoding alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// pushBounded LPUSHes a JSON-encoded value and LTRIMs the list to cap
// in one transaction.
func (s *RedisStore) pushBounded(ctx context.Context, key string, v any, maxLen int) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding record for %s: %w", key, err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	if maxLen > 0 {
		pipe.LTrim(ctx, key, 0, int64(maxLen-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending to %s: %w", key, err)
	}
	return nil
}

// pruneList rewrites a list keeping only items the predicate rejects.
func (s *RedisStore) pruneList(ctx context.Context, key string, tooOld func(string) (bool, error)) (int, error) {
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", key, err)
	}

	var kept []any
	removed := 0
	for _, item := range raw {
		old, err := tooOld(item)
		if err != nil {
			return 0, fmt.Errorf("decoding record in %s: %w", key, err)
		}
		if old {
			removed++
			continue
		}
		kept = append(kept, item)
	}

	if removed == 0 {
		return 0, nil
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(kept) > 0 {
		pipe.RPush(ctx, key, kept...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rewriting %s: %w", key, err)
	}
	return removed, nil
}
