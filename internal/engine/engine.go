// Package engine orchestrates the sync cycle: fetch, dedup, change
// logging, relationship resolution, alert evaluation, and dispatch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mhollis/stocksync/internal/alert"
	"github.com/mhollis/stocksync/internal/history"
	"github.com/mhollis/stocksync/internal/metrics"
	"github.com/mhollis/stocksync/internal/provider"
	"github.com/mhollis/stocksync/internal/relation"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// Deduplication policies for a SKU appearing twice in one fetch.
const (
	DedupReject   = "reject"
	DedupLastWins = "last_wins"
	DedupKeepAll  = "keep_all"
)

// ErrDuplicateSKU is returned under the reject policy when a fetch
// result carries the same SKU twice.
var ErrDuplicateSKU = errors.New("duplicate sku in fetch result")

// SyncSummary reports one completed sync cycle.
type SyncSummary struct {
	Pages         int       `json:"pages"`
	Records       int       `json:"records"`
	ChangesLogged int       `json:"changes_logged"`
	AlertsRaised  int       `json:"alerts_raised"`
	Masters       int       `json:"masters"`
	Kits          int       `json:"kits"`
	StartedAt     time.Time `json:"started_at"`
	Duration      string    `json:"duration"`
}

// Engine owns the current inventory view and drives every periodic
// operation. It serializes sync cycles with a single mutex: the fetch
// protocol is sequential anyway and overlapping cycles would corrupt
// the change diff.
type Engine struct {
	fetcher    *provider.Fetcher
	resolver   *relation.Resolver
	history    *history.Service
	store      history.Store
	evaluator  *alert.Evaluator
	dispatcher *alert.Dispatcher
	log        *slog.Logger

	dedupPolicy   string
	retentionDays int

	mu            sync.Mutex
	current       []domain.StockRecord
	lastQuantity  map[string]int
	relationships []domain.ProductRelationship
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	fetcher *provider.Fetcher,
	resolver *relation.Resolver,
	historySvc *history.Service,
	store history.Store,
	evaluator *alert.Evaluator,
	dispatcher *alert.Dispatcher,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		fetcher:       fetcher,
		resolver:      resolver,
		history:       historySvc,
		store:         store,
		evaluator:     evaluator,
		dispatcher:    dispatcher,
		log:           slog.Default(),
		dedupPolicy:   DedupLastWins,
		retentionDays: 90,
		lastQuantity:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithDedupPolicy sets how duplicate SKUs within one fetch are handled.
func WithDedupPolicy(policy string) EngineOption {
	return func(e *Engine) {
		e.dedupPolicy = policy
	}
}

// WithRetentionDays sets how long history entries are kept.
func WithRetentionDays(days int) EngineOption {
	return func(e *Engine) {
		e.retentionDays = days
	}
}

// RunSync executes one full sync cycle: fetch all pages, apply the
// dedup policy, log quantity changes against the previous cycle,
// refresh the relationship graph, and evaluate and dispatch alerts.
// A provider fault aborts the cycle without committing anything.
func (eng *Engine) RunSync(ctx context.Context) (*SyncSummary, error) {
	eng.mu.Lock()
	defer eng.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.SyncDuration.Observe(time.Since(start).Seconds())
	}()

	result, err := eng.fetcher.FetchAll(ctx)
	if err != nil {
		metrics.SyncErrorsTotal.Inc()
		return nil, fmt.Errorf("fetching inventory: %w", err)
	}

	records, err := dedupRecords(result.Records, eng.dedupPolicy)
	if err != nil {
		metrics.SyncErrorsTotal.Inc()
		return nil, err
	}

	metrics.SyncPagesTotal.Add(float64(result.Pages))
	metrics.SyncRecordsTotal.Add(float64(len(records)))

	summary := &SyncSummary{
		Pages:     result.Pages,
		Records:   len(records),
		StartedAt: start.UTC(),
	}

	summary.ChangesLogged = eng.logChanges(ctx, records)

	resolved := eng.resolver.Resolve(records)
	eng.relationships = resolved.Relationships
	summary.Masters = len(resolved.Masters)
	summary.Kits = len(resolved.Kits)

	eng.current = records
	eng.lastQuantity = quantityIndex(records)

	alerts := eng.evaluator.Evaluate(records)
	summary.AlertsRaised = len(alerts)
	for _, a := range alerts {
		if err := eng.store.RecordAlert(ctx, a); err != nil {
			eng.log.Error("recording alert", "sku", a.SKU, "error", err)
		}
		eng.dispatcher.Dispatch(ctx, a)
	}

	summary.Duration = time.Since(start).Round(time.Millisecond).String()
	eng.log.Info("sync finished",
		"pages", summary.Pages,
		"records", summary.Records,
		"changes", summary.ChangesLogged,
		"alerts", summary.AlertsRaised)

	return summary, nil
}

// logChanges writes one history entry per SKU whose quantity moved
// since the previous cycle. New SKUs log from zero.
func (eng *Engine) logChanges(ctx context.Context, records []domain.StockRecord) int {
	logged := 0
	for i := range records {
		rec := &records[i]
		old := eng.lastQuantity[rec.SKU]
		if rec.Quantity == old {
			continue
		}
		_, err := eng.history.LogChange(ctx, history.Change{
			Type:        domain.ChangeSync,
			SKU:         rec.SKU,
			OldQuantity: old,
			NewQuantity: rec.Quantity,
			User:        "system",
			Source:      "provider sync",
		})
		if err != nil {
			eng.log.Error("logging change", "sku", rec.SKU, "error", err)
			continue
		}
		logged++
	}
	return logged
}

// RunSnapshot captures the current inventory view; when no sync has run
// yet it fetches one first.
func (eng *Engine) RunSnapshot(ctx context.Context, snapType domain.SnapshotType) (*domain.Snapshot, error) {
	eng.mu.Lock()
	records := eng.current
	eng.mu.Unlock()

	if len(records) == 0 {
		if _, err := eng.RunSync(ctx); err != nil {
			return nil, fmt.Errorf("syncing before snapshot: %w", err)
		}
		eng.mu.Lock()
		records = eng.current
		eng.mu.Unlock()
	}

	return eng.history.CreateSnapshot(ctx, snapType, records)
}

// RunRetention prunes history entries and snapshots past the retention
// window and returns the number of entries removed.
func (eng *Engine) RunRetention(ctx context.Context) (int, error) {
	return eng.history.ClearOldHistory(ctx, eng.retentionDays)
}

// Relationships returns the master/kit graph from the latest sync.
func (eng *Engine) Relationships() []domain.ProductRelationship {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.relationships
}

// CurrentRecords returns the inventory view from the latest sync.
func (eng *Engine) CurrentRecords() []domain.StockRecord {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.current
}

// dedupRecords applies the configured duplicate-SKU policy.
func dedupRecords(records []domain.StockRecord, policy string) ([]domain.StockRecord, error) {
	if policy == DedupKeepAll {
		return records, nil
	}

	seen := make(map[string]int, len(records))
	out := make([]domain.StockRecord, 0, len(records))
	for i := range records {
		rec := records[i]
		if idx, dup := seen[rec.SKU]; dup {
			if policy == DedupReject {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, rec.SKU)
			}
			out[idx] = rec // last wins, position preserved
			continue
		}
		seen[rec.SKU] = len(out)
		out = append(out, rec)
	}
	return out, nil
}

// quantityIndex maps SKU to quantity for the next cycle's diff. Under
// keep_all the last occurrence wins for diffing purposes.
func quantityIndex(records []domain.StockRecord) map[string]int {
	idx := make(map[string]int, len(records))
	for i := range records {
		idx[records[i].SKU] = records[i].Quantity
	}
	return idx
}
