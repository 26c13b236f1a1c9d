package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/stocksync/internal/alert"
	"github.com/mhollis/stocksync/internal/history"
	"github.com/mhollis/stocksync/internal/notify"
	"github.com/mhollis/stocksync/internal/provider"
	"github.com/mhollis/stocksync/internal/relation"
	domain "github.com/mhollis/stocksync/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pagedClient serves canned pages and records writes.
type pagedClient struct {
	pages []*provider.PageResponse
	calls int
}

func (c *pagedClient) FetchPage(_ context.Context, req provider.PageRequest) (*provider.PageResponse, error) {
	c.calls++
	if req.Page > len(c.pages) {
		return &provider.PageResponse{HasMore: false}, nil
	}
	return c.pages[req.Page-1], nil
}

func (c *pagedClient) WriteItem(context.Context, provider.WriteItem) error {
	return errors.New("not implemented")
}

type recordingProvider struct {
	name string
	sent []domain.Alert
}

func (p *recordingProvider) Name() string       { return p.name }
func (p *recordingProvider) IsConfigured() bool { return true }
func (p *recordingProvider) Send(_ context.Context, a domain.Alert) error {
	p.sent = append(p.sent, a)
	return nil
}

func item(sku, name string, qty int) provider.StockItem {
	return provider.StockItem{SKU: sku, Name: name, Quantity: qty}
}

func pageOf(hasMore bool, items ...provider.StockItem) *provider.PageResponse {
	return &provider.PageResponse{HasMore: hasMore, Items: items}
}

type testEnv struct {
	engine   *Engine
	store    *history.MemoryStore
	notifier *recordingProvider
}

func newTestEngine(t *testing.T, client provider.Client, opts ...EngineOption) *testEnv {
	t.Helper()

	store := history.NewMemoryStore(history.DefaultCaps())
	svc := history.NewService(store, history.WithServiceLogger(quietLogger()))

	notifier := &recordingProvider{name: "slack"}
	registry := notify.NewRegistry()
	registry.Register(notifier, true)

	fetcher := provider.NewFetcher(client, provider.WithFetcherLogger(quietLogger()))

	opts = append([]EngineOption{WithLogger(quietLogger())}, opts...)
	eng := NewEngine(
		fetcher,
		relation.NewResolver(),
		svc,
		store,
		alert.NewEvaluator(alert.Thresholds{Critical: 5, Warning: 20}),
		alert.NewDispatcher(registry, alert.WithDispatcherLogger(quietLogger())),
		opts...,
	)
	return &testEnv{engine: eng, store: store, notifier: notifier}
}

func TestEngine_RunSync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &pagedClient{pages: []*provider.PageResponse{
		pageOf(true, item("WID-001", "Widget", 50), item("WID-001-2", "Widget x2", 40)),
		pageOf(false, item("GAD-100", "Gadget", 3)),
	}}
	env := newTestEngine(t, client)

	summary, err := env.engine.RunSync(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, 3, summary.ChangesLogged) // all new SKUs log from zero
	assert.Equal(t, 1, summary.AlertsRaised)  // GAD-100 at 3 <= critical 5

	// The critical alert went to the registered provider and the store.
	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, "GAD-100", env.notifier.sent[0].SKU)

	stored, err := env.store.ListRecentAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	entries, err := env.store.QueryHistory(ctx, history.Filter{})
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Master/kit graph refreshed from the fetched names.
	rels := env.engine.Relationships()
	require.Len(t, rels, 1)
	assert.Equal(t, "WID-001", rels[0].MasterSKU)
}

func TestEngine_RunSync_DiffsAgainstPreviousCycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &pagedClient{pages: []*provider.PageResponse{
		pageOf(false, item("WID-001", "Widget", 50), item("GAD-100", "Gadget", 30)),
	}}
	env := newTestEngine(t, client)

	_, err := env.engine.RunSync(ctx)
	require.NoError(t, err)

	// Second cycle: WID-001 dropped, GAD-100 unchanged.
	client.pages = []*provider.PageResponse{
		pageOf(false, item("WID-001", "Widget", 44), item("GAD-100", "Gadget", 30)),
	}

	summary, err := env.engine.RunSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ChangesLogged)

	entries, err := env.store.QueryHistory(ctx, history.Filter{SKU: "WID-001"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, -6, entries[0].Difference)
	assert.Equal(t, domain.ChangeSync, entries[0].Type)
	assert.Equal(t, "system", entries[0].User)
}

func TestEngine_RunSync_ProviderFaultAborts(t *testing.T) {
	t.Parallel()

	client := &pagedClient{pages: []*provider.PageResponse{
		pageOf(true, item("WID-001", "Widget", 50)),
		{IsError: true, ErrorMessage: "backend unavailable"},
	}}
	env := newTestEngine(t, client)

	_, err := env.engine.RunSync(context.Background())
	require.ErrorIs(t, err, provider.ErrProviderFault)

	// Nothing committed from the aborted cycle.
	assert.Empty(t, env.engine.CurrentRecords())
	entries, err := env.store.QueryHistory(context.Background(), history.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEngine_RunSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &pagedClient{pages: []*provider.PageResponse{
		pageOf(false, item("WID-001", "Widget", 50)),
	}}
	env := newTestEngine(t, client)

	// No sync has run; snapshot triggers one.
	snap, err := env.engine.RunSnapshot(ctx, domain.SnapshotManual)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalProducts)
	assert.Equal(t, domain.SnapshotManual, snap.Type)

	stored, err := env.store.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "WID-001", stored.Products[0].SKU)
}

func TestEngine_RunRetention(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &pagedClient{pages: []*provider.PageResponse{
		pageOf(false, item("WID-001", "Widget", 50)),
	}}
	env := newTestEngine(t, client, WithRetentionDays(30))

	_, err := env.engine.RunSync(ctx)
	require.NoError(t, err)

	// Entries are fresh, so nothing is pruned.
	removed, err := env.engine.RunRetention(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestDedupRecords(t *testing.T) {
	t.Parallel()

	dup := []domain.StockRecord{
		{SKU: "A", Quantity: 1},
		{SKU: "B", Quantity: 2},
		{SKU: "A", Quantity: 9},
	}

	tests := []struct {
		name    string
		policy  string
		want    []domain.StockRecord
		wantErr error
	}{
		{
			name:   "last wins keeps position",
			policy: DedupLastWins,
			want: []domain.StockRecord{
				{SKU: "A", Quantity: 9},
				{SKU: "B", Quantity: 2},
			},
		},
		{
			name:   "keep all passes through",
			policy: DedupKeepAll,
			want:   dup,
		},
		{
			name:    "reject errors on first duplicate",
			policy:  DedupReject,
			wantErr: ErrDuplicateSKU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := dedupRecords(dup, tt.policy)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDedupRecords_RejectNamesDuplicate(t *testing.T) {
	t.Parallel()

	_, err := dedupRecords([]domain.StockRecord{
		{SKU: "GAD-100"}, {SKU: "GAD-100"},
	}, DedupReject)
	assert.EqualError(t, err, "duplicate sku in fetch result: GAD-100")
}
