package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/stocksync/internal/api/handlers"
	"github.com/mhollis/stocksync/internal/history"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// fakeHistoryProvider is a test double for HistoryProvider.
type fakeHistoryProvider struct {
	entries    []domain.HistoryEntry
	err        error
	lastFilter history.Filter
}

func (f *fakeHistoryProvider) Query(_ context.Context, filter history.Filter) ([]domain.HistoryEntry, error) {
	f.lastFilter = filter
	return f.entries, f.err
}

func sampleEntry(sku string, diff int) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:          "entry-1",
		Timestamp:   time.Now().UTC().Truncate(time.Second),
		Type:        domain.ChangeSync,
		SKU:         sku,
		NewQuantity: diff,
		Difference:  diff,
		User:        "system",
	}
}

func TestListHistory_Success(t *testing.T) {
	t.Parallel()

	provider := &fakeHistoryProvider{entries: []domain.HistoryEntry{
		sampleEntry("WID-001", 5),
		sampleEntry("GAD-100", -2),
	}}
	h := handlers.NewHistoryHandler(provider)

	_, api := humatest.New(t)
	handlers.RegisterHistoryRoutes(api, h)

	resp := api.Get("/api/v1/history")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "WID-001")
	assert.Contains(t, resp.Body.String(), `"count":2`)
}

func TestListHistory_Filters(t *testing.T) {
	t.Parallel()

	provider := &fakeHistoryProvider{}
	h := handlers.NewHistoryHandler(provider)

	_, api := humatest.New(t)
	handlers.RegisterHistoryRoutes(api, h)

	resp := api.Get("/api/v1/history?sku=WID&type=sync&user=system&from=2026-01-01&to=2026-01-31&limit=10")
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, "WID", provider.lastFilter.SKU)
	assert.Equal(t, domain.ChangeSync, provider.lastFilter.Type)
	assert.Equal(t, "system", provider.lastFilter.User)
	assert.Equal(t, 10, provider.lastFilter.Limit)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), provider.lastFilter.From)
	// A bare end date extends through the end of that day.
	assert.True(t, provider.lastFilter.To.After(time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)))
}

func TestListHistory_Empty(t *testing.T) {
	t.Parallel()

	h := handlers.NewHistoryHandler(&fakeHistoryProvider{})

	_, api := humatest.New(t)
	handlers.RegisterHistoryRoutes(api, h)

	resp := api.Get("/api/v1/history")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"entries":[]`)
}

func TestListHistory_BadDate(t *testing.T) {
	t.Parallel()

	h := handlers.NewHistoryHandler(&fakeHistoryProvider{})

	_, api := humatest.New(t)
	handlers.RegisterHistoryRoutes(api, h)

	resp := api.Get("/api/v1/history?from=not-a-date")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "invalid from date")
}

func TestListHistory_StoreError(t *testing.T) {
	t.Parallel()

	h := handlers.NewHistoryHandler(&fakeHistoryProvider{err: errors.New("db down")})

	_, api := humatest.New(t)
	handlers.RegisterHistoryRoutes(api, h)

	resp := api.Get("/api/v1/history")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "history query failed")
}
