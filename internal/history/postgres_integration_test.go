//go:build integration

package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mhollis/stocksync/internal/history"
	domain "github.com/mhollis/stocksync/pkg/types"
)

func setupPostgres(t *testing.T, caps history.Caps) *history.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("stocksync_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := history.NewPostgresStore(ctx, connStr, caps)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testEntry(sku string, entryType domain.ChangeType, ts time.Time) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:          uuid.New().String(),
		Timestamp:   ts,
		Type:        entryType,
		SKU:         sku,
		OldQuantity: 10,
		NewQuantity: 4,
		Difference:  -6,
		User:        "alice",
		Source:      "test",
	}
}

func TestPostgresStore_HistoryRoundTrip(t *testing.T) {
	s := setupPostgres(t, history.DefaultCaps())
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	entry := testEntry("WID-001", domain.ChangeSync, now)
	require.NoError(t, s.AppendHistory(ctx, entry))

	got, err := s.QueryHistory(ctx, history.Filter{SKU: "wid"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
	assert.Equal(t, entry.Difference, got[0].Difference)
	assert.Equal(t, entry.User, got[0].User)
	assert.True(t, got[0].Timestamp.Equal(now))
}

func TestPostgresStore_HistoryCapAndPrune(t *testing.T) {
	s := setupPostgres(t, history.Caps{MaxHistory: 3})
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)

	for i := 0; i < 5; i++ {
		entry := testEntry("SKU", domain.ChangeSync, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.AppendHistory(ctx, entry))
	}

	got, err := s.QueryHistory(ctx, history.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	removed, err := s.PruneHistory(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}

func TestPostgresStore_SnapshotRoundTrip(t *testing.T) {
	s := setupPostgres(t, history.DefaultCaps())
	ctx := context.Background()

	snap := domain.Snapshot{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC().Truncate(time.Microsecond),
		Type:          domain.SnapshotDaily,
		TotalProducts: 1,
		TotalValue:    25,
		Products: []domain.SnapshotProduct{
			{SKU: "WID-001", ProductName: "Widget", Quantity: 10, CostPrice: 2.5, SellingPrice: 9.99},
		},
	}
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	got, err := s.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "WID-001", got.Products[0].SKU)

	list, err := s.ListSnapshots(ctx, history.SnapshotFilter{Type: domain.SnapshotDaily})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.GetSnapshot(ctx, uuid.New().String())
	assert.ErrorIs(t, err, history.ErrSnapshotNotFound)
}

func TestPostgresStore_UploadsAndAlerts(t *testing.T) {
	s := setupPostgres(t, history.Caps{MaxUploads: 2, MaxAlerts: 2})
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordUpload(ctx, domain.UploadResult{
			UploadID:     uuid.New().String(),
			TotalItems:   3,
			SuccessCount: 2,
			ErrorCount:   1,
			Errors:       []string{"Row 2: missing product name"},
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		}))
		require.NoError(t, s.RecordAlert(ctx, domain.Alert{
			ID:        uuid.New().String(),
			Type:      "low_stock",
			Severity:  domain.SeverityCritical,
			SKU:       "WID-001",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	uploads, err := s.ListUploads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, []string{"Row 2: missing product name"}, uploads[0].Errors)

	alerts, err := s.ListRecentAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
}
