package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/mhollis/stocksync/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListAlerts(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListAlerts(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 500)")
}

func TestClient_QueryHistory(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/history", r.URL.Path)
		assert.Equal(t, "WID", r.URL.Query().Get("sku"))
		assert.Equal(t, "sync", r.URL.Query().Get("type"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(historyResponse{
			Entries: []domain.HistoryEntry{{ID: "e1", SKU: "WID-001"}},
			Count:   1,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	entries, err := c.QueryHistory(context.Background(), HistoryQuery{
		SKU:   "WID",
		Type:  "sync",
		Limit: 25,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WID-001", entries[0].SKU)
}

func TestClient_CompareSnapshots(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/snapshots/compare", r.URL.Path)
		assert.Equal(t, "snap-1", r.URL.Query().Get("from"))
		assert.Equal(t, "snap-2", r.URL.Query().Get("to"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.SnapshotComparison{
			FromID:       "snap-1",
			ToID:         "snap-2",
			ProductDelta: 3,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	cmp, err := c.CompareSnapshots(context.Background(), "snap-1", "snap-2")
	require.NoError(t, err)
	assert.Equal(t, 3, cmp.ProductDelta)
}

func TestClient_TakeSnapshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/snapshots", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "manual", body["type"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.Snapshot{ID: "snap-3", Type: domain.SnapshotManual})
	}))
	defer srv.Close()

	c := New(srv.URL)
	snap, err := c.TakeSnapshot(context.Background(), "manual")
	require.NoError(t, err)
	assert.Equal(t, "snap-3", snap.ID)
}

func TestClient_Upload(t *testing.T) {
	t.Parallel()

	csv := "sku,name,quantity\nWID-001,Widget,5\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/uploads", r.URL.Path)
		assert.Equal(t, "text/csv", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, csv, string(body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.UploadResult{
			UploadID:     "up-1",
			TotalItems:   1,
			SuccessCount: 1,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.Upload(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
}

func TestClient_UploadTemplate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/uploads/template", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("sku,name,quantity\n"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	tmpl, err := c.UploadTemplate(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tmpl, "sku,name")
}

func TestClient_TriggerSync(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sync", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pages":2,"records":80}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	summary, err := c.TriggerSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, 80, summary.Records)
}

func TestClient_TestProvider(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/alerts/test/slack", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"test notification sent"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.TestProvider(context.Background(), "slack")
	require.NoError(t, err)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	c := New("http://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, c.httpClient)
}
