package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/stocksync/internal/api/handlers"
	"github.com/mhollis/stocksync/internal/upload"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// fakeUploadBackend is a test double for the uploads handler's pipeline
// and store dependencies.
type fakeUploadBackend struct {
	result  *domain.UploadResult
	uploads []domain.UploadResult
	err     error

	received string
}

func (f *fakeUploadBackend) Process(_ context.Context, r io.Reader) (*domain.UploadResult, error) {
	data, _ := io.ReadAll(r)
	f.received = string(data)
	return f.result, f.err
}

func (f *fakeUploadBackend) ListUploads(_ context.Context, _ int) ([]domain.UploadResult, error) {
	return f.uploads, f.err
}

func newUploadsAPI(t *testing.T, backend *fakeUploadBackend) humatest.TestAPI {
	t.Helper()
	h := handlers.NewUploadsHandler(backend, backend)
	_, api := humatest.New(t)
	handlers.RegisterUploadRoutes(api, h)
	return api
}

func TestUpload_Success(t *testing.T) {
	t.Parallel()

	backend := &fakeUploadBackend{result: &domain.UploadResult{
		UploadID:     "up-1",
		TotalItems:   3,
		SuccessCount: 2,
		ErrorCount:   1,
		Errors:       []string{"Row 3: missing SKU"},
	}}
	api := newUploadsAPI(t, backend)

	csv := "sku,name,quantity\nWID-001,Widget,5\n"
	resp := api.Post("/api/v1/uploads",
		"Content-Type: text/csv",
		strings.NewReader(csv),
	)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, csv, backend.received)
	assert.Contains(t, resp.Body.String(), `"success_count":2`)
	assert.Contains(t, resp.Body.String(), "Row 3: missing SKU")
}

func TestUpload_MalformedFile(t *testing.T) {
	t.Parallel()

	api := newUploadsAPI(t, &fakeUploadBackend{
		err: upload.ErrMalformedFile,
	})

	resp := api.Post("/api/v1/uploads",
		"Content-Type: text/csv",
		strings.NewReader("garbage"),
	)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "malformed upload")
}

func TestUpload_PipelineError(t *testing.T) {
	t.Parallel()

	api := newUploadsAPI(t, &fakeUploadBackend{
		err: errors.New("sink unavailable"),
	})

	resp := api.Post("/api/v1/uploads",
		"Content-Type: text/csv",
		strings.NewReader("sku,name\n"),
	)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "upload failed")
}

func TestListUploads_Success(t *testing.T) {
	t.Parallel()

	api := newUploadsAPI(t, &fakeUploadBackend{uploads: []domain.UploadResult{
		{UploadID: "up-1", TotalItems: 10},
		{UploadID: "up-2", TotalItems: 4},
	}})

	resp := api.Get("/api/v1/uploads")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "up-1")
	assert.Contains(t, resp.Body.String(), `"count":2`)
}

func TestListUploads_Empty(t *testing.T) {
	t.Parallel()

	api := newUploadsAPI(t, &fakeUploadBackend{})

	resp := api.Get("/api/v1/uploads")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"uploads":[]`)
}

func TestUploadTemplate(t *testing.T) {
	t.Parallel()

	api := newUploadsAPI(t, &fakeUploadBackend{})

	resp := api.Get("/api/v1/uploads/template")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), "sku,")
}
