package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mhollis/stocksync/internal/upload"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// Uploader defines the pipeline method required by the uploads handler.
type Uploader interface {
	Process(ctx context.Context, r io.Reader) (*domain.UploadResult, error)
}

// UploadLister defines the store method for listing past upload
// results.
type UploadLister interface {
	ListUploads(ctx context.Context, limit int) ([]domain.UploadResult, error)
}

// UploadsHandler handles bulk upload endpoints.
type UploadsHandler struct {
	pipeline Uploader
	store    UploadLister
}

// NewUploadsHandler creates a new UploadsHandler.
func NewUploadsHandler(pipeline Uploader, store UploadLister) *UploadsHandler {
	return &UploadsHandler{pipeline: pipeline, store: store}
}

// UploadInput carries the raw CSV payload.
type UploadInput struct {
	RawBody []byte `contentType:"text/csv"`
}

// UploadOutput is the response for a processed upload.
type UploadOutput struct {
	Body domain.UploadResult
}

// ListUploadsInput is the input for listing past upload results.
type ListUploadsInput struct {
	Limit int `query:"limit" doc:"Number of results (default 20)" minimum:"1" maximum:"100"`
}

// ListUploadsOutput is the response for listing past upload results.
type ListUploadsOutput struct {
	Body struct {
		Uploads []domain.UploadResult `json:"uploads"`
		Count   int                   `json:"count"`
	}
}

// TemplateOutput carries the CSV upload template.
type TemplateOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

const defaultUploadListLimit = 20

// Upload parses, validates, and writes a bulk CSV upload, returning a
// per-row report. Row-level failures do not fail the request.
func (h *UploadsHandler) Upload(ctx context.Context, input *UploadInput) (*UploadOutput, error) {
	result, err := h.pipeline.Process(ctx, bytes.NewReader(input.RawBody))
	if err != nil {
		if errors.Is(err, upload.ErrMalformedFile) {
			return nil, huma.Error400BadRequest("malformed upload: " + err.Error())
		}
		return nil, huma.Error500InternalServerError("upload failed: " + err.Error())
	}

	return &UploadOutput{Body: *result}, nil
}

// ListUploads returns recent upload results, newest first.
func (h *UploadsHandler) ListUploads(
	ctx context.Context,
	input *ListUploadsInput,
) (*ListUploadsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = defaultUploadListLimit
	}

	uploads, err := h.store.ListUploads(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing uploads failed: " + err.Error())
	}

	if uploads == nil {
		uploads = []domain.UploadResult{}
	}

	resp := &ListUploadsOutput{}
	resp.Body.Uploads = uploads
	resp.Body.Count = len(uploads)

	return resp, nil
}

// Template returns the CSV upload template.
func (*UploadsHandler) Template(_ context.Context, _ *struct{}) (*TemplateOutput, error) {
	return &TemplateOutput{
		ContentType: "text/csv",
		Body:        []byte(upload.Template()),
	}, nil
}

// RegisterUploadRoutes registers bulk upload endpoints with the Huma API.
func RegisterUploadRoutes(api huma.API, h *UploadsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "upload-inventory",
		Method:      http.MethodPost,
		Path:        "/api/v1/uploads",
		Summary:     "Bulk upload inventory",
		Description: "Parses and validates a CSV upload, writes valid rows to the provider in batches, " +
			"and returns a per-row success/failure report.",
		Tags:   []string{"uploads"},
		Errors: []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.Upload)

	huma.Register(api, huma.Operation{
		OperationID: "list-uploads",
		Method:      http.MethodGet,
		Path:        "/api/v1/uploads",
		Summary:     "List upload history",
		Description: "Returns recent bulk upload results, newest first.",
		Tags:        []string{"uploads"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListUploads)

	huma.Register(api, huma.Operation{
		OperationID: "get-upload-template",
		Method:      http.MethodGet,
		Path:        "/api/v1/uploads/template",
		Summary:     "Get the CSV upload template",
		Description: "Returns a CSV template with the recognized columns and one example row.",
		Tags:        []string{"uploads"},
	}, h.Template)
}
