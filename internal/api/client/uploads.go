package client

import (
	"context"
	"io"
	"strconv"

	domain "github.com/mhollis/stocksync/pkg/types"
)

type uploadsResponse struct {
	Uploads []domain.UploadResult `json:"uploads"`
	Count   int                   `json:"count"`
}

// Upload submits a CSV payload for bulk processing and returns the
// per-row report.
func (c *Client) Upload(ctx context.Context, csv io.Reader) (*domain.UploadResult, error) {
	var result domain.UploadResult
	if err := c.postRaw(ctx, "/api/v1/uploads", csv, "text/csv", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListUploads returns recent upload results, newest first.
func (c *Client) ListUploads(ctx context.Context, limit int) ([]domain.UploadResult, error) {
	path := "/api/v1/uploads"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var resp uploadsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Uploads, nil
}

// UploadTemplate returns the CSV upload template.
func (c *Client) UploadTemplate(ctx context.Context) (string, error) {
	return c.getText(ctx, "/api/v1/uploads/template")
}
