package client

import (
	"context"

	"github.com/mhollis/stocksync/internal/engine"
	domain "github.com/mhollis/stocksync/pkg/types"
)

type relationshipsResponse struct {
	Relationships []domain.ProductRelationship `json:"relationships"`
	Count         int                          `json:"count"`
}

// TriggerSync runs one full sync cycle and returns its summary.
func (c *Client) TriggerSync(ctx context.Context) (*engine.SyncSummary, error) {
	var summary engine.SyncSummary
	if err := c.post(ctx, "/api/v1/sync", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListRelationships returns the master/kit graph from the latest sync.
func (c *Client) ListRelationships(ctx context.Context) ([]domain.ProductRelationship, error) {
	var resp relationshipsResponse
	if err := c.get(ctx, "/api/v1/relationships", &resp); err != nil {
		return nil, err
	}
	return resp.Relationships, nil
}
