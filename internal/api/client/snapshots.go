package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/mhollis/stocksync/pkg/types"
)

type snapshotsResponse struct {
	Snapshots []domain.Snapshot `json:"snapshots"`
	Count     int               `json:"count"`
}

// ListSnapshots returns stored snapshots, newest first.
func (c *Client) ListSnapshots(ctx context.Context, snapType string, limit int) ([]domain.Snapshot, error) {
	params := url.Values{}
	if snapType != "" {
		params.Set("type", snapType)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/v1/snapshots"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp snapshotsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Snapshots, nil
}

// GetSnapshot returns a single snapshot by ID.
func (c *Client) GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := c.get(ctx, "/api/v1/snapshots/"+id, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// CompareSnapshots diffs two snapshots.
func (c *Client) CompareSnapshots(ctx context.Context, fromID, toID string) (*domain.SnapshotComparison, error) {
	params := url.Values{}
	params.Set("from", fromID)
	params.Set("to", toID)

	var cmp domain.SnapshotComparison
	if err := c.get(ctx, "/api/v1/snapshots/compare?"+params.Encode(), &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// TakeSnapshot captures a snapshot of the current inventory view.
func (c *Client) TakeSnapshot(ctx context.Context, snapType string) (*domain.Snapshot, error) {
	body := map[string]string{}
	if snapType != "" {
		body["type"] = snapType
	}

	var snap domain.Snapshot
	if err := c.post(ctx, "/api/v1/snapshots", body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
