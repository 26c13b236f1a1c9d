package client

import (
	"context"
	"strconv"

	domain "github.com/mhollis/stocksync/pkg/types"
)

type alertsResponse struct {
	Alerts []domain.Alert `json:"alerts"`
	Count  int            `json:"count"`
}

// ListAlerts returns recently fired alerts, newest first.
func (c *Client) ListAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	path := "/api/v1/alerts"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var resp alertsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// TestProvider sends a test notification through one provider.
func (c *Client) TestProvider(ctx context.Context, provider string) error {
	return c.post(ctx, "/api/v1/alerts/test/"+provider, nil, nil)
}
