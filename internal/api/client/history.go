package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/mhollis/stocksync/pkg/types"
)

// HistoryQuery holds the optional filters for a history request.
type HistoryQuery struct {
	SKU   string
	Type  string
	User  string
	From  string
	To    string
	Limit int
}

type historyResponse struct {
	Entries []domain.HistoryEntry `json:"entries"`
	Count   int                   `json:"count"`
}

// QueryHistory returns change log entries matching the given filters.
func (c *Client) QueryHistory(ctx context.Context, q HistoryQuery) ([]domain.HistoryEntry, error) {
	params := url.Values{}
	if q.SKU != "" {
		params.Set("sku", q.SKU)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.User != "" {
		params.Set("user", q.User)
	}
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/api/v1/history"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp historyResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}
