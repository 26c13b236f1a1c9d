package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mhollis/stocksync/internal/history"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// HistoryProvider defines the history service methods required by the
// history handler.
type HistoryProvider interface {
	Query(ctx context.Context, filter history.Filter) ([]domain.HistoryEntry, error)
}

// HistoryHandler handles change history query endpoints.
type HistoryHandler struct {
	svc HistoryProvider
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(svc HistoryProvider) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// ListHistoryInput is the input for querying the change log.
type ListHistoryInput struct {
	SKU   string `query:"sku"   doc:"Filter by SKU (case-insensitive substring)"`
	Type  string `query:"type"  doc:"Filter by change type"                      enum:"update,upload,manual,sync,"`
	User  string `query:"user"  doc:"Filter by user (case-insensitive substring)"`
	From  string `query:"from"  doc:"Inclusive start date (YYYY-MM-DD or RFC 3339)"`
	To    string `query:"to"    doc:"Inclusive end date (YYYY-MM-DD or RFC 3339)"`
	Limit int    `query:"limit" doc:"Number of results (default 50)"             minimum:"1" maximum:"500"`
}

// ListHistoryOutput is the response for querying the change log.
type ListHistoryOutput struct {
	Body struct {
		Entries []domain.HistoryEntry `json:"entries"`
		Count   int                   `json:"count"`
	}
}

// parseQueryTime accepts a bare date or a full RFC 3339 timestamp.
func parseQueryTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ListHistory returns change log entries, newest first, with optional
// SKU, type, user, and date-range filters.
func (h *HistoryHandler) ListHistory(
	ctx context.Context,
	input *ListHistoryInput,
) (*ListHistoryOutput, error) {
	filter := history.Filter{
		SKU:   input.SKU,
		Type:  domain.ChangeType(input.Type),
		User:  input.User,
		Limit: input.Limit,
	}

	if input.From != "" {
		from, err := parseQueryTime(input.From)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid from date: " + input.From)
		}
		filter.From = from
	}

	if input.To != "" {
		to, err := parseQueryTime(input.To)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid to date: " + input.To)
		}
		// A bare end date means "through the end of that day".
		if len(input.To) == len("2006-01-02") {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = to
	}

	entries, err := h.svc.Query(ctx, filter)
	if err != nil {
		return nil, huma.Error500InternalServerError("history query failed: " + err.Error())
	}

	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	resp := &ListHistoryOutput{}
	resp.Body.Entries = entries
	resp.Body.Count = len(entries)

	return resp, nil
}

// RegisterHistoryRoutes registers change history endpoints with the Huma API.
func RegisterHistoryRoutes(api huma.API, h *HistoryHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "Query change history",
		Description: "Returns change log entries, newest first, with optional SKU, type, user, and date-range filters.",
		Tags:        []string{"history"},
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.ListHistory)
}
