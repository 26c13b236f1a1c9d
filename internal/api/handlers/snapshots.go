package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mhollis/stocksync/internal/history"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// SnapshotStore defines the store methods required by the snapshots
// handler.
type SnapshotStore interface {
	GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context, filter history.SnapshotFilter) ([]domain.Snapshot, error)
}

// SnapshotComparer defines the comparison method of the history service.
type SnapshotComparer interface {
	CompareSnapshots(ctx context.Context, fromID, toID string) (*domain.SnapshotComparison, error)
}

// SnapshotTaker captures a snapshot of the current inventory view.
type SnapshotTaker interface {
	RunSnapshot(ctx context.Context, snapType domain.SnapshotType) (*domain.Snapshot, error)
}

// SnapshotsHandler handles snapshot query, capture, and comparison
// endpoints.
type SnapshotsHandler struct {
	store    SnapshotStore
	comparer SnapshotComparer
	taker    SnapshotTaker
}

// NewSnapshotsHandler creates a new SnapshotsHandler.
func NewSnapshotsHandler(store SnapshotStore, comparer SnapshotComparer, taker SnapshotTaker) *SnapshotsHandler {
	return &SnapshotsHandler{store: store, comparer: comparer, taker: taker}
}

// ListSnapshotsInput is the input for listing snapshots.
type ListSnapshotsInput struct {
	Type  string `query:"type"  doc:"Filter by snapshot type"        enum:"daily,weekly,monthly,manual,"`
	Limit int    `query:"limit" doc:"Number of results (default 50)" minimum:"1" maximum:"500"`
}

// ListSnapshotsOutput is the response for listing snapshots.
type ListSnapshotsOutput struct {
	Body struct {
		Snapshots []domain.Snapshot `json:"snapshots"`
		Count     int               `json:"count"`
	}
}

// GetSnapshotInput is the input for fetching a single snapshot.
type GetSnapshotInput struct {
	ID string `path:"id" doc:"Snapshot UUID"`
}

// GetSnapshotOutput is the response for fetching a single snapshot.
type GetSnapshotOutput struct {
	Body domain.Snapshot
}

// CompareSnapshotsInput names the two snapshots to diff.
type CompareSnapshotsInput struct {
	From string `query:"from" doc:"Baseline snapshot UUID" required:"true"`
	To   string `query:"to"   doc:"Target snapshot UUID"   required:"true"`
}

// CompareSnapshotsOutput is the response for a snapshot comparison.
type CompareSnapshotsOutput struct {
	Body domain.SnapshotComparison
}

// TakeSnapshotInput is the input for capturing a manual snapshot.
type TakeSnapshotInput struct {
	Body struct {
		Type string `json:"type,omitempty" doc:"Snapshot type (default manual)" enum:"daily,weekly,monthly,manual,"`
	}
}

// TakeSnapshotOutput is the response for capturing a snapshot.
type TakeSnapshotOutput struct {
	Body domain.Snapshot
}

// ListSnapshots returns stored snapshots, newest first.
func (h *SnapshotsHandler) ListSnapshots(
	ctx context.Context,
	input *ListSnapshotsInput,
) (*ListSnapshotsOutput, error) {
	snaps, err := h.store.ListSnapshots(ctx, history.SnapshotFilter{
		Type:  domain.SnapshotType(input.Type),
		Limit: input.Limit,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("snapshot query failed: " + err.Error())
	}

	if snaps == nil {
		snaps = []domain.Snapshot{}
	}

	resp := &ListSnapshotsOutput{}
	resp.Body.Snapshots = snaps
	resp.Body.Count = len(snaps)

	return resp, nil
}

// GetSnapshot returns a single snapshot by ID.
func (h *SnapshotsHandler) GetSnapshot(
	ctx context.Context,
	input *GetSnapshotInput,
) (*GetSnapshotOutput, error) {
	snap, err := h.store.GetSnapshot(ctx, input.ID)
	if err != nil {
		if errors.Is(err, history.ErrSnapshotNotFound) {
			return nil, huma.Error404NotFound("snapshot not found")
		}
		return nil, huma.Error500InternalServerError("fetching snapshot failed: " + err.Error())
	}

	return &GetSnapshotOutput{Body: *snap}, nil
}

// CompareSnapshots diffs two snapshots and returns per-SKU changes.
func (h *SnapshotsHandler) CompareSnapshots(
	ctx context.Context,
	input *CompareSnapshotsInput,
) (*CompareSnapshotsOutput, error) {
	cmp, err := h.comparer.CompareSnapshots(ctx, input.From, input.To)
	if err != nil {
		if errors.Is(err, history.ErrSnapshotNotFound) {
			return nil, huma.Error404NotFound("snapshot not found")
		}
		return nil, huma.Error500InternalServerError("comparing snapshots failed: " + err.Error())
	}

	return &CompareSnapshotsOutput{Body: *cmp}, nil
}

// TakeSnapshot captures a snapshot of the current inventory view.
func (h *SnapshotsHandler) TakeSnapshot(
	ctx context.Context,
	input *TakeSnapshotInput,
) (*TakeSnapshotOutput, error) {
	snapType := domain.SnapshotType(input.Body.Type)
	if snapType == "" {
		snapType = domain.SnapshotManual
	}

	snap, err := h.taker.RunSnapshot(ctx, snapType)
	if err != nil {
		return nil, huma.Error500InternalServerError("capturing snapshot failed: " + err.Error())
	}

	return &TakeSnapshotOutput{Body: *snap}, nil
}

// RegisterSnapshotRoutes registers snapshot endpoints with the Huma API.
func RegisterSnapshotRoutes(api huma.API, h *SnapshotsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-snapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots",
		Summary:     "List snapshots",
		Description: "Returns stored inventory snapshots, newest first, with optional type filter.",
		Tags:        []string{"snapshots"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListSnapshots)

	huma.Register(api, huma.Operation{
		OperationID: "compare-snapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots/compare",
		Summary:     "Compare two snapshots",
		Description: "Diffs two snapshots and returns added, removed, and modified products.",
		Tags:        []string{"snapshots"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.CompareSnapshots)

	huma.Register(api, huma.Operation{
		OperationID: "get-snapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots/{id}",
		Summary:     "Get a snapshot by ID",
		Description: "Returns a single snapshot including its full product list.",
		Tags:        []string{"snapshots"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.GetSnapshot)

	huma.Register(api, huma.Operation{
		OperationID: "take-snapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshots",
		Summary:     "Capture a snapshot",
		Description: "Captures a snapshot of the current inventory view, syncing first if no data is loaded.",
		Tags:        []string{"snapshots"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.TakeSnapshot)
}
