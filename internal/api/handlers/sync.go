package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mhollis/stocksync/internal/engine"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// Syncer defines the engine methods required by the sync handler.
type Syncer interface {
	RunSync(ctx context.Context) (*engine.SyncSummary, error)
	Relationships() []domain.ProductRelationship
}

// SyncHandler handles manual sync trigger and relationship query
// requests.
type SyncHandler struct {
	syncer Syncer
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(s Syncer) *SyncHandler {
	return &SyncHandler{syncer: s}
}

// SyncOutput is the response body for the sync endpoint.
type SyncOutput struct {
	Body engine.SyncSummary
}

// ListRelationshipsOutput is the response body for the relationships
// endpoint.
type ListRelationshipsOutput struct {
	Body struct {
		Relationships []domain.ProductRelationship `json:"relationships"`
		Count         int                          `json:"count"`
	}
}

// Sync triggers one full sync cycle and returns its summary.
func (h *SyncHandler) Sync(ctx context.Context, _ *struct{}) (*SyncOutput, error) {
	summary, err := h.syncer.RunSync(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("sync failed: " + err.Error())
	}

	return &SyncOutput{Body: *summary}, nil
}

// ListRelationships returns the master/kit graph from the latest sync.
func (h *SyncHandler) ListRelationships(
	_ context.Context,
	_ *struct{},
) (*ListRelationshipsOutput, error) {
	rels := h.syncer.Relationships()
	if rels == nil {
		rels = []domain.ProductRelationship{}
	}

	resp := &ListRelationshipsOutput{}
	resp.Body.Relationships = rels
	resp.Body.Count = len(rels)

	return resp, nil
}

// RegisterSyncRoutes registers sync endpoints with the Huma API.
func RegisterSyncRoutes(api huma.API, h *SyncHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-sync",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync",
		Summary:     "Trigger manual sync",
		Description: "Runs one full sync cycle: fetch all stock pages, log quantity changes, " +
			"refresh master/kit relationships, and evaluate alerts.",
		Tags:   []string{"sync"},
		Errors: []int{http.StatusInternalServerError},
	}, h.Sync)

	huma.Register(api, huma.Operation{
		OperationID: "list-relationships",
		Method:      http.MethodGet,
		Path:        "/api/v1/relationships",
		Summary:     "List product relationships",
		Description: "Returns the master/kit relationship graph derived from the latest sync.",
		Tags:        []string{"sync"},
	}, h.ListRelationships)
}
