package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mhollis/stocksync/internal/notify"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// AlertLister defines the store method for listing recent alerts.
type AlertLister interface {
	ListRecentAlerts(ctx context.Context, limit int) ([]domain.Alert, error)
}

// ProviderTester sends a test notification through one provider.
type ProviderTester interface {
	Test(ctx context.Context, providerName string) error
}

// AlertsHandler handles alert query and notification test endpoints.
type AlertsHandler struct {
	store  AlertLister
	tester ProviderTester
}

// NewAlertsHandler creates a new AlertsHandler.
func NewAlertsHandler(store AlertLister, tester ProviderTester) *AlertsHandler {
	return &AlertsHandler{store: store, tester: tester}
}

// ListAlertsInput is the input for listing recent alerts.
type ListAlertsInput struct {
	Limit int `query:"limit" doc:"Number of results (default 50)" minimum:"1" maximum:"200"`
}

// ListAlertsOutput is the response for listing recent alerts.
type ListAlertsOutput struct {
	Body struct {
		Alerts []domain.Alert `json:"alerts"`
		Count  int            `json:"count"`
	}
}

// TestProviderInput names the notification provider to test.
type TestProviderInput struct {
	Provider string `path:"provider" doc:"Notification provider name (email, slack, sms, webhook)"`
}

// TestProviderOutput is the response for a provider test.
type TestProviderOutput struct {
	Body struct {
		Status string `json:"status" example:"test notification sent" doc:"Test outcome"`
	}
}

const defaultAlertListLimit = 50

// ListAlerts returns recently fired alerts, newest first.
func (h *AlertsHandler) ListAlerts(
	ctx context.Context,
	input *ListAlertsInput,
) (*ListAlertsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = defaultAlertListLimit
	}

	alerts, err := h.store.ListRecentAlerts(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing alerts failed: " + err.Error())
	}

	if alerts == nil {
		alerts = []domain.Alert{}
	}

	resp := &ListAlertsOutput{}
	resp.Body.Alerts = alerts
	resp.Body.Count = len(alerts)

	return resp, nil
}

// TestProvider sends a canned test alert through one provider,
// bypassing the enabled flag.
func (h *AlertsHandler) TestProvider(
	ctx context.Context,
	input *TestProviderInput,
) (*TestProviderOutput, error) {
	if err := h.tester.Test(ctx, input.Provider); err != nil {
		if errors.Is(err, notify.ErrUnknownProvider) {
			return nil, huma.Error404NotFound("unknown provider: " + input.Provider)
		}
		return nil, huma.Error502BadGateway("test notification failed: " + err.Error())
	}

	resp := &TestProviderOutput{}
	resp.Body.Status = "test notification sent"
	return resp, nil
}

// RegisterAlertRoutes registers alert endpoints with the Huma API.
func RegisterAlertRoutes(api huma.API, h *AlertsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-alerts",
		Method:      http.MethodGet,
		Path:        "/api/v1/alerts",
		Summary:     "List recent alerts",
		Description: "Returns recently fired stock alerts, newest first.",
		Tags:        []string{"alerts"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListAlerts)

	huma.Register(api, huma.Operation{
		OperationID: "test-notification-provider",
		Method:      http.MethodPost,
		Path:        "/api/v1/alerts/test/{provider}",
		Summary:     "Send a test notification",
		Description: "Sends a canned test alert through one notification provider, bypassing its enabled flag.",
		Tags:        []string{"alerts"},
		Errors:      []int{http.StatusNotFound, http.StatusBadGateway},
	}, h.TestProvider)
}
