package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mhollis/stocksync/internal/config"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// WebhookProvider posts alerts as generic JSON to an arbitrary URL.
type WebhookProvider struct {
	cfg    config.WebhookNotifyConfig
	client *http.Client
}

// NewWebhookProvider creates a generic webhook provider.
func NewWebhookProvider(cfg config.WebhookNotifyConfig, opts ...WebhookOption) *WebhookProvider {
	p := &WebhookProvider{
		cfg:    cfg,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WebhookOption configures a WebhookProvider.
type WebhookOption func(*WebhookProvider)

// WithWebhookHTTPClient sets a custom HTTP client.
func WithWebhookHTTPClient(c *http.Client) WebhookOption {
	return func(p *WebhookProvider) {
		p.client = c
	}
}

// Name implements Provider.
func (p *WebhookProvider) Name() string { return "webhook" }

// IsConfigured reports whether a target URL is set.
func (p *WebhookProvider) IsConfigured() bool {
	return p.cfg.URL != ""
}

// webhookPayload is the generic JSON body consumers receive.
type webhookPayload struct {
	AlertType string         `json:"alert_type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Product   webhookProduct `json:"product"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
}

type webhookProduct struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
	Threshold    int    `json:"threshold"`
}

// Send posts the alert with any configured extra headers.
func (p *WebhookProvider) Send(ctx context.Context, alert domain.Alert) error {
	payload := webhookPayload{
		AlertType: alert.Type,
		Severity:  string(alert.Severity),
		Message:   alert.Message,
		Product: webhookProduct{
			SKU:          alert.SKU,
			Name:         alert.ProductName,
			CurrentStock: alert.CurrentStock,
			Threshold:    alert.Threshold,
		},
		Timestamp: alert.Timestamp,
		Source:    "stocksync",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("webhook returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
