package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mhollis/stocksync/internal/config"
	domain "github.com/mhollis/stocksync/pkg/types"
)

const (
	colorCritical = "#E01E5A"
	colorWarning  = "#ECB22E"
	colorInfo     = "#36C5F0"
)

// SlackProvider delivers alerts to a Slack incoming webhook.
type SlackProvider struct {
	cfg    config.SlackConfig
	client *http.Client
}

// NewSlackProvider creates a Slack webhook provider.
func NewSlackProvider(cfg config.SlackConfig, opts ...SlackOption) *SlackProvider {
	p := &SlackProvider{
		cfg:    cfg,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SlackOption configures a SlackProvider.
type SlackOption func(*SlackProvider)

// WithSlackHTTPClient sets a custom HTTP client.
func WithSlackHTTPClient(c *http.Client) SlackOption {
	return func(p *SlackProvider) {
		p.client = c
	}
}

// Name implements Provider.
func (p *SlackProvider) Name() string { return "slack" }

// IsConfigured reports whether a webhook URL is set.
func (p *SlackProvider) IsConfigured() bool {
	return p.cfg.WebhookURL != ""
}

// slackPayload is the webhook JSON structure using block sections.
type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send posts the alert as a colored attachment with field blocks.
func (p *SlackProvider) Send(ctx context.Context, alert domain.Alert) error {
	payload := slackPayload{
		Channel: p.cfg.Channel,
		Text:    alert.Message,
		Attachments: []slackAttachment{
			{
				Color: severityColor(alert.Severity),
				Blocks: []slackBlock{
					{
						Type: "section",
						Text: &slackText{
							Type: "mrkdwn",
							Text: fmt.Sprintf("*%s*\n%s", alert.ProductName, alert.Message),
						},
					},
					{
						Type: "section",
						Fields: []slackText{
							{Type: "mrkdwn", Text: fmt.Sprintf("*SKU:*\n%s", alert.SKU)},
							{Type: "mrkdwn", Text: fmt.Sprintf("*Severity:*\n%s", alert.Severity)},
							{Type: "mrkdwn", Text: fmt.Sprintf("*Current stock:*\n%d", alert.CurrentStock)},
							{Type: "mrkdwn", Text: fmt.Sprintf("*Threshold:*\n%d", alert.Threshold)},
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("slack returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("slack returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}

func severityColor(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical:
		return colorCritical
	case domain.SeverityWarning:
		return colorWarning
	default:
		return colorInfo
	}
}
