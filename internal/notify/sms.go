package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mhollis/stocksync/internal/config"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// SMSProvider delivers alerts through a Twilio-style messaging API.
// Only critical alerts actually send; lower severities return a
// deliberate ErrSkipped so dispatch reports them as skipped rather
// than failed.
type SMSProvider struct {
	cfg     config.SMSConfig
	client  *http.Client
	baseURL string
}

const defaultSMSBaseURL = "https://api.twilio.com/2010-04-01"

// NewSMSProvider creates an SMS gateway provider.
func NewSMSProvider(cfg config.SMSConfig, opts ...SMSOption) *SMSProvider {
	p := &SMSProvider{
		cfg:     cfg,
		client:  http.DefaultClient,
		baseURL: defaultSMSBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SMSOption configures an SMSProvider.
type SMSOption func(*SMSProvider)

// WithSMSHTTPClient sets a custom HTTP client.
func WithSMSHTTPClient(c *http.Client) SMSOption {
	return func(p *SMSProvider) {
		p.client = c
	}
}

// WithSMSBaseURL overrides the gateway base URL, for tests.
func WithSMSBaseURL(baseURL string) SMSOption {
	return func(p *SMSProvider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// Name implements Provider.
func (p *SMSProvider) Name() string { return "sms" }

// IsConfigured reports whether credentials and recipients are set.
func (p *SMSProvider) IsConfigured() bool {
	return p.cfg.AccountSID != "" && p.cfg.AuthToken != "" &&
		p.cfg.From != "" && len(p.cfg.PhoneNumbers) > 0
}

// Send texts every configured number. Non-critical severities skip.
func (p *SMSProvider) Send(ctx context.Context, alert domain.Alert) error {
	if alert.Severity != domain.SeverityCritical {
		return fmt.Errorf("%w: severity %s is below critical", ErrSkipped, alert.Severity)
	}

	body := fmt.Sprintf("CRITICAL stock alert: %s (%s) at %d units, threshold %d",
		alert.ProductName, alert.SKU, alert.CurrentStock, alert.Threshold)

	for _, number := range p.cfg.PhoneNumbers {
		if err := p.sendOne(ctx, number, body); err != nil {
			return fmt.Errorf("texting %s: %w", number, err)
		}
	}
	return nil
}

func (p *SMSProvider) sendOne(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", p.baseURL, p.cfg.AccountSID)

	form := url.Values{}
	form.Set("From", p.cfg.From)
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating sms request: %w", err)
	}
	req.SetBasicAuth(p.cfg.AccountSID, p.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("sms gateway returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
