package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mhollis/stocksync/internal/config"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// EmailProvider delivers alerts over SMTP.
type EmailProvider struct {
	cfg  config.EmailConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailProvider creates an SMTP-backed provider.
func NewEmailProvider(cfg config.EmailConfig, opts ...EmailOption) *EmailProvider {
	p := &EmailProvider{
		cfg:  cfg,
		send: smtp.SendMail,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EmailOption configures an EmailProvider.
type EmailOption func(*EmailProvider)

// WithSendFunc overrides the SMTP send function, for tests.
func WithSendFunc(send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error) EmailOption {
	return func(p *EmailProvider) {
		p.send = send
	}
}

// Name implements Provider.
func (p *EmailProvider) Name() string { return "email" }

// IsConfigured reports whether host, sender, and recipients are set.
func (p *EmailProvider) IsConfigured() bool {
	return p.cfg.Host != "" && p.cfg.From != "" && len(p.cfg.Recipients) > 0
}

// Send delivers the alert as a plain-text email to every recipient.
func (p *EmailProvider) Send(ctx context.Context, alert domain.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if p.cfg.Username != "" {
		auth = smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)
	msg := buildEmailMessage(p.cfg.From, p.cfg.Recipients, alert)

	if err := p.send(addr, auth, p.cfg.From, p.cfg.Recipients, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func buildEmailMessage(from string, to []string, alert domain.Alert) []byte {
	subject := fmt.Sprintf("[%s] Stock alert: %s", strings.ToUpper(string(alert.Severity)), alert.ProductName)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "%s\r\n\r\n", alert.Message)
	fmt.Fprintf(&b, "SKU:           %s\r\n", alert.SKU)
	fmt.Fprintf(&b, "Product:       %s\r\n", alert.ProductName)
	fmt.Fprintf(&b, "Current stock: %d\r\n", alert.CurrentStock)
	fmt.Fprintf(&b, "Threshold:     %d\r\n", alert.Threshold)
	fmt.Fprintf(&b, "Raised at:     %s\r\n", alert.Timestamp.Format("2006-01-02 15:04:05 MST"))
	return []byte(b.String())
}
