package notify

import (
	"context"
	"log/slog"

	domain "github.com/mhollis/stocksync/pkg/types"
)

// NoOpProvider implements Provider by logging discarded alerts. It is
// registered when no real channel is configured so dispatch paths stay
// exercisable in development.
type NoOpProvider struct {
	log *slog.Logger
}

// NewNoOpProvider creates a provider that discards alerts with a log
// message.
func NewNoOpProvider(log *slog.Logger) *NoOpProvider {
	return &NoOpProvider{log: log}
}

// Name implements Provider.
func (n *NoOpProvider) Name() string { return "noop" }

// IsConfigured always reports true.
func (n *NoOpProvider) IsConfigured() bool { return true }

// Send logs and discards the alert.
func (n *NoOpProvider) Send(_ context.Context, alert domain.Alert) error {
	n.log.Debug("notification discarded (no channel configured)",
		"sku", alert.SKU,
		"severity", alert.Severity,
	)
	return nil
}
