package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mhollis/stocksync/internal/metrics"
	"github.com/mhollis/stocksync/internal/notify"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// Outcome statuses for one provider within a dispatch.
const (
	StatusSent          = "sent"
	StatusFailed        = "failed"
	StatusSkipped       = "skipped"
	StatusDisabled      = "disabled"
	StatusNotConfigured = "not_configured"
)

// ProviderOutcome reports how one provider handled one alert.
type ProviderOutcome struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// DispatchResult aggregates the per-provider outcomes of one alert.
type DispatchResult struct {
	Alert      domain.Alert      `json:"alert"`
	Outcomes   []ProviderOutcome `json:"outcomes"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Skipped    int               `json:"skipped"`
}

// Dispatcher fans alerts out to every enabled and configured provider.
// Providers share no state, so sends run concurrently; one provider's
// failure never blocks or fails the others.
type Dispatcher struct {
	registry *notify.Registry
	logger   *slog.Logger
}

// DispatcherOption configures the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher over the given provider registry.
func NewDispatcher(registry *notify.Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends one alert through every registered provider, or the
// named subset when any names are given. Disabled and unconfigured
// providers are reported as such, never silently dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, alert domain.Alert, only ...string) *DispatchResult {
	names := only
	if len(names) == 0 {
		names = d.registry.Names()
	}

	result := &DispatchResult{
		Alert:    alert,
		Outcomes: make([]ProviderOutcome, len(names)),
	}

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			result.Outcomes[i] = d.sendOne(ctx, name, alert)
		}(i, name)
	}
	wg.Wait()

	for _, outcome := range result.Outcomes {
		switch outcome.Status {
		case StatusSent:
			result.Successful++
		case StatusFailed:
			result.Failed++
		default:
			result.Skipped++
		}
	}

	d.logger.Info("alert dispatched",
		"alert_id", alert.ID,
		"severity", alert.Severity,
		"successful", result.Successful,
		"failed", result.Failed,
		"skipped", result.Skipped)

	return result
}

// sendOne runs the full decision path for one provider. Panics inside a
// provider are contained so a misbehaving channel cannot take down its
// siblings.
func (d *Dispatcher) sendOne(ctx context.Context, name string, alert domain.Alert) (outcome ProviderOutcome) {
	outcome = ProviderOutcome{Provider: name}

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = StatusFailed
			outcome.Error = fmt.Sprintf("provider panicked: %v", r)
			metrics.NotificationFailuresTotal.WithLabelValues(name).Inc()
		}
	}()

	reg, ok := d.registry.Get(name)
	if !ok {
		outcome.Status = StatusFailed
		outcome.Error = notify.ErrUnknownProvider.Error()
		return outcome
	}

	if !reg.Enabled {
		outcome.Status = StatusDisabled
		return outcome
	}
	if !reg.Provider.IsConfigured() {
		outcome.Status = StatusNotConfigured
		return outcome
	}

	if err := reg.Provider.Send(ctx, alert); err != nil {
		if errors.Is(err, notify.ErrSkipped) {
			outcome.Status = StatusSkipped
			outcome.Error = err.Error()
			return outcome
		}
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		metrics.NotificationFailuresTotal.WithLabelValues(name).Inc()
		d.logger.Warn("notification failed", "provider", name, "alert_id", alert.ID, "error", err)
		return outcome
	}

	outcome.Status = StatusSent
	return outcome
}

// Test synthesizes a canned alert and exercises the named provider's
// full send path, ignoring its enabled flag so operators can verify
// configuration before turning a channel on.
func (d *Dispatcher) Test(ctx context.Context, providerName string) error {
	reg, ok := d.registry.Get(providerName)
	if !ok {
		return fmt.Errorf("%w: %s", notify.ErrUnknownProvider, providerName)
	}
	if !reg.Provider.IsConfigured() {
		return fmt.Errorf("provider %s is not configured", providerName)
	}
	if err := reg.Provider.Send(ctx, notify.TestAlert(providerName)); err != nil {
		return fmt.Errorf("testing provider %s: %w", providerName, err)
	}
	return nil
}
