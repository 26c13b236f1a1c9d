// Package notify defines the notification provider interface and the
// concrete delivery channels (email, Slack, SMS, generic webhook).
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	domain "github.com/mhollis/stocksync/pkg/types"
)

// ErrSkipped marks a deliberate non-send (for example SMS below
// critical severity). Dispatchers report it as "skipped", not a
// failure.
var ErrSkipped = errors.New("send skipped")

// ErrUnknownProvider is returned when a dispatch or test names a
// provider that was never registered.
var ErrUnknownProvider = errors.New("unknown notification provider")

// Provider is a single notification channel. Implementations hold no
// shared state and must be safe for concurrent Send calls.
type Provider interface {
	// Name identifies the provider in results and registries.
	Name() string
	// Send delivers one alert. A deliberate policy skip returns an
	// error wrapping ErrSkipped.
	Send(ctx context.Context, alert domain.Alert) error
	// IsConfigured reports whether the provider has the credentials
	// it needs. Misconfiguration is reported, never raised mid-send.
	IsConfigured() bool
}

// Registration pairs a provider with its enabled flag. Disabled
// providers stay registered so dispatch results can report them as
// skipped instead of silently dropping them.
type Registration struct {
	Provider Provider
	Enabled  bool
}

// Registry holds the known providers keyed by name. It is populated at
// composition time and read-only afterwards.
type Registry struct {
	providers map[string]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Registration)}
}

// Register adds a provider. Re-registering a name replaces it.
func (r *Registry) Register(p Provider, enabled bool) {
	r.providers[p.Name()] = Registration{Provider: p, Enabled: enabled}
}

// Get returns the registration for a name.
func (r *Registry) Get(name string) (Registration, bool) {
	reg, ok := r.providers[name]
	return reg, ok
}

// Names returns all registered provider names, sorted for stable
// iteration.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TestAlert synthesizes a canned alert that exercises the full send
// path without touching live thresholds.
func TestAlert(providerName string) domain.Alert {
	return domain.Alert{
		ID:           "test-" + providerName,
		Type:         "test",
		Severity:     domain.SeverityCritical,
		SKU:          "TEST-SKU",
		ProductName:  "Configuration Test",
		CurrentStock: 0,
		Threshold:    0,
		Message:      fmt.Sprintf("Test notification for the %s channel.", providerName),
		Timestamp:    time.Now().UTC(),
	}
}
