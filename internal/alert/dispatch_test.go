package alert_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/stocksync/internal/alert"
	"github.com/mhollis/stocksync/internal/notify"
	domain "github.com/mhollis/stocksync/pkg/types"
)

type fakeProvider struct {
	name       string
	configured bool
	sendFunc   func(ctx context.Context, a domain.Alert) error
	sent       []domain.Alert
}

func (f *fakeProvider) Name() string       { return f.name }
func (f *fakeProvider) IsConfigured() bool { return f.configured }

func (f *fakeProvider) Send(ctx context.Context, a domain.Alert) error {
	if f.sendFunc != nil {
		if err := f.sendFunc(ctx, a); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, a)
	return nil
}

func testAlert() domain.Alert {
	return domain.Alert{
		ID:       "alert-1",
		Type:     "low_stock",
		Severity: domain.SeverityCritical,
		SKU:      "WID-001",
	}
}

func outcomeFor(t *testing.T, result *alert.DispatchResult, provider string) alert.ProviderOutcome {
	t.Helper()
	for _, o := range result.Outcomes {
		if o.Provider == provider {
			return o
		}
	}
	t.Fatalf("no outcome for provider %s", provider)
	return alert.ProviderOutcome{}
}

func TestDispatcher_ProviderIsolation(t *testing.T) {
	t.Parallel()

	email := &fakeProvider{name: "email", configured: true,
		sendFunc: func(context.Context, domain.Alert) error {
			return errors.New("smtp connection refused")
		}}
	slack := &fakeProvider{name: "slack", configured: true}
	webhook := &fakeProvider{name: "webhook", configured: true}

	registry := notify.NewRegistry()
	registry.Register(email, true)
	registry.Register(slack, true)
	registry.Register(webhook, true)

	result := alert.NewDispatcher(registry).Dispatch(context.Background(), testAlert())

	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Skipped)

	emailOutcome := outcomeFor(t, result, "email")
	assert.Equal(t, alert.StatusFailed, emailOutcome.Status)
	assert.Contains(t, emailOutcome.Error, "smtp connection refused")

	assert.Equal(t, alert.StatusSent, outcomeFor(t, result, "slack").Status)
	assert.Equal(t, alert.StatusSent, outcomeFor(t, result, "webhook").Status)
	assert.Len(t, slack.sent, 1)
	assert.Len(t, webhook.sent, 1)
}

func TestDispatcher_DisabledAndUnconfiguredReported(t *testing.T) {
	t.Parallel()

	registry := notify.NewRegistry()
	registry.Register(&fakeProvider{name: "email", configured: true}, false)
	registry.Register(&fakeProvider{name: "slack", configured: false}, true)
	registry.Register(&fakeProvider{name: "webhook", configured: true}, true)

	result := alert.NewDispatcher(registry).Dispatch(context.Background(), testAlert())

	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, alert.StatusDisabled, outcomeFor(t, result, "email").Status)
	assert.Equal(t, alert.StatusNotConfigured, outcomeFor(t, result, "slack").Status)
	assert.Equal(t, alert.StatusSent, outcomeFor(t, result, "webhook").Status)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 2, result.Skipped)
}

func TestDispatcher_PolicySkipIsNotAFailure(t *testing.T) {
	t.Parallel()

	sms := &fakeProvider{name: "sms", configured: true,
		sendFunc: func(_ context.Context, a domain.Alert) error {
			if a.Severity != domain.SeverityCritical {
				return fmt.Errorf("%w: severity below critical", notify.ErrSkipped)
			}
			return nil
		}}

	registry := notify.NewRegistry()
	registry.Register(sms, true)
	d := alert.NewDispatcher(registry)

	warning := testAlert()
	warning.Severity = domain.SeverityWarning

	result := d.Dispatch(context.Background(), warning)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, alert.StatusSkipped, result.Outcomes[0].Status)

	result = d.Dispatch(context.Background(), testAlert())
	assert.Equal(t, 1, result.Successful)
}

func TestDispatcher_ExplicitSubset(t *testing.T) {
	t.Parallel()

	email := &fakeProvider{name: "email", configured: true}
	slack := &fakeProvider{name: "slack", configured: true}

	registry := notify.NewRegistry()
	registry.Register(email, true)
	registry.Register(slack, true)

	result := alert.NewDispatcher(registry).Dispatch(context.Background(), testAlert(), "slack")

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "slack", result.Outcomes[0].Provider)
	assert.Empty(t, email.sent)
	assert.Len(t, slack.sent, 1)
}

func TestDispatcher_UnknownProviderInSubset(t *testing.T) {
	t.Parallel()

	result := alert.NewDispatcher(notify.NewRegistry()).Dispatch(context.Background(), testAlert(), "carrier-pigeon")

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, alert.StatusFailed, result.Outcomes[0].Status)
	assert.Equal(t, 1, result.Failed)
}

func TestDispatcher_PanicContained(t *testing.T) {
	t.Parallel()

	panicky := &fakeProvider{name: "email", configured: true,
		sendFunc: func(context.Context, domain.Alert) error {
			panic("nil dereference in provider")
		}}
	steady := &fakeProvider{name: "slack", configured: true}

	registry := notify.NewRegistry()
	registry.Register(panicky, true)
	registry.Register(steady, true)

	result := alert.NewDispatcher(registry).Dispatch(context.Background(), testAlert())

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Successful)
	assert.Contains(t, outcomeFor(t, result, "email").Error, "panicked")
}

func TestDispatcher_Test(t *testing.T) {
	t.Parallel()

	sent := &fakeProvider{name: "slack", configured: true}
	unconfigured := &fakeProvider{name: "email", configured: false}

	registry := notify.NewRegistry()
	registry.Register(sent, false) // disabled, but Test still runs
	registry.Register(unconfigured, true)
	d := alert.NewDispatcher(registry)

	require.NoError(t, d.Test(context.Background(), "slack"))
	require.Len(t, sent.sent, 1)
	assert.Equal(t, "test", sent.sent[0].Type)

	err := d.Test(context.Background(), "email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")

	err = d.Test(context.Background(), "nothing")
	assert.ErrorIs(t, err, notify.ErrUnknownProvider)
}
