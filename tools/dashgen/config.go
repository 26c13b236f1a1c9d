package main

import "errors"

// KnownMetrics is the set of metric names exported by stocksync plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"stocksync_http_request_duration_seconds": true,
	"stocksync_http_requests_total":           true,

	// Health metrics.
	"stocksync_healthz_up": true,
	"stocksync_readyz_up":  true,

	// Sync metrics.
	"stocksync_sync_pages_total":      true,
	"stocksync_sync_records_total":    true,
	"stocksync_sync_errors_total":     true,
	"stocksync_sync_duration_seconds": true,

	// Upload metrics.
	"stocksync_upload_rows_total":       true,
	"stocksync_upload_batches_total":    true,
	"stocksync_upload_duration_seconds": true,

	// History and snapshot metrics.
	"stocksync_history_entries_total": true,
	"stocksync_snapshots_total":       true,

	// Provider API metrics.
	"stocksync_provider_calls_total":            true,
	"stocksync_provider_daily_usage":            true,
	"stocksync_provider_daily_limit_hits_total": true,

	// Alert metrics.
	"stocksync_alerts_fired_total":          true,
	"stocksync_notification_failures_total": true,

	// Recording rules.
	"stocksync:http_requests:rate5m":  true,
	"stocksync:http_errors:rate5m":    true,
	"stocksync:sync_records:rate5m":   true,
	"stocksync:sync_errors:rate5m":    true,
	"stocksync:provider_calls:rate5m": true,
	"stocksync:upload_rows:rate5m":    true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
