package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// stocksync operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "stocksync-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "stocksync-alerts",
					Rules: []Rule{
						{
							Alert: "StocksyncDown",
							Expr:  `absent(up{job="stocksync"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Stocksync is down",
								"description": "The stocksync job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "StocksyncReadinessDown",
							Expr:  `stocksync_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Stocksync readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes; the history store is likely unreachable.",
							},
						},
						{
							Alert: "StocksyncHighErrorRate",
							Expr:  `stocksync:http_errors:rate5m / stocksync:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on stocksync",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "StocksyncSyncErrors",
							Expr:  `stocksync:sync_errors:rate5m > 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Sync cycle errors detected",
								"description": "Sync cycles have been failing for more than 5 minutes. The inventory view may be stale.",
							},
						},
						{
							Alert: "StocksyncProviderQuotaHigh",
							Expr:  `stocksync_provider_daily_usage > 8000`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Provider API daily usage is above 80% of the quota",
								"description": "Daily provider API usage has exceeded 8000 calls (limit is 10000).",
							},
						},
						{
							Alert: "StocksyncProviderLimitReached",
							Expr:  `increase(stocksync_provider_daily_limit_hits_total[5m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Provider API daily limit has been reached",
								"description": "The stock provider daily quota has been exhausted. Syncs and uploads are blocked until the window resets.",
							},
						},
						{
							Alert: "StocksyncUploadFailures",
							Expr:  `sum(rate(stocksync_upload_rows_total{outcome="failed"}[5m])) > 0`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Upload rows are failing to write",
								"description": "Bulk upload rows have been failing provider writes for more than 10 minutes.",
							},
						},
						{
							Alert: "StocksyncNotificationFailures",
							Expr:  `increase(stocksync_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more alert notifications have failed to send. Check the provider configuration.",
							},
						},
					},
				},
			},
		},
	}
}
