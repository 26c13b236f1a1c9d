package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "stocksync-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "stocksync-recording",
					Rules: []Rule{
						{
							Record: "stocksync:http_requests:rate5m",
							Expr:   `sum(rate(stocksync_http_requests_total[5m]))`,
						},
						{
							Record: "stocksync:http_errors:rate5m",
							Expr:   `sum(rate(stocksync_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "stocksync:sync_records:rate5m",
							Expr:   `rate(stocksync_sync_records_total[5m])`,
						},
						{
							Record: "stocksync:sync_errors:rate5m",
							Expr:   `rate(stocksync_sync_errors_total[5m])`,
						},
						{
							Record: "stocksync:provider_calls:rate5m",
							Expr:   `rate(stocksync_provider_calls_total[5m])`,
						},
						{
							Record: "stocksync:upload_rows:rate5m",
							Expr:   `sum(rate(stocksync_upload_rows_total[5m]))`,
						},
					},
				},
			},
		},
	}
}
