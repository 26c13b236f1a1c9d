package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// UploadRows returns a timeseries panel showing upload row throughput
// broken down by outcome (written, invalid, failed).
func UploadRows() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Upload Rows").
		Description("Upload rows per second by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(stocksync_upload_rows_total{job="stocksync"}[5m])) by (outcome)`,
			"{{outcome}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// UploadDuration returns a timeseries panel showing the p95 upload
// pipeline duration.
func UploadDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Upload Duration (p95)").
		Description("95th percentile end-to-end upload pipeline duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(stocksync_upload_duration_seconds_bucket{job="stocksync"}[5m])) by (le))`,
			"p95",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
