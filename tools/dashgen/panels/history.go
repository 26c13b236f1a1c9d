package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// HistoryRate returns a timeseries panel showing logged history entries
// per minute.
func HistoryRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("History Entries / min").
		Description("Rate of change history entries logged per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`rate(stocksync_history_entries_total{job="stocksync"}[5m]) * 60`,
			"entries/min", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SnapshotsTaken returns a stat panel showing snapshots captured in the
// past 24 hours broken down by type.
func SnapshotsTaken() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Snapshots (24h)").
		Description("Snapshots captured in the last 24 hours by type").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(increase(stocksync_snapshots_total{job="stocksync"}[24h])) by (type)`,
			"{{type}}", "A",
		)).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		GraphMode(common.BigValueGraphModeNone)
}
