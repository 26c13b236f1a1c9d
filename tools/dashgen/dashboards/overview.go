// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/mhollis/stocksync/tools/dashgen/panels"
)

// BuildOverview constructs the Stocksync Overview dashboard with all
// metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Stocksync Overview").
		Uid("stocksync-overview").
		Tags([]string{"stocksync", "inventory"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Provider API.
	b.WithRow(dashboard.NewRowBuilder("Provider API").
		WithPanel(panels.APICallsRate()).
		WithPanel(panels.DailyUsage()).
		WithPanel(panels.LimitHits()))

	// Row 4: Sync.
	b.WithRow(dashboard.NewRowBuilder("Sync").
		WithPanel(panels.RecordsRate()).
		WithPanel(panels.SyncErrors()).
		WithPanel(panels.SyncDuration()))

	// Row 5: Uploads.
	b.WithRow(dashboard.NewRowBuilder("Uploads").
		WithPanel(panels.UploadRows()).
		WithPanel(panels.UploadDuration()))

	// Row 6: History.
	b.WithRow(dashboard.NewRowBuilder("History").
		WithPanel(panels.HistoryRate()).
		WithPanel(panels.SnapshotsTaken()))

	// Row 7: Alerts.
	b.WithRow(dashboard.NewRowBuilder("Alerts").
		WithPanel(panels.AlertsRate()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
