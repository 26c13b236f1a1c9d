package alert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/stocksync/internal/alert"
	domain "github.com/mhollis/stocksync/pkg/types"
)

func stock(sku string, qty int) domain.StockRecord {
	return domain.StockRecord{SKU: sku, ProductName: sku + " product", Quantity: qty}
}

func TestEvaluator_ThresholdBoundaries(t *testing.T) {
	t.Parallel()

	e := alert.NewEvaluator(alert.Thresholds{Critical: 5, Warning: 20})

	tests := []struct {
		name         string
		quantity     int
		wantSeverity domain.Severity
		wantNone     bool
	}{
		{name: "zero stock is critical", quantity: 0, wantSeverity: domain.SeverityCritical},
		{name: "exactly critical threshold is critical", quantity: 5, wantSeverity: domain.SeverityCritical},
		{name: "one above critical is warning", quantity: 6, wantSeverity: domain.SeverityWarning},
		{name: "exactly warning threshold is warning", quantity: 20, wantSeverity: domain.SeverityWarning},
		{name: "one above warning is no alert", quantity: 21, wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			alerts := e.Evaluate([]domain.StockRecord{stock("WID-001", tt.quantity)})

			if tt.wantNone {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.wantSeverity, alerts[0].Severity)
			assert.Equal(t, tt.quantity, alerts[0].CurrentStock)
			assert.Equal(t, "low_stock", alerts[0].Type)
			assert.NotEmpty(t, alerts[0].Message)
		})
	}
}

func TestEvaluator_PerSKUOverride(t *testing.T) {
	t.Parallel()

	e := alert.NewEvaluator(alert.Thresholds{
		Critical:  5,
		Warning:   20,
		Overrides: map[string]int{"BULK-001": 50},
	})

	// 30 units: above the default thresholds, but under the override.
	alerts := e.Evaluate([]domain.StockRecord{
		stock("BULK-001", 30),
		stock("WID-001", 30),
	})

	require.Len(t, alerts, 1)
	assert.Equal(t, "BULK-001", alerts[0].SKU)
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, 50, alerts[0].Threshold)
}

func TestEvaluator_ScaleWithStock(t *testing.T) {
	t.Parallel()

	e := alert.NewEvaluator(alert.Thresholds{
		Critical:       8,
		Warning:        24,
		ScaleWithStock: true,
	})

	tests := []struct {
		name         string
		record       domain.StockRecord
		wantSeverity domain.Severity
		wantNone     bool
	}{
		{
			// Magnitude >= 100 keeps full thresholds.
			name:         "high volume product keeps thresholds",
			record:       domain.StockRecord{SKU: "A", Quantity: 8, AllocatedQuantity: 100},
			wantSeverity: domain.SeverityCritical,
		},
		{
			// Magnitude 20-99 halves thresholds: critical 4, warning 12.
			name:     "mid volume above halved warning is quiet",
			record:   domain.StockRecord{SKU: "B", Quantity: 15, AllocatedQuantity: 10},
			wantNone: true,
		},
		{
			name:         "mid volume at halved critical",
			record:       domain.StockRecord{SKU: "C", Quantity: 4, AllocatedQuantity: 20},
			wantSeverity: domain.SeverityCritical,
		},
		{
			// Magnitude < 20 quarters thresholds: critical 2, warning 6.
			name:         "low volume at quartered warning",
			record:       domain.StockRecord{SKU: "D", Quantity: 5, AllocatedQuantity: 1},
			wantSeverity: domain.SeverityWarning,
		},
		{
			name:     "low volume above quartered warning is quiet",
			record:   domain.StockRecord{SKU: "E", Quantity: 7, AllocatedQuantity: 0},
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			alerts := e.Evaluate([]domain.StockRecord{tt.record})

			if tt.wantNone {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.wantSeverity, alerts[0].Severity)
		})
	}
}

func TestEvaluator_HealthyInventoryIsQuiet(t *testing.T) {
	t.Parallel()

	e := alert.NewEvaluator(alert.Thresholds{Critical: 5, Warning: 20})

	alerts := e.Evaluate([]domain.StockRecord{
		stock("A", 100),
		stock("B", 21),
		stock("C", 55),
	})
	assert.Empty(t, alerts)
}
