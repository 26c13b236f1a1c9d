// Package alert classifies stock levels against thresholds and fans
// resulting alerts out to the configured notification providers.
package alert

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mhollis/stocksync/internal/metrics"
	domain "github.com/mhollis/stocksync/pkg/types"
)

const alertTypeLowStock = "low_stock"

// Thresholds holds the evaluation settings. Both boundaries are
// inclusive: quantity <= Critical classifies critical, quantity <=
// Warning (and above Critical) classifies warning.
type Thresholds struct {
	Critical int
	Warning  int

	// ScaleWithStock shrinks the default thresholds for low-volume
	// products so a product that never stocks more than a handful of
	// units is not permanently critical.
	ScaleWithStock bool

	// Overrides maps SKU to a product-specific critical threshold.
	// The warning threshold keeps its configured ratio to critical.
	Overrides map[string]int
}

// Evaluator classifies stock records into alerts.
type Evaluator struct {
	thresholds Thresholds
	now        func() time.Time
}

// EvaluatorOption configures the Evaluator.
type EvaluatorOption func(*Evaluator)

// WithEvaluatorNowFunc overrides the clock, for tests.
func WithEvaluatorNowFunc(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		e.now = now
	}
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(thresholds Thresholds, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		thresholds: thresholds,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate classifies every record and returns the alerts raised.
// Records above both thresholds produce nothing.
func (e *Evaluator) Evaluate(records []domain.StockRecord) []domain.Alert {
	var alerts []domain.Alert
	now := e.now().UTC()

	for i := range records {
		rec := &records[i]
		critical, warning := e.thresholdsFor(rec)

		var severity domain.Severity
		var threshold int
		switch {
		case rec.Quantity <= critical:
			severity = domain.SeverityCritical
			threshold = critical
		case rec.Quantity <= warning:
			severity = domain.SeverityWarning
			threshold = warning
		default:
			continue
		}

		alerts = append(alerts, domain.Alert{
			ID:           uuid.New().String(),
			Type:         alertTypeLowStock,
			Severity:     severity,
			SKU:          rec.SKU,
			ProductName:  rec.ProductName,
			CurrentStock: rec.Quantity,
			Threshold:    threshold,
			Message:      alertMessage(rec, severity, threshold),
			Timestamp:    now,
		})
		metrics.AlertsFiredTotal.WithLabelValues(string(severity)).Inc()
	}

	return alerts
}

// thresholdsFor resolves the effective thresholds for one record.
// Override wins; otherwise defaults optionally scale with the product's
// stock magnitude (on hand plus allocated).
func (e *Evaluator) thresholdsFor(rec *domain.StockRecord) (critical, warning int) {
	critical = e.thresholds.Critical
	warning = e.thresholds.Warning

	if override, ok := e.thresholds.Overrides[rec.SKU]; ok {
		ratio := 1
		if critical > 0 {
			ratio = warning / critical
		}
		critical = override
		warning = maxInt(override+1, override*ratio)
		return critical, warning
	}

	if !e.thresholds.ScaleWithStock {
		return critical, warning
	}

	magnitude := rec.Quantity + rec.AllocatedQuantity
	switch {
	case magnitude >= 100:
		// Full thresholds for high-volume products.
	case magnitude >= 20:
		critical = maxInt(1, critical/2)
		warning = maxInt(critical+1, warning/2)
	default:
		critical = maxInt(1, critical/4)
		warning = maxInt(critical+1, warning/4)
	}
	return critical, warning
}

func alertMessage(rec *domain.StockRecord, severity domain.Severity, threshold int) string {
	if severity == domain.SeverityCritical {
		return fmt.Sprintf("%s (%s) is critically low: %d on hand, threshold %d",
			rec.ProductName, rec.SKU, rec.Quantity, threshold)
	}
	return fmt.Sprintf("%s (%s) is below its warning level: %d on hand, threshold %d",
		rec.ProductName, rec.SKU, rec.Quantity, threshold)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
