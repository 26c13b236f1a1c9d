package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mhollis/stocksync/internal/metrics"
	"github.com/mhollis/stocksync/internal/provider"
	domain "github.com/mhollis/stocksync/pkg/types"
)

const (
	defaultBatchSize  = 50
	defaultBatchPause = 1 * time.Second
)

// ResultSink receives the finished report of an upload invocation.
// The default store keeps a bounded most-recent-N list.
type ResultSink interface {
	RecordUpload(ctx context.Context, result domain.UploadResult) error
}

// Pipeline runs bulk uploads end to end: parse, validate, batched
// provider writes, report.
type Pipeline struct {
	client     provider.Client
	sink       ResultSink
	logger     *slog.Logger
	batchSize  int
	batchPause time.Duration
}

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithBatchSize sets how many valid rows are written per batch.
func WithBatchSize(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithBatchPause sets the delay between batches. The pause is a
// backpressure mechanism for the provider's rate limits, not a tunable
// to minimize.
func WithBatchPause(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.batchPause = d
	}
}

// WithResultSink registers a sink that records each finished upload.
func WithResultSink(sink ResultSink) PipelineOption {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates an upload pipeline writing through the given
// provider client.
func NewPipeline(client provider.Client, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		client:     client,
		logger:     slog.Default(),
		batchSize:  defaultBatchSize,
		batchPause: defaultBatchPause,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one upload invocation over CSV data. Row-level
// validation failures and per-item write failures are collected into
// the result, never aborting sibling rows; only an unparsable file is
// returned as an error. ErrorCount counts rows, not individual
// violations, and duplicate SKUs within the file are skipped as
// warnings, so the result always satisfies
// SuccessCount + ErrorCount <= TotalItems.
func (p *Pipeline) Process(ctx context.Context, r io.Reader) (*domain.UploadResult, error) {
	start := time.Now()
	defer func() {
		metrics.UploadDuration.Observe(time.Since(start).Seconds())
	}()

	rows, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing upload: %w", err)
	}

	v := Validate(rows)

	result := &domain.UploadResult{
		UploadID:   uuid.New().String(),
		TotalItems: len(rows),
		ErrorCount: v.Invalid,
		Errors:     v.Errors,
		Warnings:   v.Warnings,
		Timestamp:  time.Now().UTC(),
	}

	metrics.UploadRowsTotal.WithLabelValues("invalid").Add(float64(v.Invalid))
	metrics.UploadRowsTotal.WithLabelValues("skipped").Add(float64(v.Skipped))

	p.logger.Info("starting upload",
		"upload_id", result.UploadID,
		"total_rows", len(rows),
		"valid_rows", len(v.Valid),
		"invalid_rows", v.Invalid,
		"skipped_rows", v.Skipped)

	if err := p.writeBatches(ctx, v.Valid, result); err != nil {
		// Cancellation mid-upload still reports what was written.
		result.Warnings = append(result.Warnings, fmt.Sprintf("upload interrupted: %v", err))
	}

	p.record(ctx, result)

	p.logger.Info("upload finished",
		"upload_id", result.UploadID,
		"success", result.SuccessCount,
		"errors", result.ErrorCount)

	return result, nil
}

// writeBatches writes valid records in fixed-size batches with an
// inter-batch pause. An individual item failure is recorded with its
// SKU and reason and does not abort the batch or subsequent batches.
func (p *Pipeline) writeBatches(ctx context.Context, records []domain.UploadRecord, result *domain.UploadResult) error {
	for offset := 0; offset < len(records); offset += p.batchSize {
		if offset > 0 && p.batchPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.batchPause):
			}
		}

		end := min(offset+p.batchSize, len(records))
		batch := records[offset:end]
		metrics.UploadBatchesTotal.Inc()

		for _, rec := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := provider.WriteItem{
				SKU:      rec.SKU,
				Name:     rec.Name,
				Quantity: rec.Quantity,
				Price:    rec.Price,
				Location: rec.Location,
			}

			if err := p.client.WriteItem(ctx, item); err != nil {
				result.ErrorCount++
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: %v", rec.SKU, err))
				metrics.UploadRowsTotal.WithLabelValues("failed").Inc()
				p.logger.Warn("item write failed", "sku", rec.SKU, "error", err)
				continue
			}

			result.SuccessCount++
			metrics.UploadRowsTotal.WithLabelValues("written").Inc()
		}
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, result *domain.UploadResult) {
	if p.sink == nil {
		return
	}
	if err := p.sink.RecordUpload(ctx, *result); err != nil {
		p.logger.Error("recording upload result", "upload_id", result.UploadID, "error", err)
	}
}
