package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/mhollis/stocksync/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL). Snapshot product lists and upload error lists are stored
// as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
	caps Caps
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, caps Caps) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool, caps: caps}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// AppendHistory inserts an entry and trims the log to its cap.
func (s *PostgresStore) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	args := pgx.NamedArgs{
		"id":           entry.ID,
		"timestamp":    entry.Timestamp,
		"type":         string(entry.Type),
		"sku":          entry.SKU,
		"old_quantity": entry.OldQuantity,
		"new_quantity": entry.NewQuantity,
		"difference":   entry.Difference,
		"username":     entry.User,
		"source":       entry.Source,
		"notes":        entry.Notes,
	}

	if _, err := s.pool.Exec(ctx, queryInsertHistory, args); err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	if s.caps.MaxHistory > 0 {
		if _, err := s.pool.Exec(ctx, queryTrimHistory, s.caps.MaxHistory); err != nil {
			return fmt.Errorf("trimming history: %w", err)
		}
	}
	return nil
}

// QueryHistory compiles the filter to SQL and returns matching entries
// newest-first.
func (s *PostgresStore) QueryHistory(ctx context.Context, filter Filter) ([]domain.HistoryEntry, error) {
	sql, args := filter.ToSQL()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var entryType string
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &entryType, &e.SKU,
			&e.OldQuantity, &e.NewQuantity, &e.Difference,
			&e.User, &e.Source, &e.Notes,
		); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Type = domain.ChangeType(entryType)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneHistory removes entries older than the cutoff.
func (s *PostgresStore) PruneHistory(ctx context.Context, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, queryPruneHistory, before)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// SaveSnapshot inserts a snapshot and trims stored snapshots to cap.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	products, err := json.Marshal(snap.Products)
	if err != nil {
		return fmt.Errorf("encoding snapshot products: %w", err)
	}

	args := pgx.NamedArgs{
		"id":             snap.ID,
		"timestamp":      snap.Timestamp,
		"type":           string(snap.Type),
		"total_products": snap.TotalProducts,
		"total_value":    snap.TotalValue,
		"products":       products,
	}

	if _, err := s.pool.Exec(ctx, queryInsertSnapshot, args); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	if s.caps.MaxSnapshots > 0 {
		if _, err := s.pool.Exec(ctx, queryTrimSnapshots, s.caps.MaxSnapshots); err != nil {
			return fmt.Errorf("trimming snapshots: %w", err)
		}
	}
	return nil
}

// GetSnapshot returns the snapshot with the given ID, or
// ErrSnapshotNotFound.
func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	snap, err := scanSnapshot(s.pool.QueryRow(ctx, queryGetSnapshot, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns matching snapshots newest-first.
func (s *PostgresStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]domain.Snapshot, error) {
	sql, args := snapshotFilterSQL(filter)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// PruneSnapshots removes snapshots older than the cutoff.
func (s *PostgresStore) PruneSnapshots(ctx context.Context, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, queryPruneSnapshots, before)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// RecordUpload inserts an upload result and trims to cap.
func (s *PostgresStore) RecordUpload(ctx context.Context, result domain.UploadResult) error {
	errs, err := json.Marshal(result.Errors)
	if err != nil {
		return fmt.Errorf("encoding upload errors: %w", err)
	}
	warnings, err := json.Marshal(result.Warnings)
	if err != nil {
		return fmt.Errorf("encoding upload warnings: %w", err)
	}

	args := pgx.NamedArgs{
		"upload_id":     result.UploadID,
		"total_items":   result.TotalItems,
		"success_count": result.SuccessCount,
		"error_count":   result.ErrorCount,
		"errors":        errs,
		"warnings":      warnings,
		"timestamp":     result.Timestamp,
	}

	if _, err := s.pool.Exec(ctx, queryInsertUpload, args); err != nil {
		return fmt.Errorf("inserting upload result: %w", err)
	}

	if s.caps.MaxUploads > 0 {
		if _, err := s.pool.Exec(ctx, queryTrimUploads, s.caps.MaxUploads); err != nil {
			return fmt.Errorf("trimming uploads: %w", err)
		}
	}
	return nil
}

// ListUploads returns the most recent upload results, newest-first.
func (s *PostgresStore) ListUploads(ctx context.Context, limit int) ([]domain.UploadResult, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	rows, err := s.pool.Query(ctx, queryListUploads, limit)
	if err != nil {
		return nil, fmt.Errorf("querying uploads: %w", err)
	}
	defer rows.Close()

	var results []domain.UploadResult
	for rows.Next() {
		var r domain.UploadResult
		var errsJSON, warningsJSON []byte
		if err := rows.Scan(
			&r.UploadID, &r.TotalItems, &r.SuccessCount, &r.ErrorCount,
			&errsJSON, &warningsJSON, &r.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scanning upload result: %w", err)
		}
		if err := json.Unmarshal(errsJSON, &r.Errors); err != nil {
			return nil, fmt.Errorf("decoding upload errors: %w", err)
		}
		if err := json.Unmarshal(warningsJSON, &r.Warnings); err != nil {
			return nil, fmt.Errorf("decoding upload warnings: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// RecordAlert inserts an alert and trims to cap.
func (s *PostgresStore) RecordAlert(ctx context.Context, alert domain.Alert) error {
	args := pgx.NamedArgs{
		"id":            alert.ID,
		"type":          alert.Type,
		"severity":      string(alert.Severity),
		"sku":           alert.SKU,
		"product_name":  alert.ProductName,
		"current_stock": alert.CurrentStock,
		"threshold":     alert.Threshold,
		"message":       alert.Message,
		"timestamp":     alert.Timestamp,
	}

	if _, err := s.pool.Exec(ctx, queryInsertAlert, args); err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}

	if s.caps.MaxAlerts > 0 {
		if _, err := s.pool.Exec(ctx, queryTrimAlerts, s.caps.MaxAlerts); err != nil {
			return fmt.Errorf("trimming alerts: %w", err)
		}
	}
	return nil
}

// ListRecentAlerts returns the most recent alerts, newest-first.
func (s *PostgresStore) ListRecentAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	rows, err := s.pool.Query(ctx, queryListRecentAlerts, limit)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var severity string
		if err := rows.Scan(
			&a.ID, &a.Type, &severity, &a.SKU, &a.ProductName,
			&a.CurrentStock, &a.Threshold, &a.Message, &a.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		a.Severity = domain.Severity(severity)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// scanSnapshot reads one snapshot row, decoding the JSONB product list.
func scanSnapshot(row pgx.Row) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var snapType string
	var productsJSON []byte

	if err := row.Scan(
		&snap.ID, &snap.Timestamp, &snapType,
		&snap.TotalProducts, &snap.TotalValue, &productsJSON,
	); err != nil {
		return nil, err
	}

	snap.Type = domain.SnapshotType(snapType)
	if err := json.Unmarshal(productsJSON, &snap.Products); err != nil {
		return nil, fmt.Errorf("decoding snapshot products: %w", err)
	}
	return &snap, nil
}

// snapshotFilterSQL builds the snapshot listing query.
func snapshotFilterSQL(filter SnapshotFilter) (string, []any) {
	sql := `SELECT id, timestamp, type, total_products, total_value, products
FROM snapshots`

	var args []any
	paramIdx := 1
	var conditions []string

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", paramIdx))
		args = append(args, string(filter.Type))
		paramIdx++
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", paramIdx))
		args = append(args, filter.From)
		paramIdx++
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("timestamp <= $%d", paramIdx))
		args = append(args, filter.To)
		paramIdx++
	}

	if len(conditions) > 0 {
		sql += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	return fmt.Sprintf("%s ORDER BY timestamp DESC LIMIT %d", sql, limit), args
}
