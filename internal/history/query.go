package history

import (
	"fmt"
	"strings"
)

const maxQueryLimit = 500

const baseHistorySelect = `SELECT id, timestamp, type, sku, old_quantity, new_quantity,
	difference, username, source, notes
FROM history_entries`

// ToSQL compiles the filter to a WHERE clause, ORDER BY, and LIMIT for
// the Postgres backend, with positional parameters. Semantics mirror
// Filter.Matches: substring matches are case-insensitive, the date
// range is inclusive, results come back newest-first.
func (f *Filter) ToSQL() (string, []any) {
	var conditions []string
	var args []any
	paramIdx := 1

	if f.SKU != "" {
		conditions = append(conditions, fmt.Sprintf("sku ILIKE $%d", paramIdx))
		args = append(args, "%"+f.SKU+"%")
		paramIdx++
	}

	if f.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", paramIdx))
		args = append(args, string(f.Type))
		paramIdx++
	}

	if f.User != "" {
		conditions = append(conditions, fmt.Sprintf("username ILIKE $%d", paramIdx))
		args = append(args, "%"+f.User+"%")
		paramIdx++
	}

	if !f.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", paramIdx))
		args = append(args, f.From)
		paramIdx++
	}

	if !f.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("timestamp <= $%d", paramIdx))
		args = append(args, f.To)
		paramIdx++
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	return fmt.Sprintf(
		"%s%s ORDER BY timestamp DESC LIMIT %d",
		baseHistorySelect, whereClause, limit,
	), args
}
