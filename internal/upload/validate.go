package upload

import (
	"fmt"

	domain "github.com/mhollis/stocksync/pkg/types"
)

// ValidateRow checks one parsed row against the record invariants and
// returns every violation as a "Row N: ..." message. An empty slice
// means the row is valid.
func ValidateRow(row ParsedRow) []string {
	var errs []string

	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("Row %d: %s", row.Row, fmt.Sprintf(format, args...)))
	}

	rec := row.Record

	if rec.SKU == "" {
		fail("missing SKU")
	}
	if rec.Name == "" {
		fail("missing product name")
	}
	if rec.Quantity < 0 {
		fail("invalid quantity")
	}
	if rec.Price < 0 {
		fail("invalid price")
	}
	if rec.MinThreshold < 0 {
		fail("invalid min threshold")
	}
	if rec.MaxStock < 0 {
		fail("invalid max stock")
	}
	if rec.MaxStock > 0 && rec.MinThreshold > rec.MaxStock {
		fail("min threshold %d exceeds max stock %d", rec.MinThreshold, rec.MaxStock)
	}

	return errs
}

// Validation aggregates the outcome of checking parsed rows. Errors
// holds one message per violation; Invalid counts rows, so a row
// breaking several rules still counts as one bad row.
type Validation struct {
	Valid    []domain.UploadRecord
	Errors   []string
	Warnings []string
	Invalid  int
	Skipped  int
}

// Validate splits parsed rows into writable records, row errors, and
// duplicate warnings. Errors are non-fatal to sibling rows. A SKU
// repeated within the file keeps its first occurrence; later rows are
// skipped with a warning.
func Validate(rows []ParsedRow) Validation {
	var v Validation
	firstRow := make(map[string]int, len(rows))

	for _, row := range rows {
		if rowErrs := ValidateRow(row); len(rowErrs) > 0 {
			v.Errors = append(v.Errors, rowErrs...)
			v.Invalid++
			continue
		}
		if first, ok := firstRow[row.Record.SKU]; ok {
			v.Warnings = append(v.Warnings, fmt.Sprintf(
				"Row %d: duplicate SKU %s already seen on row %d, row skipped",
				row.Row, row.Record.SKU, first))
			v.Skipped++
			continue
		}
		firstRow[row.Record.SKU] = row.Row
		v.Valid = append(v.Valid, row.Record)
	}
	return v
}
