// Package upload implements the bulk stock upload pipeline: CSV parse,
// per-row validation, batched writes to the remote provider, and a
// structured result report.
package upload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	domain "github.com/mhollis/stocksync/pkg/types"
)

// ErrMalformedFile indicates the input could not be parsed as tabular
// data at all. Unlike row-level problems this fails the whole upload.
var ErrMalformedFile = errors.New("malformed upload file")

// columnAliases maps accepted header spellings to canonical column
// names. Matching is case-insensitive; headers are lowercased before
// lookup.
var columnAliases = map[string]string{
	"sku":           "sku",
	"product_sku":   "sku",
	"name":          "name",
	"product_name":  "name",
	"product":       "name",
	"quantity":      "quantity",
	"qty":           "quantity",
	"stock":         "quantity",
	"price":         "price",
	"unit_price":    "price",
	"category":      "category",
	"supplier":      "supplier",
	"vendor":        "supplier",
	"min_threshold": "min_threshold",
	"min":           "min_threshold",
	"max_stock":     "max_stock",
	"max":           "max_stock",
	"location":      "location",
	"warehouse":     "location",
	"notes":         "notes",
	"comment":       "notes",
}

// ParsedRow pairs a normalized record with its 1-based row number in
// the source file, so validation errors can reference the original line.
type ParsedRow struct {
	Row    int
	Record domain.UploadRecord
}

// Parse reads CSV data into normalized upload records. Header names are
// alias- and case-tolerant. A leading comment line (starting with '#')
// before the header is skipped; it is emitted by the template generator.
// A file whose structure cannot be parsed returns ErrMalformedFile.
func Parse(r io.Reader) ([]ParsedRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	// Tolerate an instructions line above the header.
	if len(header) > 0 && strings.HasPrefix(strings.TrimSpace(header[0]), "#") {
		header, err = cr.Read()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []ParsedRow
	rowNum := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}
		rowNum++

		if isBlank(fields) {
			continue
		}

		rows = append(rows, ParsedRow{
			Row:    rowNum,
			Record: buildRecord(columns, fields),
		})
	}

	return rows, nil
}

// mapColumns resolves the header row to canonical column positions.
// Unknown headers are ignored; a header with no recognized column at
// all is treated as malformed.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, h := range header {
		canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, dup := columns[canonical]; !dup {
			columns[canonical] = i
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no recognized columns in header", ErrMalformedFile)
	}
	return columns, nil
}

func buildRecord(columns map[string]int, fields []string) domain.UploadRecord {
	get := func(col string) string {
		i, ok := columns[col]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	return domain.UploadRecord{
		SKU:          get("sku"),
		Name:         get("name"),
		Quantity:     parseIntField(get("quantity")),
		Price:        parseFloatField(get("price")),
		Category:     get("category"),
		Supplier:     get("supplier"),
		MinThreshold: parseIntField(get("min_threshold")),
		MaxStock:     parseIntField(get("max_stock")),
		Location:     get("location"),
		Notes:        get("notes"),
	}
}

// parseIntField lenient-parses an integer cell. Unparsable values map
// to -1 so validation reports them instead of silently zeroing.
func parseIntField(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func parseFloatField(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return -1
	}
	return f
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
