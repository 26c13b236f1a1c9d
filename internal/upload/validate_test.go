package upload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/stocksync/internal/upload"
	domain "github.com/mhollis/stocksync/pkg/types"
)

func TestValidateRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		record   domain.UploadRecord
		wantErrs []string
	}{
		{
			name:   "valid row",
			record: domain.UploadRecord{SKU: "WID-001", Name: "Widget", Quantity: 10, Price: 9.99},
		},
		{
			name:     "missing sku",
			record:   domain.UploadRecord{Name: "Widget", Quantity: 10, Price: 9.99},
			wantErrs: []string{"Row 4: missing SKU"},
		},
		{
			name:     "missing name",
			record:   domain.UploadRecord{SKU: "WID-001", Quantity: 10, Price: 9.99},
			wantErrs: []string{"Row 4: missing product name"},
		},
		{
			name:     "negative quantity",
			record:   domain.UploadRecord{SKU: "WID-001", Name: "Widget", Quantity: -1, Price: 9.99},
			wantErrs: []string{"Row 4: invalid quantity"},
		},
		{
			name:     "negative price",
			record:   domain.UploadRecord{SKU: "WID-001", Name: "Widget", Quantity: 10, Price: -0.5},
			wantErrs: []string{"Row 4: invalid price"},
		},
		{
			name:     "threshold above max stock",
			record:   domain.UploadRecord{SKU: "WID-001", Name: "Widget", Quantity: 10, Price: 9.99, MinThreshold: 50, MaxStock: 20},
			wantErrs: []string{"Row 4: min threshold 50 exceeds max stock 20"},
		},
		{
			name:   "threshold without max stock is fine",
			record: domain.UploadRecord{SKU: "WID-001", Name: "Widget", Quantity: 10, Price: 9.99, MinThreshold: 5},
		},
		{
			name:   "multiple violations all reported",
			record: domain.UploadRecord{Quantity: -1},
			wantErrs: []string{
				"Row 4: missing SKU",
				"Row 4: missing product name",
				"Row 4: invalid quantity",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := upload.ValidateRow(upload.ParsedRow{Row: 4, Record: tt.record})
			assert.Equal(t, tt.wantErrs, errs)
		})
	}
}

func TestValidate_CollectsErrorsWithoutDroppingValidRows(t *testing.T) {
	t.Parallel()

	rows := []upload.ParsedRow{
		{Row: 1, Record: domain.UploadRecord{SKU: "A", Name: "One", Quantity: 1, Price: 1}},
		{Row: 2, Record: domain.UploadRecord{SKU: "B", Name: "Two", Quantity: 2, Price: 2}},
		{Row: 3, Record: domain.UploadRecord{SKU: "C", Quantity: 3, Price: 3}},
		{Row: 4, Record: domain.UploadRecord{SKU: "D", Name: "Four", Quantity: 4, Price: 4}},
	}

	v := upload.Validate(rows)

	assert.Len(t, v.Valid, 3)
	assert.Equal(t, []string{"Row 3: missing product name"}, v.Errors)
	assert.Equal(t, 1, v.Invalid)
	assert.Zero(t, v.Skipped)
	assert.Empty(t, v.Warnings)
}

func TestValidate_MultiViolationRowCountsOnce(t *testing.T) {
	t.Parallel()

	rows := []upload.ParsedRow{
		{Row: 1, Record: domain.UploadRecord{Quantity: -1, Price: -1}},
		{Row: 2, Record: domain.UploadRecord{SKU: "A", Name: "One", Quantity: 1, Price: 1}},
	}

	v := upload.Validate(rows)

	assert.Len(t, v.Valid, 1)
	assert.Equal(t, 1, v.Invalid)
	assert.Len(t, v.Errors, 4)
}

func TestValidate_DuplicateSKUSkippedWithWarning(t *testing.T) {
	t.Parallel()

	rows := []upload.ParsedRow{
		{Row: 1, Record: domain.UploadRecord{SKU: "A", Name: "First", Quantity: 1, Price: 1}},
		{Row: 2, Record: domain.UploadRecord{SKU: "B", Name: "Other", Quantity: 2, Price: 2}},
		{Row: 3, Record: domain.UploadRecord{SKU: "A", Name: "Repeat", Quantity: 9, Price: 9}},
	}

	v := upload.Validate(rows)

	require.Len(t, v.Valid, 2)
	assert.Equal(t, "First", v.Valid[0].Name)
	assert.Equal(t, 1, v.Skipped)
	assert.Zero(t, v.Invalid)
	require.Len(t, v.Warnings, 1)
	assert.Equal(t, "Row 3: duplicate SKU A already seen on row 1, row skipped", v.Warnings[0])
}
