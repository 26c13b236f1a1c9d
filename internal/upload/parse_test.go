package upload_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/stocksync/internal/upload"
)

func TestParse(t *testing.T) {
	t.Parallel()

	input := "sku,name,quantity,price,location\n" +
		"WID-001,Widget,50,9.99,A1\n" +
		"GAD-100,Gadget,3,19.50,B2\n"

	rows, err := upload.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Row)
	assert.Equal(t, "WID-001", rows[0].Record.SKU)
	assert.Equal(t, "Widget", rows[0].Record.Name)
	assert.Equal(t, 50, rows[0].Record.Quantity)
	assert.InDelta(t, 9.99, rows[0].Record.Price, 0.001)
	assert.Equal(t, "A1", rows[0].Record.Location)

	assert.Equal(t, 2, rows[1].Row)
	assert.Equal(t, "GAD-100", rows[1].Record.SKU)
}

func TestParse_HeaderAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{"canonical", "sku,name,quantity,price"},
		{"uppercase", "SKU,Name,Quantity,Price"},
		{"aliases", "product_sku,product,stock,unit_price"},
		{"short aliases", "sku,name,qty,price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := tt.header + "\nWID-001,Widget,50,9.99\n"

			rows, err := upload.Parse(strings.NewReader(input))
			require.NoError(t, err)
			require.Len(t, rows, 1)

			rec := rows[0].Record
			assert.Equal(t, "WID-001", rec.SKU)
			assert.Equal(t, "Widget", rec.Name)
			assert.Equal(t, 50, rec.Quantity)
			assert.InDelta(t, 9.99, rec.Price, 0.001)
		})
	}
}

func TestParse_SkipsCommentAndBlankLines(t *testing.T) {
	t.Parallel()

	input := "# instructions here\n" +
		"sku,name,quantity,price\n" +
		"WID-001,Widget,50,9.99\n" +
		",,,\n" +
		"GAD-100,Gadget,3,19.50\n"

	rows, err := upload.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "WID-001", rows[0].Record.SKU)
	assert.Equal(t, "GAD-100", rows[1].Record.SKU)
}

func TestParse_MalformedFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no recognized columns", "foo,bar\n1,2\n"},
		{"broken quoting", "sku,name\n\"WID-001,Widget\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := upload.Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, upload.ErrMalformedFile)
		})
	}
}

func TestParse_UnparsableNumbersFlaggedForValidation(t *testing.T) {
	t.Parallel()

	input := "sku,name,quantity,price\nWID-001,Widget,lots,cheap\n"

	rows, err := upload.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Unparsable cells become negative so validation rejects the row
	// instead of writing a silent zero.
	assert.Equal(t, -1, rows[0].Record.Quantity)
	assert.InDelta(t, -1, rows[0].Record.Price, 0.001)
}

func TestTemplate_RoundTripsThroughParse(t *testing.T) {
	t.Parallel()

	rows, err := upload.Parse(strings.NewReader(upload.Template()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "WID-001", rows[0].Record.SKU)
	assert.Empty(t, upload.ValidateRow(rows[0]))
}
