package relation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhollis/stocksync/internal/relation"
)

func TestHasQuantityIndicator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"Widget", false},
		{"WIDGET01", false},
		{"Widget-4", true},
		{"WIDGET-12", true},
		{"2x Widget", true},
		{"3 X Widget", true},
		{"Widget x4", true},
		{"Widget 4pk", true},
		{"Widget 6 pack", true},
		{"Cleaner 500", true},
		{"Cleaner500", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, relation.HasQuantityIndicator(tt.input))
		})
	}
}

func TestBasePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"Widget", "widget"},
		{"Widget-4", "widget"},
		{"2x Widget", "widget"},
		{"Widget x12", "widget"},
		{"Widget 6pk", "widget"},
		{"Widget (Blue)", "widgetblue"},
		{"Widget Single", "widget"},
		{"Widget Base", "widget"},
		{"Peach Tea", "peachtea"},
		{"Database Cable", "databasecable"},
		{"  ", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, relation.BasePattern(tt.input))
		})
	}
}

func TestBasePattern_GroupsVariantsTogether(t *testing.T) {
	t.Parallel()

	base := relation.BasePattern("Super Cleaner")
	for _, variant := range []string{
		"Super Cleaner-2",
		"2x Super Cleaner",
		"Super Cleaner x6",
		"Super Cleaner 12pk",
	} {
		assert.Equal(t, base, relation.BasePattern(variant), variant)
	}
}

func TestVendorPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"ACME 10234 Cleaner", "acme", "acme:10234"},
		{"acme-0456 refill", "acme", "acme:456"},
		{"ACME Cleaner", "acme", ""},    // no numeric code
		{"Generic 10234", "acme", ""},   // wrong prefix
		{"ACME 12 Cleaner", "acme", ""}, // code too short
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, relation.VendorPattern(tt.name, tt.prefix))
		})
	}
}

func TestHasMasterKeyword(t *testing.T) {
	t.Parallel()

	assert.True(t, relation.HasMasterKeyword("Widget Base Unit"))
	assert.True(t, relation.HasMasterKeyword("Widget SINGLE"))
	assert.False(t, relation.HasMasterKeyword("Widget Deluxe"))

	// Keyword matches are word-bounded.
	assert.False(t, relation.HasMasterKeyword("Peach Tea"))
	assert.False(t, relation.HasMasterKeyword("Database Cable"))
}
