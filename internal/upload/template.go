package upload

import "strings"

// templateColumns is the canonical header order for generated upload
// templates. Parse accepts these plus their aliases.
var templateColumns = []string{
	"sku", "name", "quantity", "price", "category",
	"supplier", "min_threshold", "max_stock", "location", "notes",
}

var templateExample = []string{
	"WID-001", "Widget", "50", "9.99", "hardware",
	"Acme Supplies", "5", "200", "A1-03", "example row",
}

// Template returns a ready-to-fill CSV upload template: an instructions
// comment line, the header row, and one example row. Pure, no I/O.
func Template() string {
	var b strings.Builder
	b.WriteString("# Fill one product per line. Delete this comment and the example row before uploading.\n")
	b.WriteString(strings.Join(templateColumns, ","))
	b.WriteByte('\n')
	b.WriteString(strings.Join(templateExample, ","))
	b.WriteByte('\n')
	return b.String()
}
