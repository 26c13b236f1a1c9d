// Package relation derives master/kit product relationships from
// SKU and name patterns. The heuristics are pure functions so they can
// be unit-tested in isolation from any I/O.
package relation

import (
	"regexp"
	"strings"
)

var (
	// Trailing quantity suffixes: "WIDGET-4", "Widget x4", "Widget 4pk".
	trailingQtyRe = regexp.MustCompile(`(?i)[\s-]*(?:x\s*)?(\d+)\s*(?:pk|pack|pcs|pc)?$`)

	// Leading multiplier prefixes: "2x Widget", "3 X Widget".
	leadingQtyRe = regexp.MustCompile(`(?i)^(\d+)\s*x\s+`)

	// Anything that is not a letter or digit.
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

	numericCodeRe = regexp.MustCompile(`(\d{3,})`)
)

// masterKeywordRe marks a record as the canonical base product when no
// candidate is free of quantity indicators. Whole words only, so names
// like "Peach Tea" don't match on "each".
var masterKeywordRe = regexp.MustCompile(`(?i)\b(?:base|master|single|each)\b`)

// HasQuantityIndicator reports whether a product name or SKU carries a
// quantity multiplier pattern (trailing "-N", leading "Nx", pack suffix).
func HasQuantityIndicator(s string) bool {
	if leadingQtyRe.MatchString(s) {
		return true
	}
	m := trailingQtyRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	// A bare trailing number only counts when separated from the stem,
	// otherwise SKUs like "WIDGET01" would always match.
	tail := m[0]
	return strings.ContainsAny(tail, " -xX") ||
		strings.Contains(strings.ToLower(tail), "pk") ||
		strings.Contains(strings.ToLower(tail), "pack") ||
		strings.Contains(strings.ToLower(tail), "pc")
}

// HasMasterKeyword reports whether a name contains a recognized
// base-product keyword.
func HasMasterKeyword(name string) bool {
	return masterKeywordRe.MatchString(name)
}

// BasePattern normalizes a product name into a grouping key by stripping
// quantity multiplier tokens and non-alphanumeric noise. Returns the
// empty string when nothing survives normalization.
func BasePattern(name string) string {
	s := leadingQtyRe.ReplaceAllString(name, "")

	if m := trailingQtyRe.FindStringSubmatch(s); m != nil {
		tail := m[0]
		if strings.ContainsAny(tail, " -xX") ||
			strings.Contains(strings.ToLower(tail), "pk") ||
			strings.Contains(strings.ToLower(tail), "pack") ||
			strings.Contains(strings.ToLower(tail), "pc") {
			s = s[:len(s)-len(tail)]
		}
	}

	s = masterKeywordRe.ReplaceAllString(s, "")

	return nonAlnumRe.ReplaceAllString(strings.ToLower(s), "")
}

// VendorPattern extracts a vendor-specific grouping key for names that
// start with a known brand prefix followed by a numeric code, e.g.
// "ACME 10234 Cleaner" with prefix "acme" yields "acme:10234".
// Returns the empty string when the name doesn't match.
func VendorPattern(name, prefix string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	prefix = strings.ToLower(prefix)

	if !strings.HasPrefix(lower, prefix) {
		return ""
	}

	rest := lower[len(prefix):]
	m := numericCodeRe.FindStringSubmatch(rest)
	if m == nil {
		return ""
	}

	return prefix + ":" + strings.TrimLeft(m[1], "0")
}
