// Package parse converts the source system's text-encoded numeric values into
// typed values or an explicit missing marker. All functions are pure and
// never abort on a malformed cell: a value that cannot be parsed after
// cleaning degrades to missing.
package parse

import (
	"strconv"
	"strings"
)

// suppressionTokens are the source's conventions for "value withheld".
// Matching is done after trimming and lowercasing. Extend per source.
var suppressionTokens = map[string]struct{}{
	"*":   {},
	".":   {},
	"-":   {},
	"-1":  {},
	"-2":  {},
	"-9":  {},
	"<5":  {},
	"<10": {},
	"n/a": {},
	"na":  {},
	"":    {},
	"ps":  {},
	"s":   {},
	"ds":  {},
}

// clean strips surrounding whitespace and thousands-separator commas.
func clean(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// suppressed reports whether the cleaned value is a known suppression marker.
func suppressed(cleaned string) bool {
	_, ok := suppressionTokens[strings.ToLower(cleaned)]
	return ok
}

// Numeric parses a single source cell as a decimal number. Suppression
// markers and unparseable text both yield missing.
func Numeric(s string) (float64, bool) {
	cleaned := clean(s)
	if suppressed(cleaned) {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Percent parses a source percentage cell onto a [0,1] scale. A trailing "%"
// is stripped before parsing. A cleaned value of exactly "0" (the agency
// renders these as ".00%") is a genuine zero, distinct from the "<"
// suppression marker.
func Percent(s string) (float64, bool) {
	cleaned := strings.TrimSuffix(clean(s), "%")
	if cleaned == "<" || suppressed(cleaned) {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}

// Integer parses a source count cell. A bare "<" is treated as missing before
// conversion is attempted; fractional renderings are truncated toward zero.
func Integer(s string) (int64, bool) {
	cleaned := clean(s)
	if cleaned == "<" || suppressed(cleaned) {
		return 0, false
	}
	if v, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return v, true
	}
	// Some eras render counts as "178.0".
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// Bool parses a yes/no flag cell ("Y", "N", "Yes", "No", "TRUE", ...).
// Anything unrecognized is missing rather than false.
func Bool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return true, true
	case "n", "no", "false", "0":
		return false, true
	default:
		return false, false
	}
}
