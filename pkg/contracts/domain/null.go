package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NullFloat is a nullable numeric value. Invalid means the source value was
// suppressed, unreported, or unparseable. It is never conflated with zero.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a valid NullFloat carrying v.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Null returns the missing marker.
func Null() NullFloat {
	return NullFloat{}
}

// Or returns the carried value, or fallback when the value is missing.
func (n NullFloat) Or(fallback float64) float64 {
	if n.Valid {
		return n.Float64
	}
	return fallback
}

// Equal reports field-for-field equality, treating all missing values as equal.
func (n NullFloat) Equal(other NullFloat) bool {
	if !n.Valid && !other.Valid {
		return true
	}
	return n.Valid == other.Valid && n.Float64 == other.Float64
}

// String renders the value for CSV output; missing renders as the empty string.
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// MarshalJSON encodes missing values as JSON null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON decodes JSON null as missing.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("null float: %w", err)
	}
	*n = NullFloat{Float64: v, Valid: true}
	return nil
}

// NullBool is a nullable boolean-like flag (e.g. charter status), where the
// source may report yes, no, or nothing at all.
type NullBool struct {
	Bool  bool
	Valid bool
}

// BoolOf returns a valid NullBool carrying v.
func BoolOf(v bool) NullBool {
	return NullBool{Bool: v, Valid: true}
}

// String renders the flag for CSV output; missing renders as the empty string.
func (n NullBool) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatBool(n.Bool)
}

// MarshalJSON encodes missing values as JSON null.
func (n NullBool) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Bool)
}

// UnmarshalJSON decodes JSON null as missing.
func (n *NullBool) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = NullBool{}
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("null bool: %w", err)
	}
	*n = NullBool{Bool: v, Valid: true}
	return nil
}
