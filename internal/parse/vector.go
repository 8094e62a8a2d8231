package parse

import (
	"vaschooldata/pkg/contracts/domain"
)

// ValueKind selects the parsing convention for a canonical concept.
type ValueKind int

const (
	KindNumeric ValueKind = iota
	KindPercent
	KindInteger
)

// Column parses a vector of source cells with the given convention. The
// result has the same length and order as the input, with missing markers
// wherever a cell was suppressed or malformed.
func Column(kind ValueKind, cells []string) []domain.NullFloat {
	out := make([]domain.NullFloat, len(cells))
	for i, cell := range cells {
		out[i] = Cell(kind, cell)
	}
	return out
}

// Cell parses a single source cell with the given convention.
func Cell(kind ValueKind, cell string) domain.NullFloat {
	switch kind {
	case KindPercent:
		if v, ok := Percent(cell); ok {
			return domain.Float(v)
		}
	case KindInteger:
		if v, ok := Integer(cell); ok {
			return domain.Float(float64(v))
		}
	default:
		if v, ok := Numeric(cell); ok {
			return domain.Float(v)
		}
	}
	return domain.Null()
}

// MissingColumn returns an all-missing vector of length n, used when a
// canonical concept has no source column in the inspected era.
func MissingColumn(n int) []domain.NullFloat {
	return make([]domain.NullFloat, n)
}
