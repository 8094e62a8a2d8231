package schema

import (
	"strings"

	"vaschooldata/internal/parse"
	"vaschooldata/pkg/contracts/domain"
)

// NormalizeName folds a column name for matching: lowercased, trimmed,
// underscores treated as spaces, interior whitespace collapsed. "DIV_NUM",
// "Div Num" and "div  num" all normalize to "div num".
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.Join(strings.Fields(name), " ")
}

// Mapper resolves canonical concepts against one raw record set's columns.
// Lookup is deterministic: the canonical name wins if present, otherwise the
// first alias present in the source is adopted.
type Mapper struct {
	raw    *domain.RawTable
	byNorm map[string]string
}

// NewMapper indexes a raw record set's column names for alias lookup. The
// first source column to claim a normalized name keeps it.
func NewMapper(raw *domain.RawTable) *Mapper {
	m := &Mapper{raw: raw, byNorm: make(map[string]string)}
	if raw == nil {
		return m
	}
	for _, col := range raw.Columns {
		norm := NormalizeName(col)
		if _, taken := m.byNorm[norm]; !taken {
			m.byNorm[norm] = col
		}
	}
	return m
}

// Has reports whether any of the given names (canonical or alias spellings)
// exists as a source column.
func (m *Mapper) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := m.byNorm[NormalizeName(name)]; ok {
			return true
		}
	}
	return false
}

// find returns the source column adopted for a canonical name and its
// ordered aliases.
func (m *Mapper) find(canonical string, aliases []string) (string, bool) {
	if col, ok := m.byNorm[NormalizeName(canonical)]; ok {
		return col, true
	}
	for _, alias := range aliases {
		if col, ok := m.byNorm[NormalizeName(alias)]; ok {
			return col, true
		}
	}
	return "", false
}

// rawColumn extracts one source column as text, row order preserved.
func (m *Mapper) rawColumn(col string) []string {
	out := make([]string, len(m.raw.Rows))
	for i, row := range m.raw.Rows {
		out[i] = row[col]
	}
	return out
}

// Text resolves an identifier concept. When no source column matches, every
// value is the empty string.
func (m *Mapper) Text(concept TextConcept) ([]string, bool) {
	col, ok := m.find(concept.Canonical, concept.Aliases)
	if !ok {
		return make([]string, len(m.raw.Rows)), false
	}
	values := m.rawColumn(col)
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return values, true
}

// Numeric resolves a numeric concept, applying the concept's parsing
// convention. When no source column matches, the column is entirely missing
// for this record set.
func (m *Mapper) Numeric(concept Concept) []domain.NullFloat {
	col, ok := m.find(concept.Canonical, concept.Aliases)
	if !ok {
		return parse.MissingColumn(len(m.raw.Rows))
	}
	return parse.Column(concept.Kind, m.rawColumn(col))
}

// Bools resolves a yes/no flag concept. Unrecognized cell text is missing,
// never false.
func (m *Mapper) Bools(concept TextConcept) []domain.NullBool {
	out := make([]domain.NullBool, len(m.raw.Rows))
	col, ok := m.find(concept.Canonical, concept.Aliases)
	if !ok {
		return out
	}
	for i, cell := range m.rawColumn(col) {
		if v, ok := parse.Bool(cell); ok {
			out[i] = domain.BoolOf(v)
		}
	}
	return out
}
