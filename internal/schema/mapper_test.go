package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaschooldata/pkg/contracts/domain"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "DIV_NUM", want: "div num"},
		{input: "Div Num", want: "div num"},
		{input: "  div   num  ", want: "div num"},
		{input: "Full-Time Count Total", want: "full-time count total"},
		{input: "LEVEL", want: "level"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.input), "input %q", tt.input)
	}
}

func rawTable(columns []string, rows ...[]string) *domain.RawTable {
	t := &domain.RawTable{Columns: columns}
	for _, cells := range rows {
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestMapperTextResolvesAliases(t *testing.T) {
	raw := rawTable(
		[]string{"DIV_NUM", "Div Name", "SCH_NUM"},
		[]string{"001", " Accomack County ", "0010"},
		[]string{"002", "Albemarle County", "0020"},
	)
	m := NewMapper(raw)

	ids, ok := m.Text(ConceptDistrictID)
	require.True(t, ok)
	assert.Equal(t, []string{"001", "002"}, ids)

	names, ok := m.Text(ConceptDistrictName)
	require.True(t, ok)
	assert.Equal(t, "Accomack County", names[0], "identifier text must be trimmed")

	// No county column anywhere: resolved but empty, length preserved.
	counties, ok := m.Text(ConceptCounty)
	assert.False(t, ok)
	assert.Equal(t, []string{"", ""}, counties)
}

// When both the canonical spelling and an alias appear, the canonical
// spelling wins; among aliases, list order decides.
func TestMapperResolutionOrder(t *testing.T) {
	raw := rawTable(
		[]string{"district_id", "DIV NUM"},
		[]string{"canonical", "alias"},
	)
	m := NewMapper(raw)

	ids, ok := m.Text(ConceptDistrictID)
	require.True(t, ok)
	assert.Equal(t, []string{"canonical"}, ids)

	raw = rawTable(
		[]string{"Division Number", "DIV NUM"},
		[]string{"second-alias", "first-alias"},
	)
	ids, ok = NewMapper(raw).Text(ConceptDistrictID)
	require.True(t, ok)
	assert.Equal(t, []string{"first-alias"}, ids, "earlier alias in the list wins")
}

func TestMapperNumeric(t *testing.T) {
	raw := rawTable(
		[]string{"DIV_NUM", "Full-Time Count Total"},
		[]string{"001", "1,234"},
		[]string{"002", "<"},
		[]string{"003", "           178"},
	)
	m := NewMapper(raw)

	totals := m.Numeric(ConceptTotal)
	require.Len(t, totals, 3)
	assert.Equal(t, domain.Float(1234), totals[0])
	assert.False(t, totals[1].Valid)
	assert.Equal(t, domain.Float(178), totals[2])

	// Absent concept: whole column missing, length preserved.
	rates := m.Numeric(ConceptGradRate)
	require.Len(t, rates, 3)
	for _, v := range rates {
		assert.False(t, v.Valid)
	}
}

func TestMapperBools(t *testing.T) {
	raw := rawTable(
		[]string{"Charter School Flag"},
		[]string{"Y"},
		[]string{"N"},
		[]string{"??"},
	)
	flags := NewMapper(raw).Bools(ConceptCharter)

	require.Len(t, flags, 3)
	assert.Equal(t, domain.BoolOf(true), flags[0])
	assert.Equal(t, domain.BoolOf(false), flags[1])
	assert.False(t, flags[2].Valid, "unrecognized flag text is missing, not false")
}

func TestEnrollmentColumnOrderIsFixed(t *testing.T) {
	cols := Columns(EnrollmentConcepts())
	require.Len(t, cols, 21, "7 demographics plus pre-K, kindergarten and grades 1-12")
	assert.Equal(t, "white", cols[0])
	assert.Equal(t, "multiracial", cols[6])
	assert.Equal(t, "grade_pk", cols[7])
	assert.Equal(t, "grade_kg", cols[8])
	assert.Equal(t, "grade_12", cols[20])
}

func TestGraduationColumnOrderIsFixed(t *testing.T) {
	cols := Columns(GraduationConcepts())
	assert.Equal(t, []string{
		"advanced_diploma", "standard_diploma", "other_diploma",
		"ged", "certificate", "still_enrolled", "dropout",
	}, cols)
}
