package tidy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaschooldata/pkg/contracts/domain"
)

func enrollmentWide() *domain.WideTable {
	return &domain.WideTable{
		Kind:    domain.KindEnrollment,
		Columns: []string{"white", "black", "grade_kg", "grade_01"},
		Rows: []domain.WideRow{
			{
				EndYear:  2019,
				Type:     domain.TypeState,
				RowTotal: domain.Float(1000),
				Values: map[string]domain.NullFloat{
					"white":    domain.Float(600),
					"black":    domain.Float(400),
					"grade_kg": domain.Float(100),
					"grade_01": domain.Null(),
				},
			},
			{
				EndYear:      2019,
				Type:         domain.TypeDistrict,
				DistrictID:   "001",
				DistrictName: "Accomack County",
				RowTotal:     domain.Float(250),
				Values: map[string]domain.NullFloat{
					"white":    domain.Float(150),
					"black":    domain.Float(100),
					"grade_kg": domain.Float(25),
					"grade_01": domain.Float(25),
				},
			},
		},
	}
}

func TestTransformEnrollment(t *testing.T) {
	out := Transform(enrollmentWide())

	require.Len(t, out.Rows, 8, "one row per entity per canonical column")
	assert.Equal(t, domain.KindEnrollment, out.Kind)

	first := out.Rows[0]
	assert.Equal(t, "white", first.Category)
	assert.Equal(t, domain.Float(600), first.Count)
	require.True(t, first.Pct.Valid)
	assert.InDelta(t, 0.6, first.Pct.Float64, 1e-9)

	// Grade columns lose their prefix in the category label.
	assert.Equal(t, "kg", out.Rows[2].Category)
	assert.Equal(t, "01", out.Rows[3].Category)

	// Missing counts survive the pivot as missing, with a missing share.
	assert.False(t, out.Rows[3].Count.Valid)
	assert.False(t, out.Rows[3].Pct.Valid)
}

func TestTransformExactlyOneEntityFlag(t *testing.T) {
	wide := enrollmentWide()
	wide.Rows = append(wide.Rows, domain.WideRow{
		EndYear:    2019,
		Type:       domain.TypeSchool,
		DistrictID: "001",
		CampusID:   "0010",
		Values:     map[string]domain.NullFloat{"white": domain.Float(10)},
	})

	for i, row := range Transform(wide).Rows {
		flags := 0
		for _, f := range []bool{row.IsState, row.IsDistrict, row.IsSchool} {
			if f {
				flags++
			}
		}
		assert.Equal(t, 1, flags, "row %d (%s %s)", i, row.Type, row.Category)
		switch row.Type {
		case domain.TypeState:
			assert.True(t, row.IsState)
		case domain.TypeDistrict:
			assert.True(t, row.IsDistrict)
		case domain.TypeSchool:
			assert.True(t, row.IsSchool)
		}
	}
}

// The pivot preserves mass: per entity, summing the pivoted counts over the
// demographic categories reproduces the wide row's values.
func TestTransformRoundTripsCounts(t *testing.T) {
	wide := enrollmentWide()
	out := Transform(wide)

	byEntity := make(map[string]float64)
	for _, row := range out.Rows {
		if row.Count.Valid && (row.Category == "white" || row.Category == "black") {
			byEntity[string(row.Type)+row.DistrictID] += row.Count.Float64
		}
	}
	assert.Equal(t, 1000.0, byEntity["State"])
	assert.Equal(t, 250.0, byEntity["District001"])
}

func TestTransformGraduationAllRollup(t *testing.T) {
	wide := &domain.WideTable{
		Kind:    domain.KindGraduation,
		Columns: []string{"advanced_diploma", "standard_diploma", "dropout"},
		Rows: []domain.WideRow{
			{
				EndYear:    2015,
				Type:       domain.TypeDistrict,
				DistrictID: "001",
				RowTotal:   domain.Float(200),
				GradRate:   domain.Float(0.85),
				Values: map[string]domain.NullFloat{
					"advanced_diploma": domain.Float(80),
					"standard_diploma": domain.Float(90),
					"dropout":          domain.Float(10),
				},
			},
		},
	}
	out := Transform(wide)

	require.Len(t, out.Rows, 4, "the all rollup plus one row per outcome column")

	all := out.Rows[0]
	assert.Equal(t, "all", all.Category)
	assert.False(t, all.Count.Valid, "the rollup carries scalars only, never a count")
	assert.Equal(t, domain.Float(0.85), all.GradRate)
	assert.Equal(t, domain.Float(200), all.RowTotal)

	// Diploma columns lose their suffix; graduation rows carry no share.
	assert.Equal(t, "advanced", out.Rows[1].Category)
	assert.Equal(t, "standard", out.Rows[2].Category)
	assert.Equal(t, "dropout", out.Rows[3].Category)
	for _, row := range out.Rows[1:] {
		assert.False(t, row.Pct.Valid)
	}
}

func TestTransformEmptyTable(t *testing.T) {
	out := Transform(&domain.WideTable{Kind: domain.KindEnrollment, Columns: []string{"white"}})
	assert.NotNil(t, out.Rows)
	assert.Empty(t, out.Rows)
}

func TestCategory(t *testing.T) {
	tests := []struct {
		column string
		want   string
	}{
		{column: "grade_pk", want: "pk"},
		{column: "grade_12", want: "12"},
		{column: "advanced_diploma", want: "advanced"},
		{column: "standard_diploma", want: "standard"},
		{column: "ged", want: "ged"},
		{column: "white", want: "white"},
		{column: "pacific_islander", want: "pacific_islander"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Category(tt.column), "column %q", tt.column)
	}
}

func TestShareZeroTotalIsMissing(t *testing.T) {
	wide := &domain.WideTable{
		Kind:    domain.KindEnrollment,
		Columns: []string{"white"},
		Rows: []domain.WideRow{{
			EndYear:  2019,
			Type:     domain.TypeDistrict,
			RowTotal: domain.Float(0),
			Values:   map[string]domain.NullFloat{"white": domain.Float(0)},
		}},
	}
	out := Transform(wide)
	require.Len(t, out.Rows, 1)
	assert.False(t, out.Rows[0].Pct.Valid, "division by a zero total stays missing")
}
