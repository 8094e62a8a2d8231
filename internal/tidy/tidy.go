// Package tidy pivots canonical wide tables into long format: one row per
// entity x category.
package tidy

import (
	"strings"

	"vaschooldata/pkg/contracts/domain"
)

// allCategory is the synthetic per-entity rollup attached when the source's
// primary metric (the graduation rate) is not itself a pivoted category. It
// duplicates the entity's scalar fields with a null count.
const allCategory = "all"

// Transform pivots a canonical wide table into a canonical tidy table. Every
// canonical numeric column becomes one (category, count) row per entity;
// columns absent from the wide table's column list generate no rows. Output
// column order is fixed by the TidyRow type regardless of input era.
func Transform(wide *domain.WideTable) *domain.TidyTable {
	out := &domain.TidyTable{Kind: wide.Kind}
	if len(wide.Rows) == 0 {
		out.Rows = []domain.TidyRow{}
		return out
	}

	out.Rows = make([]domain.TidyRow, 0, len(wide.Rows)*(len(wide.Columns)+1))
	for _, row := range wide.Rows {
		if wide.Kind == domain.KindGraduation {
			all := base(row)
			all.Category = allCategory
			out.Rows = append(out.Rows, all)
		}
		for _, col := range wide.Columns {
			r := base(row)
			r.Category = Category(col)
			r.Count = row.Value(col)
			if wide.Kind == domain.KindEnrollment {
				r.Pct = share(r.Count, row.RowTotal)
			}
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Category derives the tidy category label from a canonical column name:
// the grade_ prefix and the _diploma suffix are stripped, everything else
// passes through unchanged.
func Category(column string) string {
	column = strings.TrimPrefix(column, "grade_")
	column = strings.TrimSuffix(column, "_diploma")
	return column
}

// base copies a wide row's identifying columns and scalar fields into a tidy
// row with exactly one entity flag set.
func base(row domain.WideRow) domain.TidyRow {
	return domain.TidyRow{
		EndYear:      row.EndYear,
		Type:         row.Type,
		DistrictID:   row.DistrictID,
		CampusID:     row.CampusID,
		DistrictName: row.DistrictName,
		CampusName:   row.CampusName,
		County:       row.County,
		Charter:      row.Charter,
		RowTotal:     row.RowTotal,
		GradRate:     row.GradRate,
		IsState:      row.Type == domain.TypeState,
		IsDistrict:   row.Type == domain.TypeDistrict,
		IsSchool:     row.Type == domain.TypeSchool,
	}
}

// share expresses a category count as a fraction of the row total. Either
// side missing, or an empty total, leaves the share missing.
func share(count, total domain.NullFloat) domain.NullFloat {
	if !count.Valid || !total.Valid || total.Float64 == 0 {
		return domain.Null()
	}
	return domain.Float(count.Float64 / total.Float64)
}
