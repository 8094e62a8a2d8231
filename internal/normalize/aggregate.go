package normalize

import (
	"vaschooldata/pkg/contracts/domain"
)

// synthesizeState derives a state-level row by summing each canonical numeric
// column across the given district rows.
//
// Suppressed district cells count as zero in the sum ("sum of available").
// One suppressed district therefore cannot null out a state total, at the
// documented cost of understating totals in heavily suppressed years. This
// matches the published aggregates and is kept deliberately; changing it
// would silently change decades of published numbers.
//
// Summation is associative and commutative, so the result is independent of
// district row order and the operation is idempotent.
func (n *Normalizer) synthesizeState(table *domain.WideTable, districts []domain.WideRow, endYear int) domain.WideRow {
	state := domain.WideRow{
		EndYear: endYear,
		Type:    domain.TypeState,
		Values:  make(map[string]domain.NullFloat, len(table.Columns)),
	}

	var total float64
	for _, col := range table.Columns {
		var sum float64
		for _, d := range districts {
			sum += d.Value(col).Or(0)
		}
		state.Values[col] = domain.Float(sum)
	}
	for _, d := range districts {
		total += d.RowTotal.Or(0)
	}
	state.RowTotal = domain.Float(total)

	if table.Kind == domain.KindGraduation {
		state.GradRate = stateGradRate(state)
	}
	return state
}

// SynthesizeState exposes state-row synthesis over an existing canonical
// table. Pre-existing state rows pass through unchanged: aggregation is
// skipped entirely for eras whose exports already include one, so a state
// total is never aggregated twice.
func (n *Normalizer) SynthesizeState(table *domain.WideTable, endYear int) domain.WideRow {
	if existing := table.StateRows(); len(existing) > 0 {
		return existing[0]
	}
	var districts []domain.WideRow
	for _, r := range table.Rows {
		if r.Type == domain.TypeDistrict {
			districts = append(districts, r)
		}
	}
	return n.synthesizeState(table, districts, endYear)
}

// stateGradRate derives the synthesized state's on-time rate: diploma earners
// over cohort size. GED and certificate completers are not diploma earners.
func stateGradRate(state domain.WideRow) domain.NullFloat {
	if !state.RowTotal.Valid || state.RowTotal.Float64 <= 0 {
		return domain.Null()
	}
	graduates := state.Value("advanced_diploma").Or(0) +
		state.Value("standard_diploma").Or(0) +
		state.Value("other_diploma").Or(0)
	return domain.Float(graduates / state.RowTotal.Float64)
}
