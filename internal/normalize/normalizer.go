// Package normalize converts raw agency exports into canonical wide tables.
// It applies the schema mapper and value parser per entity level, derives row
// totals, and synthesizes state aggregates for eras whose exports carry no
// state row.
package normalize

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"vaschooldata/internal/errors"
	"vaschooldata/internal/schema"
	"vaschooldata/pkg/contracts/domain"
)

// Normalizer produces canonical wide tables from raw record sets.
type Normalizer struct {
	logger *slog.Logger

	rowsNormalized    metric.Int64Counter
	statesSynthesized metric.Int64Counter
}

// New creates a normalizer. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}

	meter := otel.Meter("vaschooldata/normalize")
	rows, _ := meter.Int64Counter("vaschooldata.rows_normalized",
		metric.WithDescription("Canonical rows produced by normalization"))
	states, _ := meter.Int64Counter("vaschooldata.states_synthesized",
		metric.WithDescription("State rows synthesized by aggregation"))

	return &Normalizer{
		logger:            logger,
		rowsNormalized:    rows,
		statesSynthesized: states,
	}
}

// Enrollment normalizes one year's school-level and district-level raw
// record sets into a single canonical wide table: state row first, then
// district rows, then school rows. Either raw set may be nil or empty; the
// result always carries the full canonical column set.
func (n *Normalizer) Enrollment(ctx context.Context, rawSchool, rawDistrict *domain.RawTable, endYear int) (*domain.WideTable, error) {
	if !domain.YearSupported(domain.KindEnrollment, endYear) {
		return nil, errors.NewValidationError(fmt.Sprintf(
			"enrollment end year %d outside supported range %d-%d",
			endYear, domain.MinEnrollmentYear, domain.MaxEnrollmentYear))
	}

	concepts := schema.EnrollmentConcepts()
	table := &domain.WideTable{
		Kind:    domain.KindEnrollment,
		Columns: schema.Columns(concepts),
	}

	spec := levelSpec{
		concepts:    concepts,
		totals:      schema.ConceptTotal,
		sumConcepts: schema.EnrollmentDemographics,
	}

	schoolRows, err := n.entityRows(ctx, rawSchool, domain.TypeSchool, endYear, spec)
	if err != nil {
		return nil, err
	}
	districtRows, err := n.entityRows(ctx, rawDistrict, domain.TypeDistrict, endYear, spec)
	if err != nil {
		return nil, err
	}

	n.assemble(ctx, table, endYear, districtRows, schoolRows)
	return table, nil
}

// Graduation normalizes one year's cohort raw record set. Early-era exports
// carry division-level rows only; later eras tag levels explicitly and
// include a state row.
func (n *Normalizer) Graduation(ctx context.Context, raw *domain.RawTable, endYear int) (*domain.WideTable, error) {
	if !domain.YearSupported(domain.KindGraduation, endYear) {
		return nil, errors.NewValidationError(fmt.Sprintf(
			"graduation end year %d outside supported range %d-%d",
			endYear, domain.MinGraduationYear, domain.MaxGraduationYear))
	}

	concepts := schema.GraduationConcepts()
	table := &domain.WideTable{
		Kind:    domain.KindGraduation,
		Columns: schema.Columns(concepts),
	}

	spec := levelSpec{
		concepts:    concepts,
		totals:      schema.ConceptCohort,
		sumConcepts: schema.GraduationOutcomes,
		gradRate:    true,
	}

	rows, err := n.entityRows(ctx, raw, domain.TypeDistrict, endYear, spec)
	if err != nil {
		return nil, err
	}

	var districtRows, schoolRows []domain.WideRow
	for _, r := range rows {
		if r.Type == domain.TypeSchool {
			schoolRows = append(schoolRows, r)
		} else {
			districtRows = append(districtRows, r)
		}
	}

	n.assemble(ctx, table, endYear, districtRows, schoolRows)
	return table, nil
}

// levelSpec carries the per-kind normalization parameters.
type levelSpec struct {
	concepts    []schema.Concept
	totals      schema.Concept
	sumConcepts []schema.Concept
	gradRate    bool
}

// entityRows normalizes one raw record set at one entity level. An empty or
// nil raw set yields zero rows without error; callers never special-case
// "no data". Rows tagged State by a later-era Level column keep that tag so
// the aggregation step can pass them through.
func (n *Normalizer) entityRows(ctx context.Context, raw *domain.RawTable, level domain.EntityType, endYear int, spec levelSpec) ([]domain.WideRow, error) {
	if raw.Empty() {
		return nil, nil
	}

	var (
		era domain.Era
		err error
	)
	if spec.gradRate {
		era, err = schema.DetectGraduation(raw)
	} else {
		era, err = schema.DetectEnrollment(raw)
	}
	if err != nil {
		return nil, err
	}

	m := schema.NewMapper(raw)

	districtIDs, _ := m.Text(schema.ConceptDistrictID)
	campusIDs, _ := m.Text(schema.ConceptCampusID)
	districtNames, _ := m.Text(schema.ConceptDistrictName)
	campusNames, _ := m.Text(schema.ConceptCampusName)
	counties, _ := m.Text(schema.ConceptCounty)
	charters := m.Bools(schema.ConceptCharter)
	levels, hasLevel := m.Text(schema.ConceptLevel)
	totals := m.Numeric(spec.totals)

	var rates []domain.NullFloat
	if spec.gradRate {
		rates = m.Numeric(schema.ConceptGradRate)
	}

	values := make(map[string][]domain.NullFloat, len(spec.concepts))
	for _, c := range spec.concepts {
		values[c.Canonical] = m.Numeric(c)
	}

	rows := make([]domain.WideRow, 0, len(raw.Rows))
	for i := range raw.Rows {
		row := domain.WideRow{
			EndYear:      endYear,
			Type:         level,
			DistrictID:   districtIDs[i],
			CampusID:     campusIDs[i],
			DistrictName: districtNames[i],
			CampusName:   campusNames[i],
			County:       counties[i],
			Charter:      charters[i],
			Values:       make(map[string]domain.NullFloat, len(spec.concepts)),
		}
		if era == domain.EraV2 && hasLevel {
			row.Type = levelType(levels[i], level)
		}
		for _, c := range spec.concepts {
			row.Values[c.Canonical] = values[c.Canonical][i]
		}
		if spec.gradRate {
			row.GradRate = rates[i]
		}
		row.RowTotal = rowTotal(totals[i], row.Values, spec.sumConcepts)

		if blankRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	n.rowsNormalized.Add(ctx, int64(len(rows)),
		metric.WithAttributes(attribute.String("level", string(level))))
	n.logger.DebugContext(ctx, "normalized entity level",
		slog.String("level", string(level)),
		slog.String("era", string(era)),
		slog.Int("end_year", endYear),
		slog.Int("raw_rows", len(raw.Rows)),
		slog.Int("rows", len(rows)))

	return rows, nil
}

// assemble orders the final table (state, districts, schools), synthesizing
// the state row only when the source era supplied none.
func (n *Normalizer) assemble(ctx context.Context, table *domain.WideTable, endYear int, districtRows, schoolRows []domain.WideRow) {
	var stateRows, plainDistricts []domain.WideRow
	for _, r := range districtRows {
		if r.Type == domain.TypeState {
			stateRows = append(stateRows, r)
		} else {
			plainDistricts = append(plainDistricts, r)
		}
	}
	if len(stateRows) == 0 && len(plainDistricts) > 0 {
		stateRows = append(stateRows, n.synthesizeState(table, plainDistricts, endYear))
		n.statesSynthesized.Add(ctx, 1,
			metric.WithAttributes(attribute.String("kind", string(table.Kind))))
	}

	table.Rows = append(table.Rows, stateRows...)
	table.Rows = append(table.Rows, plainDistricts...)
	for _, r := range schoolRows {
		// Later-era school exports can repeat the state aggregate; the
		// district-level copy wins.
		if r.Type != domain.TypeState {
			table.Rows = append(table.Rows, r)
		}
	}
}

// rowTotal prefers the source's explicit total; otherwise it derives one by
// summing the resolved component columns, treating missing addends as zero.
// When no addend is present at all the total itself stays missing.
func rowTotal(explicit domain.NullFloat, values map[string]domain.NullFloat, sumConcepts []schema.Concept) domain.NullFloat {
	if explicit.Valid {
		return explicit
	}
	var sum float64
	seen := false
	for _, c := range sumConcepts {
		if v := values[c.Canonical]; v.Valid {
			sum += v.Float64
			seen = true
		}
	}
	if !seen {
		return domain.Null()
	}
	return domain.Float(sum)
}

// levelType maps a later-era Level cell onto the canonical entity type.
func levelType(cell string, fallback domain.EntityType) domain.EntityType {
	switch schema.NormalizeName(cell) {
	case "state":
		return domain.TypeState
	case "division", "district", "division totals":
		return domain.TypeDistrict
	case "school", "campus":
		return domain.TypeSchool
	default:
		return fallback
	}
}

// blankRow filters separator and padding rows that some workbook exports
// append: no identifiers and not a single numeric value.
func blankRow(row domain.WideRow) bool {
	if row.DistrictID != "" || row.CampusID != "" || row.DistrictName != "" || row.CampusName != "" {
		return false
	}
	if row.RowTotal.Valid {
		return false
	}
	for _, v := range row.Values {
		if v.Valid {
			return false
		}
	}
	return true
}
