package schema

import (
	"fmt"
	"strings"

	"vaschooldata/internal/errors"
	"vaschooldata/pkg/contracts/domain"
)

// Era detection is a pure function of the column set, never of row values.
// Every valid raw record set maps to exactly one era; an unknown column
// signature is a fatal unrecognized-schema error, never a guess.

// DetectEnrollment classifies an enrollment export's schema era.
//
// A Level column marks the later era, whose exports tag each row's entity
// level and already include a state aggregate row. Without it the export
// must carry the early-era identifier signature (division number plus a
// membership total or demographic column); those exports contain leaf-level
// rows only and state totals are synthesized downstream.
func DetectEnrollment(raw *domain.RawTable) (domain.Era, error) {
	m := NewMapper(raw)
	if hasText(m, ConceptLevel) {
		return domain.EraV2, nil
	}
	if hasText(m, ConceptDistrictID) && (hasConcept(m, ConceptTotal) || hasAnyConcept(m, EnrollmentDemographics)) {
		return domain.EraV1, nil
	}
	return "", unrecognized("enrollment", raw)
}

// DetectGraduation classifies a graduation export's schema era. The later
// era carries a Level column; the early era is identified by its cohort
// count column.
func DetectGraduation(raw *domain.RawTable) (domain.Era, error) {
	m := NewMapper(raw)
	if hasText(m, ConceptLevel) {
		return domain.EraV2, nil
	}
	if hasConcept(m, ConceptCohort) {
		return domain.EraV1, nil
	}
	return "", unrecognized("graduation", raw)
}

func hasText(m *Mapper, concept TextConcept) bool {
	return m.Has(append([]string{concept.Canonical}, concept.Aliases...)...)
}

func hasConcept(m *Mapper, concept Concept) bool {
	return m.Has(append([]string{concept.Canonical}, concept.Aliases...)...)
}

func hasAnyConcept(m *Mapper, concepts []Concept) bool {
	for _, c := range concepts {
		if hasConcept(m, c) {
			return true
		}
	}
	return false
}

func unrecognized(kind string, raw *domain.RawTable) error {
	cols := "(none)"
	if raw != nil && len(raw.Columns) > 0 {
		cols = strings.Join(raw.Columns, ", ")
	}
	return errors.NewSchemaError(
		fmt.Sprintf("unrecognized %s schema: no known column signature matched source columns [%s]", kind, cols))
}
