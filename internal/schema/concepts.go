// Package schema maps source-controlled column names onto the canonical
// column vocabulary and classifies which historical schema era produced a raw
// export. The concept tables below are maintained by hand: each canonical
// concept carries an ordered list of the source names it has appeared under
// across the decades, searched first to last.
package schema

import (
	"vaschooldata/internal/parse"
)

// Concept is one canonical numeric column and its known historical aliases.
type Concept struct {
	Canonical string
	Kind      parse.ValueKind
	Aliases   []string
}

// TextConcept is a canonical identifier column and its known aliases.
type TextConcept struct {
	Canonical string
	Aliases   []string
}

// Identifier concepts shared by both report families. Alias order is fixed;
// earlier entries are earlier-era spellings.
var (
	ConceptDistrictID = TextConcept{
		Canonical: "district_id",
		Aliases:   []string{"div num", "division number", "division no", "div no", "division code"},
	}
	ConceptCampusID = TextConcept{
		Canonical: "campus_id",
		Aliases:   []string{"sch num", "school number", "school no", "sch no", "school code"},
	}
	ConceptDistrictName = TextConcept{
		Canonical: "district_name",
		Aliases:   []string{"div name", "division name", "division"},
	}
	ConceptCampusName = TextConcept{
		Canonical: "campus_name",
		Aliases:   []string{"sch name", "school name", "school"},
	}
	ConceptCounty = TextConcept{
		Canonical: "county",
		Aliases:   []string{"county name", "region", "superintendent region"},
	}
	ConceptCharter = TextConcept{
		Canonical: "charter_flag",
		Aliases:   []string{"charter", "charter school", "charter school flag"},
	}
	ConceptLevel = TextConcept{
		Canonical: "level",
		Aliases:   []string{"entity level", "record level"},
	}
)

// Scalar concepts.
var (
	ConceptTotal = Concept{
		Canonical: "row_total",
		Kind:      parse.KindInteger,
		Aliases:   []string{"total", "total count", "full-time count total", "ft total count", "total students"},
	}
	ConceptCohort = Concept{
		Canonical: "row_total",
		Kind:      parse.KindInteger,
		Aliases:   []string{"cohort", "cohort count", "students in cohort", "total in cohort"},
	}
	ConceptGradRate = Concept{
		Canonical: "grad_rate",
		Kind:      parse.KindPercent,
		Aliases:   []string{"graduation rate", "grad rate", "on-time graduation rate", "virginia on-time graduation rate", "cohort graduation rate"},
	}
)

// EnrollmentDemographics are the demographic membership counts. Their sum,
// ignoring missing addends, reproduces a row's full-time membership total.
var EnrollmentDemographics = []Concept{
	{Canonical: "white", Kind: parse.KindInteger,
		Aliases: []string{"white", "wh", "race white", "white count", "white not of hispanic origin"}},
	{Canonical: "black", Kind: parse.KindInteger,
		Aliases: []string{"black", "bl", "race black", "black count", "black not of hispanic origin", "african american"}},
	{Canonical: "hispanic", Kind: parse.KindInteger,
		Aliases: []string{"hispanic", "hi", "hispanic count", "latino", "race hispanic"}},
	{Canonical: "asian", Kind: parse.KindInteger,
		Aliases: []string{"asian", "as", "race asian", "asian count"}},
	{Canonical: "american_indian", Kind: parse.KindInteger,
		Aliases: []string{"american indian", "ai", "american indian or alaska native", "native american"}},
	{Canonical: "pacific_islander", Kind: parse.KindInteger,
		Aliases: []string{"pacific islander", "pi", "native hawaiian", "native hawaiian or pacific islander", "hawaiian"}},
	{Canonical: "multiracial", Kind: parse.KindInteger,
		Aliases: []string{"multiracial", "two or more races", "two or more", "non-hispanic two or more races", "multi"}},
}

// EnrollmentGrades are the per-grade membership counts.
var EnrollmentGrades = []Concept{
	{Canonical: "grade_pk", Kind: parse.KindInteger,
		Aliases: []string{"pre-kg", "pk", "pre-k", "pre kg count", "prekindergarten"}},
	{Canonical: "grade_kg", Kind: parse.KindInteger,
		Aliases: []string{"kg", "kindergarten", "kg count", "k"}},
	{Canonical: "grade_01", Kind: parse.KindInteger,
		Aliases: []string{"grade 1", "gr 1", "grade one", "1"}},
	{Canonical: "grade_02", Kind: parse.KindInteger,
		Aliases: []string{"grade 2", "gr 2", "grade two", "2"}},
	{Canonical: "grade_03", Kind: parse.KindInteger,
		Aliases: []string{"grade 3", "gr 3", "grade three", "3"}},
	{Canonical: "grade_04", Kind: parse.KindInteger,
		Aliases: []string{"grade 4", "gr 4", "grade four", "4"}},
	{Canonical: "grade_05", Kind: parse.KindInteger,
		Aliases: []string{"grade 5", "gr 5", "grade five", "5"}},
	{Canonical: "grade_06", Kind: parse.KindInteger,
		Aliases: []string{"grade 6", "gr 6", "grade six", "6"}},
	{Canonical: "grade_07", Kind: parse.KindInteger,
		Aliases: []string{"grade 7", "gr 7", "grade seven", "7"}},
	{Canonical: "grade_08", Kind: parse.KindInteger,
		Aliases: []string{"grade 8", "gr 8", "grade eight", "8"}},
	{Canonical: "grade_09", Kind: parse.KindInteger,
		Aliases: []string{"grade 9", "gr 9", "grade nine", "9"}},
	{Canonical: "grade_10", Kind: parse.KindInteger,
		Aliases: []string{"grade 10", "gr 10", "grade ten", "10"}},
	{Canonical: "grade_11", Kind: parse.KindInteger,
		Aliases: []string{"grade 11", "gr 11", "grade eleven", "11"}},
	{Canonical: "grade_12", Kind: parse.KindInteger,
		Aliases: []string{"grade 12", "gr 12", "grade twelve", "12"}},
}

// GraduationOutcomes are the cohort outcome counts.
var GraduationOutcomes = []Concept{
	{Canonical: "advanced_diploma", Kind: parse.KindInteger,
		Aliases: []string{"advanced studies diploma", "advanced diploma", "adv studies diploma", "advanced studies"}},
	{Canonical: "standard_diploma", Kind: parse.KindInteger,
		Aliases: []string{"standard diploma", "standard"}},
	{Canonical: "other_diploma", Kind: parse.KindInteger,
		Aliases: []string{"other diploma", "modified standard diploma", "special diploma", "applied studies diploma", "other diplomas"}},
	{Canonical: "ged", Kind: parse.KindInteger,
		Aliases: []string{"ged", "ged certificate", "geds"}},
	{Canonical: "certificate", Kind: parse.KindInteger,
		Aliases: []string{"certificate of program completion", "certificate of completion", "certificate", "certificates"}},
	{Canonical: "still_enrolled", Kind: parse.KindInteger,
		Aliases: []string{"still enrolled", "continuing", "still in school"}},
	{Canonical: "dropout", Kind: parse.KindInteger,
		Aliases: []string{"dropout", "dropouts", "dropped out"}},
}

// EnrollmentConcepts returns the canonical numeric concepts of an enrollment
// table in fixed column order: demographics first, then grades.
func EnrollmentConcepts() []Concept {
	out := make([]Concept, 0, len(EnrollmentDemographics)+len(EnrollmentGrades))
	out = append(out, EnrollmentDemographics...)
	out = append(out, EnrollmentGrades...)
	return out
}

// GraduationConcepts returns the canonical numeric concepts of a graduation
// table in fixed column order.
func GraduationConcepts() []Concept {
	out := make([]Concept, len(GraduationOutcomes))
	copy(out, GraduationOutcomes)
	return out
}

// Columns lists the canonical column names of a concept set, in order.
func Columns(concepts []Concept) []string {
	out := make([]string, len(concepts))
	for i, c := range concepts {
		out[i] = c.Canonical
	}
	return out
}
