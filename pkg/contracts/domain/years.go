package domain

// Supported end-year ranges for each report family. Fall-membership
// enrollment exports begin with the 2003-04 school year; adjusted-cohort
// graduation reporting begins with the class of 2008.
const (
	MinEnrollmentYear = 2004
	MaxEnrollmentYear = 2025

	MinGraduationYear = 2008
	MaxGraduationYear = 2025
)

// YearSupported reports whether endYear is inside the supported range for the
// given report family.
func YearSupported(kind DataKind, endYear int) bool {
	switch kind {
	case KindGraduation:
		return endYear >= MinGraduationYear && endYear <= MaxGraduationYear
	default:
		return endYear >= MinEnrollmentYear && endYear <= MaxEnrollmentYear
	}
}
