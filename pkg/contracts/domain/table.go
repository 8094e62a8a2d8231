package domain

// DataKind identifies which report family a table was normalized from.
type DataKind string

const (
	KindEnrollment DataKind = "enr"
	KindGraduation DataKind = "grad"
)

// EntityType is the granularity of a canonical row.
type EntityType string

const (
	TypeState    EntityType = "State"
	TypeDistrict EntityType = "District"
	TypeSchool   EntityType = "School"
)

// Era labels the historical schema version a raw export was published under.
// Eras are stable and finite; new ones are added when the agency changes its
// export schema, never removed.
type Era string

const (
	// EraV1 covers early exports: school- or division-level rows only, no
	// Level column, state totals synthesized downstream.
	EraV1 Era = "v1"
	// EraV2 covers later exports: a Level column tags each row's entity
	// level and a state aggregate row is already included.
	EraV2 Era = "v2"
)

// RawTable is an ordered record set exactly as loaded from a source export.
// Column names are source-controlled and vary in case, spacing and wording
// across years. A RawTable is immutable once produced by the loader and is
// discarded after normalization.
type RawTable struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// Empty reports whether the table has no data rows. A nil RawTable is empty.
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// WideRow is one canonical row: one entity (state, district or school) in one
// end year. Identifier strings preserve leading zeros; the empty string means
// the identifier is not applicable at this entity level.
type WideRow struct {
	EndYear      int        `json:"end_year"`
	Type         EntityType `json:"type"`
	DistrictID   string     `json:"district_id"`
	CampusID     string     `json:"campus_id"`
	DistrictName string     `json:"district_name"`
	CampusName   string     `json:"campus_name"`
	County       string     `json:"county"`
	Charter      NullBool   `json:"charter_flag"`
	RowTotal     NullFloat  `json:"row_total"`
	GradRate     NullFloat  `json:"grad_rate"`

	// Values holds every canonical numeric column for the table's kind,
	// keyed by canonical column name. Within one table the key set is
	// identical across rows; concepts absent from the source era are
	// present as missing values, never absent keys.
	Values map[string]NullFloat `json:"values"`
}

// Value returns the named canonical column, or missing when the column is not
// part of this row's table.
func (r *WideRow) Value(column string) NullFloat {
	if r.Values == nil {
		return NullFloat{}
	}
	return r.Values[column]
}

// WideTable is a canonical wide table: one row per entity, one column per
// demographic, grade or diploma-type count. Columns fixes the canonical
// numeric column order for the table's kind, independent of source era.
type WideTable struct {
	Kind    DataKind   `json:"kind"`
	Columns []string   `json:"columns"`
	Rows    []WideRow  `json:"rows"`
}

// StateRows returns the rows tagged as state-level aggregates.
func (t *WideTable) StateRows() []WideRow {
	var out []WideRow
	for _, r := range t.Rows {
		if r.Type == TypeState {
			out = append(out, r)
		}
	}
	return out
}

// TidyRow is one (entity, category) observation in long format. Exactly one
// of IsState, IsDistrict, IsSchool is true.
type TidyRow struct {
	EndYear      int        `json:"end_year"`
	Type         EntityType `json:"type"`
	DistrictID   string     `json:"district_id"`
	CampusID     string     `json:"campus_id"`
	DistrictName string     `json:"district_name"`
	CampusName   string     `json:"campus_name"`
	County       string     `json:"county"`
	Charter      NullBool   `json:"charter_flag"`
	RowTotal     NullFloat  `json:"row_total"`
	GradRate     NullFloat  `json:"grad_rate"`
	Category     string     `json:"category"`
	Count        NullFloat  `json:"count"`
	Pct          NullFloat  `json:"pct"`
	IsState      bool       `json:"is_state"`
	IsDistrict   bool       `json:"is_district"`
	IsSchool     bool       `json:"is_school"`
}

// TidyTable is a canonical long-format table: one row per entity x category.
type TidyTable struct {
	Kind DataKind  `json:"kind"`
	Rows []TidyRow `json:"rows"`
}
