package vaschooldata

import (
	"encoding/csv"
	"io"
	"strconv"

	"vaschooldata/internal/errors"
	"vaschooldata/pkg/contracts/domain"
)

// wideIdentityHeader is the fixed leading column order of every wide CSV,
// independent of which optional columns the source era carried.
var wideIdentityHeader = []string{
	"end_year", "type", "district_id", "campus_id",
	"district_name", "campus_name", "county", "charter_flag", "row_total",
}

// WriteWideCSV writes a canonical wide table with the fixed column order:
// identity columns, then the table's canonical numeric columns.
func WriteWideCSV(w io.Writer, table *domain.WideTable) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := append([]string(nil), wideIdentityHeader...)
	if table.Kind == domain.KindGraduation {
		header = append(header, "grad_rate")
	}
	header = append(header, table.Columns...)
	if err := writer.Write(header); err != nil {
		return errors.NewStorageError("failed to write CSV header row", err)
	}

	for _, row := range table.Rows {
		record := []string{
			strconv.Itoa(row.EndYear),
			string(row.Type),
			row.DistrictID,
			row.CampusID,
			row.DistrictName,
			row.CampusName,
			row.County,
			row.Charter.String(),
			row.RowTotal.String(),
		}
		if table.Kind == domain.KindGraduation {
			record = append(record, row.GradRate.String())
		}
		for _, col := range table.Columns {
			record = append(record, row.Value(col).String())
		}
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError("failed to write CSV data row", err)
		}
	}
	return nil
}

// tidyHeader is the fixed column order of every tidy CSV.
var tidyHeader = []string{
	"end_year", "type", "district_id", "campus_id",
	"district_name", "campus_name", "county", "charter_flag", "row_total",
	"grad_rate", "category", "count", "pct",
	"is_state", "is_district", "is_school",
}

// WriteTidyCSV writes a canonical tidy table with the fixed column order.
func WriteTidyCSV(w io.Writer, table *domain.TidyTable) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(tidyHeader); err != nil {
		return errors.NewStorageError("failed to write CSV header row", err)
	}

	for _, row := range table.Rows {
		record := []string{
			strconv.Itoa(row.EndYear),
			string(row.Type),
			row.DistrictID,
			row.CampusID,
			row.DistrictName,
			row.CampusName,
			row.County,
			row.Charter.String(),
			row.RowTotal.String(),
			row.GradRate.String(),
			row.Category,
			row.Count.String(),
			row.Pct.String(),
			strconv.FormatBool(row.IsState),
			strconv.FormatBool(row.IsDistrict),
			strconv.FormatBool(row.IsSchool),
		}
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError("failed to write CSV data row", err)
		}
	}
	return nil
}
