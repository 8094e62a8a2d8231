// Package fetch is the retrieval collaborator: it downloads or imports the
// agency's source exports and loads them into raw record sets. No
// normalization logic lives here; everything downstream of the RawTable is
// the core pipeline's job.
package fetch

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"vaschooldata/internal/errors"
	"vaschooldata/internal/schema"
	"vaschooldata/pkg/contracts/domain"
)

// Sheet names the agency has published workbook data under across eras.
var candidateSheets = []string{"Report", "Report ", "Data", "Sheet1", "fall_membership", "cohort"}

// headerTokens are normalized column names whose presence marks a header row.
var headerTokens = map[string]struct{}{
	"level": {}, "division": {}, "div name": {}, "div num": {},
	"division name": {}, "division number": {}, "school": {}, "sch num": {},
	"sch name": {}, "school name": {}, "school number": {}, "total": {},
	"cohort": {}, "white": {}, "black": {}, "hispanic": {}, "grade 1": {},
	"graduation rate": {}, "full-time count total": {},
}

// LoadCSV reads a CSV export into a raw record set. Ragged rows are
// tolerated; cells beyond the header width are dropped and short rows leave
// the remaining columns empty.
func LoadCSV(r io.Reader) (*domain.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read CSV export", err)
	}

	header := -1
	for i, rec := range records {
		if isHeaderRow(rec) {
			header = i
			break
		}
	}
	if header == -1 {
		// Exports without a recognizable signature still load; era
		// detection downstream decides whether the schema is known.
		if len(records) == 0 {
			return &domain.RawTable{}, nil
		}
		header = 0
	}

	return buildTable(records[header], records[header+1:]), nil
}

// LoadWorkbook reads an Excel export into a raw record set. The data sheet
// is found by probing the names the agency has used, then by scanning every
// sheet for a recognizable header row.
func LoadWorkbook(r io.Reader) (*domain.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	var rows [][]string
	found := false
	for _, name := range candidateSheets {
		if sheetRows, err := f.GetRows(name); err == nil && len(sheetRows) > 0 {
			rows = sheetRows
			found = true
			break
		}
	}
	if !found {
		for _, name := range f.GetSheetList() {
			sheetRows, err := f.GetRows(name)
			if err != nil {
				continue
			}
			for i := 0; i < len(sheetRows) && i < 10; i++ {
				if isHeaderRow(sheetRows[i]) {
					rows = sheetRows
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	if !found {
		return nil, errors.NewParsingError("could not find a data sheet in workbook", nil)
	}

	header := -1
	for i := 0; i < len(rows) && i < 10; i++ {
		if isHeaderRow(rows[i]) {
			header = i
			break
		}
	}
	if header == -1 {
		header = 0
	}

	// Workbook exports often pad trailing rows with empty cells.
	end := len(rows)
	for end > header+1 && blank(rows[end-1]) {
		end--
	}

	return buildTable(rows[header], rows[header+1:end]), nil
}

// ImportFile loads a local export, bypassing HTTP retrieval entirely.
func ImportFile(path string) (*domain.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read import file %s", path), err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return LoadWorkbook(bytes.NewReader(data))
	default:
		return LoadCSV(bytes.NewReader(data))
	}
}

// isHeaderRow reports whether at least two cells match known column names.
func isHeaderRow(cells []string) bool {
	matches := 0
	for _, cell := range cells {
		if _, ok := headerTokens[schema.NormalizeName(cell)]; ok {
			matches++
			if matches >= 2 {
				return true
			}
		}
	}
	return false
}

func blank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// buildTable assembles a RawTable from a header row and data rows, dropping
// rows that are entirely empty.
func buildTable(header []string, data [][]string) *domain.RawTable {
	columns := make([]string, 0, len(header))
	for _, col := range header {
		columns = append(columns, strings.TrimSpace(col))
	}

	table := &domain.RawTable{Columns: columns}
	for _, rec := range data {
		if blank(rec) {
			continue
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
