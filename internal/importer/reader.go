package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names of a catalog sheet. Matching is case-insensitive and column order is free.
const (
	ColumnProgram       = "program"
	ColumnCourseCode    = "course_code"
	ColumnCourseName    = "course_name"
	ColumnCredits       = "credits"
	ColumnDescription   = "description"
	ColumnPrerequisites = "prerequisites"
)

var requiredColumns = []string{ColumnProgram, ColumnCourseCode, ColumnCourseName}

// Record is one catalog row as read from a file. Row is the 1-based line in the source,
// counting the header.
type Record struct {
	Row           int
	Program       string
	CourseCode    string
	CourseName    string
	Credits       string
	Description   string
	Prerequisites string
}

// ReadFile reads a .csv or .xlsx catalog. sheet selects the worksheet of an XLSX file;
// empty means the first one.
func ReadFile(path, sheet string) ([]Record, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("unsupported catalog file type %q", filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	if isCSV(path) {
		return ReadCSV(f)
	}
	return ReadXLSX(f, sheet)
}

// Supported reports whether name has a catalog file extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// ReadCSV reads a catalog from CSV with a header row.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	var lines []int
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		// The reader drops empty lines, so keep the source line of each record.
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return fromRows(rows, lines)
}

// ReadXLSX reads a catalog from an Excel workbook with a header row.
func ReadXLSX(r io.Reader, sheet string) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of sheet %q: %w", sheet, err)
	}
	return fromRows(rows, nil)
}

// fromRows maps rows to records. lines holds the source line of each row; nil means row i
// sits on line i+1.
func fromRows(rows [][]string, lines []int) ([]Record, error) {
	if len(rows) == 0 {
		return nil, errors.New("catalog is empty: a header row is required")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		// Spreadsheets saved with a BOM keep it on the first header cell.
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup && name != "" {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("catalog header is missing the %q column", col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	line := func(i int) int {
		if lines != nil {
			return lines[i]
		}
		return i + 1
	}

	records := make([]Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		records = append(records, Record{
			Row:           line(n + 1),
			Program:       cell(row, ColumnProgram),
			CourseCode:    cell(row, ColumnCourseCode),
			CourseName:    cell(row, ColumnCourseName),
			Credits:       cell(row, ColumnCredits),
			Description:   cell(row, ColumnDescription),
			Prerequisites: cell(row, ColumnPrerequisites),
		})
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
