// Package testkit builds form export workbooks for tests and demos.
package testkit

import (
	"fmt"
	"strconv"
	"testing"

	"formexport/domain/form"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook. Nil cells stay absent.
type Sheet struct {
	Name string
	Rows [][]any
}

// BuildWorkbook writes the sheets, in order, into xlsx bytes
func BuildWorkbook(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("at least one sheet is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return nil, fmt.Errorf("failed to rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, value := range row {
				if value == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
					return nil, fmt.Errorf("failed to write %s!%s: %w", sheet.Name, cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportRow is one row of a form/field export in the canonical layout.
// Empty strings become absent cells; integer text becomes numeric cells in
// the identifier columns, as in a real export.
type ExportRow struct {
	FormDescription  string
	FormID           string
	Section          string
	Subsection       string
	Mandatory        string
	FieldID          string
	FieldDescription string
	PositionID       string
	FieldKey         string
	FieldType        string
	Option           string
	OptionID         string
	EccairsAttribute string
	EccairsValueID   string
	EccairsValue     string
}

// Cells returns the row in form.ExportLayout order
func (r ExportRow) Cells() []any {
	return []any{
		text(r.FormDescription),
		number(r.FormID),
		text(r.Section),
		text(r.Subsection),
		text(r.Mandatory),
		number(r.FieldID),
		text(r.FieldDescription),
		number(r.PositionID),
		text(r.FieldKey),
		text(r.FieldType),
		text(r.Option),
		number(r.OptionID),
		text(r.EccairsAttribute),
		number(r.EccairsValueID),
		text(r.EccairsValue),
	}
}

func text(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func number(s string) any {
	if s == "" {
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return s
}

// ExportSheet lays out a header row plus the export rows
func ExportSheet(name string, rows []ExportRow) Sheet {
	header := make([]any, len(form.ExportLayout))
	for i, h := range form.ExportLayout {
		header[i] = h
	}
	out := [][]any{header}
	for _, row := range rows {
		out = append(out, row.Cells())
	}
	return Sheet{Name: name, Rows: out}
}

// BuildExport writes rows to a workbook whose only sheet is "Worksheet"
func BuildExport(rows []ExportRow) ([]byte, error) {
	return BuildWorkbook(ExportSheet("Worksheet", rows))
}

// MustBuild fails the test when a fixture cannot be built
func MustBuild(tb testing.TB, sheets ...Sheet) []byte {
	tb.Helper()
	raw, err := BuildWorkbook(sheets...)
	if err != nil {
		tb.Fatalf("building fixture workbook: %v", err)
	}
	return raw
}

// MustBuildExport fails the test when an export fixture cannot be built
func MustBuildExport(tb testing.TB, rows []ExportRow) []byte {
	tb.Helper()
	return MustBuild(tb, ExportSheet("Worksheet", rows))
}

// Options returns n dropdown rows for one field, one option per row
func Options(base ExportRow, n int) []ExportRow {
	rows := make([]ExportRow, 0, n)
	for i := 1; i <= n; i++ {
		row := base
		row.Option = fmt.Sprintf("Option %03d", i)
		row.OptionID = strconv.Itoa(i)
		rows = append(rows, row)
	}
	return rows
}
