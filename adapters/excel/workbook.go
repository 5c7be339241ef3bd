package excel

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"formexport/internal/errors"

	"github.com/xuri/excelize/v2"
)

var rawValue = excelize.Options{RawCellValue: true}

// Workbook is an in-memory workbook opened from uploaded bytes
type Workbook struct {
	f *excelize.File
}

// OpenWorkbook parses workbook bytes. Anything excelize cannot read is a
// PARSE_ERROR.
func OpenWorkbook(raw []byte) (*Workbook, error) {
	if len(raw) == 0 {
		return nil, errors.ParseError("opening workbook", fmt.Errorf("no bytes"))
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.ParseError("opening workbook", err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the workbook's temporary resources
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames lists the worksheets in workbook order
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Sheet returns a positional view of the named sheet, or SHEET_NOT_FOUND
func (w *Workbook) Sheet(name string) (*Grid, error) {
	names := w.SheetNames()
	found := false
	for _, n := range names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.SheetNotFound(name, names)
	}

	rows, err := w.f.GetRows(name, rawValue)
	if err != nil {
		return nil, errors.ParseError("reading sheet "+name, err)
	}
	return &Grid{f: w.f, name: name, lastRow: len(rows)}, nil
}

// Bytes serializes the workbook
func (w *Workbook) Bytes() ([]byte, error) {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Grid addresses one sheet by 1-based (row, column) positions
type Grid struct {
	f       *excelize.File
	name    string
	lastRow int
}

// Name returns the sheet name
func (g *Grid) Name() string {
	return g.name
}

// LastRow is the last row holding any cell value, 0 for an empty sheet
func (g *Grid) LastRow() int {
	return g.lastRow
}

func cellName(row, col int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("invalid cell position (%d, %d): %w", row, col, err)
	}
	return name, nil
}

// Value returns the unformatted cell value
func (g *Grid) Value(row, col int) (string, error) {
	cell, err := cellName(row, col)
	if err != nil {
		return "", err
	}
	v, err := g.f.GetCellValue(g.name, cell, rawValue)
	if err != nil {
		return "", fmt.Errorf("failed to read %s!%s: %w", g.name, cell, err)
	}
	return v, nil
}

// IsBlank reports an empty or whitespace-only cell
func (g *Grid) IsBlank(row, col int) (bool, error) {
	v, err := g.Value(row, col)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(v) == "", nil
}

// SetString writes a text value
func (g *Grid) SetString(row, col int, value string) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}
	return g.f.SetCellStr(g.name, cell, value)
}

// CopyDown copies the cell directly above into (row, col), keeping numbers
// and booleans typed. It reports whether a non-empty value was copied.
func (g *Grid) CopyDown(row, col int) (bool, error) {
	if row < 2 {
		return false, fmt.Errorf("row %d has no row above", row)
	}
	src, err := cellName(row-1, col)
	if err != nil {
		return false, err
	}
	dst, err := cellName(row, col)
	if err != nil {
		return false, err
	}

	value, err := g.f.GetCellValue(g.name, src, rawValue)
	if err != nil {
		return false, fmt.Errorf("failed to read %s!%s: %w", g.name, src, err)
	}
	if value == "" {
		return false, g.f.SetCellStr(g.name, dst, "")
	}

	typ, err := g.f.GetCellType(g.name, src)
	if err != nil {
		return false, fmt.Errorf("failed to read type of %s!%s: %w", g.name, src, err)
	}
	if err := g.f.SetCellValue(g.name, dst, typedValue(value, typ)); err != nil {
		return false, fmt.Errorf("failed to write %s!%s: %w", g.name, dst, err)
	}
	return true, nil
}

// typedValue converts a raw cell value back to the Go value excelize writes
// with the same cell type
func typedValue(value string, typ excelize.CellType) any {
	switch typ {
	case excelize.CellTypeBool:
		return value == "1" || strings.EqualFold(value, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

// RemoveRowsFrom deletes rows from..LastRow and returns how many went.
//
// The kept rows are streamed into a new sheet that then takes the place and
// name of the old one, so the cut costs one pass over the sheet however long
// the tail is. Cell values, types and styles survive; sheet-level objects
// such as merges, tables and column widths do not.
func (g *Grid) RemoveRowsFrom(from int) (int, error) {
	if from < 1 || from > g.lastRow {
		return 0, nil
	}
	if err := g.rebuild(from - 1); err != nil {
		return 0, fmt.Errorf("failed to remove rows %d-%d: %w", from, g.lastRow, err)
	}
	removed := g.lastRow - from + 1
	g.lastRow = from - 1
	return removed, nil
}

// rebuild replaces the sheet with a copy of its first keep rows
func (g *Grid) rebuild(keep int) error {
	rows, err := g.f.GetRows(g.name, rawValue)
	if err != nil {
		return err
	}
	if keep < len(rows) {
		rows = rows[:keep]
	}

	tmp := g.scratchName()
	if _, err := g.f.NewSheet(tmp); err != nil {
		return err
	}
	sw, err := g.f.NewStreamWriter(tmp)
	if err != nil {
		return err
	}
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, value := range row {
			if value == "" {
				continue
			}
			name, err := cellName(i+1, j+1)
			if err != nil {
				return err
			}
			typ, err := g.f.GetCellType(g.name, name)
			if err != nil {
				return err
			}
			style, err := g.f.GetCellStyle(g.name, name)
			if err != nil {
				return err
			}
			cells[j] = excelize.Cell{StyleID: style, Value: typedValue(value, typ)}
		}
		start, err := cellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(start, cells); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	wasActive := g.f.GetSheetName(g.f.GetActiveSheetIndex()) == g.name
	if err := g.f.MoveSheet(tmp, g.name); err != nil {
		return err
	}
	if err := g.f.DeleteSheet(g.name); err != nil {
		return err
	}
	if err := g.f.SetSheetName(tmp, g.name); err != nil {
		return err
	}
	if wasActive {
		idx, err := g.f.GetSheetIndex(g.name)
		if err != nil {
			return err
		}
		g.f.SetActiveSheet(idx)
	}
	return nil
}

// scratchName returns a sheet name the workbook does not use yet
func (g *Grid) scratchName() string {
	used := make(map[string]bool)
	for _, name := range g.f.GetSheetList() {
		used[strings.ToLower(name)] = true
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("formexport_tmp%d", i)
		if !used[name] {
			return name
		}
	}
}
