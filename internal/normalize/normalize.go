// Package normalize repairs a raw form/field export so it can be grouped
// into documents: fill-down of blank cells, the subsection sentinel, the
// Eccairs value fill and truncation at the "Bird species" marker row.
package normalize

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"formexport/adapters/excel"
	"formexport/domain/form"
	"formexport/internal"
	"formexport/internal/errors"
)

const stage = "Excel processing"

// Result is a cleaned workbook plus the code set used for the Eccairs fill
type Result struct {
	Data       []byte
	ValidCodes form.CodeSet
	Report     Report
}

// Normalizer runs the repair steps against one sheet
type Normalizer struct {
	config excel.ExcelConfig
	codes  form.CodeSet
	logger *internal.Logger
}

// NewNormalizer creates a normalizer; zero config values fall back to
// excel.DefaultExcelConfig
func NewNormalizer(config excel.ExcelConfig) *Normalizer {
	defaults := excel.DefaultExcelConfig()
	if config.Sheet == "" {
		config.Sheet = defaults.Sheet
	}
	if config.StartRow < 1 {
		config.StartRow = defaults.StartRow
	}
	return &Normalizer{
		config: config,
		codes:  form.ValidCodes(),
		logger: internal.DefaultLogger.Named("Normalizer"),
	}
}

// Normalize cleans raw workbook bytes. sheet "" means "Worksheet" and a
// startRow below 1 means the first row.
func Normalize(ctx context.Context, raw []byte, sheet string, startRow int) (*Result, error) {
	return NewNormalizer(excel.ExcelConfig{Sheet: sheet, StartRow: startRow}).Normalize(ctx, raw)
}

// Normalize runs every step and serializes the result. Failures are
// PARSE_ERROR, SHEET_NOT_FOUND or PROCESSING_ERROR; nothing is returned
// alongside an error.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, errors.ProcessingError(stage, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, errors.ProcessingError(stage, err)
	}

	wb, err := excel.OpenWorkbook(raw)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	grid, err := wb.Sheet(n.config.Sheet)
	if err != nil {
		n.logger.Warn("sheet %q not found (available: %s)", n.config.Sheet, strings.Join(wb.SheetNames(), ", "))
		return nil, err
	}

	report, err := n.locateMarker(grid)
	if err != nil {
		return nil, n.fail(err)
	}

	codes := form.EmptyCodes()
	if report.ProcessEnd < n.config.StartRow {
		report.FillSkipped = true
		n.logger.Warn("processing end row %d is before start row %d, no cells filled", report.ProcessEnd, n.config.StartRow)
	} else {
		if err := n.fillDown(grid, &report); err != nil {
			return nil, n.fail(err)
		}
		if err := n.defaultSubsections(grid, &report); err != nil {
			return nil, n.fail(err)
		}
		if err := n.fillEccairsValues(grid, &report); err != nil {
			return nil, n.fail(err)
		}
		codes = n.codes
	}

	if report.LastRow >= report.DeleteFrom {
		removed, err := grid.RemoveRowsFrom(report.DeleteFrom)
		if err != nil {
			return nil, n.fail(err)
		}
		report.RowsRemoved = removed
		n.logger.Info("removed %d rows starting from row %d", removed, report.DeleteFrom)
	}

	data, err := wb.Bytes()
	if err != nil {
		return nil, n.fail(err)
	}

	n.logger.Info("normalized sheet %q: %d cells filled, %d subsections defaulted, %d Eccairs cells filled",
		report.Sheet, report.CellsFilled, report.SubsectionsDefaulted, report.AuxiliaryFilled)
	return &Result{Data: data, ValidCodes: codes, Report: report}, nil
}

func (n *Normalizer) fail(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	return errors.ProcessingError(stage, err)
}

// locateMarker finds the first "Bird species" row and derives the fill and
// delete bounds from its Position ID.
func (n *Normalizer) locateMarker(grid *excel.Grid) (Report, error) {
	last := grid.LastRow()
	report := Report{
		Sheet:      grid.Name(),
		StartRow:   n.config.StartRow,
		LastRow:    last,
		ProcessEnd: last,
		DeleteFrom: last + 1,
	}

	for row := n.config.StartRow; row <= last; row++ {
		v, err := grid.Value(row, form.ColMarker)
		if err != nil {
			return report, err
		}
		if strings.TrimSpace(v) != form.MarkerText {
			continue
		}

		report.FoundMarkerRow = row
		blank, err := grid.IsBlank(row, form.ColMarkerCompanion)
		if err != nil {
			return report, err
		}
		if blank {
			report.MarkerTruncates = true
			report.ProcessEnd = row - 1
			report.DeleteFrom = row
			n.logger.Info("%q found at row %d with a blank Position ID, rows from %d on will be removed", form.MarkerText, row, row)
		} else {
			n.logger.Info("%q found at row %d with a Position ID, no rows will be removed", form.MarkerText, row)
		}
		return report, nil
	}

	n.logger.Debug("%q not found, all %d rows are processed", form.MarkerText, last)
	return report, nil
}

// copyIfBlank fills (row, col) from the row above. The start row is a
// header and never serves as a source.
func (n *Normalizer) copyIfBlank(grid *excel.Grid, row, col int) (bool, error) {
	if row-1 <= n.config.StartRow {
		return false, nil
	}
	blank, err := grid.IsBlank(row, col)
	if err != nil || !blank {
		return false, err
	}
	return grid.CopyDown(row, col)
}

func (n *Normalizer) fillDown(grid *excel.Grid, report *Report) error {
	for col := form.FillDownFirstColumn; col <= form.FillDownLastColumn; col++ {
		for row := n.config.StartRow + 1; row <= report.ProcessEnd; row++ {
			copied, err := n.copyIfBlank(grid, row, col)
			if err != nil {
				return err
			}
			if copied {
				report.CellsFilled++
			}
		}
	}
	return nil
}

func (n *Normalizer) defaultSubsections(grid *excel.Grid, report *Report) error {
	for row := n.config.StartRow + 1; row <= report.ProcessEnd; row++ {
		sectionBlank, err := grid.IsBlank(row, form.ColSection)
		if err != nil {
			return err
		}
		if sectionBlank {
			continue
		}
		subsectionBlank, err := grid.IsBlank(row, form.ColSubsection)
		if err != nil {
			return err
		}
		if !subsectionBlank {
			continue
		}
		if err := grid.SetString(row, form.ColSubsection, form.EmptySubsection); err != nil {
			return err
		}
		report.SubsectionsDefaulted++
	}
	return nil
}

func (n *Normalizer) fillEccairsValues(grid *excel.Grid, report *Report) error {
	for row := n.config.StartRow + 1; row <= report.ProcessEnd; row++ {
		fieldType, err := grid.Value(row, form.ColFieldType)
		if err != nil {
			return err
		}
		if fieldType != form.DropdownType {
			continue
		}
		rawID, err := grid.Value(row, form.ColFieldID)
		if err != nil {
			return err
		}
		code, ok := ParseCode(rawID)
		if !ok || !n.codes.Contains(code) {
			continue
		}

		for _, col := range []int{form.ColEccairsValueID, form.ColEccairsValue} {
			copied, err := n.copyIfBlank(grid, row, col)
			if err != nil {
				return err
			}
			if copied {
				report.AuxiliaryFilled++
			}
		}
	}
	return nil
}

// ParseCode reads a Field ID cell as an integer. Integral floats such as
// "120.0" are accepted; anything else is not a code.
func ParseCode(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
