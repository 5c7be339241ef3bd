package excel

import (
	"strings"
	"time"

	"formexport/internal"
	"formexport/internal/errors"
)

// DataReader binds the rows of one sheet to the header row
type DataReader struct {
	sheet  string
	logger *internal.Logger
}

// NewDataReader creates a reader for the named sheet. An empty name reads
// the first sheet of the workbook.
func NewDataReader(sheet string) *DataReader {
	return &DataReader{sheet: sheet, logger: internal.DefaultLogger.Named("DataReader")}
}

// ReadTable is shorthand for NewDataReader(sheet).ReadData(raw)
func ReadTable(raw []byte, sheet string) (*ExcelData, error) {
	return NewDataReader(sheet).ReadData(raw)
}

// ReadData reads workbook bytes into header-keyed rows
func (r *DataReader) ReadData(raw []byte) (*ExcelData, error) {
	startTime := time.Now()
	wb, err := OpenWorkbook(raw)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	r.logger.Debug("workbook opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.sheet
	if sheet == "" {
		names := wb.SheetNames()
		if len(names) == 0 {
			return nil, errors.ParseError("reading workbook", errors.InvalidInput("workbook has no sheets"))
		}
		sheet = names[0]
	} else if _, err := wb.Sheet(sheet); err != nil {
		return nil, err
	}

	readStart := time.Now()
	rows, err := wb.f.GetRows(sheet, rawValue)
	if err != nil {
		return nil, errors.ParseError("reading sheet "+sheet, err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(sheet, rows), nil
}

// processRows converts raw string rows into ExcelData. Cells beyond the
// header row are dropped and rows without any value are skipped. When a
// header repeats, the first column carrying it wins.
func (r *DataReader) processRows(sheet string, rows [][]string) *ExcelData {
	data := &ExcelData{Sheet: sheet}
	if len(rows) == 0 {
		return data
	}

	headerRow := rows[0]
	data.Headers = make([]string, len(headerRow))
	for i, header := range headerRow {
		data.Headers[i] = strings.TrimSpace(header)
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRowData, len(data.Headers))
		hasValue := false

		for j, cell := range row {
			if j >= len(data.Headers) || data.Headers[j] == "" {
				continue
			}
			if _, seen := rowData[data.Headers[j]]; seen {
				continue
			}
			rowData[data.Headers[j]] = cell
			if strings.TrimSpace(cell) != "" {
				hasValue = true
			}
		}
		if hasValue {
			data.Rows = append(data.Rows, rowData)
		}
	}

	r.logger.Debug("%s processed (%d columns, %d rows)", sheet, len(data.Headers), len(data.Rows))
	return data
}
