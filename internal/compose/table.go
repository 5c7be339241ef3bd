package compose

import (
	"math"
	"strconv"
	"strings"

	"formexport/adapters/excel"
	"formexport/domain/form"
	"formexport/internal/errors"
)

// record is one data row coerced to text, bound by header name
type record struct {
	index            int
	formDescription  string
	formID           string
	section          string
	subsection       string
	position         float64
	fieldID          string
	fieldDescription string
	fieldType        string
	mandatory        string
	option           string
	eccairsValueID   string
	eccairsValue     string
}

func missing(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "nan")
}

// textValue is blank for absent cells
func textValue(row excel.RawRowData, header string) string {
	v := row[header]
	if missing(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// optionalValue is "n/a" for absent cells
func optionalValue(row excel.RawRowData, header string) string {
	v := row[header]
	if missing(v) {
		return form.NotApplicable
	}
	return strings.TrimSpace(v)
}

// positionValue parses Position ID; unusable values sort after all numbers
func positionValue(row excel.RawRowData) float64 {
	v := strings.TrimSpace(row[form.HeaderPositionID])
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return math.Inf(1)
	}
	return f
}

// isNotApplicable reports blank or "n/a" in any case
func isNotApplicable(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, form.NotApplicable)
}

func isDropdown(fieldType string) bool {
	return strings.TrimSpace(fieldType) == form.DropdownType
}

// loadRecords reads the cleaned workbook and checks its header row
func loadRecords(cleaned []byte, sheet string) ([]record, error) {
	data, err := excel.ReadTable(cleaned, sheet)
	if err != nil {
		return nil, err
	}
	if len(data.Headers) == 0 {
		return nil, errors.EmptyInput("the cleaned table is empty")
	}
	if missingHeaders := data.MissingHeaders(form.RequiredHeaders); len(missingHeaders) > 0 {
		return nil, errors.SchemaError(missingHeaders)
	}
	if len(data.Rows) == 0 {
		return nil, errors.EmptyInput("the cleaned table has no data rows")
	}

	records := make([]record, 0, len(data.Rows))
	for i, row := range data.Rows {
		records = append(records, record{
			index:            i,
			formDescription:  textValue(row, form.HeaderFormDescription),
			formID:           textValue(row, form.HeaderFormID),
			section:          textValue(row, form.HeaderSection),
			subsection:       optionalValue(row, form.HeaderSubsection),
			position:         positionValue(row),
			fieldID:          textValue(row, form.HeaderFieldID),
			fieldDescription: textValue(row, form.HeaderFieldDescription),
			fieldType:        textValue(row, form.HeaderFieldType),
			mandatory:        textValue(row, form.HeaderMandatory),
			option:           optionalValue(row, form.HeaderOption),
			eccairsValueID:   optionalValue(row, form.HeaderEccairsValueID),
			eccairsValue:     optionalValue(row, form.HeaderEccairsValue),
		})
	}
	return records, nil
}

// optionIndex maps each Field ID to its distinct usable options across the
// whole table, in order of first appearance
type optionIndex map[string][]string

func buildOptionIndex(records []record) optionIndex {
	index := make(optionIndex)
	seen := make(map[string]map[string]bool)
	for _, r := range records {
		if isNotApplicable(r.option) {
			continue
		}
		if seen[r.fieldID] == nil {
			seen[r.fieldID] = make(map[string]bool)
		}
		if seen[r.fieldID][r.option] {
			continue
		}
		seen[r.fieldID][r.option] = true
		index[r.fieldID] = append(index[r.fieldID], r.option)
	}
	return index
}
