package excel

// RawRowData represents a row of raw Excel data as header-keyed text values
type RawRowData map[string]string

// ExcelData represents a header-bound sheet
type ExcelData struct {
	Sheet   string       // Sheet the data was read from
	Headers []string     // Column headers, trimmed
	Rows    []RawRowData // Data rows in sheet order
}

// HasHeader reports whether the header row names the column
func (d *ExcelData) HasHeader(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// MissingHeaders returns the required headers absent from the header row,
// in the order they were requested
func (d *ExcelData) MissingHeaders(required []string) []string {
	var missing []string
	for _, name := range required {
		if !d.HasHeader(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
