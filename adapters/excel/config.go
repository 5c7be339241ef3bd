package excel

import (
	"fmt"

	"formexport/internal/errors"
)

// DefaultSheet is the worksheet name of an iQSMS form/field export.
const DefaultSheet = "Worksheet"

// ExcelConfig holds configuration for reading form exports
type ExcelConfig struct {
	Sheet    string `json:"sheet" yaml:"sheet"`         // worksheet holding the export
	StartRow int    `json:"start_row" yaml:"start_row"` // 1-based header row
}

// DefaultExcelConfig returns the layout of an unmodified export
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		Sheet:    DefaultSheet,
		StartRow: 1,
	}
}

// Validate checks that the configuration addresses a real row
func (c ExcelConfig) Validate() error {
	if c.Sheet == "" {
		return errors.ConfigInvalid("sheet name must not be empty")
	}
	if c.StartRow < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("start row must be at least 1, got %d", c.StartRow))
	}
	return nil
}
