package compose

import (
	"context"

	"formexport/domain/form"
	"formexport/internal/errors"
	"formexport/internal/profiling"
	"formexport/internal/sanitize"
)

// ScanResult is what the configuration step needs to know about a workbook
type ScanResult struct {
	LargeDropdowns []form.LargeDropdown      `json:"large_dropdowns"`
	Profile        profiling.WorkbookProfile `json:"profile"`
}

// Scan finds the dropdowns whose distinct option count exceeds the cutoff,
// one entry per Field ID in order of first appearance, and profiles the
// workbook structure
func (c *Composer) Scan(ctx context.Context, cleaned []byte) (*ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ProcessingError("scanning", err)
	}
	records, err := loadRecords(cleaned, c.sheet)
	if err != nil {
		return nil, err
	}

	options := buildOptionIndex(records)
	result := &ScanResult{LargeDropdowns: []form.LargeDropdown{}}
	seen := make(map[string]bool)
	var optionCounts []int
	for _, r := range records {
		if !isDropdown(r.fieldType) || seen[r.fieldID] {
			continue
		}
		seen[r.fieldID] = true
		count := len(options[r.fieldID])
		optionCounts = append(optionCounts, count)
		if count > c.cutoff {
			result.LargeDropdowns = append(result.LargeDropdowns, form.LargeDropdown{
				FieldID:     r.fieldID,
				Description: sanitize.Text(r.fieldDescription),
				OptionCount: count,
			})
		}
	}

	counts := profiling.Counts{Rows: len(records), OptionCounts: optionCounts, Cutoff: c.cutoff}
	b := &builder{options: options, cutoff: c.cutoff}
	for _, fg := range groupForms(records) {
		doc := b.document(fg)
		counts.Forms++
		counts.Sections += len(doc.Sections)
		for _, s := range doc.Sections {
			counts.Subsections += len(s.Subsections)
		}
		counts.Fields += doc.FieldCount()
	}

	profile, err := profiling.NewWorkbookProfile(counts)
	if err != nil {
		return nil, errors.ProcessingError("profiling", err)
	}
	result.Profile = profile

	c.logger.Info("scanned %d rows: %d forms, %d dropdowns, %d over %d options",
		counts.Rows, counts.Forms, len(optionCounts), len(result.LargeDropdowns), c.cutoff)
	return result, nil
}
