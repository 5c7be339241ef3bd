package normalize

import (
	"fmt"

	"formexport/domain/form"
)

// Report records the decisions and edits of one normalization run
type Report struct {
	Sheet                string `json:"sheet"`
	StartRow             int    `json:"start_row"`
	LastRow              int    `json:"last_row"`
	FoundMarkerRow       int    `json:"found_marker_row"` // 0 when no marker row exists
	MarkerTruncates      bool   `json:"marker_truncates"`
	ProcessEnd           int    `json:"process_end"`
	DeleteFrom           int    `json:"delete_from"`
	FillSkipped          bool   `json:"fill_skipped"`
	RowsRemoved          int    `json:"rows_removed"`
	CellsFilled          int    `json:"cells_filled"`
	SubsectionsDefaulted int    `json:"subsections_defaulted"`
	AuxiliaryFilled      int    `json:"auxiliary_filled"`
}

// Facts lists the report as short human-readable statements
func (r Report) Facts() []string {
	var facts []string
	switch {
	case r.FoundMarkerRow == 0:
		facts = append(facts, fmt.Sprintf("'%s' not found. All rows were processed for filling blanks.", form.MarkerText))
	case r.MarkerTruncates:
		facts = append(facts, fmt.Sprintf("'Bird species' found at row %d with a blank 'Position ID'. Rows from row %d on were removed.", r.FoundMarkerRow, r.DeleteFrom))
	default:
		facts = append(facts, fmt.Sprintf("'Bird species' found at row %d with a valid 'Position ID'. No rows were removed.", r.FoundMarkerRow))
	}
	if r.FillSkipped {
		facts = append(facts, fmt.Sprintf("Processing end row %d is before start row %d. No filling was performed.", r.ProcessEnd, r.StartRow))
	}
	if r.RowsRemoved > 0 {
		facts = append(facts, fmt.Sprintf("Removed %d rows starting from row %d.", r.RowsRemoved, r.DeleteFrom))
	}
	facts = append(facts, fmt.Sprintf("Filled %d blank cells in columns 1-10.", r.CellsFilled))
	facts = append(facts, fmt.Sprintf("Set %d blank subsection headers to %q.", r.SubsectionsDefaulted, form.EmptySubsection))
	facts = append(facts, fmt.Sprintf("Filled %d Eccairs value cells.", r.AuxiliaryFilled))
	return facts
}
