// Package profiling summarizes the shape of a cleaned form export.
package profiling

// WorkbookProfile counts the structure found in a cleaned export
type WorkbookProfile struct {
	Rows           int           `json:"rows"`
	Forms          int           `json:"forms"`
	Sections       int           `json:"sections"`
	Subsections    int           `json:"subsections"`
	Fields         int           `json:"fields"`
	Dropdowns      int           `json:"dropdowns"`
	LargeDropdowns int           `json:"large_dropdowns"`
	EmptyDropdowns int           `json:"empty_dropdowns"`
	Options        OptionSummary `json:"options"`
}

// Counts are the raw tallies a WorkbookProfile is built from
type Counts struct {
	Rows        int
	Forms       int
	Sections    int
	Subsections int
	Fields      int
	// OptionCounts holds one distinct option count per dropdown field
	OptionCounts []int
	// Cutoff is the option count above which a dropdown is large
	Cutoff int
}

// NewWorkbookProfile tallies the counts into a profile
func NewWorkbookProfile(counts Counts) (WorkbookProfile, error) {
	profile := WorkbookProfile{
		Rows:        counts.Rows,
		Forms:       counts.Forms,
		Sections:    counts.Sections,
		Subsections: counts.Subsections,
		Fields:      counts.Fields,
		Dropdowns:   len(counts.OptionCounts),
	}
	for _, n := range counts.OptionCounts {
		switch {
		case n == 0:
			profile.EmptyDropdowns++
		case n > counts.Cutoff:
			profile.LargeDropdowns++
		}
	}

	summary, err := NewDistributionAnalyzer().AnalyzeOptionCounts(counts.OptionCounts)
	if err != nil {
		return profile, err
	}
	profile.Options = summary
	return profile, nil
}
