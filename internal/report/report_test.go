package report

import (
	"strings"
	"testing"

	"formexport/domain/form"
	"formexport/internal/compose"
	"formexport/internal/normalize"
	"formexport/internal/profiling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAlignsWideRunes(t *testing.T) {
	out := Table([]string{"Name", "N"}, [][]string{
		{"日本", "1"},
		{"ab|c", "22"},
	})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "| Name  | N   |", lines[0])
	assert.Equal(t, "| ----- | --- |", lines[1])
	assert.Equal(t, "| 日本  | 1   |", lines[2])
	assert.Equal(t, `| ab\|c | 22  |`, lines[3])
}

func TestTableShortRow(t *testing.T) {
	out := Table([]string{"A", "B"}, [][]string{{"x"}})
	assert.Contains(t, out, "| x   |     |")
}

func TestPreviewMarkdown(t *testing.T) {
	p := Preview{
		Source: "export.xlsx",
		Cutoff: 50,
		Normalize: normalize.Report{
			Sheet:       "Worksheet",
			StartRow:    1,
			CellsFilled: 4,
		},
		Scan: &compose.ScanResult{
			LargeDropdowns: []form.LargeDropdown{{FieldID: "200", Description: "Airport", OptionCount: 120}},
			Profile: profiling.WorkbookProfile{
				Forms:     2,
				Dropdowns: 3,
				Options:   profiling.OptionSummary{Dropdowns: 3, Mean: 57.333333, Median: 51, Q90: 120, Max: 120},
			},
		},
	}

	md := p.Markdown()
	assert.Contains(t, md, "# Preview of export.xlsx")
	assert.Contains(t, md, "Filled 4 blank cells in columns 1-10.")
	assert.Contains(t, md, "| Forms ")
	assert.Contains(t, md, "57.33")
	assert.Contains(t, md, "## Dropdowns with more than 50 options")
	assert.Contains(t, md, "| 200      | Airport     | 120     |")
}

func TestPreviewWithoutLargeDropdowns(t *testing.T) {
	p := Preview{Cutoff: 50, Scan: &compose.ScanResult{}}
	md := p.Markdown()
	assert.Contains(t, md, "# Preview of upload")
	assert.Contains(t, md, "None. Every dropdown will list its options.")
}

func TestPreviewHTML(t *testing.T) {
	p := Preview{Source: "a.xlsx", Cutoff: 50, Scan: &compose.ScanResult{
		LargeDropdowns: []form.LargeDropdown{{FieldID: "1", Description: "X", OptionCount: 60}},
	}}
	out := p.HTML()
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>60</td>")
}

func TestDocumentMarkdown(t *testing.T) {
	doc := form.Document{
		FormID:          "1",
		FormDescription: "Occurrence",
		Sections: []form.Section{{
			Title: "General",
			Subsections: []form.Subsection{
				{Title: "", Named: false, Fields: []form.Field{
					{ID: "10", Description: "Date", Type: "Date", Mandatory: true},
				}},
				{Title: "Aircraft", Named: true, Fields: []form.Field{
					{ID: "11", Description: "Type", Type: form.DropdownType, Dropdown: true,
						OptionMode: form.OptionsListed, Options: []string{"A320", "B737"}},
					{ID: "12", Description: "Airport", Type: form.DropdownType, Dropdown: true,
						OptionMode: form.OptionsSkipped},
					{ID: "13", Description: "Empty", Type: form.DropdownType, Dropdown: true,
						OptionMode: form.OptionsNone},
				}},
			},
		}},
	}

	md := DocumentMarkdown(doc)
	assert.True(t, strings.HasPrefix(md, "# Form: Occurrence [1]\n"))
	assert.Contains(t, md, "## General\n")
	assert.Contains(t, md, `**Date\*:** [Date; 10]`)
	assert.Contains(t, md, "### Aircraft\n")
	assert.Contains(t, md, "- A320\n- B737\n")
	assert.Contains(t, md, "> "+form.SkippedOptionsNote)
	assert.Contains(t, md, "> "+form.NoOptionsNote)
	assert.NotContains(t, md, "###  \n")

	r := NewMarkdownRenderer()
	data, err := r.Render(doc)
	require.NoError(t, err)
	assert.Equal(t, md, string(data))
	assert.Equal(t, "md", r.Extension())
}

func TestToHTMLDropsRawHTML(t *testing.T) {
	out := Preview{Source: "<script>alert(1)</script>.xlsx", Cutoff: 50}.HTML()
	assert.NotContains(t, out, "<script>")
}
