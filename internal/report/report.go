// Package report renders human-readable summaries of a conversion run as
// markdown, and as HTML for the web interface.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"formexport/internal/compose"
	"formexport/internal/normalize"
	"formexport/internal/profiling"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Preview is everything known about an upload before documents are built
type Preview struct {
	Source    string
	Normalize normalize.Report
	Scan      *compose.ScanResult
	Cutoff    int
}

// Markdown renders the preview as a markdown document
func (p Preview) Markdown() string {
	var b strings.Builder
	title := p.Source
	if title == "" {
		title = "upload"
	}
	fmt.Fprintf(&b, "# Preview of %s\n\n", title)

	b.WriteString("## Cleaning\n\n")
	for _, fact := range p.Normalize.Facts() {
		fmt.Fprintf(&b, "- %s\n", fact)
	}
	b.WriteString("\n")

	if p.Scan == nil {
		return b.String()
	}

	b.WriteString("## Structure\n\n")
	b.WriteString(profileTable(p.Scan.Profile))
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Dropdowns with more than %d options\n\n", p.Cutoff)
	if len(p.Scan.LargeDropdowns) == 0 {
		b.WriteString("None. Every dropdown will list its options.\n")
		return b.String()
	}
	rows := make([][]string, 0, len(p.Scan.LargeDropdowns))
	for _, d := range p.Scan.LargeDropdowns {
		rows = append(rows, []string{d.FieldID, d.Description, strconv.Itoa(d.OptionCount)})
	}
	b.WriteString(Table([]string{"Field ID", "Description", "Options"}, rows))
	return b.String()
}

// HTML renders the preview as an HTML fragment
func (p Preview) HTML() string {
	return ToHTML(p.Markdown())
}

func profileTable(profile profiling.WorkbookProfile) string {
	rows := [][]string{
		{"Rows", strconv.Itoa(profile.Rows)},
		{"Forms", strconv.Itoa(profile.Forms)},
		{"Sections", strconv.Itoa(profile.Sections)},
		{"Subsections", strconv.Itoa(profile.Subsections)},
		{"Fields", strconv.Itoa(profile.Fields)},
		{"Dropdowns", strconv.Itoa(profile.Dropdowns)},
		{"Large dropdowns", strconv.Itoa(profile.LargeDropdowns)},
		{"Empty dropdowns", strconv.Itoa(profile.EmptyDropdowns)},
	}
	if profile.Options.Dropdowns > 0 {
		o := profile.Options
		rows = append(rows,
			[]string{"Options per dropdown (median)", formatFloat(o.Median)},
			[]string{"Options per dropdown (mean)", formatFloat(o.Mean)},
			[]string{"Options per dropdown (90th percentile)", formatFloat(o.Q90)},
			[]string{"Options per dropdown (max)", formatFloat(o.Max)},
		)
	}
	return Table([]string{"Measure", "Value"}, rows)
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ToHTML converts markdown to an HTML fragment. Raw HTML in the input is
// dropped.
func ToHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}
