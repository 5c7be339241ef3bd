package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table renders a markdown table whose columns are padded to a common
// display width, so wide runes line up in a terminal.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(3, runewidth.StringWidth(h))
	}
	cleaned := make([][]string, len(rows))
	for r, row := range rows {
		cleaned[r] = make([]string, len(headers))
		for i := range headers {
			if i < len(row) {
				cleaned[r][i] = cellText(row[i])
			}
			if w := runewidth.StringWidth(cleaned[r][i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow(&b, headers, widths)
	separator := make([]string, len(headers))
	for i, w := range widths {
		separator[i] = strings.Repeat("-", w)
	}
	writeRow(&b, separator, widths)
	for _, row := range cleaned {
		writeRow(&b, row, widths)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteString("|")
	for i, cell := range cells {
		b.WriteString(" ")
		b.WriteString(cell)
		if pad := widths[i] - runewidth.StringWidth(cell); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// cellText keeps a value on one line and escapes the column separator
func cellText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
