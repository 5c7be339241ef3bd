package report

import (
	"fmt"
	"strings"

	"formexport/domain/form"
)

// MarkdownRenderer lays a form out as markdown with the same structure as
// the Word output. It satisfies ports.DocumentRenderer.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a markdown renderer
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Extension implements ports.DocumentRenderer
func (r *MarkdownRenderer) Extension() string {
	return "md"
}

// Render implements ports.DocumentRenderer
func (r *MarkdownRenderer) Render(doc form.Document) ([]byte, error) {
	return []byte(DocumentMarkdown(doc)), nil
}

// DocumentMarkdown renders one form as markdown
func DocumentMarkdown(doc form.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", fmt.Sprintf(form.TitleFormat, doc.FormDescription, doc.FormID))

	for _, section := range doc.Sections {
		if section.Title != "" {
			fmt.Fprintf(&b, "## %s\n\n", section.Title)
		}
		for _, sub := range section.Subsections {
			if sub.Named {
				fmt.Fprintf(&b, "### %s\n\n", sub.Title)
			}
			for _, field := range sub.Fields {
				writeField(&b, field)
			}
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, field form.Field) {
	fmt.Fprintf(b, "**%s:** [%s; %s]\n\n", escape(field.Label()), field.Type, field.ID)
	if !field.Dropdown {
		return
	}
	switch field.OptionMode {
	case form.OptionsNone:
		fmt.Fprintf(b, "> %s\n\n", form.NoOptionsNote)
	case form.OptionsListed:
		fmt.Fprintf(b, "%s\n\n", form.OptionsLabel)
		for _, option := range field.Options {
			fmt.Fprintf(b, "- %s\n", option)
		}
		b.WriteString("\n")
	case form.OptionsSkipped:
		fmt.Fprintf(b, "%s\n\n> %s\n\n", form.OptionsLabel, form.SkippedOptionsNote)
	}
}

// escape keeps the mandatory asterisk from closing the bold run
func escape(s string) string {
	return strings.ReplaceAll(s, "*", `\*`)
}
