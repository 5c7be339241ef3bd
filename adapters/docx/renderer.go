// Package docx renders form documents as Word .docx files.
package docx

import (
	"bytes"
	"fmt"

	"formexport/domain/form"

	"baliance.com/gooxml/document"
	"baliance.com/gooxml/measurement"
)

const (
	styleTitle    = "Title"
	styleSection  = "Heading1"
	styleSubtitle = "Heading2"
	styleBullet   = "ListParagraph"

	labelIndent  = measurement.Inch * 0.5
	optionIndent = measurement.Inch * 1.0
)

// Renderer writes one .docx per form with gooxml
type Renderer struct{}

// NewRenderer creates a docx renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Extension implements ports.DocumentRenderer
func (r *Renderer) Extension() string {
	return "docx"
}

// Render lays out title, section and subsection headings, one paragraph per
// field and the option block of each dropdown
func (r *Renderer) Render(doc form.Document) ([]byte, error) {
	d := document.New()

	title := d.AddParagraph()
	title.SetStyle(styleTitle)
	title.AddRun().AddText(fmt.Sprintf(form.TitleFormat, doc.FormDescription, doc.FormID))

	for _, section := range doc.Sections {
		if section.Title != "" {
			heading := d.AddParagraph()
			heading.SetStyle(styleSection)
			heading.AddRun().AddText(section.Title)
		}
		for _, sub := range section.Subsections {
			if sub.Named {
				heading := d.AddParagraph()
				heading.SetStyle(styleSubtitle)
				heading.AddRun().AddText(sub.Title)
			}
			for _, field := range sub.Fields {
				writeField(d, field)
			}
			d.AddParagraph()
		}
	}

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return buf.Bytes(), nil
}

func writeField(d *document.Document, field form.Field) {
	p := d.AddParagraph()
	label := p.AddRun()
	label.Properties().SetBold(true)
	label.AddText(field.Label() + ": ")
	p.AddRun().AddText(fmt.Sprintf("[%s; %s]", field.Type, field.ID))

	if !field.Dropdown {
		return
	}
	switch field.OptionMode {
	case form.OptionsNone:
		indented(d, form.NoOptionsNote, labelIndent)
	case form.OptionsListed:
		indented(d, form.OptionsLabel, labelIndent)
		for _, option := range field.Options {
			bullet(d, option)
		}
	case form.OptionsSkipped:
		indented(d, form.OptionsLabel, labelIndent)
		indented(d, form.SkippedOptionsNote, optionIndent)
	}
}

func indented(d *document.Document, text string, indent measurement.Distance) {
	p := d.AddParagraph()
	p.Properties().SetStartIndent(indent)
	p.AddRun().AddText(text)
}

func bullet(d *document.Document, text string) {
	p := d.AddParagraph()
	p.SetStyle(styleBullet)
	if defs := d.Numbering.Definitions(); len(defs) > 0 {
		p.SetNumberingDefinition(defs[0])
		p.SetNumberingLevel(0)
	}
	p.Properties().SetStartIndent(optionIndent)
	p.AddRun().AddText(text)
}
