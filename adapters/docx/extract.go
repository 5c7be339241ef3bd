package docx

import (
	"bytes"
	"fmt"
	"strings"

	"baliance.com/gooxml/document"
)

// Paragraph is the visible text of one paragraph and its style id
type Paragraph struct {
	Style string
	Text  string
	Bold  string // text of the bold runs
}

// Extract reads the body paragraphs of a .docx
func Extract(data []byte) ([]Paragraph, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var out []Paragraph
	for _, para := range doc.Paragraphs() {
		var text, bold strings.Builder
		for _, run := range para.Runs() {
			text.WriteString(run.Text())
			if run.Properties().IsBold() {
				bold.WriteString(run.Text())
			}
		}
		out = append(out, Paragraph{Style: para.Style(), Text: text.String(), Bold: bold.String()})
	}
	return out, nil
}

// Texts returns the non-empty paragraph texts of a .docx in order
func Texts(data []byte) ([]string, error) {
	paragraphs, err := Extract(data)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range paragraphs {
		if p.Text != "" {
			out = append(out, p.Text)
		}
	}
	return out, nil
}
