package form

// OptionMode says how a field's options are rendered.
type OptionMode string

const (
	OptionsNone    OptionMode = "none"    // dropdown without any usable option
	OptionsListed  OptionMode = "listed"  // every option rendered
	OptionsSkipped OptionMode = "skipped" // large list collapsed to a note
)

// Document is one form reconstructed from the export rows.
type Document struct {
	FormID          string
	FormDescription string
	Sections        []Section
}

// Section is a top-level heading of a form.
type Section struct {
	Title       string
	Subsections []Subsection
}

// Subsection groups fields under an optional heading. Unnamed subsections
// collect every row without a usable subsection header and render no heading.
type Subsection struct {
	Title  string
	Named  bool
	Fields []Field
}

// Field is one rendered field block.
type Field struct {
	ID          string
	Description string
	Type        string
	Mandatory   bool
	Dropdown    bool
	Options     []string
	OptionMode  OptionMode
}

// Label is the description as displayed, with a trailing "*" for mandatory fields.
func (f Field) Label() string {
	if f.Mandatory {
		return f.Description + "*"
	}
	return f.Description
}

// FieldCount returns the number of field blocks in the document.
func (d Document) FieldCount() int {
	n := 0
	for _, section := range d.Sections {
		for _, sub := range section.Subsections {
			n += len(sub.Fields)
		}
	}
	return n
}

// GeneratedDocument is a serialized output artifact.
type GeneratedDocument struct {
	Filename string
	Content  []byte
}

// Text rendered around option lists.
const (
	TitleFormat        = "Form: %s [%s]"
	OptionsLabel       = "Options:"
	NoOptionsNote      = "(No valid options defined or retrieved for this dropdown)"
	SkippedOptionsNote = "Various options - Display skipped by user."
)
