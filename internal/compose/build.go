package compose

import (
	"sort"
	"strings"

	"formexport/domain/form"
	"formexport/internal/sanitize"
)

// group is a run of records sharing a key, placed by its smallest Position ID
type group struct {
	key     string
	minPos  float64
	records []record
}

// orderedGroups groups records by key and orders the groups by smallest
// Position ID. Groups are created in order of first appearance and the
// sort is stable, so ties keep that order.
func orderedGroups(records []record, key func(record) string) []*group {
	byKey := make(map[string]*group)
	var groups []*group
	for _, r := range records {
		k := key(r)
		g, ok := byKey[k]
		if !ok {
			g = &group{key: k, minPos: r.position}
			byKey[k] = g
			groups = append(groups, g)
		}
		if r.position < g.minPos {
			g.minPos = r.position
		}
		g.records = append(g.records, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].minPos < groups[j].minPos
	})
	return groups
}

type formKey struct {
	description string
	id          string
}

type formGroup struct {
	key     formKey
	records []record
}

// groupForms groups by (Form Description, Form ID) in lexical key order
func groupForms(records []record) []formGroup {
	byKey := make(map[formKey]int)
	var forms []formGroup
	for _, r := range records {
		k := formKey{description: r.formDescription, id: r.formID}
		i, ok := byKey[k]
		if !ok {
			i = len(forms)
			byKey[k] = i
			forms = append(forms, formGroup{key: k})
		}
		forms[i].records = append(forms[i].records, r)
	}
	sort.SliceStable(forms, func(i, j int) bool {
		a, b := forms[i].key, forms[j].key
		if a.description != b.description {
			return a.description < b.description
		}
		return a.id < b.id
	})
	return forms
}

// subsectionKey collapses blank and "n/a" headers into one unnamed bucket.
// Named headers are never blank, so "" cannot collide with one.
func subsectionKey(r record) string {
	if isNotApplicable(r.subsection) {
		return ""
	}
	return r.subsection
}

func sectionKey(r record) string {
	return r.section
}

// uniqueFields orders records by Position ID and keeps the first record of
// each Field ID
func uniqueFields(records []record) []record {
	sorted := append([]record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].position < sorted[j].position
	})

	seen := make(map[string]bool, len(sorted))
	fields := sorted[:0]
	for _, r := range sorted {
		if seen[r.fieldID] {
			continue
		}
		seen[r.fieldID] = true
		fields = append(fields, r)
	}
	return fields
}

// builder turns grouped records into document trees
type builder struct {
	options optionIndex
	config  form.FieldConfig
	cutoff  int
}

func (b *builder) document(fg formGroup) form.Document {
	doc := form.Document{
		FormID:          sanitize.Text(fg.key.id),
		FormDescription: sanitize.Text(fg.key.description),
	}
	for _, sg := range orderedGroups(fg.records, sectionKey) {
		section := form.Section{Title: sanitize.Text(sg.key)}
		for _, ssg := range orderedGroups(sg.records, subsectionKey) {
			sub := form.Subsection{Named: ssg.key != ""}
			if sub.Named {
				sub.Title = sanitize.Text(ssg.key)
			}
			for _, r := range uniqueFields(ssg.records) {
				sub.Fields = append(sub.Fields, b.field(r))
			}
			if len(sub.Fields) == 0 {
				continue
			}
			section.Subsections = append(section.Subsections, sub)
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}

func (b *builder) field(r record) form.Field {
	field := form.Field{
		ID:          sanitize.Text(r.fieldID),
		Description: sanitize.Text(r.fieldDescription),
		Type:        sanitize.Text(r.fieldType),
		Mandatory:   strings.EqualFold(strings.TrimSpace(r.mandatory), form.MandatoryFlag),
		Dropdown:    isDropdown(r.fieldType),
	}
	if !field.Dropdown {
		return field
	}

	options := b.options[r.fieldID]
	switch {
	case len(options) == 0:
		field.OptionMode = form.OptionsNone
	case len(options) <= b.cutoff || b.config.ShowAll(r.fieldID):
		field.Options = sanitizeAll(options)
		field.OptionMode = form.OptionsListed
		if len(field.Options) == 0 {
			field.OptionMode = form.OptionsNone
		}
	default:
		field.OptionMode = form.OptionsSkipped
	}
	return field
}

// sanitizeAll cleans each option and drops those left empty
func sanitizeAll(options []string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if s := sanitize.Text(o); s != "" {
			out = append(out, s)
		}
	}
	return out
}
