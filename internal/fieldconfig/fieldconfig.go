// Package fieldconfig stores the "show all options" choices for large
// dropdowns in a YAML file that can be edited by hand between the preview
// and generate steps.
package fieldconfig

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"formexport/domain/form"
	"formexport/internal/errors"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout
type File struct {
	// Source names the workbook the choices were made for
	Source    string  `yaml:"source,omitempty"`
	Cutoff    int     `yaml:"cutoff"`
	Dropdowns []Entry `yaml:"dropdowns"`
}

// Entry is one large dropdown and its choice
type Entry struct {
	FieldID     string `yaml:"field_id"`
	Description string `yaml:"description"`
	OptionCount int    `yaml:"option_count"`
	ShowAll     bool   `yaml:"show_all"`
}

// New lists the dropdowns with their current choices
func New(source string, cutoff int, dropdowns []form.LargeDropdown, cfg form.FieldConfig) File {
	f := File{Source: source, Cutoff: cutoff, Dropdowns: make([]Entry, 0, len(dropdowns))}
	for _, d := range dropdowns {
		f.Dropdowns = append(f.Dropdowns, Entry{
			FieldID:     d.FieldID,
			Description: d.Description,
			OptionCount: d.OptionCount,
			ShowAll:     cfg.ShowAll(d.FieldID),
		})
	}
	return f
}

// FieldConfig returns the choices as a form.FieldConfig
func (f File) FieldConfig() form.FieldConfig {
	cfg := make(form.FieldConfig, len(f.Dropdowns))
	for _, e := range f.Dropdowns {
		cfg[e.FieldID] = e.ShowAll
	}
	return cfg
}

// Write encodes the file as YAML
func Write(w io.Writer, f File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode field configuration: %w", err)
	}
	return enc.Close()
}

// Read decodes a YAML field configuration. Duplicate field ids are rejected.
func Read(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return File{}, errors.InvalidInput("field configuration is empty")
		}
		return File{}, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to parse field configuration: %w", err))
	}

	seen := make(map[string]bool, len(f.Dropdowns))
	for _, e := range f.Dropdowns {
		if e.FieldID == "" {
			return File{}, errors.InvalidInput("field configuration entry without field_id")
		}
		if seen[e.FieldID] {
			return File{}, errors.InvalidInput(fmt.Sprintf("field %s is listed twice", e.FieldID))
		}
		seen[e.FieldID] = true
	}
	return f, nil
}

// Save writes the file to path
func Save(path string, f File) error {
	var buf bytes.Buffer
	if err := Write(&buf, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// Load reads the file at path
func Load(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, errors.WithCode(errors.CodeNotFound, fmt.Errorf("failed to open %s: %w", path, err))
	}
	defer fh.Close()
	return Read(fh)
}
