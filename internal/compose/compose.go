// Package compose rebuilds form documents from a cleaned form/field export
// and renders one document per form.
package compose

import (
	"context"
	"fmt"
	"path"
	"strings"

	"formexport/adapters/docx"
	"formexport/domain/form"
	"formexport/internal"
	"formexport/internal/errors"
	"formexport/internal/sanitize"
	"formexport/ports"
)

const stage = "Word form creation"

// Composer groups cleaned rows into documents and renders them
type Composer struct {
	renderer ports.DocumentRenderer
	clock    ports.Clock
	sheet    string
	cutoff   int
	logger   *internal.Logger
}

// Option configures a Composer
type Option func(*Composer)

// WithClock sets the clock used for the date in file names
func WithClock(clock ports.Clock) Option {
	return func(c *Composer) { c.clock = clock }
}

// WithSheet reads the named sheet instead of the first one
func WithSheet(sheet string) Option {
	return func(c *Composer) { c.sheet = sheet }
}

// WithCutoff changes the option count above which FieldConfig decides
func WithCutoff(cutoff int) Option {
	return func(c *Composer) {
		if cutoff > 0 {
			c.cutoff = cutoff
		}
	}
}

// NewComposer creates a composer rendering through renderer
func NewComposer(renderer ports.DocumentRenderer, opts ...Option) *Composer {
	c := &Composer{
		renderer: renderer,
		clock:    ports.SystemClock{},
		cutoff:   form.LargeOptionCutoff,
		logger:   internal.DefaultLogger.Named("Composer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose renders every form of the cleaned workbook to .docx
func Compose(ctx context.Context, cleaned []byte, cfg form.FieldConfig) ([]form.GeneratedDocument, error) {
	return NewComposer(docx.NewRenderer()).Compose(ctx, cleaned, cfg)
}

// Build returns the document trees, one per (Form Description, Form ID),
// ordered by description then id
func (c *Composer) Build(ctx context.Context, cleaned []byte, cfg form.FieldConfig) ([]form.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ProcessingError(stage, err)
	}
	records, err := loadRecords(cleaned, c.sheet)
	if err != nil {
		return nil, err
	}

	b := &builder{options: buildOptionIndex(records), config: cfg, cutoff: c.cutoff}
	forms := groupForms(records)
	docs := make([]form.Document, 0, len(forms))
	for _, fg := range forms {
		docs = append(docs, b.document(fg))
	}
	return docs, nil
}

// Compose renders all forms or none. cfg is read, never modified.
func (c *Composer) Compose(ctx context.Context, cleaned []byte, cfg form.FieldConfig) ([]form.GeneratedDocument, error) {
	docs, err := c.Build(ctx, cleaned, cfg)
	if err != nil {
		return nil, err
	}

	date := c.clock.Now().Format("20060102")
	names := newNameSet()
	generated := make([]form.GeneratedDocument, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, errors.ProcessingError(stage, err)
		}
		content, err := c.renderer.Render(doc)
		if err != nil {
			return nil, errors.ProcessingError(stage, fmt.Errorf("form %s: %w", doc.FormID, err))
		}
		name := names.claim(Filename(doc, date, c.renderer.Extension()))
		generated = append(generated, form.GeneratedDocument{Filename: name, Content: content})
		c.logger.Debug("rendered %s (%d fields, %d bytes)", name, doc.FieldCount(), len(content))
	}

	if len(generated) == 0 {
		c.logger.Info("no forms were generated from the workbook")
	} else {
		c.logger.Info("generated %d forms", len(generated))
	}
	return generated, nil
}

// Filename is {formId}_{YYYYMMDD}_{formDescription}_form.{ext}
func Filename(doc form.Document, date, ext string) string {
	return fmt.Sprintf("%s_%s_%s_form.%s",
		sanitize.FilenamePart(doc.FormID), date, sanitize.FilenamePart(doc.FormDescription), ext)
}

// nameSet keeps file names unique within one run by numbering repeats
type nameSet map[string]int

func newNameSet() nameSet {
	return make(nameSet)
}

func (s nameSet) claim(name string) string {
	s[name]++
	if n := s[name]; n > 1 {
		ext := path.Ext(name)
		return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
	}
	return name
}
