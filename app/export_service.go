// Package app sequences the export pipeline and tracks upload sessions.
package app

import (
	"context"

	"formexport/adapters/archive"
	"formexport/adapters/excel"
	"formexport/domain/core"
	"formexport/domain/form"
	"formexport/internal"
	"formexport/internal/compose"
	"formexport/internal/errors"
	"formexport/internal/normalize"
	"formexport/internal/sanitize"
	"formexport/ports"

	"golang.org/x/sync/semaphore"
)

// ExportOptions holds the pipeline settings shared by every run
type ExportOptions struct {
	Sheet    string
	StartRow int
	Cutoff   int
	// BaseName names the archive when a session gives none
	BaseName string
	// MaxJobs bounds concurrent pipeline runs; below 1 means 1
	MaxJobs int64
}

// DefaultExportOptions returns the settings of an unmodified export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Sheet:    excel.DefaultSheet,
		StartRow: 1,
		Cutoff:   form.LargeOptionCutoff,
		BaseName: sanitize.DefaultBaseName,
		MaxJobs:  2,
	}
}

// Preview is the outcome of normalize and scan
type Preview struct {
	Cleaned []byte
	Report  normalize.Report
	Scan    *compose.ScanResult
}

// RunResult is the outcome of a whole pipeline run
type RunResult struct {
	Preview     *Preview
	Documents   []form.GeneratedDocument
	ArchiveName string
	Archive     []byte
}

// ExportService runs Normalize, Scan, Compose and Bundle
type ExportService struct {
	options    ExportOptions
	normalizer *normalize.Normalizer
	composer   *compose.Composer
	clock      ports.Clock
	jobs       *semaphore.Weighted
	sessions   *SessionStore
	logger     *internal.Logger
}

// NewExportService creates a service rendering through renderer
func NewExportService(options ExportOptions, renderer ports.DocumentRenderer, clock ports.Clock) *ExportService {
	defaults := DefaultExportOptions()
	if options.Sheet == "" {
		options.Sheet = defaults.Sheet
	}
	if options.StartRow < 1 {
		options.StartRow = defaults.StartRow
	}
	if options.Cutoff < 1 {
		options.Cutoff = defaults.Cutoff
	}
	if options.BaseName == "" {
		options.BaseName = defaults.BaseName
	}
	if options.MaxJobs < 1 {
		options.MaxJobs = 1
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ExportService{
		options:    options,
		normalizer: normalize.NewNormalizer(excel.ExcelConfig{Sheet: options.Sheet, StartRow: options.StartRow}),
		composer: compose.NewComposer(renderer,
			compose.WithClock(clock),
			compose.WithSheet(options.Sheet),
			compose.WithCutoff(options.Cutoff)),
		clock:    clock,
		jobs:     semaphore.NewWeighted(options.MaxJobs),
		sessions: NewSessionStore(),
		logger:   internal.DefaultLogger.Named("ExportService"),
	}
}

// Options returns the effective settings
func (s *ExportService) Options() ExportOptions {
	return s.options
}

// Sessions exposes the session store
func (s *ExportService) Sessions() *SessionStore {
	return s.sessions
}

func (s *ExportService) acquire(ctx context.Context) error {
	if err := s.jobs.Acquire(ctx, 1); err != nil {
		return errors.ProcessingError("job scheduling", err)
	}
	return nil
}

// Preview normalizes raw workbook bytes and scans the cleaned result
func (s *ExportService) Preview(ctx context.Context, raw []byte) (*Preview, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.jobs.Release(1)
	return s.preview(ctx, raw)
}

func (s *ExportService) preview(ctx context.Context, raw []byte) (*Preview, error) {
	result, err := s.normalizer.Normalize(ctx, raw)
	if err != nil {
		return nil, err
	}
	scan, err := s.composer.Scan(ctx, result.Data)
	if err != nil {
		return nil, err
	}
	return &Preview{Cleaned: result.Data, Report: result.Report, Scan: scan}, nil
}

// Documents builds the document trees of a cleaned workbook without rendering
func (s *ExportService) Documents(ctx context.Context, cleaned []byte, cfg form.FieldConfig) ([]form.Document, error) {
	return s.composer.Build(ctx, cleaned, cfg)
}

// Generate renders every form of a cleaned workbook
func (s *ExportService) Generate(ctx context.Context, cleaned []byte, cfg form.FieldConfig) ([]form.GeneratedDocument, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.jobs.Release(1)
	return s.composer.Compose(ctx, cleaned, cfg)
}

// Bundle zips documents and names the archive after baseName
func (s *ExportService) Bundle(docs []form.GeneratedDocument, baseName string) (string, []byte, error) {
	if baseName == "" {
		baseName = s.options.BaseName
	}
	data, err := archive.Bundle(docs, s.clock.Now())
	if err != nil {
		return "", nil, errors.ProcessingError("archive creation", err)
	}
	return sanitize.ArchiveName(baseName), data, nil
}

// Run executes the whole pipeline in one go
func (s *ExportService) Run(ctx context.Context, raw []byte, cfg form.FieldConfig, baseName string) (*RunResult, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.jobs.Release(1)

	preview, err := s.preview(ctx, raw)
	if err != nil {
		return nil, err
	}
	docs, err := s.composer.Compose(ctx, preview.Cleaned, cfg)
	if err != nil {
		return nil, err
	}
	name, data, err := s.Bundle(docs, baseName)
	if err != nil {
		return nil, err
	}
	s.logger.Info("generated %d documents into %s", len(docs), name)
	return &RunResult{Preview: preview, Documents: docs, ArchiveName: name, Archive: data}, nil
}

// StartSession creates a session awaiting its upload
func (s *ExportService) StartSession() *Session {
	return s.sessions.Create(s.clock.Now())
}

// Upload normalizes and scans the workbook of a session. A session that
// already holds an upload is reset first.
func (s *ExportService) Upload(ctx context.Context, id core.SessionID, source, baseName string, raw []byte) (SessionView, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return SessionView{}, err
	}
	if session.State() != StateAwaitingUpload {
		session.Reset(s.clock.Now())
	}

	preview, err := s.Preview(ctx, raw)
	if err != nil {
		s.logger.Warn("session %s: upload of %s failed: %v", id, source, err)
		return SessionView{}, err
	}

	if baseName == "" {
		baseName = s.options.BaseName
	}
	session.mu.Lock()
	now := s.clock.Now()
	err = session.loaded(now, source, baseName, &normalize.Result{Data: preview.Cleaned, Report: preview.Report})
	if err == nil {
		err = session.scanned(now, preview.Scan)
	}
	session.mu.Unlock()
	if err != nil {
		return SessionView{}, err
	}

	s.logger.Info("session %s: %s (%s) normalized, %d large dropdowns", id, source, core.NewHash(raw).Short(), len(preview.Scan.LargeDropdowns))
	return session.View(), nil
}

// Configure records the show-all choices of a session. With selectAll every
// large dropdown is switched on; otherwise exactly the listed field ids are.
func (s *ExportService) Configure(id core.SessionID, fieldIDs []string, selectAll bool) (SessionView, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return SessionView{}, err
	}

	session.mu.Lock()
	var cfg form.FieldConfig
	if session.scan != nil {
		cfg = form.ToggleAll(session.scan.LargeDropdowns, selectAll)
		if !selectAll {
			for _, fid := range fieldIDs {
				cfg[fid] = true
			}
		}
	}
	err = session.configure(s.clock.Now(), cfg)
	session.mu.Unlock()
	if err != nil {
		return SessionView{}, err
	}
	return session.View(), nil
}

// GenerateSession renders the documents of a configured session and bundles
// them. Nothing is stored when any step fails.
func (s *ExportService) GenerateSession(ctx context.Context, id core.SessionID) (SessionView, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return SessionView{}, err
	}

	session.mu.Lock()
	state, revision := session.state, session.revision
	cleaned, cfg, baseName := session.cleaned, session.config.Clone(), session.baseName
	session.mu.Unlock()
	if state != StateConfigured && state != StateComposed {
		return SessionView{}, core.NewTransitionError("generate", state)
	}

	docs, err := s.Generate(ctx, cleaned, cfg)
	if err != nil {
		return SessionView{}, err
	}
	if len(docs) == 0 {
		return SessionView{}, errors.EmptyInput("no forms were found in the cleaned workbook")
	}
	_, data, err := s.Bundle(docs, baseName)
	if err != nil {
		return SessionView{}, err
	}

	session.mu.Lock()
	err = session.composed(s.clock.Now(), revision, docs, data)
	session.mu.Unlock()
	if err != nil {
		return SessionView{}, err
	}
	s.logger.Info("session %s: generated %d documents", id, len(docs))
	return session.View(), nil
}

// ResetSession discards the buffers of a session
func (s *ExportService) ResetSession(id core.SessionID) (SessionView, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return SessionView{}, err
	}
	session.Reset(s.clock.Now())
	return session.View(), nil
}
