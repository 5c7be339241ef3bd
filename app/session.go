package app

import (
	"sort"
	"sync"
	"time"

	"formexport/domain/core"
	"formexport/domain/form"
	"formexport/internal/compose"
	"formexport/internal/normalize"
	"formexport/internal/sanitize"
)

// SessionState is the step an export session has reached
type SessionState int

const (
	StateAwaitingUpload SessionState = iota
	StateNormalized
	StateAwaitingConfig
	StateConfigured
	StateComposed
)

func (s SessionState) String() string {
	switch s {
	case StateAwaitingUpload:
		return "awaiting_upload"
	case StateNormalized:
		return "normalized"
	case StateAwaitingConfig:
		return "awaiting_config"
	case StateConfigured:
		return "configured"
	case StateComposed:
		return "composed"
	}
	return "unknown"
}

// MarshalText renders the state name in JSON
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session holds the buffers of one upload-to-download run. All methods are
// safe for concurrent use.
type Session struct {
	ID        core.SessionID
	CreatedAt time.Time

	mu        sync.Mutex
	state     SessionState
	updatedAt time.Time
	source    string
	baseName  string
	cleaned   []byte
	report    normalize.Report
	scan      *compose.ScanResult
	config    form.FieldConfig
	documents []form.GeneratedDocument
	archive   []byte

	// revision counts changes to the upload or its choices
	revision uint64
}

// NewSession creates a session awaiting its upload
func NewSession(id core.SessionID, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, updatedAt: now}
}

// State returns the current state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) touch(now time.Time) {
	s.updatedAt = now
}

// changed records a new upload, scan, configuration or reset
func (s *Session) changed(now time.Time) {
	s.revision++
	s.touch(now)
}

// loaded stores a cleaned workbook. AwaitingUpload -> Normalized.
func (s *Session) loaded(now time.Time, source, baseName string, result *normalize.Result) error {
	if s.state != StateAwaitingUpload {
		return core.NewTransitionError("upload", s.state)
	}
	s.source = source
	s.baseName = baseName
	s.cleaned = result.Data
	s.report = result.Report
	s.state = StateNormalized
	s.changed(now)
	return nil
}

// scanned stores the large dropdowns. Normalized -> AwaitingConfig, or
// straight to Configured when there is nothing to choose.
func (s *Session) scanned(now time.Time, scan *compose.ScanResult) error {
	if s.state != StateNormalized {
		return core.NewTransitionError("scan", s.state)
	}
	s.scan = scan
	s.config = form.FieldConfig{}
	if len(scan.LargeDropdowns) == 0 {
		s.state = StateConfigured
	} else {
		s.state = StateAwaitingConfig
	}
	s.changed(now)
	return nil
}

// configure replaces the choices, keeping only listed large dropdowns.
// Generated documents are dropped.
func (s *Session) configure(now time.Time, cfg form.FieldConfig) error {
	switch s.state {
	case StateAwaitingConfig, StateConfigured, StateComposed:
	default:
		return core.NewTransitionError("configure", s.state)
	}
	s.config = cfg.Restrict(s.scan.LargeDropdowns)
	s.documents = nil
	s.archive = nil
	s.state = StateConfigured
	s.changed(now)
	return nil
}

// composed stores documents generated from revision. Configured|Composed ->
// Composed. Documents built before the latest change are refused.
func (s *Session) composed(now time.Time, revision uint64, docs []form.GeneratedDocument, archive []byte) error {
	if s.state != StateConfigured && s.state != StateComposed {
		return core.NewTransitionError("generate", s.state)
	}
	if revision != s.revision {
		return core.NewStaleError("generate")
	}
	s.documents = docs
	s.archive = archive
	s.state = StateComposed
	s.touch(now)
	return nil
}

// Reset discards every buffer and returns to AwaitingUpload
func (s *Session) Reset(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAwaitingUpload
	s.source = ""
	s.baseName = ""
	s.cleaned = nil
	s.report = normalize.Report{}
	s.scan = nil
	s.config = nil
	s.documents = nil
	s.archive = nil
	s.changed(now)
}

// Document returns a generated document by file name
func (s *Session) Document(name string) (form.GeneratedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateComposed {
		return form.GeneratedDocument{}, core.ErrNothingGenerated
	}
	for _, d := range s.documents {
		if d.Filename == name {
			return d, nil
		}
	}
	return form.GeneratedDocument{}, core.NewNotFoundError(core.ErrDocumentNotFound, name)
}

// Archive returns the zip of every generated document and its file name
func (s *Session) Archive() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateComposed {
		return "", nil, core.ErrNothingGenerated
	}
	return sanitize.ArchiveName(s.baseName), s.archive, nil
}

// SessionView is a read-only snapshot for shells
type SessionView struct {
	ID             core.SessionID       `json:"id"`
	State          SessionState         `json:"state"`
	Source         string               `json:"source,omitempty"`
	BaseName       string               `json:"base_name,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Report         *normalize.Report    `json:"report,omitempty"`
	LargeDropdowns []form.LargeDropdown `json:"large_dropdowns,omitempty"`
	Scan           *compose.ScanResult  `json:"-"`
	Config         form.FieldConfig     `json:"config,omitempty"`
	Files          []string             `json:"files,omitempty"`
	ArchiveName    string               `json:"archive_name,omitempty"`
}

// View snapshots the session
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		ID:        s.ID,
		State:     s.state,
		Source:    s.source,
		BaseName:  s.baseName,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
		Scan:      s.scan,
		Config:    s.config.Clone(),
	}
	if s.state != StateAwaitingUpload {
		report := s.report
		v.Report = &report
	}
	if s.scan != nil {
		v.LargeDropdowns = append([]form.LargeDropdown(nil), s.scan.LargeDropdowns...)
	}
	if s.state == StateComposed {
		for _, d := range s.documents {
			v.Files = append(v.Files, d.Filename)
		}
		v.ArchiveName = sanitize.ArchiveName(s.baseName)
	}
	return v
}

// SelectedFields lists the field ids currently set to show all, sorted
func (v SessionView) SelectedFields() []string {
	var ids []string
	for id, on := range v.Config {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
