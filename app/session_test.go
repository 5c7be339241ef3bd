package app

import (
	"encoding/json"
	"testing"
	"time"

	"formexport/domain/core"
	"formexport/domain/form"
	"formexport/internal/compose"
	"formexport/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func loadedSession(t *testing.T, large ...form.LargeDropdown) *Session {
	t.Helper()
	s := NewSession(core.NewSessionID(), t0)
	require.NoError(t, s.loaded(t0, "x.xlsx", "Base", &normalize.Result{Data: []byte("cleaned")}))
	require.NoError(t, s.scanned(t0, &compose.ScanResult{LargeDropdowns: large}))
	return s
}

func TestSessionTransitions(t *testing.T) {
	s := NewSession(core.NewSessionID(), t0)

	assert.True(t, core.IsTransitionError(s.scanned(t0, &compose.ScanResult{})))
	assert.True(t, core.IsTransitionError(s.configure(t0, nil)))
	assert.True(t, core.IsTransitionError(s.composed(t0, s.revision, nil, nil)))

	require.NoError(t, s.loaded(t0, "x.xlsx", "Base", &normalize.Result{}))
	assert.Equal(t, StateNormalized, s.State())
	assert.True(t, core.IsTransitionError(s.loaded(t0, "x.xlsx", "Base", &normalize.Result{})))

	require.NoError(t, s.scanned(t0, &compose.ScanResult{
		LargeDropdowns: []form.LargeDropdown{{FieldID: "7", OptionCount: 80}},
	}))
	assert.Equal(t, StateAwaitingConfig, s.State())
	assert.True(t, core.IsTransitionError(s.composed(t0, s.revision, nil, nil)))

	require.NoError(t, s.configure(t0, form.FieldConfig{"7": true, "8": true}))
	assert.Equal(t, StateConfigured, s.State())
	assert.Equal(t, form.FieldConfig{"7": true}, s.View().Config)

	require.NoError(t, s.composed(t0, s.revision, []form.GeneratedDocument{{Filename: "a.docx"}}, []byte("zip")))
	assert.Equal(t, StateComposed, s.State())
}

func TestSessionRefusesDocumentsFromOldChoices(t *testing.T) {
	s := loadedSession(t, form.LargeDropdown{FieldID: "7", OptionCount: 80})
	require.NoError(t, s.configure(t0, form.FieldConfig{"7": false}))
	started := s.revision

	// choices change while the documents are being rendered
	require.NoError(t, s.configure(t0, form.FieldConfig{"7": true}))

	err := s.composed(t0, started, []form.GeneratedDocument{{Filename: "a.docx"}}, []byte("zip"))
	assert.True(t, core.IsTransitionError(err))
	assert.Contains(t, err.Error(), "session changed during generate")
	assert.Equal(t, StateConfigured, s.State())
	assert.Equal(t, form.FieldConfig{"7": true}, s.View().Config)

	require.NoError(t, s.composed(t0, s.revision, []form.GeneratedDocument{{Filename: "a.docx"}}, []byte("zip")))
	assert.Equal(t, StateComposed, s.State())
}

func TestSessionTransitionErrorNamesState(t *testing.T) {
	s := NewSession(core.NewSessionID(), t0)
	err := s.configure(t0, nil)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "cannot configure while awaiting_upload")
}

func TestSessionWithoutLargeDropdowns(t *testing.T) {
	s := loadedSession(t)
	assert.Equal(t, StateConfigured, s.State())
	assert.Empty(t, s.View().Config)
}

func TestSessionResetKeepsIdentity(t *testing.T) {
	s := loadedSession(t)
	id := s.ID
	later := t0.Add(time.Hour)

	s.Reset(later)

	v := s.View()
	assert.Equal(t, id, v.ID)
	assert.Equal(t, t0, v.CreatedAt)
	assert.Equal(t, later, v.UpdatedAt)
	assert.Equal(t, StateAwaitingUpload, v.State)
	assert.Empty(t, v.Source)
	assert.Nil(t, v.Report)
}

func TestSessionViewJSON(t *testing.T) {
	s := loadedSession(t, form.LargeDropdown{FieldID: "7", Description: "Runway", OptionCount: 80})

	data, err := json.Marshal(s.View())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"awaiting_config"`)
	assert.Contains(t, string(data), `"field_id":"7"`)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	a := store.Create(t0)
	b := store.Create(t0.Add(time.Hour))
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, store.Len())

	got, err := store.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	assert.Equal(t, 1, store.Expire(t0.Add(time.Minute)))
	_, err = store.Get(a.ID)
	assert.True(t, core.IsNotFoundError(err))

	require.NoError(t, store.Delete(b.ID))
	assert.ErrorIs(t, store.Delete(b.ID), core.ErrSessionNotFound)
	assert.Zero(t, store.Len())
}
