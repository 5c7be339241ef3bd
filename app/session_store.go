package app

import (
	"sync"
	"time"

	"formexport/domain/core"
)

// SessionStore keeps sessions in memory, keyed by id. Sessions are lost when
// the process exits.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[core.SessionID]*Session)}
}

// Create registers a fresh session
func (s *SessionStore) Create(now time.Time) *Session {
	session := NewSession(core.NewSessionID(), now)
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

// Get returns the session or core.ErrSessionNotFound
func (s *SessionStore) Get(id core.SessionID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, core.NewNotFoundError(core.ErrSessionNotFound, id.String())
	}
	return session, nil
}

// Delete forgets a session
func (s *SessionStore) Delete(id core.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return core.NewNotFoundError(core.ErrSessionNotFound, id.String())
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Expire removes sessions not updated since before cutoff and returns how
// many were removed
func (s *SessionStore) Expire(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		session.mu.Lock()
		stale := session.updatedAt.Before(cutoff)
		session.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
