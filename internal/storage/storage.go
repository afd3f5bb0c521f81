package storage

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// SessionStore keeps one Library per browser session, in memory only
type SessionStore struct {
	sessions map[string]*models.Library
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Library),
	}
}

// NewSessionID returns a URL-safe random identifier prefixed with "lib-"
func NewSessionID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return "lib-" + id, nil
}

func (s *SessionStore) Get(sessionID string) (*models.Library, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lib, exists := s.sessions[sessionID]
	return lib, exists
}

// GetOrCreate returns the library for sessionID, starting a new session when
// the ID is empty or unknown. created reports whether a new session was made.
func (s *SessionStore) GetOrCreate(sessionID string) (lib *models.Library, created bool, err error) {
	if sessionID != "" {
		if lib, ok := s.Get(sessionID); ok {
			lib.Touch()
			return lib, false, nil
		}
	}

	id, err := NewSessionID()
	if err != nil {
		return nil, false, err
	}

	lib = models.NewLibrary(id)
	s.mu.Lock()
	s.sessions[id] = lib
	s.mu.Unlock()
	return lib, true, nil
}

// Delete ends a session, discarding its records
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return existed
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle removes sessions whose last activity is older than ttl and returns how many were dropped
func (s *SessionStore) EvictIdle(ttl time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, lib := range s.sessions {
		if now.Sub(lib.LastActive()) > ttl {
			delete(s.sessions, id)
			evicted++
			slog.Debug("Evicted idle session", "session_id", id, "records", lib.Len(), "age", now.Sub(lib.CreatedAt()).Round(time.Second))
		}
	}
	return evicted
}
