package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wasimrehman05/superdoc-sub017/internal/doc"
	"github.com/wasimrehman05/superdoc-sub017/internal/mutation"
)

// ErrSessionNotFound indicates an unknown document id.
var ErrSessionNotFound = errors.New("session not found")

// Session owns one live document and its mutation engine.
type Session struct {
	ID      string
	Doc     *doc.Doc
	Engine  *mutation.Engine
	Created time.Time
}

// Store holds the active document sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	limits   mutation.Limits
}

// NewStore creates an empty session store. Engines created by the store
// inherit the given limits.
func NewStore(limits mutation.Limits) *Store {
	return &Store{
		sessions: map[string]*Session{},
		limits:   limits,
	}
}

// Create opens a session for the given document root.
func (s *Store) Create(root *doc.Node) (*Session, error) {
	d, err := doc.NewDoc(root)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:      uuid.NewString(),
		Doc:     d,
		Engine:  mutation.NewEngine(d, mutation.NewTracker(d), mutation.WithLimits(s.limits)),
		Created: time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Get returns the session for an id.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete closes a session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
