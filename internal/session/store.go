package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps one Session per browser, keyed by a random UUID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxIdle  time.Duration
}

// NewStore returns an empty store. Sessions untouched for maxIdle are dropped
// when a new session is created; zero keeps them forever.
func NewStore(maxIdle time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		maxIdle:  maxIdle,
	}
}

// Get looks up a session by id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the session for id, creating a fresh one when id is
// unknown. created reports whether a new session was made.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Create makes a new Empty session under a fresh id.
func (s *Store) Create() *Session {
	if s.maxIdle > 0 {
		s.Prune(time.Now().Add(-s.maxIdle))
	}

	sess := New(uuid.NewString())

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	return sess
}

// Prune drops sessions last touched before cutoff and returns how many.
func (s *Store) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.lastTouched().Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
