// Package auth holds the admin session table. There is exactly one admin
// account, configured at startup; sessions live in memory and do not survive
// a restart.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

type Session struct {
	ID        string
	Username  string
	ExpiresAt time.Time
}

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	username string
	password string
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(username, password string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		username: username,
		password: password,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login checks the credentials and opens a new session. An empty configured
// password disables login.
func (s *SessionStore) Login(username, password string) (Session, error) {
	if s.password == "" || !equal(username, s.username) || !equal(password, s.password) {
		return Session{}, ErrInvalidCredentials
	}

	now := s.now()
	sess := Session{
		ID:        uuid.NewString(),
		Username:  s.username,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *SessionStore) Validate(id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotAuthenticated
	}
	if s.now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return Session{}, ErrNotAuthenticated
	}
	return sess, nil
}

func (s *SessionStore) Logout(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) sweepLocked(now time.Time) int {
	n := 0
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
