// Package session holds the current signed-in identity and tells interested
// components when it changes.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/auth"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

// Authenticator is the auth collaborator as seen by the store.
type Authenticator interface {
	GetSession(ctx context.Context) (*models.Session, error)
	OnAuthStateChange(fn auth.Listener) func()
	SignOut(ctx context.Context) error
}

type listenerEntry struct {
	id int
	fn auth.Listener
}

// Store is passed explicitly to every component that needs the session.
type Store struct {
	auth   Authenticator
	logger logging.Logger

	mu        sync.RWMutex
	current   *models.Session
	listeners []listenerEntry
	nextID    int

	unbridge func()
}

func NewStore(a Authenticator, l logging.Logger) *Store {
	return &Store{auth: a, logger: l.With("module", "session")}
}

// Start loads the existing session once and then follows every transition.
// A failed load is treated as "signed out".
func (s *Store) Start(ctx context.Context) *models.Session {
	sess, err := s.auth.GetSession(ctx)
	if err != nil {
		s.logger.Warn(ctx, "session restore failed", "error", err.Error())
		sess = nil
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	unbridge := s.auth.OnAuthStateChange(s.handle)
	s.mu.Lock()
	s.unbridge = unbridge
	s.mu.Unlock()
	return sess
}

func (s *Store) handle(event models.AuthEvent, sess *models.Session) {
	s.mu.Lock()
	s.current = sess
	ls := make([]listenerEntry, len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()

	for _, l := range ls {
		l.fn(event, sess)
	}
}

// Current returns the live session or nil.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn for later transitions; fn is called synchronously.
func (s *Store) Subscribe(fn auth.Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// SignOut is best effort: network failures are logged, never returned, and
// the store ends up signed out either way.
func (s *Store) SignOut(ctx context.Context) {
	if err := s.auth.SignOut(ctx); err != nil {
		s.logger.Warn(ctx, "sign-out request failed", "error", err.Error())
	}

	s.mu.Lock()
	stale := s.current != nil
	s.mu.Unlock()

	// the collaborator normally reports SIGNED_OUT itself
	if stale {
		s.handle(models.AuthSignedOut, nil)
	}
}

// Close detaches the store from the auth collaborator.
func (s *Store) Close() {
	s.mu.Lock()
	unbridge := s.unbridge
	s.unbridge = nil
	s.mu.Unlock()

	if unbridge != nil {
		unbridge()
	}
}
