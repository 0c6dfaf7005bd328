// Package auth is the client-side auth collaborator: it signs users up and
// in through the backend, keeps the refresh token in the local metadata store
// so a session survives restarts, and broadcasts every session transition.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

// Backend is the part of the gRPC client the auth service needs.
type Backend interface {
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	SignOut(ctx context.Context) error
	OnTokenRefresh(fn func(*models.Session))
}

// Listener receives a transition and the session after it (nil on sign-out).
type Listener func(event models.AuthEvent, s *models.Session)

type listenerEntry struct {
	id int
	fn Listener
}

type Service struct {
	backend Backend
	db      *sql.DB
	logger  logging.Logger

	mu        sync.Mutex
	current   *models.Session
	listeners []listenerEntry
	nextID    int
}

func NewService(b Backend, db *sql.DB, l logging.Logger) *Service {
	s := &Service{backend: b, db: db, logger: l.With("module", "auth")}
	b.OnTokenRefresh(s.handleTokenRefresh)
	return s
}

func (s *Service) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// saveSession persists what is needed to restore the session on next start.
func (s *Service) saveSession(ctx context.Context, sess *models.Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.getMetadataRepo(tx)
		if err := repo.Set(ctx, metadata.KeyEmail, sess.Email); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyRefreshToken, sess.RefreshToken)
	})
}

func (s *Service) forgetSession(ctx context.Context) error {
	return s.getMetadataRepo(s.db).Delete(ctx, metadata.KeyEmail, metadata.KeyRefreshToken)
}

func (s *Service) setCurrent(sess *models.Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

// emit calls listeners synchronously, in registration order, outside the lock
// so a listener may call back into the service.
func (s *Service) emit(event models.AuthEvent, sess *models.Session) {
	s.mu.Lock()
	ls := make([]listenerEntry, len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()

	for _, l := range ls {
		l.fn(event, sess)
	}
}

func (s *Service) signedIn(ctx context.Context, sess *models.Session) {
	if err := s.saveSession(ctx, sess); err != nil {
		s.logger.Warn(ctx, "session not persisted", "error", err.Error())
	}
	s.setCurrent(sess)
	s.emit(models.AuthSignedIn, sess)
}

func (s *Service) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := s.backend.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.signedIn(ctx, sess)
	return sess, nil
}

func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.signedIn(ctx, sess)
	return sess, nil
}

// SignOut always ends the local session. The returned error only reports
// whether the server-side revocation failed.
func (s *Service) SignOut(ctx context.Context) error {
	remoteErr := s.backend.SignOut(ctx)

	if err := s.forgetSession(ctx); err != nil {
		s.logger.Warn(ctx, "stored session not cleared", "error", err.Error())
	}

	s.setCurrent(nil)
	s.emit(models.AuthSignedOut, nil)

	return remoteErr
}

// GetSession returns the live session, or restores one from the stored
// refresh token. (nil, nil) means nobody is signed in.
func (s *Service) GetSession(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur != nil {
		return cur, nil
	}

	token, err := s.getMetadataRepo(s.db).Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("read stored session: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	sess, err := s.backend.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			// stored token is dead, don't try it again
			_ = s.forgetSession(ctx)
		}
		return nil, err
	}

	if err := s.saveSession(ctx, sess); err != nil {
		s.logger.Warn(ctx, "session not persisted", "error", err.Error())
	}
	s.setCurrent(sess)
	return sess, nil
}

// OnAuthStateChange registers fn for every later transition. The returned
// func unregisters it and is safe to call more than once.
func (s *Service) OnAuthStateChange(fn Listener) func() {
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

func (s *Service) handleTokenRefresh(sess *models.Session) {
	ctx := context.Background()
	if err := s.saveSession(ctx, sess); err != nil {
		s.logger.Warn(ctx, "refreshed session not persisted", "error", err.Error())
	}
	s.setCurrent(sess)
	s.emit(models.AuthTokenRefreshed, sess)
}
