package tasks

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

// Reader is the read side of the backend.
type Reader interface {
	ListTasks(ctx context.Context, email string) ([]*models.Task, error)
	Subscribe(ctx context.Context, email string) (client.Feed, error)
}

// Store owns the cache and at most one live change feed.
type Store struct {
	backend Reader
	cache   *Cache
	logger  logging.Logger

	mu    sync.Mutex
	email string
	feed  client.Feed
	refs  int
	gen   int
	done  chan struct{}
}

func NewStore(b Reader, l logging.Logger) *Store {
	return &Store{backend: b, cache: NewCache(), logger: l.With("module", "task_store")}
}

func (s *Store) Cache() *Cache { return s.cache }

// FetchAll replaces the cache with the backend's rows for email. On failure
// the cache is left as it was and the error is logged and returned.
func (s *Store) FetchAll(ctx context.Context, email string) ([]*models.Task, error) {
	list, err := s.backend.ListTasks(ctx, email)
	if err != nil {
		s.logger.Error(ctx, "fetch tasks failed", "email", email, "error", err.Error())
		return s.cache.Snapshot(), err
	}

	s.cache.Replace(list)
	return s.cache.Snapshot(), nil
}

// Live reports whether a change feed is currently applied to the cache.
func (s *Store) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed != nil
}

// Subscribe acquires the change feed for email. Acquiring it again while it
// is open only bumps a reference count, so events are never applied twice.
// The returned release is safe to call more than once.
func (s *Store) Subscribe(ctx context.Context, email string) (func(), error) {
	s.mu.Lock()

	for s.feed != nil && s.email != email {
		// different owner: the old feed must not leak
		s.mu.Unlock()
		s.Close()
		s.mu.Lock()
	}

	if s.feed != nil {
		s.refs++
		gen := s.gen
		s.mu.Unlock()
		return s.releaser(gen), nil
	}

	feed, err := s.backend.Subscribe(ctx, email)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error(ctx, "subscribe failed", "email", email, "error", err.Error())
		return func() {}, err
	}

	s.feed = feed
	s.email = email
	s.refs = 1
	s.gen++
	gen := s.gen
	s.done = make(chan struct{})
	go s.consume(feed, s.done)
	s.mu.Unlock()

	s.logger.Info(ctx, "subscribed", "email", email)
	return s.releaser(gen), nil
}

func (s *Store) releaser(gen int) func() {
	var once sync.Once
	return func() {
		once.Do(func() { s.release(gen) })
	}
}

func (s *Store) release(gen int) {
	s.mu.Lock()
	if s.feed == nil || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.refs--
	if s.refs > 0 {
		s.mu.Unlock()
		return
	}
	feed, done := s.detachLocked()
	s.mu.Unlock()

	stop(feed, done)
}

func (s *Store) detachLocked() (client.Feed, chan struct{}) {
	feed, done := s.feed, s.done
	s.feed, s.done, s.refs = nil, nil, 0
	return feed, done
}

func stop(feed client.Feed, done chan struct{}) {
	if feed == nil {
		return
	}
	feed.Close()
	<-done
}

// Close tears the feed down regardless of outstanding references and waits
// until no more events are applied.
func (s *Store) Close() {
	s.mu.Lock()
	feed, done := s.detachLocked()
	s.mu.Unlock()

	stop(feed, done)
}

func (s *Store) consume(feed client.Feed, done chan struct{}) {
	defer close(done)

	for ev := range feed.Events() {
		s.apply(ev)
	}

	ctx := context.Background()
	if err := feed.Err(); err != nil {
		s.logger.Warn(ctx, "subscription closed", "error", err.Error())
	} else {
		s.logger.Info(ctx, "subscription closed")
	}

	// a feed that died on its own is forgotten so the next Subscribe reopens it
	s.mu.Lock()
	if s.feed == feed {
		s.detachLocked()
	}
	s.mu.Unlock()
}

func (s *Store) apply(ev models.TaskEvent) {
	s.mu.Lock()
	email := s.email
	s.mu.Unlock()

	if ev.Task.Email != "" && ev.Task.Email != email {
		return
	}

	switch ev.Type {
	case models.EventInsert:
		s.cache.Prepend(&ev.Task)
	case models.EventUpdate:
		s.cache.Apply(&ev.Task)
	case models.EventDelete:
		s.cache.Remove(ev.Task.ID)
	}
}
