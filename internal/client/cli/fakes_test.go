package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/auth"
	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/images"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

var errBadCredentials = errors.New("invalid login credentials")

type fakeAuth struct {
	mu        sync.Mutex
	restored  *models.Session
	listeners []auth.Listener
	signOuts  int
}

func (f *fakeAuth) GetSession(ctx context.Context) (*models.Session, error) {
	return f.restored, nil
}

func (f *fakeAuth) OnAuthStateChange(fn auth.Listener) func() {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
	return func() {}
}

func (f *fakeAuth) emit(ev models.AuthEvent, s *models.Session) {
	f.mu.Lock()
	ls := append([]auth.Listener(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range ls {
		l(ev, s)
	}
}

func (f *fakeAuth) signIn(email, password string) (*models.Session, error) {
	if password != "pw" {
		return nil, errBadCredentials
	}
	s := &models.Session{UserID: "u-" + email, Email: email, AccessToken: "a", RefreshToken: "r"}
	f.emit(models.AuthSignedIn, s)
	return s, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return f.signIn(email, password)
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	return f.signIn(email, password)
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOuts++
	f.mu.Unlock()
	f.emit(models.AuthSignedOut, nil)
	return nil
}

// fakeFeed ends when its subscribe ctx is done, like the gRPC stream.
type fakeFeed struct {
	ch   chan models.TaskEvent
	stop chan struct{}
	once sync.Once
}

func newFakeFeed(ctx context.Context) *fakeFeed {
	f := &fakeFeed{ch: make(chan models.TaskEvent, 8), stop: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			f.Close()
		case <-f.stop:
		}
	}()
	return f
}

func (f *fakeFeed) Events() <-chan models.TaskEvent { return f.ch }
func (f *fakeFeed) Err() error                      { return nil }
func (f *fakeFeed) Close() {
	f.once.Do(func() {
		close(f.stop)
		close(f.ch)
	})
}

type fakeBackend struct {
	mu    sync.Mutex
	rows  []*models.Task
	seq   int
	feeds []*fakeFeed

	subErr    error
	insertErr error
}

func (f *fakeBackend) add(title, email string) *models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &models.Task{
		ID:        fmt.Sprintf("t%d", f.seq),
		Title:     title,
		Email:     email,
		CreatedAt: time.Date(2024, 1, 1, 0, f.seq, 0, 0, time.UTC),
	}
	f.rows = append(f.rows, t)
	return t.Clone()
}

func (f *fakeBackend) ListTasks(ctx context.Context, email string) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Task
	for _, t := range f.rows {
		if t.Email == email {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (f *fakeBackend) Subscribe(ctx context.Context, email string) (client.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	feed := newFakeFeed(ctx)
	f.feeds = append(f.feeds, feed)
	return feed, nil
}

func (f *fakeBackend) InsertTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	created := f.add(t.Title, t.Email)
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[len(f.rows)-1]
	row.Description = t.Description
	row.ImageURL, row.ImagePath = t.ImageURL, t.ImagePath
	created.Description = t.Description
	created.ImageURL, created.ImagePath = t.ImageURL, t.ImagePath
	return created, nil
}

func (f *fakeBackend) find(id string) (int, bool) {
	for i, t := range f.rows {
		if t.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (f *fakeBackend) GetTask(ctx context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return nil, client.ErrNotFound
	}
	return f.rows[i].Clone(), nil
}

func (f *fakeBackend) UpdateTask(ctx context.Context, id, description string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return nil, client.ErrNotFound
	}
	f.rows[i].Description = description
	return f.rows[i].Clone(), nil
}

func (f *fakeBackend) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return client.ErrNotFound
	}
	f.rows = append(f.rows[:i], f.rows[i+1:]...)
	return nil
}

type fakeImages struct {
	removed []string
}

func (f *fakeImages) Upload(ctx context.Context, file string, email string) (*images.Result, error) {
	path := images.StoragePath(email, file, 1700000000000)
	return &images.Result{PublicURL: "http://public/" + path, StoragePath: path}, nil
}

func (f *fakeImages) Remove(ctx context.Context, paths []string) error {
	f.removed = append(f.removed, paths...)
	return nil
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }
