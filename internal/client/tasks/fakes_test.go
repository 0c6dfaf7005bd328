package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/images"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

type fakeFeed struct {
	ch   chan models.TaskEvent
	stop chan struct{}
	once sync.Once
	err  error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ch: make(chan models.TaskEvent, 16), stop: make(chan struct{})}
}

// watch closes the feed once ctx is done, as the gRPC stream does.
func (f *fakeFeed) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		f.Close()
	case <-f.stop:
	}
}

func (f *fakeFeed) Events() <-chan models.TaskEvent { return f.ch }
func (f *fakeFeed) Err() error                      { return f.err }
func (f *fakeFeed) Close() {
	f.once.Do(func() {
		close(f.stop)
		close(f.ch)
	})
}

// fakeBackend is an in-memory backend that scopes rows by owner email the way
// the server does.
type fakeBackend struct {
	mu    sync.Mutex
	rows  map[string]*models.Task
	seq   int
	clock time.Time
	calls []string

	listErr   error
	insertErr error
	getErr    error
	updateErr error
	deleteErr error
	subErr    error

	feeds []*fakeFeed
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{rows: map[string]*models.Task{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeBackend) log(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) seed(title, email string) *models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.clock = f.clock.Add(time.Minute)
	t := &models.Task{ID: fmt.Sprintf("t%d", f.seq), Title: title, Email: email, CreatedAt: f.clock}
	f.rows[t.ID] = t
	return t.Clone()
}

func (f *fakeBackend) ListTasks(ctx context.Context, email string) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Task
	for _, t := range f.rows {
		if t.Email == email {
			out = append(out, t.Clone())
		}
	}
	// oldest first; the cache does the ordering
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBackend) Subscribe(ctx context.Context, email string) (client.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("subscribe")
	if f.subErr != nil {
		return nil, f.subErr
	}
	feed := newFakeFeed()
	go feed.watch(ctx)
	f.feeds = append(f.feeds, feed)
	return feed, nil
}

func (f *fakeBackend) InsertTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("insert")
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.seq++
	f.clock = f.clock.Add(time.Minute)
	row := t.Clone()
	row.ID = fmt.Sprintf("t%d", f.seq)
	row.CreatedAt = f.clock
	f.rows[row.ID] = row
	return row.Clone(), nil
}

func (f *fakeBackend) GetTask(ctx context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("get")
	if f.getErr != nil {
		return nil, f.getErr
	}
	t, ok := f.rows[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	return t.Clone(), nil
}

func (f *fakeBackend) UpdateTask(ctx context.Context, id, description string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("update")
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	t, ok := f.rows[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	t.Description = description
	return t.Clone(), nil
}

func (f *fakeBackend) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log("delete-row")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeImages records calls into the shared backend log so ordering can be
// asserted.
type fakeImages struct {
	backend   *fakeBackend
	uploadErr error
	removeErr error
	n         int
	removed   []string
}

func (f *fakeImages) Upload(ctx context.Context, file string, email string) (*images.Result, error) {
	f.backend.mu.Lock()
	f.backend.log("upload")
	f.backend.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.n++
	path := images.StoragePath(email, file, int64(1700000000000+f.n))
	return &images.Result{PublicURL: "http://public/tasks-images/" + path, StoragePath: path}, nil
}

func (f *fakeImages) Remove(ctx context.Context, paths []string) error {
	f.backend.mu.Lock()
	f.backend.log("remove-image")
	f.backend.mu.Unlock()
	f.removed = append(f.removed, paths...)
	return f.removeErr
}
