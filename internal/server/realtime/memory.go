package realtime

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

type subscriber struct {
	ch   chan Event
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// MemoryBroker delivers events within a single server process.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
	logger logging.Logger
}

func NewMemoryBroker(l logging.Logger) *MemoryBroker {
	return &MemoryBroker{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: l.With("module", "memory_broker"),
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subs[ev.Task.Email] {
		select {
		case s.ch <- ev:
		default:
			b.logger.Warn(ctx, "subscriber too slow, event dropped", "email", ev.Task.Email, "type", string(ev.Type), "task_id", ev.Task.ID)
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, email string) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, ErrBrokerClosed
	}

	s := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if b.subs[email] == nil {
		b.subs[email] = make(map[*subscriber]struct{})
	}
	b.subs[email][s] = struct{}{}

	done := make(chan struct{})
	var once sync.Once
	release := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			defer b.mu.Unlock()
			if set, ok := b.subs[email]; ok {
				delete(set, s)
				if len(set) == 0 {
					delete(b.subs, email)
				}
			}
			s.close()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			release()
		case <-done:
		}
	}()

	return s.ch, release, nil
}

// Subscribers returns the number of live subscriptions for email.
func (b *MemoryBroker) Subscribers(email string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[email])
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for email, set := range b.subs {
		for s := range set {
			s.close()
		}
		delete(b.subs, email)
	}
	return nil
}
