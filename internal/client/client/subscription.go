package client

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/rpc"
)

// Feed is an open change feed.
type Feed interface {
	Events() <-chan models.TaskEvent
	Err() error
	Close()
}

// Subscription is the gRPC-backed Feed. Events is closed when the stream
// ends; Err then reports why (nil after Close or a clean server shutdown).
type Subscription struct {
	events chan models.TaskEvent
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func (s *Subscription) Events() <-chan models.TaskEvent { return s.events }

func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the stream and waits for the receive loop to exit. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription) run(ctx context.Context, stream rpc.TaskEventStream) {
	defer close(s.done)
	defer close(s.events)

	for {
		ev, err := stream.Recv()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				s.mu.Lock()
				s.err = mapError(err)
				s.mu.Unlock()
			}
			return
		}

		select {
		case s.events <- models.TaskEvent{Type: models.EventType(ev.Type), Task: *fromRPCTask(&ev.Task)}:
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe opens the change feed for email.
func (s *GRPCClient) Subscribe(ctx context.Context, email string) (Feed, error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := s.client.Subscribe(ctx, &rpc.SubscribeRequest{Email: email})
	if err != nil {
		cancel()
		return nil, mapError(err)
	}

	sub := &Subscription{
		events: make(chan models.TaskEvent),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go sub.run(ctx, stream)

	return sub, nil
}
