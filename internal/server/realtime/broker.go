// Package realtime fans task change events out to subscribed clients.
//
// Events are scoped by owner email: a subscriber only ever sees changes to
// its own tasks. Delivery is best effort; a subscriber that falls behind
// loses events and catches up on its next full fetch.
package realtime

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one row-level change. For EventDelete only Task.ID and
// Task.Email are meaningful.
type Event struct {
	Type EventType   `json:"type"`
	Task models.Task `json:"task"`
}

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 64

// Broker publishes events and hands out per-email subscriptions.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns a channel of events for email and a release func.
	// The channel is closed after release is called or ctx is done.
	Subscribe(ctx context.Context, email string) (<-chan Event, func(), error)
	Close() error
}
