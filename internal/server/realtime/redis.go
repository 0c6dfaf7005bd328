package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	goRedis "github.com/redis/go-redis/v9"
)

const channelPrefix = "tasks:"

func channelName(email string) string {
	return channelPrefix + email
}

// RedisBroker shares the change feed between server instances over Redis
// pub/sub, one channel per owner email.
type RedisBroker struct {
	client *goRedis.Client
	logger logging.Logger
}

// NewRedisClient parses url, connects and pings.
func NewRedisClient(ctx context.Context, url string) (*goRedis.Client, error) {
	opts, err := goRedis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := goRedis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

func NewRedisBroker(client *goRedis.Client, l logging.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: l.With("module", "redis_broker")}
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, channelName(ev.Task.Email), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, email string) (<-chan Event, func(), error) {
	ps := b.client.Subscribe(ctx, channelName(email))

	// wait for the subscription to be confirmed so no publish is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Event, subscriberBuffer)

	go func() {
		defer close(out)
		defer ps.Close()
		b.relay(ctx, ps.Channel(), out)
	}()

	return out, cancel, nil
}

// relay decodes messages from in onto out until ctx is done or in closes.
func (b *RedisBroker) relay(ctx context.Context, in <-chan *goRedis.Message, out chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Warn(ctx, "bad event payload", "channel", msg.Channel, "error", err.Error())
				continue
			}
			select {
			case out <- ev:
			default:
				b.logger.Warn(ctx, "subscriber too slow, event dropped", "channel", msg.Channel, "task_id", ev.Task.ID)
			}
		}
	}
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
