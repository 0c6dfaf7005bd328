package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelName(t *testing.T) {
	assert.Equal(t, "tasks:a@x.com", channelName("a@x.com"))
}

func TestRedisBroker_Relay(t *testing.T) {
	b := &RedisBroker{logger: logging.NewNop()}

	url := "http://s3/a@x.com/p-1"
	good, err := json.Marshal(Event{Type: EventInsert, Task: models.Task{ID: "1", Email: "a@x.com", ImageURL: &url}})
	require.NoError(t, err)

	in := make(chan *goRedis.Message, 3)
	in <- &goRedis.Message{Channel: "tasks:a@x.com", Payload: "{not json"}
	in <- &goRedis.Message{Channel: "tasks:a@x.com", Payload: string(good)}
	close(in)

	out := make(chan Event, 4)
	b.relay(context.Background(), in, out)

	require.Len(t, out, 1)
	ev := <-out
	assert.Equal(t, EventInsert, ev.Type)
	assert.Equal(t, "1", ev.Task.ID)
	require.NotNil(t, ev.Task.ImageURL)
	assert.Equal(t, url, *ev.Task.ImageURL)
}

func TestRedisBroker_RelayStopsOnContext(t *testing.T) {
	b := &RedisBroker{logger: logging.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.relay(ctx, make(chan *goRedis.Message), make(chan Event))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := NewRedisClient(ctx, "redis://127.0.0.1:1/0")
	assert.Error(t, err)
}
