package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func TestMemoryNotifier_DeliversToWorkspaceOnly(t *testing.T) {
	n := NewMemoryNotifier()
	ctx := context.Background()

	w1, w2 := &collector{}, &collector{}
	_, err := n.Subscribe(ctx, "w1", w1.handle)
	require.NoError(t, err)
	_, err = n.Subscribe(ctx, "w2", w2.handle)
	require.NoError(t, err)

	require.NoError(t, n.Publish(ctx, Event{Topic: TopicPresence, Type: EventHeartbeat, WorkspaceID: "w1", Session: "s1"}))

	require.Len(t, w1.snapshot(), 1)
	assert.Equal(t, "s1", w1.snapshot()[0].Session)
	assert.Empty(t, w2.snapshot())
}

func TestMemoryNotifier_UnsubscribeIsIdempotent(t *testing.T) {
	n := NewMemoryNotifier()
	ctx := context.Background()

	c := &collector{}
	unsubscribe, err := n.Subscribe(ctx, "w1", c.handle)
	require.NoError(t, err)
	other, err := n.Subscribe(ctx, "w1", func(Event) {})
	require.NoError(t, err)
	assert.Equal(t, 2, n.Subscribers("w1"))

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, n.Subscribers("w1"))

	require.NoError(t, n.Publish(ctx, Event{Topic: TopicPresence, Type: EventLeft, WorkspaceID: "w1"}))
	assert.Empty(t, c.snapshot())

	other()
	assert.Equal(t, 0, n.Subscribers("w1"))
}

func TestMemoryNotifier_Validation(t *testing.T) {
	n := NewMemoryNotifier()
	ctx := context.Background()

	assert.ErrorIs(t, n.Publish(ctx, Event{Topic: TopicItems}), ErrMissingWorkspace)
	_, err := n.Subscribe(ctx, "", func(Event) {})
	assert.ErrorIs(t, err, ErrMissingWorkspace)

	require.NoError(t, n.Close())
	assert.ErrorIs(t, n.Publish(ctx, Event{WorkspaceID: "w1"}), ErrClosed)
	_, err = n.Subscribe(ctx, "w1", func(Event) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRedisNotifier_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := NewRedisNotifier(client, zap.NewNop())
	ctx := context.Background()

	c := &collector{}
	unsubscribe, err := n.Subscribe(ctx, "w1", c.handle)
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, n.Publish(ctx, Event{Topic: TopicItems, Type: EventCreated, WorkspaceID: "w1", ItemType: "ingredient"}))

	require.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := c.snapshot()[0]
	assert.Equal(t, TopicItems, got.Topic)
	assert.Equal(t, EventCreated, got.Type)
	assert.Equal(t, "ingredient", got.ItemType)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestRedisNotifier_UsesWorkspaceChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := NewRedisNotifier(client, zap.NewNop())
	ctx := context.Background()

	unsubscribe, err := n.Subscribe(ctx, "abc", func(Event) {})
	require.NoError(t, err)

	assert.Equal(t, []string{"presence:workspace:abc"}, mr.PubSubChannels("*"))

	unsubscribe()
	unsubscribe()
	assert.Eventually(t, func() bool { return len(mr.PubSubChannels("*")) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRedisNotifier_SubscribeFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	n := NewRedisNotifier(client, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := n.Subscribe(ctx, "w1", func(Event) {})
	assert.Error(t, err)
}

func TestSubjectsAndChannels(t *testing.T) {
	assert.Equal(t, "presence:workspace:w1", RedisChannel("w1"))
	assert.Equal(t, "workspace.w1.events", NATSSubject("w1"))
}

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	n, err := New(ctx, Options{Driver: ""})
	require.NoError(t, err)
	assert.IsType(t, &MemoryNotifier{}, n)

	n, err = New(ctx, Options{Driver: "MEMORY"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryNotifier{}, n)

	_, err = New(ctx, Options{Driver: DriverRedis})
	assert.Error(t, err)

	_, err = New(ctx, Options{Driver: DriverPostgres})
	assert.Error(t, err)

	_, err = New(ctx, Options{Driver: "kafka"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestNewNATSNotifier_RequiresURL(t *testing.T) {
	_, err := NewNATSNotifier("", "", zap.NewNop())
	assert.Error(t, err)
}

func TestPostgresNotifier_DispatchFansOut(t *testing.T) {
	n := &PostgresNotifier{hub: NewMemoryNotifier(), logger: zap.NewNop()}
	c := &collector{}
	_, err := n.Subscribe(context.Background(), "w1", c.handle)
	require.NoError(t, err)

	payload, err := Encode(Event{Topic: TopicPresence, Type: EventReaped, WorkspaceID: "w1"})
	require.NoError(t, err)

	n.dispatch(string(payload))
	n.dispatch("{not json")
	n.dispatch(`{"topic":"presence"}`)

	require.Len(t, c.snapshot(), 1)
	assert.Equal(t, EventReaped, c.snapshot()[0].Type)
}
