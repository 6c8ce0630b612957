// Package notify fans workspace change events out to subscribers. Every
// backend delivers an Event for each presence or item change in a workspace;
// subscribers re-read authoritative state instead of trusting the payload.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Topics
const (
	TopicPresence = "presence"
	TopicItems    = "items"
	// TopicStream events are local to a subscription and never published.
	TopicStream = "stream"
)

// Event types
const (
	EventHeartbeat = "heartbeat"
	EventLeft      = "left"
	EventReaped    = "reaped"
	EventCreated   = "created"
	EventUpdated   = "updated"
	EventDeleted   = "deleted"
	EventClosed    = "closed"
)

// Drivers
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverNATS     = "nats"
	DriverPostgres = "postgres"
)

var (
	ErrMissingWorkspace = errors.New("event has no workspace id")
	ErrClosed           = errors.New("notifier is closed")
	ErrUnknownDriver    = errors.New("unknown notifier driver")
)

// Event describes a change in one workspace.
type Event struct {
	Topic       string    `json:"topic"`
	Type        string    `json:"type"`
	WorkspaceID string    `json:"workspace_id"`
	Session     string    `json:"session,omitempty"`
	ItemType    string    `json:"item_type,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Handler receives events. It runs on the delivery goroutine and must not block.
type Handler func(Event)

// Unsubscribe tears a subscription down. Calling it more than once is a no-op.
type Unsubscribe func()

// Notifier publishes and subscribes to workspace events
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, workspaceID string, handler Handler) (Unsubscribe, error)
	Close() error
}

func once(fn func()) Unsubscribe {
	var o sync.Once
	return func() { o.Do(fn) }
}

// Encode serializes an event, stamping OccurredAt when unset.
func Encode(event Event) ([]byte, error) {
	if event.WorkspaceID == "" {
		return nil, ErrMissingWorkspace
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return json.Marshal(event)
}

// Decode parses an event and rejects one without a workspace id.
func Decode(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if event.WorkspaceID == "" {
		return Event{}, ErrMissingWorkspace
	}
	return event, nil
}

// Options carries the connections a backend may need.
type Options struct {
	Driver      string
	Redis       *redis.Client
	NATSURL     string
	NATSName    string
	PostgresURL string
	Logger      *zap.Logger
}

// New builds the notifier selected by opts.Driver
func New(ctx context.Context, opts Options) (Notifier, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(opts.Driver) {
	case "", DriverMemory:
		return NewMemoryNotifier(), nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis notifier: redis client is not configured")
		}
		return NewRedisNotifier(opts.Redis, logger), nil
	case DriverNATS:
		return NewNATSNotifier(opts.NATSURL, opts.NATSName, logger)
	case DriverPostgres:
		if opts.PostgresURL == "" {
			return nil, fmt.Errorf("postgres notifier: database url is not set")
		}
		pool, err := pgxpool.New(ctx, opts.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("postgres notifier: %w", err)
		}
		return NewPostgresNotifier(ctx, pool, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
