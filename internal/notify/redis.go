package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisChannel returns the pub/sub channel for a workspace
func RedisChannel(workspaceID string) string {
	return fmt.Sprintf("presence:workspace:%s", workspaceID)
}

// RedisNotifier uses one Redis pub/sub channel per workspace. The client is
// owned by the caller.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

func (n *RedisNotifier) Publish(ctx context.Context, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, RedisChannel(event.WorkspaceID), payload).Err()
}

// Subscribe returns once Redis has confirmed the subscription
func (n *RedisNotifier) Subscribe(ctx context.Context, workspaceID string, handler Handler) (Unsubscribe, error) {
	if workspaceID == "" {
		return nil, ErrMissingWorkspace
	}

	pubsub := n.client.Subscribe(ctx, RedisChannel(workspaceID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	ch := pubsub.Channel()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("Recovered from panic in redis event handler",
					zap.Any("panic", r),
					zap.String("workspace_id", workspaceID))
			}
		}()

		for msg := range ch {
			event, err := Decode([]byte(msg.Payload))
			if err != nil {
				n.logger.Warn("Dropping malformed redis event",
					zap.String("channel", msg.Channel),
					zap.Error(err))
				continue
			}
			handler(event)
		}
	}()

	return once(func() {
		if err := pubsub.Close(); err != nil {
			n.logger.Debug("Redis unsubscribe failed", zap.Error(err))
		}
	}), nil
}

// Close is a no-op; the redis client is closed by its owner.
func (n *RedisNotifier) Close() error {
	return nil
}
