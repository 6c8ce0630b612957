package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSSubject returns the core NATS subject for a workspace
func NATSSubject(workspaceID string) string {
	return fmt.Sprintf("workspace.%s.events", workspaceID)
}

// NATSNotifier publishes on core NATS subjects. No persistence: a subscriber
// that is offline misses events and catches up on its next poll.
type NATSNotifier struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNATSNotifier connects to the given server list
func NewNATSNotifier(url, name string, logger *zap.Logger) (*NATSNotifier, error) {
	if url == "" {
		return nil, errors.New("nats notifier: url is not set")
	}
	if name == "" {
		name = "workspace-service"
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(3*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats notifier: %w", err)
	}

	return &NATSNotifier{conn: conn, logger: logger}, nil
}

func (n *NATSNotifier) Publish(_ context.Context, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	return n.conn.Publish(NATSSubject(event.WorkspaceID), payload)
}

func (n *NATSNotifier) Subscribe(_ context.Context, workspaceID string, handler Handler) (Unsubscribe, error) {
	if workspaceID == "" {
		return nil, ErrMissingWorkspace
	}

	sub, err := n.conn.Subscribe(NATSSubject(workspaceID), func(msg *nats.Msg) {
		event, err := Decode(msg.Data)
		if err != nil {
			n.logger.Warn("Dropping malformed nats event",
				zap.String("subject", msg.Subject),
				zap.Error(err))
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe: %w", err)
	}

	return once(func() {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			n.logger.Debug("NATS unsubscribe failed", zap.Error(err))
		}
	}), nil
}

// Close drains pending messages and closes the connection
func (n *NATSNotifier) Close() error {
	if n.conn == nil || n.conn.IsClosed() {
		return nil
	}
	return n.conn.Drain()
}
