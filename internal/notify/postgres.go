package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresChannel is the LISTEN/NOTIFY channel shared by every workspace.
const PostgresChannel = "workspace_events"

const listenRetryDelay = 2 * time.Second

// PostgresNotifier publishes with pg_notify and holds one LISTEN connection
// per process, fanning incoming events out through an in-process hub.
type PostgresNotifier struct {
	pool   *pgxpool.Pool
	hub    *MemoryNotifier
	logger *zap.Logger

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewPostgresNotifier starts the listener loop. The pool is closed by Close.
func NewPostgresNotifier(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) *PostgresNotifier {
	listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	n := &PostgresNotifier{
		pool:   pool,
		hub:    NewMemoryNotifier(),
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go n.listen(listenCtx)
	return n
}

func (n *PostgresNotifier) Publish(ctx context.Context, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	_, err = n.pool.Exec(ctx, "SELECT pg_notify($1, $2)", PostgresChannel, string(payload))
	return err
}

func (n *PostgresNotifier) Subscribe(ctx context.Context, workspaceID string, handler Handler) (Unsubscribe, error) {
	return n.hub.Subscribe(ctx, workspaceID, handler)
}

func (n *PostgresNotifier) Close() error {
	n.closeOnce.Do(func() {
		n.cancel()
		<-n.done
		_ = n.hub.Close()
		n.pool.Close()
	})
	return nil
}

func (n *PostgresNotifier) listen(ctx context.Context) {
	defer close(n.done)

	for {
		err := n.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		n.logger.Warn("Postgres listener stopped, reconnecting",
			zap.Duration("retry_in", listenRetryDelay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetryDelay):
		}
	}
}

func (n *PostgresNotifier) listenOnce(ctx context.Context) error {
	conn, err := n.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{PostgresChannel}.Sanitize()); err != nil {
		return err
	}
	n.logger.Info("Listening for workspace events", zap.String("channel", PostgresChannel))

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		n.dispatch(notification.Payload)
	}
}

func (n *PostgresNotifier) dispatch(payload string) {
	event, err := Decode([]byte(payload))
	if err != nil {
		n.logger.Warn("Dropping malformed postgres event", zap.Error(err))
		return
	}
	if err := n.hub.Publish(context.Background(), event); err != nil {
		n.logger.Debug("Postgres event not delivered", zap.Error(err))
	}
}
