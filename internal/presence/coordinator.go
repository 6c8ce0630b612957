package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"workspace-service/internal/config"
	"workspace-service/internal/debounce"
	"workspace-service/internal/domain"
	"workspace-service/internal/identity"
	"workspace-service/internal/notify"
)

var (
	ErrAlreadyStarted = errors.New("coordinator already started")
	ErrStopped        = errors.New("coordinator stopped")
)

// Backend is the presence store a coordinator drives. The in-process
// PresenceService and the HTTP PresenceClient both satisfy it.
type Backend interface {
	Heartbeat(ctx context.Context, workspaceID, session, userName string) error
	ListOnline(ctx context.Context, workspaceID string) ([]domain.OnlineUser, error)
	Reap(ctx context.Context, workspaceID string) (int64, error)
	Remove(ctx context.Context, workspaceID, session string) error
	Subscribe(ctx context.Context, workspaceID string, handler notify.Handler) (notify.Unsubscribe, error)
}

// Coordinator keeps one tab present in one workspace. It owns the heartbeat
// and reaper tickers, the change subscription and the debounced name
// publisher, and tears all of them down exactly once.
type Coordinator struct {
	workspaceID string
	backend     Backend
	allocator   *identity.Allocator
	cfg         config.PresenceConfig
	logger      *zap.Logger

	mu          sync.RWMutex
	session     string
	userName    string
	users       []domain.OnlineUser
	subscribed  bool
	started     bool
	stopped     bool
	onChange    func([]domain.OnlineUser)
	cancel      context.CancelFunc
	unsubscribe notify.Unsubscribe
	nameGate    *debounce.Debouncer[string]

	refresh  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewCoordinator(
	workspaceID string,
	backend Backend,
	allocator *identity.Allocator,
	cfg config.PresenceConfig,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		workspaceID: workspaceID,
		backend:     backend,
		allocator:   allocator,
		cfg:         cfg,
		logger:      logger.With(zap.String("workspace_id", workspaceID)),
		refresh:     make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

// OnChange registers a callback invoked with a copy of the online set after
// every refresh.
func (c *Coordinator) OnChange(fn func([]domain.OnlineUser)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Start allocates the tab identity, subscribes to changes, publishes the
// first heartbeat, reads the online set and then runs in the background
// until ctx is cancelled or Stop is called.
func (c *Coordinator) Start(ctx context.Context) error {
	session, err := c.allocator.GetOrCreateSession(ctx, c.workspaceID)
	if err != nil {
		return fmt.Errorf("allocate session: %w", err)
	}
	name, err := c.allocator.GetOrCreateName(ctx, c.workspaceID)
	if err != nil {
		return fmt.Errorf("allocate name: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		cancel()
		return ErrStopped
	}
	if c.started {
		c.mu.Unlock()
		cancel()
		return ErrAlreadyStarted
	}
	c.started = true
	c.session = session
	c.userName = name
	c.cancel = cancel
	c.nameGate = debounce.New(c.cfg.DebounceDelay, func(name string) {
		c.heartbeat(runCtx, name)
		c.requestRefresh()
	})
	c.mu.Unlock()

	c.logger.Info("Joining workspace",
		zap.String("session", session),
		zap.String("user_name", name),
	)

	c.subscribe(runCtx)
	c.heartbeat(runCtx, name)
	c.refreshOnline(runCtx)

	go c.run(runCtx)
	return nil
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	heartbeat := newTicker(c.cfg.HeartbeatInterval)
	reaper := newTicker(c.cfg.CleanupInterval)
	defer heartbeat.Stop()
	defer reaper.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			c.heartbeat(ctx, c.UserName())
			c.subscribe(ctx)
			// Polled as well in case a notification was lost.
			c.refreshOnline(ctx)
		case <-reaper.C:
			c.reap(ctx)
		case <-c.refresh:
			c.refreshOnline(ctx)
		}
	}
}

// SetUserName stores the new name for this tab and publishes it once the
// name has been quiet for the debounce delay.
func (c *Coordinator) SetUserName(ctx context.Context, name string) error {
	c.mu.Lock()
	c.userName = name
	gate := c.nameGate
	stopped := c.stopped
	c.mu.Unlock()

	if err := c.allocator.SetName(ctx, c.workspaceID, name); err != nil {
		return fmt.Errorf("store name: %w", err)
	}
	if gate != nil && !stopped {
		gate.Call(name)
	}
	return nil
}

// Stop cancels the tickers, the subscription and any pending name publish.
// Calling it more than once is a no-op.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		c.subscribed = false
		cancel := c.cancel
		unsubscribe := c.unsubscribe
		gate := c.nameGate
		c.unsubscribe = nil
		c.mu.Unlock()

		if gate != nil {
			gate.Stop()
		}
		if unsubscribe != nil {
			unsubscribe()
		}
		if cancel != nil {
			cancel()
			<-c.done
		}
	})
}

// Exit stops the coordinator and removes this tab's record. Failures are
// logged only; the record ages out through the reaper anyway.
func (c *Coordinator) Exit(ctx context.Context) {
	c.Stop()

	session := c.Session()
	if session == "" {
		return
	}
	if err := c.backend.Remove(ctx, c.workspaceID, session); err != nil {
		c.logger.Warn("Failed to remove presence on exit",
			zap.String("session", session),
			zap.Error(err),
		)
	}
}

// OnlineUsers returns a copy of the last online set read
func (c *Coordinator) OnlineUsers() []domain.OnlineUser {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.OnlineUser(nil), c.users...)
}

// IsOnline reports whether the change subscription is live
func (c *Coordinator) IsOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscribed
}

func (c *Coordinator) Session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Coordinator) UserName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userName
}

func (c *Coordinator) requestRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

func (c *Coordinator) subscribe(ctx context.Context) {
	c.mu.RLock()
	already := c.subscribed || c.stopped
	c.mu.RUnlock()
	if already {
		return
	}

	unsubscribe, err := c.backend.Subscribe(ctx, c.workspaceID, func(e notify.Event) {
		if e.Topic == notify.TopicStream && e.Type == notify.EventClosed {
			c.markDisconnected()
			return
		}
		c.requestRefresh()
	})
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("Change subscription failed", zap.Error(err))
		}
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		unsubscribe()
		return
	}
	c.unsubscribe = unsubscribe
	c.subscribed = true
	c.mu.Unlock()
}

// markDisconnected drops a subscription whose stream ended; the next
// heartbeat tick subscribes again.
func (c *Coordinator) markDisconnected() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.subscribed = false
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.logger.Warn("Change stream closed")
}

func (c *Coordinator) heartbeat(ctx context.Context, name string) {
	if err := c.backend.Heartbeat(ctx, c.workspaceID, c.Session(), name); err != nil && ctx.Err() == nil {
		c.logger.Warn("Heartbeat failed", zap.Error(err))
	}
}

func (c *Coordinator) refreshOnline(ctx context.Context) {
	users, err := c.backend.ListOnline(ctx, c.workspaceID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("Failed to read online users", zap.Error(err))
		users = nil
	}

	c.mu.Lock()
	c.users = users
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(append([]domain.OnlineUser(nil), users...))
	}
}

func (c *Coordinator) reap(ctx context.Context) {
	deleted, err := c.backend.Reap(ctx, c.workspaceID)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("Reap failed", zap.Error(err))
		}
		return
	}
	if deleted > 0 {
		c.logger.Debug("Reaped stale presence", zap.Int64("deleted", deleted))
	}
}
