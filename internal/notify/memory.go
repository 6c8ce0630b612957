package notify

import (
	"context"
	"sync"
)

// MemoryNotifier is an in-process hub. It only reaches subscribers in the
// same process.
type MemoryNotifier struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]Handler
	nextID uint64
	closed bool
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[string]map[uint64]Handler)}
}

// Publish delivers the event synchronously to every subscriber of its workspace
func (n *MemoryNotifier) Publish(_ context.Context, event Event) error {
	if event.WorkspaceID == "" {
		return ErrMissingWorkspace
	}

	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]Handler, 0, len(n.subs[event.WorkspaceID]))
	for _, h := range n.subs[event.WorkspaceID] {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
	return nil
}

func (n *MemoryNotifier) Subscribe(_ context.Context, workspaceID string, handler Handler) (Unsubscribe, error) {
	if workspaceID == "" {
		return nil, ErrMissingWorkspace
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, ErrClosed
	}

	n.nextID++
	id := n.nextID
	if n.subs[workspaceID] == nil {
		n.subs[workspaceID] = make(map[uint64]Handler)
	}
	n.subs[workspaceID][id] = handler

	return once(func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[workspaceID], id)
		if len(n.subs[workspaceID]) == 0 {
			delete(n.subs, workspaceID)
		}
	}), nil
}

// Subscribers returns the number of live subscriptions for a workspace.
func (n *MemoryNotifier) Subscribers(workspaceID string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs[workspaceID])
}

func (n *MemoryNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.subs = make(map[string]map[uint64]Handler)
	return nil
}
