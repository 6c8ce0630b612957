// Package identity hands out the per-tab session id and display name a tab
// uses inside a workspace.
package identity

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

var chefNames = []string{
	"Chef Sizzle", "Pasta Prince", "Spice Master", "Cookie Monster", "Grill Guru",
	"Soup Sage", "Bread Buddy", "Salad Star", "Pizza Pro", "Cake Captain",
}

// ChefNames returns the pool random display names are drawn from.
func ChefNames() []string {
	return append([]string(nil), chefNames...)
}

func SessionKey(workspaceID string) string {
	return "workspace-session-" + workspaceID
}

func NameKey(workspaceID string) string {
	return "workspace-name-" + workspaceID
}

// Allocator reads identities from Storage and creates them on first use
type Allocator struct {
	storage Storage
	newID   func() string
	pick    func(n int) int
}

func NewAllocator(storage Storage) *Allocator {
	return &Allocator{
		storage: storage,
		newID:   func() string { return uuid.NewString() },
		pick:    rand.IntN,
	}
}

// GetOrCreateSession returns the stored session id, generating one if absent
func (a *Allocator) GetOrCreateSession(ctx context.Context, workspaceID string) (string, error) {
	return a.getOrCreate(ctx, SessionKey(workspaceID), a.newID)
}

// GetOrCreateName returns the stored display name, picking a chef name if absent
func (a *Allocator) GetOrCreateName(ctx context.Context, workspaceID string) (string, error) {
	return a.getOrCreate(ctx, NameKey(workspaceID), func() string {
		return chefNames[a.pick(len(chefNames))]
	})
}

// SetName overwrites the stored display name
func (a *Allocator) SetName(ctx context.Context, workspaceID, name string) error {
	if err := a.storage.Set(ctx, NameKey(workspaceID), name); err != nil {
		return fmt.Errorf("store name: %w", err)
	}
	return nil
}

func (a *Allocator) getOrCreate(ctx context.Context, key string, generate func() string) (string, error) {
	v, err := a.storage.Get(ctx, key)
	if err == nil && v != "" {
		return v, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("read %s: %w", key, err)
	}

	v = generate()
	if err := a.storage.Set(ctx, key, v); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return v, nil
}
