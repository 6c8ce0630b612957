package commands

import (
	"context"
	"fmt"
	"time"

	"workspace-service/internal/database"
	"workspace-service/internal/identity"
)

// tabTTL bounds how long a tab's identity survives in Redis after its last use
const tabTTL = 24 * time.Hour

// newAllocator keeps identities in memory unless both --redis and --tab are
// given, in which case a tab keeps its session and name across runs.
func newAllocator(ctx context.Context, flags *Flags) (*identity.Allocator, error) {
	if flags.RedisURL == "" || flags.TabID == "" {
		return identity.NewAllocator(identity.NewMemoryStorage()), nil
	}

	client, err := database.NewRedis(ctx, flags.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("identity storage: %w", err)
	}
	return identity.NewAllocator(identity.NewRedisStorage(client, flags.TabID, tabTTL)), nil
}
