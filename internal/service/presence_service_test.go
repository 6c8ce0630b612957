package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"workspace-service/internal/config"
	"workspace-service/internal/domain"
	"workspace-service/internal/metrics"
	"workspace-service/internal/notify"
	"workspace-service/internal/repository"
	"workspace-service/internal/response"
)

func newPresenceService(t *testing.T, clock *fakeClock) (PresenceService, *notify.MemoryNotifier) {
	t.Helper()
	notifier := notify.NewMemoryNotifier()
	svc := NewPresenceService(
		repository.NewPresenceRepository(setupTestDB(t)),
		notifier,
		metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop()),
		zap.NewNop(),
		config.DefaultPresence(),
		clock.Now,
	)
	return svc, notifier
}

func onlineSessions(users []domain.OnlineUser) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.UserSession)
	}
	return out
}

func TestPresenceService_Scenario(t *testing.T) {
	clock := newFakeClock(baseTime)
	svc, _ := newPresenceService(t, clock)
	ctx := context.Background()

	require.NoError(t, svc.Heartbeat(ctx, "w1", "s1", "Chef Sizzle"))

	clock.Set(baseTime.Add(5 * time.Second))
	users, err := svc.ListOnline(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, []domain.OnlineUser{{UserSession: "s1", UserName: "Chef Sizzle"}}, users)

	clock.Set(baseTime.Add(35 * time.Second))
	users, err = svc.ListOnline(ctx, "w1")
	require.NoError(t, err)
	assert.Empty(t, users)

	clock.Set(baseTime.Add(100 * time.Second))
	deleted, err := svc.Reap(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted, "record is not yet stale at 100s")

	clock.Set(baseTime.Add(125 * time.Second))
	deleted, err = svc.Reap(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestPresenceService_LivenessBoundary(t *testing.T) {
	tests := []struct {
		name   string
		age    time.Duration
		online bool
	}{
		{"29s ago is online", 29 * time.Second, true},
		{"30s ago is online", 30 * time.Second, true},
		{"31s ago is offline", 31 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock(baseTime)
			svc, _ := newPresenceService(t, clock)
			ctx := context.Background()

			require.NoError(t, svc.Heartbeat(ctx, "w1", "s1", "x"))
			clock.Set(baseTime.Add(tt.age))

			users, err := svc.ListOnline(ctx, "w1")
			require.NoError(t, err)
			assert.Equal(t, tt.online, len(users) == 1)
		})
	}
}

func TestPresenceService_ReapBoundary(t *testing.T) {
	tests := []struct {
		name    string
		age     time.Duration
		deleted int64
	}{
		{"119s ago is kept", 119 * time.Second, 0},
		{"120s ago is kept", 120 * time.Second, 0},
		{"121s ago is reaped", 121 * time.Second, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock(baseTime)
			svc, _ := newPresenceService(t, clock)
			ctx := context.Background()

			require.NoError(t, svc.Heartbeat(ctx, "w1", "s1", "x"))
			clock.Set(baseTime.Add(tt.age))

			deleted, err := svc.Reap(ctx, "w1")
			require.NoError(t, err)
			assert.Equal(t, tt.deleted, deleted)
		})
	}
}

func TestPresenceService_HeartbeatIsIdempotent(t *testing.T) {
	clock := newFakeClock(baseTime)
	svc, _ := newPresenceService(t, clock)
	ctx := context.Background()

	require.NoError(t, svc.Heartbeat(ctx, "w1", "s1", "Chef Sizzle"))
	clock.Set(baseTime.Add(25 * time.Second))
	require.NoError(t, svc.Heartbeat(ctx, "w1", "s1", "Grill Guru"))

	// 50s after the first beat, only the refreshed last_seen keeps s1 online.
	clock.Set(baseTime.Add(50 * time.Second))
	users, err := svc.ListOnline(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Grill Guru", users[0].UserName)
}

func TestPresenceService_OrdersByJoin(t *testing.T) {
	clock := newFakeClock(baseTime)
	svc, _ := newPresenceService(t, clock)
	ctx := context.Background()

	for i, s := range []string{"A", "B", "C"} {
		clock.Set(baseTime.Add(time.Duration(i) * time.Second))
		require.NoError(t, svc.Heartbeat(ctx, "w1", s, s))
	}
	clock.Set(baseTime.Add(10 * time.Second))
	require.NoError(t, svc.Heartbeat(ctx, "w1", "A", "A"))

	users, err := svc.ListOnline(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, onlineSessions(users))
}

func TestPresenceService_NameNormalization(t *testing.T) {
	clock := newFakeClock(baseTime)
	svc, _ := newPresenceService(t, clock)
	ctx := context.Background()

	require.NoError(t, svc.Heartbeat(ctx, "w1", "abcdef-123", "   "))
	require.NoError(t, svc.Heartbeat(ctx, "w1", "long", strings.Repeat("é", 80)))

	users, err := svc.ListOnline(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "User-abcd", users[0].UserName)
	assert.Equal(t, strings.Repeat("é", 64), users[1].UserName)
}

func TestPresenceService_Validation(t *testing.T) {
	svc, _ := newPresenceService(t, newFakeClock(baseTime))
	ctx := context.Background()

	err := svc.Heartbeat(ctx, "", "s1", "x")
	assert.ErrorIs(t, err, ErrInvalidWorkspace)

	err = svc.Heartbeat(ctx, "w1", strings.Repeat("s", 129), "x")
	assert.ErrorIs(t, err, ErrInvalidSession)

	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, response.ErrCodeValidation, appErr.Code)

	_, err = svc.ListOnline(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidWorkspace)
}

func TestPresenceService_PublishesEvents(t *testing.T) {
	clock := newFakeClock(baseTime)
	svc, notifier := newPresenceService(t, clock)
	ctx := context.Background()
	log := watch(t, notifier, "w1")

	require.NoError(t, svc.Heartbeat(ctx, "w1", "s1", "x"))
	require.NoError(t, svc.Heartbeat(ctx, "w1", "s2", "y"))
	require.NoError(t, svc.Remove(ctx, "w1", "s2"))
	require.NoError(t, svc.Remove(ctx, "w1", "s2"))

	clock.Set(baseTime.Add(200 * time.Second))
	_, err := svc.Reap(ctx, "w1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"presence.heartbeat",
		"presence.heartbeat",
		"presence.left",
		"presence.reaped",
	}, log.types())
}

func TestPresenceService_ReapAll(t *testing.T) {
	clock := newFakeClock(baseTime)
	svc, notifier := newPresenceService(t, clock)
	ctx := context.Background()

	require.NoError(t, svc.Heartbeat(ctx, "w1", "a", ""))
	require.NoError(t, svc.Heartbeat(ctx, "w2", "b", ""))
	clock.Set(baseTime.Add(100 * time.Second))
	require.NoError(t, svc.Heartbeat(ctx, "w3", "c", ""))

	w1 := watch(t, notifier, "w1")
	w3 := watch(t, notifier, "w3")

	clock.Set(baseTime.Add(130 * time.Second))
	deleted, err := svc.ReapAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, []string{"presence.reaped"}, w1.types())
	assert.Empty(t, w3.types())

	deleted, err = svc.ReapAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestPresenceService_StoreFailures(t *testing.T) {
	boom := errors.New("connection refused")
	repo := &MockPresenceRepository{
		UpsertFunc: func(context.Context, *domain.PresenceRecord) error { return boom },
		FindOnlineFunc: func(context.Context, string, time.Time) ([]*domain.PresenceRecord, error) {
			return nil, boom
		},
		DeleteFunc: func(context.Context, string, string) (int64, error) { return 0, boom },
	}
	svc := NewPresenceService(repo, notify.NewMemoryNotifier(), nil, zap.NewNop(), config.DefaultPresence(), nil)
	ctx := context.Background()

	err := svc.Heartbeat(ctx, "w1", "s1", "x")
	assert.ErrorIs(t, err, boom)

	_, err = svc.ListOnline(ctx, "w1")
	assert.ErrorIs(t, err, boom)

	err = svc.Remove(ctx, "w1", "s1")
	assert.ErrorIs(t, err, boom)
}

func TestPresenceService_UsesServerClock(t *testing.T) {
	var since time.Time
	var written time.Time
	repo := &MockPresenceRepository{
		UpsertFunc: func(_ context.Context, r *domain.PresenceRecord) error {
			written = r.LastSeen
			return nil
		},
		FindOnlineFunc: func(_ context.Context, _ string, s time.Time) ([]*domain.PresenceRecord, error) {
			since = s
			return nil, nil
		},
	}
	clock := newFakeClock(baseTime)
	svc := NewPresenceService(repo, notify.NewMemoryNotifier(), nil, zap.NewNop(), config.DefaultPresence(), clock.Now)
	ctx := context.Background()

	require.NoError(t, svc.Heartbeat(ctx, "w1", "s1", "x"))
	_, err := svc.ListOnline(ctx, "w1")
	require.NoError(t, err)

	assert.True(t, written.Equal(baseTime))
	assert.True(t, since.Equal(baseTime.Add(-30*time.Second)))
}
