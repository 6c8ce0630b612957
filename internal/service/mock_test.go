package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"workspace-service/internal/domain"
	"workspace-service/internal/notify"
)

var baseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.PresenceRecord{}, &domain.WorkspaceItem{}))
	return db
}

// fakeClock is a settable clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// MockPresenceRepository is a mock implementation of PresenceRepository
type MockPresenceRepository struct {
	UpsertFunc              func(ctx context.Context, record *domain.PresenceRecord) error
	FindOnlineFunc          func(ctx context.Context, workspaceID string, since time.Time) ([]*domain.PresenceRecord, error)
	DeleteStaleFunc         func(ctx context.Context, workspaceID string, before time.Time) (int64, error)
	DeleteStaleAllFunc      func(ctx context.Context, before time.Time) (int64, error)
	DeleteFunc              func(ctx context.Context, workspaceID, userSession string) (int64, error)
	FindStaleWorkspacesFunc func(ctx context.Context, before time.Time) ([]string, error)
}

func (m *MockPresenceRepository) Upsert(ctx context.Context, record *domain.PresenceRecord) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, record)
	}
	return nil
}

func (m *MockPresenceRepository) FindOnline(ctx context.Context, workspaceID string, since time.Time) ([]*domain.PresenceRecord, error) {
	if m.FindOnlineFunc != nil {
		return m.FindOnlineFunc(ctx, workspaceID, since)
	}
	return nil, nil
}

func (m *MockPresenceRepository) DeleteStale(ctx context.Context, workspaceID string, before time.Time) (int64, error) {
	if m.DeleteStaleFunc != nil {
		return m.DeleteStaleFunc(ctx, workspaceID, before)
	}
	return 0, nil
}

func (m *MockPresenceRepository) DeleteStaleAll(ctx context.Context, before time.Time) (int64, error) {
	if m.DeleteStaleAllFunc != nil {
		return m.DeleteStaleAllFunc(ctx, before)
	}
	return 0, nil
}

func (m *MockPresenceRepository) Delete(ctx context.Context, workspaceID, userSession string) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, workspaceID, userSession)
	}
	return 0, nil
}

func (m *MockPresenceRepository) FindStaleWorkspaces(ctx context.Context, before time.Time) ([]string, error) {
	if m.FindStaleWorkspacesFunc != nil {
		return m.FindStaleWorkspacesFunc(ctx, before)
	}
	return nil, nil
}

// MockTextGenerator is a mock implementation of client.TextGenerator
type MockTextGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	prompts      []string
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return `{"recipes":[]}`, nil
}

// eventLog subscribes to a notifier and records what it sees
type eventLog struct {
	mu     sync.Mutex
	events []notify.Event
}

func watch(t *testing.T, n notify.Notifier, workspaceID string) *eventLog {
	t.Helper()
	log := &eventLog{}
	unsubscribe, err := n.Subscribe(context.Background(), workspaceID, func(e notify.Event) {
		log.mu.Lock()
		defer log.mu.Unlock()
		log.events = append(log.events, e)
	})
	require.NoError(t, err)
	t.Cleanup(unsubscribe)
	return log
}

func (l *eventLog) types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Topic+"."+e.Type)
	}
	return out
}
