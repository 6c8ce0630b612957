package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Storage.Get for a missing key
var ErrNotFound = errors.New("identity key not found")

// Storage is the per-tab key/value store an Allocator persists into
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStorage lives as long as the process; one process is one tab.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// RedisStorage namespaces keys by a tab id so a restarted client with the
// same tab id gets its identity back. A zero TTL keeps keys forever.
type RedisStorage struct {
	client *redis.Client
	tabID  string
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, tabID string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, tabID: tabID, ttl: ttl}
}

func (s *RedisStorage) key(k string) string {
	return fmt.Sprintf("tab:%s:%s", s.tabID, k)
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}
