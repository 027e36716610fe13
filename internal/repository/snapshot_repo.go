package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/stokline/skuflow_api/internal/cache"
	"github.com/stokline/skuflow_api/internal/models"
)

// Redis keys holding the two persisted collections. Each is overwritten
// wholesale on every mutation (snapshot semantics).
const (
	keySKUQueue  = "sku:queue"
	keyAuditLogs = "sku:audit_logs"
)

// SnapshotStore persists the full SKU collection and the full audit log as
// two independently addressable snapshots. Loading an absent snapshot must
// return an empty slice, not an error.
type SnapshotStore interface {
	SaveSKUs(ctx context.Context, skus []*models.SKU) error
	LoadSKUs(ctx context.Context) ([]*models.SKU, error)
	SaveAuditLogs(ctx context.Context, logs []*models.AuditLog) error
	LoadAuditLogs(ctx context.Context) ([]*models.AuditLog, error)
}

// RedisSnapshotStore implements SnapshotStore on top of Redis.
type RedisSnapshotStore struct {
	redis *cache.RedisClient
}

// NewRedisSnapshotStore creates a Redis-backed snapshot store.
func NewRedisSnapshotStore(redis *cache.RedisClient) *RedisSnapshotStore {
	return &RedisSnapshotStore{redis: redis}
}

// SaveSKUs overwrites the persisted SKU collection.
func (s *RedisSnapshotStore) SaveSKUs(ctx context.Context, skus []*models.SKU) error {
	return s.save(ctx, keySKUQueue, skus)
}

// LoadSKUs reads the persisted SKU collection, empty if never written.
func (s *RedisSnapshotStore) LoadSKUs(ctx context.Context) ([]*models.SKU, error) {
	var skus []*models.SKU
	if err := s.load(ctx, keySKUQueue, &skus); err != nil {
		return nil, err
	}
	return skus, nil
}

// SaveAuditLogs overwrites the persisted audit log collection.
func (s *RedisSnapshotStore) SaveAuditLogs(ctx context.Context, logs []*models.AuditLog) error {
	return s.save(ctx, keyAuditLogs, logs)
}

// LoadAuditLogs reads the persisted audit log collection, empty if never written.
func (s *RedisSnapshotStore) LoadAuditLogs(ctx context.Context) ([]*models.AuditLog, error) {
	var logs []*models.AuditLog
	if err := s.load(ctx, keyAuditLogs, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *RedisSnapshotStore) save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", key, err)
	}
	if err := s.redis.Set(ctx, key, string(data), 0); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}
	return nil
}

func (s *RedisSnapshotStore) load(ctx context.Context, key string, v interface{}) error {
	data, err := s.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot %s: %w", key, err)
	}
	return nil
}

// MemorySnapshotStore is an in-process SnapshotStore used in tests and when
// running without Redis. It round-trips through JSON so stored snapshots are
// detached from the caller's slices, same as the Redis implementation.
type MemorySnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string][]byte
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snapshots: make(map[string][]byte)}
}

func (s *MemorySnapshotStore) SaveSKUs(ctx context.Context, skus []*models.SKU) error {
	return s.save(keySKUQueue, skus)
}

func (s *MemorySnapshotStore) LoadSKUs(ctx context.Context) ([]*models.SKU, error) {
	var skus []*models.SKU
	if err := s.load(keySKUQueue, &skus); err != nil {
		return nil, err
	}
	return skus, nil
}

func (s *MemorySnapshotStore) SaveAuditLogs(ctx context.Context, logs []*models.AuditLog) error {
	return s.save(keyAuditLogs, logs)
}

func (s *MemorySnapshotStore) LoadAuditLogs(ctx context.Context) ([]*models.AuditLog, error) {
	var logs []*models.AuditLog
	if err := s.load(keyAuditLogs, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *MemorySnapshotStore) save(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key] = data
	return nil
}

func (s *MemorySnapshotStore) load(key string, v interface{}) error {
	s.mu.Lock()
	data, ok := s.snapshots[key]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot %s: %w", key, err)
	}
	return nil
}
