package boundary

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// RecordStore persists cached push records across worker versions.
type RecordStore interface {
	Put(ctx context.Context, rec model.CachedRecord) error
	List(ctx context.Context) ([]model.CachedRecord, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]model.CachedRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.CachedRecord)}
}

func (s *MemoryStore) Put(_ context.Context, rec model.CachedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.CachedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.CachedRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sortRecords(out)

	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

type hashClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.StringStringMapCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
}

// RedisStore keeps the records of one device in a redis hash.
type RedisStore struct {
	client hashClient
	key    string
}

func NewRedisStore(client hashClient, deviceID string) *RedisStore {
	return &RedisStore{client: client, key: "boundary:records:" + deviceID}
}

func (s *RedisStore) Put(ctx context.Context, rec model.CachedRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := s.client.HSet(ctx, s.key, rec.ID, string(raw)).Err(); err != nil {
		return fmt.Errorf("failed to store record %s: %w", rec.ID, err)
	}

	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]model.CachedRecord, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	out := make([]model.CachedRecord, 0, len(all))
	for id, raw := range all {
		var rec model.CachedRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", id, err)
		}
		out = append(out, rec)
	}
	sortRecords(out)

	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.HDel(ctx, s.key, id).Err(); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	return nil
}

func sortRecords(recs []model.CachedRecord) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].EnqueuedAt.Before(recs[j].EnqueuedAt) })
}
