package boundary

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// fakeHash is the subset of a redis client backing RedisStore.
type fakeHash struct {
	data map[string]map[string]string
}

func (f *fakeHash) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.data[key] == nil {
		f.data[key] = make(map[string]string)
	}
	for i := 0; i+1 < len(values); i += 2 {
		f.data[key][values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeHash) HGetAll(_ context.Context, key string) *redis.StringStringMapCmd {
	out := make(map[string]string, len(f.data[key]))
	for k, v := range f.data[key] {
		out[k] = v
	}
	return redis.NewStringStringMapResult(out, nil)
}

func (f *fakeHash) HDel(_ context.Context, key string, fields ...string) *redis.IntCmd {
	for _, field := range fields {
		delete(f.data[key], field)
	}
	return redis.NewIntResult(int64(len(fields)), nil)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	h := &fakeHash{data: make(map[string]map[string]string)}
	s := NewRedisStore(h, "laptop")

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.Put(ctx, model.CachedRecord{ID: "b", EnqueuedAt: now, Payload: model.PushPayload{Title: "second"}}))
	require.NoError(t, s.Put(ctx, model.CachedRecord{ID: "a", EnqueuedAt: now.Add(-time.Minute), Payload: model.PushPayload{Title: "first"}}))

	assert.Contains(t, h.data, "boundary:records:laptop")

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "second", list[1].Payload.Title)

	require.NoError(t, s.Delete(ctx, "a"))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRedisStore_CorruptRecord(t *testing.T) {
	h := &fakeHash{data: map[string]map[string]string{"boundary:records:laptop": {"x": "{"}}}

	_, err := NewRedisStore(h, "laptop").List(context.Background())
	assert.Error(t, err)
}
