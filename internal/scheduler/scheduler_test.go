package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_DueOrderAndRemoval(t *testing.T) {
	s := New()
	base := time.Now()

	late := Entry{ID: uuid.New(), At: base.Add(10 * time.Minute), Kind: KindScheduled}
	early := Entry{ID: uuid.New(), At: base.Add(time.Minute), Kind: KindScheduled}
	digest := Entry{ID: uuid.New(), At: base.Add(2 * time.Minute), Kind: KindDigest}
	s.Schedule(late)
	s.Schedule(early)
	s.Schedule(digest)

	assert.Empty(t, s.Due(base))

	due := s.Due(base.Add(5 * time.Minute))
	require.Len(t, due, 2)
	assert.Equal(t, early.ID, due[0].ID)
	assert.Equal(t, digest.ID, due[1].ID)
	assert.Equal(t, 1, s.Len())

	assert.Empty(t, s.Due(base.Add(5*time.Minute)))

	due = s.Due(late.At)
	require.Len(t, due, 1)
	assert.Equal(t, late.ID, due[0].ID)
}

func TestScheduler_CancelAndReplace(t *testing.T) {
	s := New()
	id := uuid.New()
	now := time.Now()

	s.Schedule(Entry{ID: id, At: now.Add(time.Hour)})
	s.Schedule(Entry{ID: id, At: now.Add(time.Minute)})
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Pending(id))

	assert.True(t, s.Cancel(id))
	assert.False(t, s.Cancel(id))
	assert.Empty(t, s.Due(now.Add(2*time.Hour)))
}

func TestScheduler_Run(t *testing.T) {
	s := New()
	start := time.Now()
	var (
		mu      sync.Mutex
		current = start
	)
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	id := uuid.New()
	s.Schedule(Entry{ID: id, At: start.Add(10 * time.Minute)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan Entry, 1)
	go s.Run(ctx, 5*time.Millisecond, func(_ context.Context, e Entry) { fired <- e })

	select {
	case <-fired:
		t.Fatal("entry fired before its time")
	case <-time.After(30 * time.Millisecond):
	}

	mu.Lock()
	current = start.Add(10 * time.Minute)
	mu.Unlock()

	select {
	case e := <-fired:
		assert.Equal(t, id, e.ID)
	case <-time.After(time.Second):
		t.Fatal("entry did not fire")
	}
}
