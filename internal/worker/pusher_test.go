package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/debt-notifier/internal/rabbitmq/queue"
)

type sliceQueue struct {
	msgs []queue.PushMessage
}

func (q *sliceQueue) Consume(out chan<- queue.PushMessage, _ retry.Strategy) error {
	for _, m := range q.msgs {
		out <- m
	}
	return nil
}

type recordingHandler struct {
	mu   sync.Mutex
	seen []uuid.UUID
	done chan struct{}
}

func (h *recordingHandler) HandleMessage(_ context.Context, msg queue.PushMessage, _ retry.Strategy) {
	h.mu.Lock()
	h.seen = append(h.seen, msg.ID)
	h.mu.Unlock()
	h.done <- struct{}{}
}

func TestPusher_Run(t *testing.T) {
	now := time.Now()

	mine := queue.PushMessage{ID: uuid.New(), DeviceID: "laptop", EnqueuedAt: now}
	other := queue.PushMessage{ID: uuid.New(), DeviceID: "phone", EnqueuedAt: now}
	stale := queue.PushMessage{ID: uuid.New(), DeviceID: "laptop", EnqueuedAt: now.Add(-8 * 24 * time.Hour)}
	last := queue.PushMessage{ID: uuid.New(), DeviceID: "laptop", EnqueuedAt: now}

	h := &recordingHandler{done: make(chan struct{}, 4)}
	p := NewPusher(&sliceQueue{msgs: []queue.PushMessage{mine, other, stale, last}}, h, "laptop", 7*24*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		p.Run(ctx, retry.Strategy{}, 1)
		close(stopped)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-h.done:
		case <-time.After(time.Second):
			t.Fatal("message not handled")
		}
	}

	cancel()
	<-stopped

	assert.Equal(t, []uuid.UUID{mine.ID, last.ID}, h.seen)
}
