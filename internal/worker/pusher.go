package worker

import (
	"context"
	"sync"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/rabbitmq/queue"
)

type pushQueue interface {
	Consume(out chan<- queue.PushMessage, strategy retry.Strategy) error
}

type messageHandler interface {
	HandleMessage(ctx context.Context, msg queue.PushMessage, strategy retry.Strategy)
}

// Pusher consumes push messages for one device and hands them to the boundary.
type Pusher struct {
	queue     pushQueue
	handler   messageHandler
	deviceID  string
	retention time.Duration
	now       func() time.Time
}

// NewPusher creates a worker pool for deviceID. Messages older than retention
// are dropped; a zero retention keeps everything.
func NewPusher(q pushQueue, h messageHandler, deviceID string, retention time.Duration) *Pusher {
	return &Pusher{
		queue:     q,
		handler:   h,
		deviceID:  deviceID,
		retention: retention,
		now:       time.Now,
	}
}

// Run starts workerCount workers and blocks until ctx is done.
func (p *Pusher) Run(ctx context.Context, strategy retry.Strategy, workerCount int) {
	if workerCount <= 0 {
		workerCount = 1
	}

	msgChan := make(chan queue.PushMessage)

	go func() {
		if err := p.queue.Consume(msgChan, strategy); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to consume messages")
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()
			zlog.Logger.Info().Int("worker", id).Msg("push worker started")

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Info().Int("worker", id).Msg("push worker shutting down")
					return
				case msg := <-msgChan:
					if !p.accept(msg) {
						continue
					}

					p.handler.HandleMessage(ctx, msg, strategy)
				}
			}
		}(i)
	}

	wg.Wait()
	zlog.Logger.Info().Msg("pusher stopped")
}

func (p *Pusher) accept(msg queue.PushMessage) bool {
	if p.deviceID != "" && msg.DeviceID != p.deviceID {
		zlog.Logger.Debug().Str("message_id", msg.ID.String()).Str("device_id", msg.DeviceID).Msg("push for another device, skipping")
		return false
	}

	if p.retention > 0 && !msg.EnqueuedAt.IsZero() && p.now().Sub(msg.EnqueuedAt) > p.retention {
		zlog.Logger.Info().Str("message_id", msg.ID.String()).Time("enqueued_at", msg.EnqueuedAt).Msg("stale push message, skipping")
		return false
	}

	return true
}
