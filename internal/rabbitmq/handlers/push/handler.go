package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/rabbitmq/queue"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/rabbitmq/handlers/push/mock.go -package=mocks

// boundary receives push events for the device it serves.
type boundary interface {
	Push(ctx context.Context, endpoint string, data []byte) error
}

type deadLetterer interface {
	DeadLetter(msg queue.PushMessage, reason string) error
}

// Handler posts queued push messages into the local boundary.
type Handler struct {
	boundary boundary
	dlq      deadLetterer
}

func NewHandler(b boundary, dlq deadLetterer) *Handler {
	return &Handler{boundary: b, dlq: dlq}
}

func (h *Handler) HandleMessage(ctx context.Context, msg queue.PushMessage, strategy retry.Strategy) {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		h.deadLetter(msg, fmt.Errorf("marshal payload: %w", err))
		return
	}

	attempt := 0
	err = retry.Do(func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return err
		}

		err := h.boundary.Push(ctx, msg.Endpoint, data)
		if err != nil {
			zlog.Logger.Warn().Err(err).
				Str("message_id", msg.ID.String()).
				Int("attempt", attempt).
				Int("attempts", strategy.Attempts).
				Msg("failed to hand push to boundary")
		}
		return err
	}, strategy)
	if err != nil {
		h.deadLetter(msg, err)
		return
	}

	zlog.Logger.Info().Str("message_id", msg.ID.String()).Str("device_id", msg.DeviceID).Msg("push handed to boundary")
}

func (h *Handler) deadLetter(msg queue.PushMessage, cause error) {
	zlog.Logger.Error().Err(cause).Str("message_id", msg.ID.String()).Msg("push message failed, moving to DLQ")

	if h.dlq == nil {
		return
	}

	if err := h.dlq.DeadLetter(msg, cause.Error()); err != nil {
		zlog.Logger.Error().Err(err).Str("message_id", msg.ID.String()).Msg("failed to publish dead letter")
	}
}
