// Package push delivers notifications to the push boundary of each
// subscribed device.
package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	"github.com/aliskhannn/debt-notifier/internal/metrics"
	"github.com/aliskhannn/debt-notifier/internal/model"
	pushsvc "github.com/aliskhannn/debt-notifier/internal/push"
)

// handOffTimeout bounds the sync queue hand-off, which runs after the
// delivery context may already have expired.
const handOffTimeout = 5 * time.Second

//go:generate mockgen -source=push.go -destination=../../mocks/channel/push/mock.go -package=mocks

type subscriptionStore interface {
	UserPermission(ctx context.Context, userID string) (model.Permission, error)
	ListSubscriptions(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) (bool, error)
}

// syncQueue accepts payloads for offline replay by the boundary.
type syncQueue interface {
	CacheNotification(ctx context.Context, p model.PushPayload) error
}

// Channel sends the push payload through the configured transport.
type Channel struct {
	subs      subscriptionStore
	transport pushsvc.Transport
	sync      syncQueue
	opts      pushsvc.PayloadOptions
}

// New creates the push channel. sync may be nil when no boundary runs in this process.
func New(subs subscriptionStore, t pushsvc.Transport, sync syncQueue, opts pushsvc.PayloadOptions) *Channel {
	return &Channel{subs: subs, transport: t, sync: sync, opts: opts}
}

func (c *Channel) Deliver(ctx context.Context, d dispatcher.Delivery) error {
	n := d.Notification

	permission, err := c.subs.UserPermission(ctx, n.UserID)
	if err != nil {
		return c.fail(true, fmt.Errorf("get permission: %w", err))
	}
	if permission == model.PermissionDenied {
		return c.fail(false, &model.PermissionError{UserID: n.UserID, State: permission})
	}

	subs, err := c.subs.ListSubscriptions(ctx, n.UserID)
	if err != nil {
		return c.fail(true, fmt.Errorf("list subscriptions: %w", err))
	}
	if len(subs) == 0 {
		if permission != model.PermissionGranted {
			return c.fail(false, &model.PermissionError{UserID: n.UserID, State: permission})
		}
		return c.fail(false, model.ErrNoSubscription)
	}

	payload := pushsvc.BuildPayload(n, d.Silent, c.opts)

	var (
		delivered int
		lastErr   error
		transient bool
	)

	for _, sub := range subs {
		err := c.transport.Send(ctx, sub, payload)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, model.ErrEndpointExpired):
			lastErr = err
			metrics.PushDeviceFailures.WithLabelValues("expired").Inc()
			if _, delErr := c.subs.DeleteByEndpoint(ctx, sub.Endpoint); delErr != nil {
				zlog.Logger.Error().Err(delErr).Str("device_id", sub.DeviceID).Msg("failed to drop expired subscription")
			}
			zlog.Logger.Info().Str("user_id", n.UserID).Str("device_id", sub.DeviceID).Msg("expired push subscription removed")
		default:
			lastErr = err
			transient = true
			metrics.PushDeviceFailures.WithLabelValues("transient").Inc()
			zlog.Logger.Warn().Err(err).Str("user_id", n.UserID).Str("device_id", sub.DeviceID).Msg("push send failed")
		}
	}

	if delivered > 0 {
		if failed := len(subs) - delivered; failed > 0 {
			zlog.Logger.Warn().
				Err(lastErr).
				Str("user_id", n.UserID).
				Int("delivered", delivered).
				Int("failed", failed).
				Msg("push partially delivered")
		}
		return nil
	}

	if !transient {
		return c.fail(false, lastErr)
	}

	c.handOff(ctx, payload)

	return c.fail(true, lastErr)
}

// handOff queues the payload in the boundary for background sync.
func (c *Channel) handOff(ctx context.Context, p model.PushPayload) {
	if c.sync == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handOffTimeout)
	defer cancel()

	if err := c.sync.CacheNotification(ctx, p); err != nil {
		zlog.Logger.Error().Err(err).Str("notification_id", p.Data.NotificationID).Msg("failed to hand push to sync queue")
	}
}

func (c *Channel) fail(retryable bool, err error) error {
	return &model.DeliveryError{Channel: model.ChannelPush, Retryable: retryable, Err: err}
}
