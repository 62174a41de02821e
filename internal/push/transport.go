package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/pkg/fcm"
)

// Transport carries a payload to the device behind a subscription.
// model.ErrEndpointExpired reports a subscription the platform no longer knows.
type Transport interface {
	Send(ctx context.Context, sub model.PushSubscription, p model.PushPayload) error
}

type receiver interface {
	Push(ctx context.Context, endpoint string, data []byte) error
}

// LocalTransport posts push events into a boundary running in this process.
type LocalTransport struct {
	boundary receiver
}

func NewLocalTransport(b receiver) *LocalTransport {
	return &LocalTransport{boundary: b}
}

func (t *LocalTransport) Send(ctx context.Context, sub model.PushSubscription, p model.PushPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if err := t.boundary.Push(ctx, sub.Endpoint, data); err != nil {
		return fmt.Errorf("local push: %w", err)
	}

	return nil
}

type fcmSender interface {
	Send(ctx context.Context, token string, n fcm.Notification) (string, error)
}

// FCMTransport delivers through Firebase Cloud Messaging. The subscription
// endpoint holds the registration token.
type FCMTransport struct {
	client fcmSender
}

func NewFCMTransport(c fcmSender) *FCMTransport {
	return &FCMTransport{client: c}
}

func (t *FCMTransport) Send(ctx context.Context, sub model.PushSubscription, p model.PushPayload) error {
	_, err := t.client.Send(ctx, sub.Endpoint, ToFCM(p))
	if err != nil {
		if errors.Is(err, fcm.ErrUnregistered) {
			return fmt.Errorf("%w: %v", model.ErrEndpointExpired, err)
		}

		return err
	}

	return nil
}

// ToFCM maps a wire payload onto an FCM web notification.
func ToFCM(p model.PushPayload) fcm.Notification {
	n := fcm.Notification{
		Title:              p.Title,
		Body:               p.Body,
		Icon:               p.Icon,
		Badge:              p.Badge,
		Tag:                p.Tag,
		Link:               p.Data.URL,
		RequireInteraction: p.RequireInteraction,
		Silent:             p.Silent,
		Data: map[string]string{
			"url":            p.Data.URL,
			"primaryKey":     p.Data.PrimaryKey,
			"notificationId": p.Data.NotificationID,
			"userId":         p.Data.UserID,
			"type":           string(p.Data.Type),
		},
	}

	for _, a := range p.Actions {
		n.Actions = append(n.Actions, fcm.Action{Action: a.Action, Title: a.Title, Icon: a.Icon})
	}

	return n
}
