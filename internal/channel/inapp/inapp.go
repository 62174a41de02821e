// Package inapp delivers notifications to open views over the event bus.
package inapp

import (
	"context"

	"github.com/aliskhannn/debt-notifier/internal/bus"
	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
)

type publisher interface {
	Publish(e bus.Event)
}

// Channel publishes inAppNotification events. Delivery cannot fail once the
// notification is stored.
type Channel struct {
	bus publisher
}

func New(pub publisher) *Channel {
	return &Channel{bus: pub}
}

func (c *Channel) Deliver(_ context.Context, d dispatcher.Delivery) error {
	n := d.Notification

	c.bus.Publish(bus.Event{
		Topic:        bus.TopicInApp,
		UserID:       n.UserID,
		Silent:       d.Silent,
		Notification: &n,
	})

	return nil
}
