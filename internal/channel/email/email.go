// Package email delivers notifications by mail.
package email

import (
	"context"
	"fmt"
	"html"

	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/pkg/email"
)

type sender interface {
	Send(m email.Message) error
}

// Channel sends one mail per notification to the address in the user's contacts.
type Channel struct {
	sender   sender
	strategy retry.Strategy
}

func New(s sender, strategy retry.Strategy) *Channel {
	return &Channel{sender: s, strategy: strategy}
}

func (c *Channel) Deliver(ctx context.Context, d dispatcher.Delivery) error {
	to := d.Preferences.Contacts.Email
	if to == "" {
		return &model.DeliveryError{Channel: model.ChannelEmail, Err: model.ErrNoRecipient}
	}

	msg := Compose(to, d.Notification)

	err := retry.Do(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return c.sender.Send(msg)
		}
	}, c.strategy)
	if err != nil {
		return &model.DeliveryError{Channel: model.ChannelEmail, Retryable: true, Err: err}
	}

	return nil
}

// Compose renders n as a mail message.
func Compose(to string, n model.Notification) email.Message {
	subject := n.Title
	if n.Priority == model.PriorityUrgent || n.Priority == model.PriorityHigh {
		subject = fmt.Sprintf("[%s] %s", n.Priority, n.Title)
	}

	return email.Message{
		To:      to,
		Subject: subject,
		Text:    n.Title + "\n\n" + n.Message,
		HTML:    fmt.Sprintf("<h3>%s</h3><p>%s</p>", html.EscapeString(n.Title), html.EscapeString(n.Message)),
	}
}
