// Package sms delivers short text notifications through a message gateway.
package sms

import (
	"context"
	"errors"
	"strings"

	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/pkg/telegram"
)

const maxLength = 160

type gateway interface {
	Send(ctx context.Context, to string, text string) error
}

type Channel struct {
	gateway  gateway
	strategy retry.Strategy
}

func New(g gateway, strategy retry.Strategy) *Channel {
	return &Channel{gateway: g, strategy: strategy}
}

func (c *Channel) Deliver(ctx context.Context, d dispatcher.Delivery) error {
	to := d.Preferences.Contacts.SMS
	if to == "" {
		return &model.DeliveryError{Channel: model.ChannelSMS, Err: model.ErrNoRecipient}
	}

	text := Text(d.Notification)

	err := retry.Do(func() error {
		return c.gateway.Send(ctx, to, text)
	}, c.strategy)
	if err != nil {
		return &model.DeliveryError{Channel: model.ChannelSMS, Retryable: temporary(err), Err: err}
	}

	return nil
}

// Text renders n as a single short message.
func Text(n model.Notification) string {
	text := n.Title + ": " + n.Message
	if r := []rune(text); len(r) > maxLength {
		text = strings.TrimSpace(string(r[:maxLength-1])) + "…"
	}
	return text
}

func temporary(err error) bool {
	var apiErr *telegram.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}
