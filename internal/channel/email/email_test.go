package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/pkg/email"
)

type fakeSender struct {
	sent  []email.Message
	fails int
}

func (f *fakeSender) Send(m email.Message) error {
	if f.fails > 0 {
		f.fails--
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, m)
	return nil
}

func delivery(to string) dispatcher.Delivery {
	return dispatcher.Delivery{
		Notification: model.Notification{Title: "Payment Due", Message: "$500 <b>due</b>", Priority: model.PriorityHigh},
		Preferences:  model.Preferences{Contacts: model.Contacts{Email: to}},
	}
}

func TestChannel_DeliverRetries(t *testing.T) {
	s := &fakeSender{fails: 1}
	c := New(s, retry.Strategy{Attempts: 3})

	require.NoError(t, c.Deliver(context.Background(), delivery("owner@example.com")))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "[high] Payment Due", s.sent[0].Subject)
	assert.Contains(t, s.sent[0].HTML, "&lt;b&gt;")
}

func TestChannel_DeliverWithoutRecipient(t *testing.T) {
	err := New(&fakeSender{}, retry.Strategy{Attempts: 1}).Deliver(context.Background(), delivery(""))

	var derr *model.DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.False(t, derr.Retryable)
	assert.ErrorIs(t, err, model.ErrNoRecipient)
}

func TestChannel_DeliverExhaustsRetries(t *testing.T) {
	err := New(&fakeSender{fails: 5}, retry.Strategy{Attempts: 2}).Deliver(context.Background(), delivery("owner@example.com"))

	var derr *model.DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.True(t, derr.Retryable)
}
