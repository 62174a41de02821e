package inapp

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/debt-notifier/internal/bus"
	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

func TestChannel_DeliverPublishesEvent(t *testing.T) {
	b := bus.New(1)
	events, cancel := b.Subscribe(bus.TopicInApp)
	defer cancel()

	n := model.Notification{ID: uuid.New(), UserID: "u1", Title: "Payment Received"}

	err := New(b).Deliver(context.Background(), dispatcher.Delivery{Notification: n, Silent: true})
	require.NoError(t, err)

	e := <-events
	assert.Equal(t, "u1", e.UserID)
	assert.True(t, e.Silent)
	require.NotNil(t, e.Notification)
	assert.Equal(t, n.ID, e.Notification.ID)
}
