package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

func TestBus_PublishFiltersByTopic(t *testing.T) {
	b := New(4)

	inApp, cancelInApp := b.Subscribe(TopicInApp)
	defer cancelInApp()
	all, cancelAll := b.Subscribe()
	defer cancelAll()

	n := &model.Notification{Title: "Payment Due"}
	b.Publish(Event{Topic: TopicChanged, UserID: "u1", Change: ChangeCreated, Notification: n})
	b.Publish(Event{Topic: TopicInApp, UserID: "u1", Notification: n})

	got := <-inApp
	assert.Equal(t, TopicInApp, got.Topic)
	assert.Empty(t, inApp)

	first := <-all
	second := <-all
	assert.Equal(t, TopicChanged, first.Topic)
	assert.Equal(t, TopicInApp, second.Topic)
}

func TestBus_FullSubscriberDoesNotBlock(t *testing.T) {
	b := New(1)

	ch, cancel := b.Subscribe(TopicChanged)
	defer cancel()

	b.Publish(Event{Topic: TopicChanged, UserID: "u1"})
	b.Publish(Event{Topic: TopicChanged, UserID: "u2"})

	got := <-ch
	assert.Equal(t, "u1", got.UserID)
	assert.Empty(t, ch)
}

func TestBus_CancelClosesChannel(t *testing.T) {
	b := New(1)

	ch, cancel := b.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	require.False(t, ok)

	b.Publish(Event{Topic: TopicInApp})
}
