package dispatcher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/debt-notifier/internal/bus"
	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	mocks "github.com/aliskhannn/debt-notifier/internal/mocks/dispatcher"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

func delivery(channels ...model.Channel) dispatcher.Delivery {
	return dispatcher.Delivery{
		Notification: model.Notification{ID: uuid.New(), UserID: "u1", Title: "Payment Due"},
		Channels:     channels,
	}
}

func TestDispatch_IndependentChannels(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inApp := mocks.NewMockDeliverer(ctrl)
	push := mocks.NewMockDeliverer(ctrl)
	pub := mocks.NewMockpublisher(ctrl)

	permissionErr := &model.DeliveryError{
		Channel: model.ChannelPush,
		Err:     &model.PermissionError{UserID: "u1", State: model.PermissionDenied},
	}

	inApp.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(nil)
	push.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(permissionErr)
	pub.EXPECT().Publish(gomock.Any()).Do(func(e bus.Event) {
		assert.Equal(t, bus.TopicDispatched, e.Topic)
		require.NotNil(t, e.Report)
	})

	d := dispatcher.New(map[model.Channel]dispatcher.Deliverer{
		model.ChannelInApp: inApp,
		model.ChannelPush:  push,
	}, time.Second, pub)

	report := d.Dispatch(context.Background(), delivery(model.ChannelInApp, model.ChannelPush))

	assert.Equal(t, []model.Channel{model.ChannelInApp}, report.Delivered())
	assert.Equal(t, []model.Channel{model.ChannelPush}, report.Failed())
	assert.False(t, report.Results[model.ChannelPush].Retryable)
	assert.NotEmpty(t, report.Results[model.ChannelPush].Error)
}

func TestDispatch_SlowChannelDoesNotBlockOthers(t *testing.T) {
	release := make(chan struct{})
	inAppDone := make(chan struct{})

	d := dispatcher.New(map[model.Channel]dispatcher.Deliverer{
		model.ChannelInApp: dispatcher.DelivererFunc(func(context.Context, dispatcher.Delivery) error {
			close(inAppDone)
			return nil
		}),
		model.ChannelEmail: dispatcher.DelivererFunc(func(ctx context.Context, _ dispatcher.Delivery) error {
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
	}, 50*time.Millisecond, nil)

	go func() {
		<-inAppDone
		close(release)
	}()

	report := d.Dispatch(context.Background(), delivery(model.ChannelInApp, model.ChannelEmail))
	assert.ElementsMatch(t, []model.Channel{model.ChannelInApp, model.ChannelEmail}, report.Delivered())
}

func TestDispatch_TimeoutIsRetryable(t *testing.T) {
	d := dispatcher.New(map[model.Channel]dispatcher.Deliverer{
		model.ChannelSMS: dispatcher.DelivererFunc(func(ctx context.Context, _ dispatcher.Delivery) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	}, 10*time.Millisecond, nil)

	report := d.Dispatch(context.Background(), delivery(model.ChannelSMS))

	res := report.Results[model.ChannelSMS]
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.True(t, res.Retryable)
}

func TestDispatch_UnconfiguredChannel(t *testing.T) {
	d := dispatcher.New(nil, 0, nil)

	report := d.Dispatch(context.Background(), delivery(model.ChannelEmail))

	res := report.Results[model.ChannelEmail]
	assert.ErrorIs(t, res.Err, model.ErrChannelNotConfigured)
	assert.False(t, res.Retryable)
}

func TestRetryable(t *testing.T) {
	assert.True(t, dispatcher.Retryable(&model.DeliveryError{Channel: model.ChannelPush, Retryable: true, Err: errors.New("503")}))
	assert.False(t, dispatcher.Retryable(&model.DeliveryError{Channel: model.ChannelPush, Err: model.ErrNoSubscription}))
	assert.False(t, dispatcher.Retryable(errors.New("boom")))
}
