package push

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	"github.com/aliskhannn/debt-notifier/internal/metrics"
	mocks "github.com/aliskhannn/debt-notifier/internal/mocks/channel/push"
	"github.com/aliskhannn/debt-notifier/internal/model"
	pushsvc "github.com/aliskhannn/debt-notifier/internal/push"
)

type fakeTransport struct {
	errs map[string]error
	sent []string
}

func (f *fakeTransport) Send(_ context.Context, sub model.PushSubscription, _ model.PushPayload) error {
	if err, ok := f.errs[sub.Endpoint]; ok {
		return err
	}
	f.sent = append(f.sent, sub.Endpoint)
	return nil
}

// stallingTransport blocks until the delivery context expires.
type stallingTransport struct{}

func (stallingTransport) Send(ctx context.Context, _ model.PushSubscription, _ model.PushPayload) error {
	<-ctx.Done()
	return ctx.Err()
}

func delivery() dispatcher.Delivery {
	return dispatcher.Delivery{Notification: model.Notification{
		ID: uuid.New(), UserID: "u1", Title: "Payment Due", Type: model.TypePaymentDue, Priority: model.PriorityMedium,
	}}
}

func TestChannel_PermissionDeniedIsTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subs := mocks.NewMocksubscriptionStore(ctrl)
	subs.EXPECT().UserPermission(gomock.Any(), "u1").Return(model.PermissionDenied, nil)

	err := New(subs, &fakeTransport{}, nil, pushsvc.PayloadOptions{}).Deliver(context.Background(), delivery())

	var derr *model.DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.False(t, derr.Retryable)

	var perr *model.PermissionError
	assert.ErrorAs(t, err, &perr)
}

func TestChannel_NoSubscriptionIsTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subs := mocks.NewMocksubscriptionStore(ctrl)
	subs.EXPECT().UserPermission(gomock.Any(), "u1").Return(model.PermissionGranted, nil)
	subs.EXPECT().ListSubscriptions(gomock.Any(), "u1").Return(nil, nil)

	err := New(subs, &fakeTransport{}, nil, pushsvc.PayloadOptions{}).Deliver(context.Background(), delivery())

	assert.ErrorIs(t, err, model.ErrNoSubscription)
	assert.False(t, dispatcher.Retryable(err))
}

func TestChannel_ExpiredEndpointIsRemoved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subs := mocks.NewMocksubscriptionStore(ctrl)
	subs.EXPECT().UserPermission(gomock.Any(), "u1").Return(model.PermissionGranted, nil)
	subs.EXPECT().ListSubscriptions(gomock.Any(), "u1").Return([]model.PushSubscription{{Endpoint: "gone"}}, nil)
	subs.EXPECT().DeleteByEndpoint(gomock.Any(), "gone").Return(true, nil)

	tr := &fakeTransport{errs: map[string]error{"gone": model.ErrEndpointExpired}}
	err := New(subs, tr, nil, pushsvc.PayloadOptions{}).Deliver(context.Background(), delivery())

	assert.ErrorIs(t, err, model.ErrEndpointExpired)
	assert.False(t, dispatcher.Retryable(err))
}

func TestChannel_TransientFailureHandsOffToSyncQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subs := mocks.NewMocksubscriptionStore(ctrl)
	queue := mocks.NewMocksyncQueue(ctrl)
	d := delivery()

	subs.EXPECT().UserPermission(gomock.Any(), "u1").Return(model.PermissionGranted, nil)
	subs.EXPECT().ListSubscriptions(gomock.Any(), "u1").Return([]model.PushSubscription{{Endpoint: "flaky"}}, nil)
	queue.EXPECT().CacheNotification(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p model.PushPayload) error {
			assert.Equal(t, d.Notification.ID.String(), p.Data.PrimaryKey)
			return nil
		},
	)

	tr := &fakeTransport{errs: map[string]error{"flaky": errors.New("connection reset")}}
	err := New(subs, tr, queue, pushsvc.PayloadOptions{}).Deliver(context.Background(), d)

	assert.True(t, dispatcher.Retryable(err))
}

func TestChannel_OneDeviceSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subs := mocks.NewMocksubscriptionStore(ctrl)
	subs.EXPECT().UserPermission(gomock.Any(), "u1").Return(model.PermissionGranted, nil)
	subs.EXPECT().ListSubscriptions(gomock.Any(), "u1").Return([]model.PushSubscription{
		{Endpoint: "flaky"}, {Endpoint: "ok"},
	}, nil)

	tr := &fakeTransport{errs: map[string]error{"flaky": errors.New("timeout")}}
	err := New(subs, tr, nil, pushsvc.PayloadOptions{}).Deliver(context.Background(), delivery())

	assert.NoError(t, err)
	assert.Equal(t, []string{"ok"}, tr.sent)
}

func TestChannel_TimedOutSendStillHandsOff(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subs := mocks.NewMocksubscriptionStore(ctrl)
	queue := mocks.NewMocksyncQueue(ctrl)
	d := delivery()

	subs.EXPECT().UserPermission(gomock.Any(), "u1").Return(model.PermissionGranted, nil)
	subs.EXPECT().ListSubscriptions(gomock.Any(), "u1").Return([]model.PushSubscription{{Endpoint: "slow"}}, nil)
	queue.EXPECT().CacheNotification(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, p model.PushPayload) error {
			assert.NoError(t, ctx.Err())
			assert.Equal(t, d.Notification.ID.String(), p.Data.PrimaryKey)
			return nil
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := New(subs, stallingTransport{}, queue, pushsvc.PayloadOptions{}).Deliver(ctx, d)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, dispatcher.Retryable(err))
}

func TestChannel_PartialFailureIsCounted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subs := mocks.NewMocksubscriptionStore(ctrl)
	subs.EXPECT().UserPermission(gomock.Any(), "u1").Return(model.PermissionGranted, nil)
	subs.EXPECT().ListSubscriptions(gomock.Any(), "u1").Return([]model.PushSubscription{
		{Endpoint: "flaky"}, {Endpoint: "gone"}, {Endpoint: "ok"},
	}, nil)
	subs.EXPECT().DeleteByEndpoint(gomock.Any(), "gone").Return(true, nil)

	transient := testutil.ToFloat64(metrics.PushDeviceFailures.WithLabelValues("transient"))
	expired := testutil.ToFloat64(metrics.PushDeviceFailures.WithLabelValues("expired"))

	tr := &fakeTransport{errs: map[string]error{
		"flaky": errors.New("timeout"),
		"gone":  model.ErrEndpointExpired,
	}}
	err := New(subs, tr, nil, pushsvc.PayloadOptions{}).Deliver(context.Background(), delivery())

	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, tr.sent)
	assert.Equal(t, transient+1, testutil.ToFloat64(metrics.PushDeviceFailures.WithLabelValues("transient")))
	assert.Equal(t, expired+1, testutil.ToFloat64(metrics.PushDeviceFailures.WithLabelValues("expired")))
}
