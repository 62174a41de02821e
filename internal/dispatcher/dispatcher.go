// Package dispatcher fans a notification out to its eligible channels.
package dispatcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/bus"
	"github.com/aliskhannn/debt-notifier/internal/metrics"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

//go:generate mockgen -source=dispatcher.go -destination=../mocks/dispatcher/mock.go -package=mocks

const DefaultTimeout = 10 * time.Second

// Delivery is everything a channel needs to deliver one notification.
type Delivery struct {
	Notification model.Notification
	Channels     []model.Channel
	Silent       bool
	Preferences  model.Preferences
}

// Deliverer delivers a notification on a single channel.
type Deliverer interface {
	Deliver(ctx context.Context, d Delivery) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, d Delivery) error

func (f DelivererFunc) Deliver(ctx context.Context, d Delivery) error {
	return f(ctx, d)
}

type publisher interface {
	Publish(e bus.Event)
}

// Dispatcher delivers to each channel concurrently; one channel never waits on another.
type Dispatcher struct {
	deliverers map[model.Channel]Deliverer
	timeout    time.Duration
	bus        publisher
}

// New creates a dispatcher. A non-positive timeout selects DefaultTimeout.
func New(deliverers map[model.Channel]Deliverer, timeout time.Duration, pub publisher) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Dispatcher{deliverers: deliverers, timeout: timeout, bus: pub}
}

// Dispatch makes one attempt per channel and reports every outcome.
// Completed deliveries are never rolled back.
func (d *Dispatcher) Dispatch(ctx context.Context, del Delivery) model.DispatchReport {
	report := model.DispatchReport{
		NotificationID: del.Notification.ID,
		UserID:         del.Notification.UserID,
		Results:        make(map[model.Channel]model.ChannelResult, len(del.Channels)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, ch := range del.Channels {
		wg.Add(1)

		go func(ch model.Channel) {
			defer wg.Done()

			res := d.deliver(ctx, ch, del)

			mu.Lock()
			report.Results[ch] = res
			mu.Unlock()
		}(ch)
	}

	wg.Wait()

	if d.bus != nil {
		d.bus.Publish(bus.Event{
			Topic:  bus.TopicDispatched,
			UserID: report.UserID,
			Report: &report,
		})
	}

	return report
}

func (d *Dispatcher) deliver(ctx context.Context, ch model.Channel, del Delivery) model.ChannelResult {
	start := time.Now()

	deliverer, ok := d.deliverers[ch]
	if !ok {
		err := &model.DeliveryError{Channel: ch, Err: model.ErrChannelNotConfigured}
		return d.result(ch, del, err, start)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := deliverer.Deliver(ctx, del)

	return d.result(ch, del, err, start)
}

func (d *Dispatcher) result(ch model.Channel, del Delivery, err error, start time.Time) model.ChannelResult {
	elapsed := time.Since(start)
	metrics.ObserveDelivery(string(ch), err, elapsed)

	res := model.ChannelResult{Duration: elapsed}
	if err == nil {
		return res
	}

	res.Err = err
	res.Error = err.Error()
	res.Retryable = Retryable(err)

	event := zlog.Logger.Warn()
	if ch == model.ChannelInApp {
		event = zlog.Logger.Error()
	}
	event.Err(err).
		Str("channel", string(ch)).
		Str("notification_id", del.Notification.ID.String()).
		Str("user_id", del.Notification.UserID).
		Bool("retryable", res.Retryable).
		Msg("delivery failed")

	return res
}

// Retryable reports whether a failed delivery may succeed on a later attempt.
func Retryable(err error) bool {
	var deliveryErr *model.DeliveryError
	if errors.As(err, &deliveryErr) {
		return deliveryErr.Retryable
	}

	return model.Categorize(err) == model.CategoryNetwork
}
