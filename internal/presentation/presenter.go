package presentation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/bus"
)

type subscriber interface {
	Subscribe(topics ...bus.Topic) (<-chan bus.Event, func())
}

// Presenter turns bus events of one user into toasts and bell refreshes.
type Presenter struct {
	bus    subscriber
	bell   *Bell
	toasts *ToastQueue
}

func NewPresenter(b subscriber, bell *Bell, toasts *ToastQueue) *Presenter {
	return &Presenter{bus: b, bell: bell, toasts: toasts}
}

func (p *Presenter) Bell() *Bell {
	return p.bell
}

func (p *Presenter) Toasts() *ToastQueue {
	return p.toasts
}

// Run consumes events until ctx is done, expiring toasts every tick.
func (p *Presenter) Run(ctx context.Context, tick time.Duration) {
	events, cancel := p.bus.Subscribe(bus.TopicInApp, bus.TopicChanged)
	defer cancel()

	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	if err := p.bell.Refresh(ctx); err != nil {
		zlog.Logger.Warn().Err(err).Msg("initial bell refresh failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			p.Handle(ctx, e)
		case <-ticker.C:
			p.toasts.Tick()
		}
	}
}

// Handle applies one event. Silent in-app events refresh the bell without a toast.
func (p *Presenter) Handle(ctx context.Context, e bus.Event) {
	if e.UserID != p.bell.UserID() {
		return
	}

	if e.Topic == bus.TopicInApp && !e.Silent && e.Notification != nil {
		p.toasts.Push(*e.Notification)
	}

	if e.Topic == bus.TopicChanged && e.Notification != nil {
		switch e.Change {
		case bus.ChangeRead, bus.ChangeArchived, bus.ChangeDeleted, bus.ChangePruned:
			p.toasts.Dismiss(e.Notification.ID)
		}
	}

	if err := p.bell.Refresh(ctx); err != nil {
		zlog.Logger.Warn().Err(err).Str("user_id", e.UserID).Msg("bell refresh failed")
	}
}

// ClickToast marks the notification read and dismisses its toast.
func (p *Presenter) ClickToast(ctx context.Context, id uuid.UUID) error {
	p.toasts.Dismiss(id)
	return p.bell.Click(ctx, id)
}

// CloseToast dismisses the toast without marking anything read.
func (p *Presenter) CloseToast(id uuid.UUID) {
	p.toasts.Dismiss(id)
}
