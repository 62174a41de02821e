package boundary

import (
	"context"
	"sync"
	"time"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// Renderer shows platform notifications.
type Renderer interface {
	Show(ctx context.Context, p model.PushPayload) error
	Close(tag string) bool
	CloseAll() int
}

// Shown is a notification currently visible in the tray.
type Shown struct {
	Payload model.PushPayload
	ShownAt time.Time
}

// Tray is an in-memory notification tray. Showing a payload with the tag of a
// visible one replaces it.
type Tray struct {
	mu    sync.Mutex
	items map[string]Shown
	order []string
	now   func() time.Time
}

func NewTray() *Tray {
	return &Tray{items: make(map[string]Shown), now: time.Now}
}

func (t *Tray) Show(_ context.Context, p model.PushPayload) error {
	tag := trayTag(p)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[tag]; !ok {
		t.order = append(t.order, tag)
	}
	t.items[tag] = Shown{Payload: p, ShownAt: t.now()}

	return nil
}

func (t *Tray) Close(tag string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[tag]; !ok {
		return false
	}

	delete(t.items, tag)
	for i, o := range t.order {
		if o == tag {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}

	return true
}

func (t *Tray) CloseAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.items)
	t.items = make(map[string]Shown)
	t.order = nil

	return n
}

// Visible returns the shown notifications, oldest first.
func (t *Tray) Visible() []Shown {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Shown, 0, len(t.order))
	for _, tag := range t.order {
		out = append(out, t.items[tag])
	}
	return out
}

func trayTag(p model.PushPayload) string {
	if p.Tag != "" {
		return p.Tag
	}
	return p.Data.PrimaryKey
}
