package presentation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

const (
	DefaultToastCap   = 5
	DefaultToastDelay = 5000 * time.Millisecond
)

// Toast is a transient announcement of a notification.
type Toast struct {
	Notification model.Notification
	Style        Style
	Hovered      bool
	Remaining    time.Duration // time left before auto-dismiss
}

type toast struct {
	Toast
	since time.Time // when the timer last resumed
}

// ToastQueue holds the visible toasts. When full, the oldest is evicted.
type ToastQueue struct {
	mu     sync.Mutex
	cap    int
	delay  time.Duration
	now    func() time.Time
	toasts []*toast
}

// NewToastQueue creates a queue. Non-positive cap or delay select the defaults;
// a nil clock selects time.Now.
func NewToastQueue(capacity int, delay time.Duration, clock func() time.Time) *ToastQueue {
	if capacity <= 0 {
		capacity = DefaultToastCap
	}
	if delay <= 0 {
		delay = DefaultToastDelay
	}
	if clock == nil {
		clock = time.Now
	}

	return &ToastQueue{cap: capacity, delay: delay, now: clock}
}

// Push shows a toast for n and returns the toasts evicted to make room.
func (q *ToastQueue) Push(n model.Notification) []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.remove(n.ID)
	q.toasts = append(q.toasts, &toast{
		Toast: Toast{Notification: n, Style: Theme(n.Type), Remaining: q.delay},
		since: q.now(),
	})

	var evicted []Toast
	for len(q.toasts) > q.cap {
		evicted = append(evicted, q.toasts[0].Toast)
		q.toasts = q.toasts[1:]
	}

	return evicted
}

// Visible returns the toasts oldest first, with their remaining time.
func (q *ToastQueue) Visible() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	out := make([]Toast, 0, len(q.toasts))
	for _, t := range q.toasts {
		v := t.Toast
		if !t.Hovered {
			v.Remaining = t.Remaining - now.Sub(t.since)
		}
		out = append(out, v)
	}
	return out
}

// Hover pauses the dismiss timer of the toast.
func (q *ToastQueue) Hover(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t := q.find(id); t != nil && !t.Hovered {
		t.Remaining -= q.now().Sub(t.since)
		t.Hovered = true
	}
}

// Leave resumes the dismiss timer of the toast.
func (q *ToastQueue) Leave(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t := q.find(id); t != nil && t.Hovered {
		t.Hovered = false
		t.since = q.now()
	}
}

// Tick removes and returns the toasts whose timer ran out.
func (q *ToastQueue) Tick() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var expired []Toast
	kept := q.toasts[:0]
	for _, t := range q.toasts {
		if !t.Hovered && now.Sub(t.since) >= t.Remaining {
			expired = append(expired, t.Toast)
			continue
		}
		kept = append(kept, t)
	}
	q.toasts = kept

	return expired
}

// Dismiss removes the toast and reports whether it was visible.
func (q *ToastQueue) Dismiss(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.remove(id)
}

func (q *ToastQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.toasts)
}

func (q *ToastQueue) find(id uuid.UUID) *toast {
	for _, t := range q.toasts {
		if t.Notification.ID == id {
			return t
		}
	}
	return nil
}

func (q *ToastQueue) remove(id uuid.UUID) bool {
	for i, t := range q.toasts {
		if t.Notification.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			return true
		}
	}
	return false
}
