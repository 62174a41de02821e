// Package bus is the process-wide publish/subscribe channel between the
// notification store, the channel deliverers and the presentation layer.
package bus

import (
	"sync"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/metrics"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

// Topic names an event stream.
type Topic string

const (
	TopicInApp      Topic = "inAppNotification"
	TopicChanged    Topic = "notificationChanged"
	TopicDispatched Topic = "notificationDispatched"
)

// Change describes the mutation carried by a TopicChanged event.
type Change string

const (
	ChangeCreated  Change = "created"
	ChangeRead     Change = "read"
	ChangeArchived Change = "archived"
	ChangeDeleted  Change = "deleted"
	ChangePruned   Change = "pruned"
)

// Event is a single message on the bus.
type Event struct {
	Topic        Topic                 `json:"event"`
	UserID       string                `json:"user_id"`
	Change       Change                `json:"change,omitempty"`
	Silent       bool                  `json:"silent,omitempty"`
	Notification *model.Notification   `json:"notification,omitempty"`
	Report       *model.DispatchReport `json:"report,omitempty"`
}

const defaultBuffer = 64

type subscriber struct {
	ch     chan Event
	topics map[Topic]struct{}
}

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	buffer int
}

// New creates a bus whose subscriptions buffer the given number of events.
func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	return &Bus{subs: make(map[*subscriber]struct{}), buffer: buffer}
}

// Subscribe registers for the given topics, all topics when none are given.
// The returned cancel function closes the channel.
func (b *Bus) Subscribe(topics ...Topic) (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, b.buffer)}
	if len(topics) > 0 {
		s.topics = make(map[Topic]struct{}, len(topics))
		for _, t := range topics {
			s.topics[t] = struct{}{}
		}
	}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, s)
			b.mu.Unlock()
			close(s.ch)
		})
	}

	return s.ch, cancel
}

// Publish delivers e to every matching subscriber.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		if s.topics != nil {
			if _, ok := s.topics[e.Topic]; !ok {
				continue
			}
		}

		select {
		case s.ch <- e:
		default:
			metrics.BusDropped.WithLabelValues(string(e.Topic)).Inc()
			zlog.Logger.Warn().Str("topic", string(e.Topic)).Str("user_id", e.UserID).Msg("bus subscriber lagging, event dropped")
		}
	}
}
