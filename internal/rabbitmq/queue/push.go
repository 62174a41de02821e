package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// Topology names the exchange and queues of the push pipeline.
type Topology struct {
	Exchange   string
	Queue      string
	RetryQueue string
	DLQ        string
	RoutingKey string
	RetryTTL   time.Duration
}

// DefaultTopology is used for any field left empty in configuration.
func DefaultTopology() Topology {
	return Topology{
		Exchange:   "push-exchange",
		Queue:      "push-queue",
		RetryQueue: "push-retry",
		DLQ:        "push-dlq",
		RoutingKey: "push",
		RetryTTL:   5 * time.Second,
	}
}

func (t Topology) withDefaults() Topology {
	d := DefaultTopology()
	if t.Exchange == "" {
		t.Exchange = d.Exchange
	}
	if t.Queue == "" {
		t.Queue = d.Queue
	}
	if t.RetryQueue == "" {
		t.RetryQueue = d.RetryQueue
	}
	if t.DLQ == "" {
		t.DLQ = d.DLQ
	}
	if t.RoutingKey == "" {
		t.RoutingKey = d.RoutingKey
	}
	if t.RetryTTL <= 0 {
		t.RetryTTL = d.RetryTTL
	}
	return t
}

// PushMessage carries one push payload to the boundary of one device.
type PushMessage struct {
	ID         uuid.UUID         `json:"id"`
	UserID     string            `json:"user_id"`
	DeviceID   string            `json:"device_id"`
	Endpoint   string            `json:"endpoint"`
	Payload    model.PushPayload `json:"payload"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
	Reason     string            `json:"reason,omitempty"` // set on dead letters
}

// NewPushMessage addresses p to the device behind sub.
func NewPushMessage(sub model.PushSubscription, p model.PushPayload, now time.Time) PushMessage {
	return PushMessage{
		ID:         uuid.New(),
		UserID:     sub.UserID,
		DeviceID:   sub.DeviceID,
		Endpoint:   sub.Endpoint,
		Payload:    p,
		EnqueuedAt: now.UTC(),
	}
}

// PushQueue is a push transport backed by RabbitMQ.
type PushQueue struct {
	Publisher *rabbitmq.Publisher
	Consumer  *rabbitmq.Consumer
	dead      *rabbitmq.Publisher
	topology  Topology
	strategy  retry.Strategy
}

// NewPushQueue declares the exchange, the main queue dead-lettering into the
// DLQ, and a retry queue that feeds the main queue after its TTL.
func NewPushQueue(ch *rabbitmq.Channel, t Topology, strategy retry.Strategy) (*PushQueue, error) {
	t = t.withDefaults()

	exchange := rabbitmq.NewExchange(t.Exchange, "direct")
	if err := exchange.BindToChannel(ch); err != nil {
		return nil, fmt.Errorf("failed to bind to exchange: %w", err)
	}

	qm := rabbitmq.NewQueueManager(ch)

	if _, err := qm.DeclareQueue(t.DLQ, rabbitmq.QueueConfig{Durable: true}); err != nil {
		return nil, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	_, err := qm.DeclareQueue(t.RetryQueue, rabbitmq.QueueConfig{
		Durable: true,
		Args: map[string]interface{}{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": t.Queue,
			"x-message-ttl":             int32(t.RetryTTL / time.Millisecond),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare retry queue: %w", err)
	}

	mainQ, err := qm.DeclareQueue(t.Queue, rabbitmq.QueueConfig{
		Durable: true,
		Args: map[string]interface{}{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": t.DLQ,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare main queue: %w", err)
	}

	if err := ch.QueueBind(mainQ.Name, t.RoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind the exchange to the main queue: %w", err)
	}

	return &PushQueue{
		Publisher: rabbitmq.NewPublisher(ch, exchange.Name()),
		Consumer:  rabbitmq.NewConsumer(ch, rabbitmq.NewConsumerConfig(mainQ.Name)),
		dead:      rabbitmq.NewPublisher(ch, ""),
		topology:  t,
		strategy:  strategy,
	}, nil
}

// Send enqueues p for the device of sub.
func (q *PushQueue) Send(_ context.Context, sub model.PushSubscription, p model.PushPayload) error {
	return q.Publish(NewPushMessage(sub, p, time.Now()))
}

func (q *PushQueue) Publish(msg PushMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.Publisher.PublishWithRetry(body, q.topology.RoutingKey, "application/json", q.strategy)
}

// DeadLetter parks msg in the DLQ with the reason it could not be delivered.
func (q *PushQueue) DeadLetter(msg PushMessage, reason string) error {
	msg.Reason = reason

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.dead.PublishWithRetry(body, q.topology.DLQ, "application/json", q.strategy)
}

// Consume decodes messages from the main queue into out until the consumer stops.
func (q *PushQueue) Consume(out chan<- PushMessage, strategy retry.Strategy) error {
	msgChan := make(chan []byte)

	go func() {
		for m := range msgChan {
			msg, err := Decode(m)
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to unmarshal message")
				continue
			}

			out <- msg
		}
	}()

	return q.Consumer.ConsumeWithRetry(msgChan, strategy)
}

// Decode parses a queue body into a PushMessage.
func Decode(body []byte) (PushMessage, error) {
	var msg PushMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return PushMessage{}, fmt.Errorf("decode push message: %w", err)
	}

	if msg.Endpoint == "" {
		return PushMessage{}, fmt.Errorf("decode push message %s: missing endpoint", msg.ID)
	}

	return msg, nil
}
