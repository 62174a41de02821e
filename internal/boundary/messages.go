package boundary

import (
	"github.com/google/uuid"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// MessageType is the kind of a request posted from the main context.
type MessageType string

const (
	MsgGetNotifications   MessageType = "GET_NOTIFICATIONS"
	MsgClearNotifications MessageType = "CLEAR_NOTIFICATIONS"
	MsgCacheNotification  MessageType = "CACHE_NOTIFICATION"
	MsgSkipWaiting        MessageType = "SKIP_WAITING"
)

// Request is a message to the worker. The answer arrives on Reply.
type Request struct {
	ID      uuid.UUID
	Type    MessageType
	Payload *model.PushPayload
	Reply   chan Response
}

// Response answers the request with the same ID.
type Response struct {
	ID      uuid.UUID
	Type    MessageType
	Records []model.CachedRecord
	Closed  int
	Err     error
}

// Click is a notificationclick event.
type Click struct {
	Tag    string
	Action string
	Data   model.PushData
}

const ActionDismiss = "dismiss"

type eventKind string

const (
	eventPush    eventKind = "push"
	eventClick   eventKind = "notificationclick"
	eventSync    eventKind = "sync"
	eventCleanup eventKind = "periodicsync"
	eventMessage eventKind = "message"
)

type event struct {
	kind  eventKind
	data  []byte
	click Click
	req   Request
	done  chan error
}
