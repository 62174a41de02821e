package model

import (
	"time"

	"github.com/google/uuid"
)

// Permission is the platform push permission state of a device.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// SubscriptionKeys are the cryptographic keys issued with a push subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription identifies where push messages for a (user, device) pair go.
type PushSubscription struct {
	ID        uuid.UUID        `json:"id"`
	UserID    string           `json:"user_id"`
	DeviceID  string           `json:"device_id"`
	Endpoint  string           `json:"endpoint"`
	Keys      SubscriptionKeys `json:"keys"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// PushAction is a button rendered on a platform notification.
type PushAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// PushData is the routing data embedded in a push payload.
type PushData struct {
	URL            string `json:"url"`
	PrimaryKey     string `json:"primaryKey"`
	NotificationID string `json:"notificationId,omitempty"`
	UserID         string `json:"userId,omitempty"`
	Type           Type   `json:"type,omitempty"`
}

// PushPayload is the JSON body delivered by the push service to the boundary.
type PushPayload struct {
	Title              string       `json:"title"`
	Body               string       `json:"body"`
	Icon               string       `json:"icon,omitempty"`
	Badge              string       `json:"badge,omitempty"`
	Tag                string       `json:"tag,omitempty"`
	RequireInteraction bool         `json:"requireInteraction"`
	Silent             bool         `json:"silent"`
	Actions            []PushAction `json:"actions,omitempty"`
	Data               PushData     `json:"data"`
}

// CachedRecord is a push payload queued inside the boundary for offline replay.
type CachedRecord struct {
	ID         string      `json:"id"`
	Payload    PushPayload `json:"payload"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
	Shown      bool        `json:"shown"`
	Attempts   int         `json:"attempts"`
	LastError  string      `json:"last_error,omitempty"`
}
