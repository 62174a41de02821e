package model

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification by the event that produced it.
type Type string

const (
	TypeInfo            Type = "info"
	TypeSuccess         Type = "success"
	TypeWarning         Type = "warning"
	TypeError           Type = "error"
	TypeReminder        Type = "reminder"
	TypePaymentDue      Type = "payment_due"
	TypePaymentReceived Type = "payment_received"
	TypeCustomerCreated Type = "customer_created"
	TypeDueOverdue      Type = "due_overdue"
	TypeSystem          Type = "system"
)

// Types lists every known notification type.
var Types = []Type{
	TypeInfo, TypeSuccess, TypeWarning, TypeError, TypeReminder,
	TypePaymentDue, TypePaymentReceived, TypeCustomerCreated, TypeDueOverdue, TypeSystem,
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Priority orders notifications by urgency: low < medium < high < urgent.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityRank = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// Rank returns the ordinal of p, 0 for unknown priorities.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Below reports whether p is strictly less urgent than other.
func (p Priority) Below(other Priority) bool {
	return p.Rank() < other.Rank()
}

// Channel is a delivery medium.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Channels lists every known channel in dispatch order.
var Channels = []Channel{ChannelInApp, ChannelPush, ChannelEmail, ChannelSMS}

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelInApp, ChannelPush, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

// ActionStyle is the visual type of a notification action.
type ActionStyle string

const (
	ActionPrimary   ActionStyle = "primary"
	ActionSecondary ActionStyle = "secondary"
	ActionDanger    ActionStyle = "danger"
)

// Action is a button attached to a notification.
type Action struct {
	Label  string      `json:"label" validate:"required"`
	Action string      `json:"action" validate:"required"`
	Style  ActionStyle `json:"style,omitempty" validate:"omitempty,oneof=primary secondary danger"`
}

// Notification represents a notification owned by a single user.
type Notification struct {
	ID           uuid.UUID  `json:"id"`                      // unique identifier
	UserID       string     `json:"user_id"`                 // owner
	Title        string     `json:"title"`                   // short headline
	Message      string     `json:"message"`                 // body
	Type         Type       `json:"type"`                    // producing event
	Priority     Priority   `json:"priority"`                // urgency
	Channels     []Channel  `json:"channels"`                // requested channels
	Read         bool       `json:"read"`                    // read flag
	ReadAt       *time.Time `json:"read_at,omitempty"`       // set whenever Read is true
	Archived     bool       `json:"archived"`                // hidden from the default feed
	CreatedAt    time.Time  `json:"created_at"`              // creation time
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"` // deferred delivery time
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"` // first dispatch time
	Tags         []string   `json:"tags,omitempty"`          // free-form labels
	Actions      []Action   `json:"actions,omitempty"`       // ordered buttons
}

// HasChannel reports whether c is among the requested channels.
func (n Notification) HasChannel(c Channel) bool {
	for _, ch := range n.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// DueAt reports whether the notification may be dispatched at now.
func (n Notification) DueAt(now time.Time) bool {
	return n.ScheduledFor == nil || !n.ScheduledFor.After(now)
}

// CreateSpec is the producer contract for creating a notification.
type CreateSpec struct {
	UserID       string     `json:"user_id" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Message      string     `json:"message" validate:"required"`
	Type         Type       `json:"type" validate:"required"`
	Priority     Priority   `json:"priority"`
	Channels     []Channel  `json:"channels" validate:"required,min=1"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Actions      []Action   `json:"actions,omitempty" validate:"dive"`
}

// ReadState selects notifications by their read flag.
type ReadState string

const (
	ReadAll    ReadState = "all"
	ReadUnread ReadState = "unread"
	ReadRead   ReadState = "read"
)

// Filter narrows a notification listing.
type Filter struct {
	ReadState ReadState // all when empty
	Archived  bool      // false selects the default feed, true only archived records
	Type      Type      // any type when empty
	Query     string    // case-insensitive match against title, message and tags
	Limit     int       // unlimited when zero
}

// Stats aggregates a user's notifications.
type Stats struct {
	Total    int `json:"total"`
	Unread   int `json:"unread"`
	Read     int `json:"read"`
	Archived int `json:"archived"`
}
