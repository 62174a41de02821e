package model

import "time"

// ChannelSwitches are the per-channel master switches of a user.
type ChannelSwitches struct {
	InApp bool `json:"in_app"`
	Push  bool `json:"push"`
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// Enabled reports whether channel c is switched on.
func (s ChannelSwitches) Enabled(c Channel) bool {
	switch c {
	case ChannelInApp:
		return s.InApp
	case ChannelPush:
		return s.Push
	case ChannelEmail:
		return s.Email
	case ChannelSMS:
		return s.SMS
	}
	return false
}

// TypeOverride narrows delivery for a single notification type.
type TypeOverride struct {
	Enabled     bool      `json:"enabled"`
	Channels    []Channel `json:"channels,omitempty"`     // allowed channels, any when empty
	MinPriority Priority  `json:"min_priority,omitempty"` // lowest priority still delivered
}

// QuietHours is a daily window during which only urgent notifications draw attention.
type QuietHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start,omitempty"`    // HH:MM
	End      string `json:"end,omitempty"`      // HH:MM
	Timezone string `json:"timezone,omitempty"` // IANA name, UTC when empty
}

// Digest batches low-priority notifications into a daily run.
type Digest struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time,omitempty"` // HH:MM in the quiet-hours timezone
}

// Contacts are the addresses used by the email and sms channels.
type Contacts struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	SMS   string `json:"sms,omitempty"`
}

// Preferences is the notification configuration of one user.
type Preferences struct {
	UserID     string                `json:"user_id"`
	Channels   ChannelSwitches       `json:"channels"`
	Types      map[Type]TypeOverride `json:"types,omitempty"`
	QuietHours QuietHours            `json:"quiet_hours"`
	Digest     Digest                `json:"digest"`
	Contacts   Contacts              `json:"contacts"`
	UpdatedAt  time.Time             `json:"updated_at"`
}
