package model

import (
	"time"

	"github.com/google/uuid"
)

// ChannelResult is the outcome of one delivery attempt on a channel.
type ChannelResult struct {
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
	Retryable bool          `json:"retryable"`
	Duration  time.Duration `json:"duration"`
}

// OK reports whether the delivery succeeded.
func (r ChannelResult) OK() bool {
	return r.Err == nil
}

// DispatchReport collects per-channel results of a dispatch.
type DispatchReport struct {
	NotificationID uuid.UUID                 `json:"notification_id"`
	UserID         string                    `json:"user_id"`
	Results        map[Channel]ChannelResult `json:"results"`
	Deferred       bool                      `json:"deferred"`
	DeferUntil     *time.Time                `json:"defer_until,omitempty"`
}

// Delivered returns the channels that succeeded.
func (r DispatchReport) Delivered() []Channel {
	var out []Channel
	for _, c := range Channels {
		if res, ok := r.Results[c]; ok && res.OK() {
			out = append(out, c)
		}
	}
	return out
}

// Failed returns the channels that failed.
func (r DispatchReport) Failed() []Channel {
	var out []Channel
	for _, c := range Channels {
		if res, ok := r.Results[c]; ok && !res.OK() {
			out = append(out, c)
		}
	}
	return out
}
