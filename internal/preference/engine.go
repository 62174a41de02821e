// Package preference decides which channels may carry a notification right now.
package preference

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

const DefaultDigestTime = "09:00"

// Decision is the outcome of evaluating a notification against preferences.
type Decision struct {
	Channels   []model.Channel // eligible channels, in requested order
	Silent     bool            // in-app delivery must not draw attention
	Deferred   bool            // hold until DeferUntil instead of dispatching now
	DeferUntil time.Time
}

// Has reports whether c is eligible.
func (d Decision) Has(c model.Channel) bool {
	for _, ch := range d.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// Defaults returns the preferences a user starts with: in-app only.
func Defaults(userID string) model.Preferences {
	return model.Preferences{
		UserID:     userID,
		Channels:   model.ChannelSwitches{InApp: true},
		QuietHours: model.QuietHours{Timezone: "UTC"},
		Digest:     model.Digest{Time: DefaultDigestTime},
	}
}

// Evaluate computes the eligible channels of n at now. Nil prefs behave as Defaults.
func Evaluate(n model.Notification, prefs *model.Preferences, now time.Time) Decision {
	p := Defaults(n.UserID)
	if prefs != nil {
		p = *prefs
	}

	channels := make([]model.Channel, 0, len(n.Channels))
	for _, c := range n.Channels {
		if p.Channels.Enabled(c) && !contains(channels, c) {
			channels = append(channels, c)
		}
	}

	if o, ok := p.Types[n.Type]; ok {
		if !o.Enabled || (o.MinPriority != "" && n.Priority.Below(o.MinPriority)) {
			return Decision{Channels: []model.Channel{}}
		}

		if len(o.Channels) > 0 {
			channels = intersect(channels, o.Channels)
		}
	}

	var d Decision

	if n.Priority != model.PriorityUrgent && InQuietHours(p.QuietHours, now) {
		kept := channels[:0]
		for _, c := range channels {
			if c == model.ChannelInApp {
				kept = append(kept, c)
			}
		}
		channels = kept
		d.Silent = len(channels) > 0
	}

	if p.Digest.Enabled && n.Priority == model.PriorityLow && len(channels) > 0 {
		d.Deferred = true
		d.DeferUntil = NextDigest(p, now)
	}

	d.Channels = channels

	return d
}

// InQuietHours reports whether now falls inside q. Windows may wrap midnight;
// a window whose start equals its end is empty.
func InQuietHours(q model.QuietHours, now time.Time) bool {
	if !q.Enabled {
		return false
	}

	start, err := ParseClock(q.Start)
	if err != nil {
		return false
	}
	end, err := ParseClock(q.End)
	if err != nil {
		return false
	}

	local := now.In(location(q.Timezone))
	minute := local.Hour()*60 + local.Minute()

	switch {
	case start == end:
		return false
	case start < end:
		return minute >= start && minute < end
	default:
		return minute >= start || minute < end
	}
}

// NextDigest returns the first digest run strictly after now.
func NextDigest(p model.Preferences, now time.Time) time.Time {
	at, err := ParseClock(p.Digest.Time)
	if err != nil {
		at, _ = ParseClock(DefaultDigestTime)
	}

	local := now.In(location(p.QuietHours.Timezone))
	run := time.Date(local.Year(), local.Month(), local.Day(), at/60, at%60, 0, 0, local.Location())
	if !run.After(local) {
		run = run.AddDate(0, 0, 1)
	}

	return run
}

// ParseClock parses HH:MM into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}

	return t.Hour()*60 + t.Minute(), nil
}

func location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}

	return loc
}

func intersect(a, b []model.Channel) []model.Channel {
	out := a[:0]
	for _, c := range a {
		if contains(b, c) {
			out = append(out, c)
		}
	}
	return out
}

func contains(list []model.Channel, c model.Channel) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
