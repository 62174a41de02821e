package notification

import (
	"errors"
	"sort"
	"strings"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Matches reports whether n passes filter f. Repositories that cannot push a
// filter down to their storage evaluate it with this function.
func Matches(n model.Notification, f model.Filter) bool {
	if n.Archived != f.Archived {
		return false
	}

	switch f.ReadState {
	case model.ReadUnread:
		if n.Read {
			return false
		}
	case model.ReadRead:
		if !n.Read {
			return false
		}
	}

	if f.Type != "" && n.Type != f.Type {
		return false
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		return matchesQuery(n, strings.ToLower(q))
	}

	return true
}

func matchesQuery(n model.Notification, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Message), q) {
		return true
	}

	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}

	return false
}

// SortNewestFirst orders notifications by creation time, newest first.
func SortNewestFirst(items []model.Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
