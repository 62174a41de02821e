package dto

import (
	"time"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// CreateRequest is the body of POST /api/notify/. The owner defaults to the
// acting user.
type CreateRequest struct {
	UserID       string          `json:"user_id"`
	Title        string          `json:"title"`
	Message      string          `json:"message"`
	Type         model.Type      `json:"type"`
	Priority     model.Priority  `json:"priority,omitempty"`
	Channels     []model.Channel `json:"channels"`
	ScheduledFor *time.Time      `json:"scheduled_for,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	Actions      []model.Action  `json:"actions,omitempty"`
}

// Spec converts the request into a create spec owned by owner unless the
// request names another user.
func (r CreateRequest) Spec(owner string) model.CreateSpec {
	userID := r.UserID
	if userID == "" {
		userID = owner
	}

	return model.CreateSpec{
		UserID:       userID,
		Title:        r.Title,
		Message:      r.Message,
		Type:         r.Type,
		Priority:     r.Priority,
		Channels:     r.Channels,
		ScheduledFor: r.ScheduledFor,
		Tags:         r.Tags,
		Actions:      r.Actions,
	}
}
