// Package push manages push permissions and subscriptions and carries
// payloads to the push platform.
package push

import (
	"strings"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// maxActions is the number of buttons platforms render on a notification.
const maxActions = 2

// PayloadOptions are the deployment-wide parts of a push payload.
type PayloadOptions struct {
	Icon    string
	Badge   string
	BaseURL string
}

var deepLinks = map[model.Type]string{
	model.TypePaymentDue:      "/payments",
	model.TypePaymentReceived: "/payments",
	model.TypeDueOverdue:      "/dues",
	model.TypeCustomerCreated: "/customers",
}

// DeepLink returns the app route a click on n should open.
func DeepLink(base string, n model.Notification) string {
	path, ok := deepLinks[n.Type]
	if !ok {
		path = "/notifications"
	}

	return strings.TrimRight(base, "/") + path + "?id=" + n.ID.String()
}

// BuildPayload converts n into the wire payload. silent suppresses sound and vibration.
func BuildPayload(n model.Notification, silent bool, opts PayloadOptions) model.PushPayload {
	p := model.PushPayload{
		Title:              n.Title,
		Body:               n.Message,
		Icon:               opts.Icon,
		Badge:              opts.Badge,
		Tag:                string(n.Type),
		RequireInteraction: n.Priority == model.PriorityUrgent,
		Silent:             silent || n.Priority == model.PriorityLow,
		Data: model.PushData{
			URL:            DeepLink(opts.BaseURL, n),
			PrimaryKey:     n.ID.String(),
			NotificationID: n.ID.String(),
			UserID:         n.UserID,
			Type:           n.Type,
		},
	}

	for i, a := range n.Actions {
		if i == maxActions {
			break
		}
		p.Actions = append(p.Actions, model.PushAction{Action: a.Action, Title: a.Label})
	}

	return p
}
