// Package fcm wraps Firebase Cloud Messaging for web push delivery.
package fcm

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// ErrUnregistered is returned when FCM no longer knows the registration token.
var ErrUnregistered = errors.New("fcm: registration token unregistered")

// Client wraps Firebase Cloud Messaging functionality.
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates a new FCM client using the provided credentials file.
// An empty file falls back to application default credentials.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &Client{messagingClient: messagingClient}, nil
}

// Action is a button on a web notification.
type Action struct {
	Action string
	Title  string
	Icon   string
}

// Notification contains the data rendered by the receiving browser.
type Notification struct {
	Title              string
	Body               string
	Icon               string
	Badge              string
	Tag                string
	Link               string // opened on click
	RequireInteraction bool
	Silent             bool
	Actions            []Action
	Data               map[string]string
}

// BuildMessage converts n into an FCM message addressed to token.
func BuildMessage(token string, n Notification) *messaging.Message {
	actions := make([]*messaging.WebpushNotificationAction, 0, len(n.Actions))
	for _, a := range n.Actions {
		actions = append(actions, &messaging.WebpushNotificationAction{
			Action: a.Action,
			Title:  a.Title,
			Icon:   a.Icon,
		})
	}

	msg := &messaging.Message{
		Token: token,
		Data:  n.Data,
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{"Urgency": urgency(n)},
			Data:    n.Data,
			Notification: &messaging.WebpushNotification{
				Title:              n.Title,
				Body:               n.Body,
				Icon:               n.Icon,
				Badge:              n.Badge,
				Tag:                n.Tag,
				RequireInteraction: n.RequireInteraction,
				Silent:             n.Silent,
				Actions:            actions,
			},
		},
	}

	if n.Link != "" {
		msg.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: n.Link}
	}

	return msg
}

func urgency(n Notification) string {
	switch {
	case n.RequireInteraction:
		return "high"
	case n.Silent:
		return "low"
	default:
		return "normal"
	}
}

// Send delivers n to the device behind token and returns the FCM message id.
func (c *Client) Send(ctx context.Context, token string, n Notification) (string, error) {
	id, err := c.messagingClient.Send(ctx, BuildMessage(token, n))
	if err != nil {
		if messaging.IsUnregistered(err) {
			return "", fmt.Errorf("%w: %v", ErrUnregistered, err)
		}

		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}

	return id, nil
}
