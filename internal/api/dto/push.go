package dto

import "github.com/aliskhannn/debt-notifier/internal/model"

// PermissionRequest reports the push permission state of a device.
type PermissionRequest struct {
	DeviceID string           `json:"device_id" validate:"required"`
	State    model.Permission `json:"state" validate:"required,oneof=granted denied default"`
}

// SubscriptionRequest registers a push subscription created on a device.
type SubscriptionRequest struct {
	DeviceID string                 `json:"device_id" validate:"required"`
	Endpoint string                 `json:"endpoint" validate:"required"`
	Keys     model.SubscriptionKeys `json:"keys"`
}

// UnsubscribeRequest removes the subscription of a device.
type UnsubscribeRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
}

// ConfirmRequest acknowledges that a push payload reached a device.
type ConfirmRequest struct {
	NotificationID string `json:"notification_id"`
	PrimaryKey     string `json:"primary_key"`
	UserID         string `json:"user_id,omitempty"`
	DeviceID       string `json:"device_id,omitempty"`
}

// Target returns the notification id being confirmed.
func (r ConfirmRequest) Target() string {
	if r.NotificationID != "" {
		return r.NotificationID
	}
	return r.PrimaryKey
}
