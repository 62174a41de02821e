package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrNoSubscription       = errors.New("no push subscription")
	ErrEndpointExpired      = errors.New("push endpoint expired")
	ErrChannelNotConfigured = errors.New("channel not configured")
	ErrBoundaryUnavailable  = errors.New("push boundary unavailable")
	ErrNoRecipient          = errors.New("no recipient address")
)

// FieldError describes one rejected field of a request.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError is returned for malformed create or update requests.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError with a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// NotFoundError is returned when an operation targets an unknown resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// PermissionError is returned when push is requested without a platform grant.
type PermissionError struct {
	UserID string
	State  Permission
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("push permission %s for user %s", e.State, e.UserID)
}

// DeliveryError reports a failed delivery on one channel.
type DeliveryError struct {
	Channel   Channel
	Retryable bool
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver via %s: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// SyncError reports a failed background retry; the record stays queued.
type SyncError struct {
	RecordID string
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync record %s: %v", e.RecordID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Category is the app-wide error family used by producing flows.
type Category string

const (
	CategoryFirebase   Category = "firebase"
	CategoryNetwork    Category = "network"
	CategoryValidation Category = "validation"
	CategoryUnknown    Category = "unknown"
)

// Categorize maps err to the category shared with the CRUD flows.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		permissionErr *PermissionError
		deliveryErr   *DeliveryError
		syncErr       *SyncError
		netErr        net.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return CategoryValidation
	case errors.As(err, &notFoundErr), errors.As(err, &permissionErr), errors.Is(err, ErrEndpointExpired):
		return CategoryFirebase
	case errors.As(err, &syncErr), errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return CategoryNetwork
	case errors.As(err, &deliveryErr) && deliveryErr.Retryable:
		return CategoryNetwork
	}

	return CategoryUnknown
}
