package model

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"validation", NewValidationError("title", "required"), CategoryValidation},
		{"wrapped validation", fmt.Errorf("create: %w", NewValidationError("title", "required")), CategoryValidation},
		{"not found", &NotFoundError{Resource: "notification", ID: "x"}, CategoryFirebase},
		{"permission", &PermissionError{UserID: "u", State: PermissionDenied}, CategoryFirebase},
		{"expired endpoint", &DeliveryError{Channel: ChannelPush, Err: ErrEndpointExpired}, CategoryFirebase},
		{"retryable delivery", &DeliveryError{Channel: ChannelPush, Retryable: true, Err: errors.New("boom")}, CategoryNetwork},
		{"terminal delivery", &DeliveryError{Channel: ChannelEmail, Err: errors.New("boom")}, CategoryUnknown},
		{"sync", &SyncError{RecordID: "r", Err: errors.New("offline")}, CategoryNetwork},
		{"deadline", context.DeadlineExceeded, CategoryNetwork},
		{"plain", errors.New("whatever"), CategoryUnknown},
		{"nil", nil, CategoryUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Categorize(tc.err))
		})
	}
}

func TestDeliveryErrorUnwrap(t *testing.T) {
	err := &DeliveryError{Channel: ChannelPush, Err: ErrNoSubscription}
	assert.ErrorIs(t, err, ErrNoSubscription)
	assert.Contains(t, err.Error(), "push")
}

func TestPriorityOrder(t *testing.T) {
	assert.True(t, PriorityLow.Below(PriorityMedium))
	assert.True(t, PriorityMedium.Below(PriorityHigh))
	assert.True(t, PriorityHigh.Below(PriorityUrgent))
	assert.False(t, PriorityUrgent.Below(PriorityUrgent))
	assert.False(t, Priority("bogus").Valid())
}
