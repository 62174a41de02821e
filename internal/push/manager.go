package push

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

//go:generate mockgen -source=manager.go -destination=../mocks/push/mock.go -package=mocks

// Prompter asks the user of a device for the push permission.
type Prompter interface {
	Prompt(ctx context.Context, userID, deviceID string) (model.Permission, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, userID, deviceID string) (model.Permission, error)

func (f PrompterFunc) Prompt(ctx context.Context, userID, deviceID string) (model.Permission, error) {
	return f(ctx, userID, deviceID)
}

// StaticPrompter answers every prompt with p.
func StaticPrompter(p model.Permission) Prompter {
	return PrompterFunc(func(context.Context, string, string) (model.Permission, error) {
		return p, nil
	})
}

// Platform issues push subscriptions for a device.
type Platform interface {
	Subscribe(ctx context.Context, deviceID, publicKey string) (*model.PushSubscription, error)
	Unsubscribe(ctx context.Context, deviceID string) error
}

type subscriptionStore interface {
	SetPermission(ctx context.Context, userID, deviceID string, p model.Permission) error
	GetPermission(ctx context.Context, userID, deviceID string) (model.Permission, error)
	SaveSubscription(ctx context.Context, s model.PushSubscription) error
	DeleteSubscription(ctx context.Context, userID, deviceID string) (bool, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) (bool, error)
}

// Manager implements the push subscription API.
type Manager struct {
	store    subscriptionStore
	prompter Prompter
	platform Platform
	now      func() time.Time
}

// NewManager creates a manager. prompter and platform may be nil when
// permissions and subscriptions only arrive from remote devices.
func NewManager(store subscriptionStore, prompter Prompter, platform Platform) *Manager {
	return &Manager{store: store, prompter: prompter, platform: platform, now: time.Now}
}

// RequestPermission returns the permission of the device, prompting only
// while it is still undecided.
func (m *Manager) RequestPermission(ctx context.Context, userID, deviceID string) (model.Permission, error) {
	current, err := m.store.GetPermission(ctx, userID, deviceID)
	if err != nil {
		return "", fmt.Errorf("get permission: %w", err)
	}

	if current != model.PermissionDefault || m.prompter == nil {
		return current, nil
	}

	answer, err := m.prompter.Prompt(ctx, userID, deviceID)
	if err != nil {
		return "", fmt.Errorf("prompt permission: %w", err)
	}

	if err := m.RecordPermission(ctx, userID, deviceID, answer); err != nil {
		return "", err
	}

	return answer, nil
}

// RecordPermission stores a permission state reported by a device.
func (m *Manager) RecordPermission(ctx context.Context, userID, deviceID string, p model.Permission) error {
	switch p {
	case model.PermissionGranted, model.PermissionDenied, model.PermissionDefault:
	default:
		return model.NewValidationError("state", "must be granted, denied or default")
	}

	if err := m.store.SetPermission(ctx, userID, deviceID, p); err != nil {
		return fmt.Errorf("set permission: %w", err)
	}

	if p == model.PermissionDenied {
		if _, err := m.store.DeleteSubscription(ctx, userID, deviceID); err != nil {
			return fmt.Errorf("drop subscription: %w", err)
		}
	}

	return nil
}

// Subscribe asks the platform for a subscription of the device. It returns
// nil without error when the platform declines.
func (m *Manager) Subscribe(ctx context.Context, userID, deviceID, publicKey string) (*model.PushSubscription, error) {
	p, err := m.store.GetPermission(ctx, userID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("get permission: %w", err)
	}
	if p != model.PermissionGranted {
		return nil, &model.PermissionError{UserID: userID, State: p}
	}

	if m.platform == nil {
		return nil, nil
	}

	sub, err := m.platform.Subscribe(ctx, deviceID, publicKey)
	if err != nil {
		return nil, fmt.Errorf("platform subscribe: %w", err)
	}
	if sub == nil {
		return nil, nil
	}

	sub.UserID = userID
	sub.DeviceID = deviceID
	if err := m.save(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

// Register persists a subscription created by a remote device. A device
// that managed to subscribe has granted the permission.
func (m *Manager) Register(ctx context.Context, sub model.PushSubscription) (*model.PushSubscription, error) {
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return nil, model.NewValidationError("subscription", "endpoint and keys are required")
	}

	if err := m.store.SetPermission(ctx, sub.UserID, sub.DeviceID, model.PermissionGranted); err != nil {
		return nil, fmt.Errorf("set permission: %w", err)
	}

	if err := m.save(ctx, &sub); err != nil {
		return nil, err
	}

	return &sub, nil
}

func (m *Manager) save(ctx context.Context, sub *model.PushSubscription) error {
	sub.ID = uuid.New()
	sub.CreatedAt = m.now().UTC()

	if err := m.store.SaveSubscription(ctx, *sub); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}

	zlog.Logger.Info().Str("user_id", sub.UserID).Str("device_id", sub.DeviceID).Msg("push subscription saved")

	return nil
}

// Unsubscribe removes the subscription of the device.
func (m *Manager) Unsubscribe(ctx context.Context, userID, deviceID string) (bool, error) {
	if m.platform != nil {
		if err := m.platform.Unsubscribe(ctx, deviceID); err != nil {
			zlog.Logger.Warn().Err(err).Str("device_id", deviceID).Msg("platform unsubscribe failed")
		}
	}

	removed, err := m.store.DeleteSubscription(ctx, userID, deviceID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}

	return removed, nil
}

// Invalidate drops the subscription behind an endpoint the platform reported expired.
func (m *Manager) Invalidate(ctx context.Context, endpoint string) (bool, error) {
	removed, err := m.store.DeleteByEndpoint(ctx, endpoint)
	if err != nil {
		return false, fmt.Errorf("invalidate subscription: %w", err)
	}

	return removed, nil
}
