package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// Repository stores push subscriptions and permission grants.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new subscription repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// SaveSubscription inserts a subscription, replacing the one of the same (user, device).
func (r *Repository) SaveSubscription(ctx context.Context, s model.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, device_id, endpoint, p256dh, auth, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, device_id) DO UPDATE
		SET id = EXCLUDED.id, endpoint = EXCLUDED.endpoint, p256dh = EXCLUDED.p256dh,
		    auth = EXCLUDED.auth, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at;
    `

	_, err := r.db.ExecContext(
		ctx, query,
		s.ID, s.UserID, s.DeviceID, s.Endpoint, s.Keys.P256dh, s.Keys.Auth, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	return nil
}

// ListSubscriptions returns every subscription of a user.
func (r *Repository) ListSubscriptions(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	query := `
		SELECT id, user_id, device_id, endpoint, p256dh, auth, created_at, expires_at
		FROM push_subscriptions
		WHERE user_id = $1
		ORDER BY created_at;
    `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		var (
			s         model.PushSubscription
			expiresAt sql.NullTime
		)

		err := rows.Scan(&s.ID, &s.UserID, &s.DeviceID, &s.Endpoint, &s.Keys.P256dh, &s.Keys.Auth, &s.CreatedAt, &expiresAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		if expiresAt.Valid {
			s.ExpiresAt = &expiresAt.Time
		}

		subs = append(subs, s)
	}

	return subs, rows.Err()
}

// DeleteSubscription removes the subscription of (user, device).
func (r *Repository) DeleteSubscription(ctx context.Context, userID, deviceID string) (bool, error) {
	query := `
		DELETE FROM push_subscriptions
		WHERE user_id = $1 AND device_id = $2;
    `

	return r.exec(ctx, query, userID, deviceID)
}

// DeleteByEndpoint removes the subscription the platform reported as expired.
func (r *Repository) DeleteByEndpoint(ctx context.Context, endpoint string) (bool, error) {
	query := `
		DELETE FROM push_subscriptions
		WHERE endpoint = $1;
    `

	return r.exec(ctx, query, endpoint)
}

// SetPermission records the permission state of (user, device).
func (r *Repository) SetPermission(ctx context.Context, userID, deviceID string, p model.Permission) error {
	query := `
		INSERT INTO push_permissions (user_id, device_id, state, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, device_id) DO UPDATE
		SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at;
    `

	if _, err := r.db.ExecContext(ctx, query, userID, deviceID, string(p)); err != nil {
		return fmt.Errorf("failed to set permission: %w", err)
	}

	return nil
}

// GetPermission returns the permission of (user, device), default when never asked.
func (r *Repository) GetPermission(ctx context.Context, userID, deviceID string) (model.Permission, error) {
	query := `
		SELECT state
		FROM push_permissions
		WHERE user_id = $1 AND device_id = $2;
    `

	var state string
	err := r.db.QueryRowContext(ctx, query, userID, deviceID).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PermissionDefault, nil
		}

		return "", fmt.Errorf("failed to get permission: %w", err)
	}

	return model.Permission(state), nil
}

// UserPermission folds the permissions of all devices of a user.
func (r *Repository) UserPermission(ctx context.Context, userID string) (model.Permission, error) {
	query := `
		SELECT state
		FROM push_permissions
		WHERE user_id = $1;
    `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user permission: %w", err)
	}
	defer rows.Close()

	var states []model.Permission
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return "", fmt.Errorf("failed to scan permission: %w", err)
		}
		states = append(states, model.Permission(state))
	}

	return Fold(states), rows.Err()
}

func (r *Repository) exec(ctx context.Context, query string, args ...interface{}) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows > 0, nil
}

// Fold reduces per-device permissions to one state: any grant wins, then any denial.
func Fold(states []model.Permission) model.Permission {
	result := model.PermissionDefault
	for _, s := range states {
		switch s {
		case model.PermissionGranted:
			return model.PermissionGranted
		case model.PermissionDenied:
			result = model.PermissionDenied
		}
	}
	return result
}
