package preference

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

var ErrPreferencesNotFound = errors.New("preferences not found")

// Repository stores one preferences document per user as JSONB.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new preference repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// GetPreferences loads the preferences of a user.
func (r *Repository) GetPreferences(ctx context.Context, userID string) (model.Preferences, error) {
	query := `
		SELECT settings, updated_at
		FROM notification_preferences
		WHERE user_id = $1;
    `

	var (
		raw []byte
		p   model.Preferences
	)

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&raw, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Preferences{}, ErrPreferencesNotFound
		}

		return model.Preferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	updatedAt := p.UpdatedAt
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Preferences{}, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	p.UserID = userID
	p.UpdatedAt = updatedAt

	return p, nil
}

// SavePreferences inserts or replaces the preferences of p.UserID.
func (r *Repository) SavePreferences(ctx context.Context, p model.Preferences) error {
	query := `
		INSERT INTO notification_preferences (user_id, settings, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET settings = EXCLUDED.settings, updated_at = EXCLUDED.updated_at;
    `

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, p.UserID, raw, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	return nil
}
