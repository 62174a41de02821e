package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

const selectColumns = `
		SELECT id, user_id, title, message, type, priority, channels, read, read_at,
		       archived, created_at, scheduled_for, dispatched_at, tags, actions
		FROM notifications`

// Repository provides methods to interact with notifications table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// CreateNotification inserts a new notification into the database.
func (r *Repository) CreateNotification(ctx context.Context, n model.Notification) error {
	query := `
		INSERT INTO notifications (
		    id, user_id, title, message, type, priority, channels,
		    read, read_at, archived, created_at, scheduled_for, tags, actions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
    `

	actions, err := json.Marshal(n.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx, query,
		n.ID, n.UserID, n.Title, n.Message, string(n.Type), string(n.Priority), pq.Array(channelStrings(n.Channels)),
		n.Read, n.ReadAt, n.Archived, n.CreatedAt, n.ScheduledFor, pq.Array(n.Tags), actions,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetNotification retrieves a notification of the given owner by its ID.
func (r *Repository) GetNotification(ctx context.Context, userID string, id uuid.UUID) (model.Notification, error) {
	query := selectColumns + `
		WHERE id = $1 AND user_id = $2;
    `

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotificationNotFound
		}

		return model.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// ListNotifications retrieves the owner's notifications matching f, newest first.
func (r *Repository) ListNotifications(ctx context.Context, userID string, f model.Filter) ([]model.Notification, error) {
	conds := []string{"user_id = $1", "archived = $2"}
	args := []interface{}{userID, f.Archived}

	switch f.ReadState {
	case model.ReadUnread:
		conds = append(conds, "read = FALSE")
	case model.ReadRead:
		conds = append(conds, "read = TRUE")
	}

	if f.Type != "" {
		args = append(args, string(f.Type))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%d OR message ILIKE $%d OR array_to_string(tags, ' ') ILIKE $%d)", n, n, n,
		))
	}

	query := selectColumns + "\n\t\tWHERE " + strings.Join(conds, " AND ") + "\n\t\tORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead sets the read flag. It reports false when the notification was already read.
func (r *Repository) MarkRead(ctx context.Context, userID string, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE notifications
		SET read = TRUE, read_at = $3
		WHERE id = $1 AND user_id = $2 AND read = FALSE;
    `

	return r.updateOnce(ctx, query, userID, id, at)
}

// Archive sets the archived flag. It reports false when the notification was already archived.
func (r *Repository) Archive(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	query := `
		UPDATE notifications
		SET archived = TRUE
		WHERE id = $1 AND user_id = $2 AND archived = FALSE;
    `

	return r.updateOnce(ctx, query, userID, id)
}

// DeleteNotification removes a notification. It reports false when nothing was deleted.
func (r *Repository) DeleteNotification(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	query := `
		DELETE FROM notifications
		WHERE id = $1 AND user_id = $2;
    `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows > 0, nil
}

// Stats aggregates the owner's notifications.
func (r *Repository) Stats(ctx context.Context, userID string) (model.Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE NOT archived AND NOT read),
		       COUNT(*) FILTER (WHERE NOT archived AND read),
		       COUNT(*) FILTER (WHERE archived)
		FROM notifications
		WHERE user_id = $1;
    `

	var s model.Stats
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.Total, &s.Unread, &s.Read, &s.Archived)
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to get notification stats: %w", err)
	}

	return s, nil
}

// MarkDispatched records the first dispatch time of a notification.
func (r *Repository) MarkDispatched(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE notifications
		SET dispatched_at = $2
		WHERE id = $1 AND dispatched_at IS NULL;
    `

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to mark notification dispatched: %w", err)
	}

	return nil
}

// ListPending retrieves scheduled notifications that have not been dispatched yet.
func (r *Repository) ListPending(ctx context.Context) ([]model.Notification, error) {
	query := selectColumns + `
		WHERE dispatched_at IS NULL AND scheduled_for IS NOT NULL
		ORDER BY scheduled_for;
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// DeleteArchivedBefore removes archived notifications created before the given time.
func (r *Repository) DeleteArchivedBefore(ctx context.Context, before time.Time) ([]model.Notification, error) {
	query := `
		DELETE FROM notifications
		WHERE archived = TRUE AND created_at < $1
		RETURNING id, user_id;
    `

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to prune notifications: %w", err)
	}
	defer rows.Close()

	var removed []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan pruned notification: %w", err)
		}

		removed = append(removed, n)
	}

	return removed, rows.Err()
}

// updateOnce runs a conditional update and tells a no-op apart from a missing row.
func (r *Repository) updateOnce(ctx context.Context, query, userID string, id uuid.UUID, extra ...interface{}) (bool, error) {
	args := append([]interface{}{id, userID}, extra...)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update notification: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows > 0 {
		return true, nil
	}

	var exists bool
	err = r.db.QueryRowContext(
		ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2);`, id, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check notification: %w", err)
	}

	if !exists {
		return false, ErrNotificationNotFound
	}

	return false, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(s scanner) (model.Notification, error) {
	var (
		n            model.Notification
		typ, prio    string
		channels     []string
		tags         []string
		actions      []byte
		readAt       sql.NullTime
		scheduledFor sql.NullTime
		dispatchedAt sql.NullTime
	)

	err := s.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &prio, pq.Array(&channels), &n.Read, &readAt,
		&n.Archived, &n.CreatedAt, &scheduledFor, &dispatchedAt, pq.Array(&tags), &actions,
	)
	if err != nil {
		return model.Notification{}, err
	}

	n.Type = model.Type(typ)
	n.Priority = model.Priority(prio)
	n.Tags = tags
	for _, c := range channels {
		n.Channels = append(n.Channels, model.Channel(c))
	}

	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	if scheduledFor.Valid {
		n.ScheduledFor = &scheduledFor.Time
	}
	if dispatchedAt.Valid {
		n.DispatchedAt = &dispatchedAt.Time
	}

	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &n.Actions); err != nil {
			return model.Notification{}, fmt.Errorf("unmarshal actions: %w", err)
		}
	}

	return n, nil
}

func channelStrings(channels []model.Channel) []string {
	out := make([]string, len(channels))
	for i, c := range channels {
		out[i] = string(c)
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
