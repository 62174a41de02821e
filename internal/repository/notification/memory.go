package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// MemoryRepository keeps notifications in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]model.Notification
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]model.Notification)}
}

func (r *MemoryRepository) CreateNotification(_ context.Context, n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[n.ID] = clone(n)
	return nil
}

func (r *MemoryRepository) GetNotification(_ context.Context, userID string, id uuid.UUID) (model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return model.Notification{}, ErrNotificationNotFound
	}

	return clone(n), nil
}

func (r *MemoryRepository) ListNotifications(_ context.Context, userID string, f model.Filter) ([]model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Notification, 0)
	for _, n := range r.items {
		if n.UserID == userID && Matches(n, f) {
			out = append(out, clone(n))
		}
	}

	SortNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	return out, nil
}

func (r *MemoryRepository) MarkRead(_ context.Context, userID string, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return false, ErrNotificationNotFound
	}

	if n.Read {
		return false, nil
	}

	n.Read = true
	n.ReadAt = &at
	r.items[id] = n

	return true, nil
}

func (r *MemoryRepository) Archive(_ context.Context, userID string, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return false, ErrNotificationNotFound
	}

	if n.Archived {
		return false, nil
	}

	n.Archived = true
	r.items[id] = n

	return true, nil
}

func (r *MemoryRepository) DeleteNotification(_ context.Context, userID string, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return false, nil
	}

	delete(r.items, id)
	return true, nil
}

func (r *MemoryRepository) Stats(_ context.Context, userID string) (model.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s model.Stats
	for _, n := range r.items {
		if n.UserID != userID {
			continue
		}

		s.Total++
		switch {
		case n.Archived:
			s.Archived++
		case n.Read:
			s.Read++
		default:
			s.Unread++
		}
	}

	return s, nil
}

func (r *MemoryRepository) MarkDispatched(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok {
		return ErrNotificationNotFound
	}

	if n.DispatchedAt == nil {
		n.DispatchedAt = &at
		r.items[id] = n
	}

	return nil
}

func (r *MemoryRepository) ListPending(_ context.Context) ([]model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Notification
	for _, n := range r.items {
		if n.DispatchedAt == nil && n.ScheduledFor != nil {
			out = append(out, clone(n))
		}
	}

	return out, nil
}

func (r *MemoryRepository) DeleteArchivedBefore(_ context.Context, before time.Time) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []model.Notification
	for id, n := range r.items {
		if n.Archived && n.CreatedAt.Before(before) {
			removed = append(removed, n)
			delete(r.items, id)
		}
	}

	return removed, nil
}

func clone(n model.Notification) model.Notification {
	n.Channels = append([]model.Channel(nil), n.Channels...)
	n.Tags = append([]string(nil), n.Tags...)
	n.Actions = append([]model.Action(nil), n.Actions...)
	return n
}
