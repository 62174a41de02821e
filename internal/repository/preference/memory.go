package preference

import (
	"context"
	"sync"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// MemoryRepository keeps preferences in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]model.Preferences
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]model.Preferences)}
}

func (r *MemoryRepository) GetPreferences(_ context.Context, userID string) (model.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[userID]
	if !ok {
		return model.Preferences{}, ErrPreferencesNotFound
	}

	return clone(p), nil
}

func (r *MemoryRepository) SavePreferences(_ context.Context, p model.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.UserID] = clone(p)
	return nil
}

func clone(p model.Preferences) model.Preferences {
	if p.Types == nil {
		return p
	}

	types := make(map[model.Type]model.TypeOverride, len(p.Types))
	for t, o := range p.Types {
		o.Channels = append([]model.Channel(nil), o.Channels...)
		types[t] = o
	}
	p.Types = types

	return p
}
