package subscription

import (
	"context"
	"sort"
	"sync"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

type deviceKey struct {
	userID   string
	deviceID string
}

// MemoryRepository keeps subscriptions and permissions in process memory.
type MemoryRepository struct {
	mu          sync.RWMutex
	subs        map[deviceKey]model.PushSubscription
	permissions map[deviceKey]model.Permission
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		subs:        make(map[deviceKey]model.PushSubscription),
		permissions: make(map[deviceKey]model.Permission),
	}
}

func (r *MemoryRepository) SaveSubscription(_ context.Context, s model.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs[deviceKey{s.UserID, s.DeviceID}] = s
	return nil
}

func (r *MemoryRepository) ListSubscriptions(_ context.Context, userID string) ([]model.PushSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.PushSubscription
	for k, s := range r.subs {
		if k.userID == userID {
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (r *MemoryRepository) DeleteSubscription(_ context.Context, userID, deviceID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := deviceKey{userID, deviceID}
	if _, ok := r.subs[k]; !ok {
		return false, nil
	}

	delete(r.subs, k)
	return true, nil
}

func (r *MemoryRepository) DeleteByEndpoint(_ context.Context, endpoint string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, s := range r.subs {
		if s.Endpoint == endpoint {
			delete(r.subs, k)
			return true, nil
		}
	}

	return false, nil
}

func (r *MemoryRepository) SetPermission(_ context.Context, userID, deviceID string, p model.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.permissions[deviceKey{userID, deviceID}] = p
	return nil
}

func (r *MemoryRepository) GetPermission(_ context.Context, userID, deviceID string) (model.Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.permissions[deviceKey{userID, deviceID}]
	if !ok {
		return model.PermissionDefault, nil
	}

	return p, nil
}

func (r *MemoryRepository) UserPermission(_ context.Context, userID string) (model.Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var states []model.Permission
	for k, p := range r.permissions {
		if k.userID == userID {
			states = append(states, p)
		}
	}

	return Fold(states), nil
}
