package presentation

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

//go:generate mockgen -source=bell.go -destination=../mocks/presentation/mock.go -package=mocks

type notificationStore interface {
	List(ctx context.Context, userID string, f model.Filter) ([]model.Notification, error)
	Stats(ctx context.Context, userID string) (model.Stats, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) error
}

// View selects the panel tab.
type View string

const (
	ViewAll      View = "all"
	ViewUnread   View = "unread"
	ViewRead     View = "read"
	ViewArchived View = "archived"
)

// PanelFilter narrows the bell panel.
type PanelFilter struct {
	View  View
	Type  model.Type
	Query string
}

func (f PanelFilter) filter() model.Filter {
	out := model.Filter{Type: f.Type, Query: f.Query}

	switch f.View {
	case ViewUnread:
		out.ReadState = model.ReadUnread
	case ViewRead:
		out.ReadState = model.ReadRead
	case ViewArchived:
		out.Archived = true
	}

	return out
}

const badgeMax = 99

// Badge renders the unread counter, empty when there is nothing unread.
func Badge(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > badgeMax:
		return strconv.Itoa(badgeMax) + "+"
	default:
		return strconv.Itoa(unread)
	}
}

// Bell is the unread badge and history panel of one user. Opening the panel
// never marks anything read.
type Bell struct {
	store  notificationStore
	userID string

	mu     sync.RWMutex
	unread int
	open   bool
	filter PanelFilter
	items  []model.Notification
}

func NewBell(store notificationStore, userID string) *Bell {
	return &Bell{store: store, userID: userID, filter: PanelFilter{View: ViewAll}}
}

func (b *Bell) UserID() string {
	return b.userID
}

// Refresh recomputes the badge and reloads the panel when it is open.
func (b *Bell) Refresh(ctx context.Context) error {
	s, err := b.store.Stats(ctx, b.userID)
	if err != nil {
		return fmt.Errorf("refresh bell: %w", err)
	}

	b.mu.Lock()
	b.unread = s.Unread
	open, f := b.open, b.filter
	b.mu.Unlock()

	if open {
		return b.load(ctx, f)
	}

	return nil
}

func (b *Bell) Open(ctx context.Context) error {
	b.mu.Lock()
	b.open = true
	f := b.filter
	b.mu.Unlock()

	return b.load(ctx, f)
}

func (b *Bell) Close() {
	b.mu.Lock()
	b.open = false
	b.mu.Unlock()
}

func (b *Bell) SetFilter(ctx context.Context, f PanelFilter) error {
	if f.View == "" {
		f.View = ViewAll
	}

	b.mu.Lock()
	b.filter = f
	open := b.open
	b.mu.Unlock()

	if open {
		return b.load(ctx, f)
	}
	return nil
}

// Click marks the panel entry read.
func (b *Bell) Click(ctx context.Context, id uuid.UUID) error {
	if err := b.store.MarkRead(ctx, b.userID, id); err != nil {
		return err
	}

	return b.Refresh(ctx)
}

func (b *Bell) load(ctx context.Context, f PanelFilter) error {
	items, err := b.store.List(ctx, b.userID, f.filter())
	if err != nil {
		return fmt.Errorf("load bell panel: %w", err)
	}

	b.mu.Lock()
	b.items = items
	b.mu.Unlock()

	return nil
}

func (b *Bell) Unread() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.unread
}

func (b *Bell) Badge() string {
	return Badge(b.Unread())
}

func (b *Bell) IsOpen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.open
}

func (b *Bell) Filter() PanelFilter {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.filter
}

// Items returns the panel entries loaded by the last refresh.
func (b *Bell) Items() []model.Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]model.Notification(nil), b.items...)
}
