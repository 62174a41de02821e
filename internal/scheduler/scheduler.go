// Package scheduler holds notifications whose dispatch is deferred to a later
// time. Entries live in memory only.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// Kind tells why an entry was deferred.
type Kind string

const (
	KindScheduled Kind = "scheduled" // explicit scheduled_for
	KindDigest    Kind = "digest"    // low priority batched into the daily digest
)

// Entry is a pending dispatch.
type Entry struct {
	ID     uuid.UUID
	UserID string
	At     time.Time
	Kind   Kind
}

// Scheduler is safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	entries map[uuid.UUID]Entry
	now     func() time.Time
}

func New() *Scheduler {
	return &Scheduler{entries: make(map[uuid.UUID]Entry), now: time.Now}
}

// Schedule registers e, replacing any entry with the same id.
func (s *Scheduler) Schedule(e Entry) {
	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()

	zlog.Logger.Debug().Str("id", e.ID.String()).Str("kind", string(e.Kind)).Time("at", e.At).Msg("dispatch deferred")
}

// Cancel drops the entry of id and reports whether it existed.
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[id]
	delete(s.entries, id)

	return ok
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Pending reports whether id is waiting.
func (s *Scheduler) Pending(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[id]
	return ok
}

// Due removes and returns the entries whose time has come, oldest first.
func (s *Scheduler) Due(now time.Time) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Entry
	for id, e := range s.entries {
		if !e.At.After(now) {
			due = append(due, e)
			delete(s.entries, id)
		}
	}

	sort.Slice(due, func(i, j int) bool { return due[i].At.Before(due[j].At) })

	return due
}

// Run checks for due entries every interval and hands each to fn until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, fn func(context.Context, Entry)) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Int("pending", s.Len()).Msg("scheduler stopped")
			return
		case <-ticker.C:
			for _, e := range s.Due(s.now()) {
				fn(ctx, e)
			}
		}
	}
}
