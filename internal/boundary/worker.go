// Package boundary is the push delivery boundary: a separately scheduled
// worker that receives push events, keeps an offline queue of payloads and
// replays it when connectivity returns. The main context talks to it only
// through messages.
package boundary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/metrics"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

const (
	DefaultRetention = 7 * 24 * time.Hour
	inboxSize        = 16
)

// State is the lifecycle state of a worker version.
type State string

const (
	StateInstalled State = "installed"
	StateWaiting   State = "waiting"
	StateActive    State = "activated"
	StateRedundant State = "redundant"
)

// Config holds the dependencies shared by every worker version.
type Config struct {
	Store     RecordStore
	Renderer  Renderer
	Windows   WindowManager
	Confirmer Confirmer
	Retention time.Duration
}

type lifecycle interface {
	skipWaiting(w *Worker) error
}

// Worker is one installed version of the boundary. Events are handled one at
// a time on its own goroutine.
type Worker struct {
	version   string
	cfg       Config
	inbox     chan event
	stopped   chan struct{}
	cancel    context.CancelFunc
	lifecycle lifecycle
	now       func() time.Time

	mu    sync.Mutex
	state State
}

func newWorker(version string, cfg Config, l lifecycle) *Worker {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = NewTray()
	}
	if cfg.Windows == nil {
		cfg.Windows = NewWindows()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}

	return &Worker{
		version:   version,
		cfg:       cfg,
		inbox:     make(chan event, inboxSize),
		stopped:   make(chan struct{}),
		lifecycle: l,
		now:       time.Now,
		state:     StateInstalled,
	}
}

func (w *Worker) Version() string {
	return w.version
}

func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

func (w *Worker) start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	w.cancel = cancel

	go w.run(ctx)
}

// retire stops the event loop. Events posted afterwards fail with ErrBoundaryUnavailable.
func (w *Worker) retire() {
	w.setState(StateRedundant)
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.stopped)

	zlog.Logger.Info().Str("version", w.version).Msg("boundary worker started")

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Str("version", w.version).Msg("boundary worker stopped")
			return
		case e := <-w.inbox:
			e.done <- w.handle(ctx, e)
		}
	}
}

// post hands e to the loop and waits for it to be handled.
func (w *Worker) post(ctx context.Context, e event) error {
	e.done = make(chan error, 1)

	select {
	case w.inbox <- e:
	case <-w.stopped:
		return model.ErrBoundaryUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-e.done:
		return err
	case <-w.stopped:
		return model.ErrBoundaryUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) handle(ctx context.Context, e event) error {
	switch e.kind {
	case eventPush:
		return w.onPush(ctx, e.data)
	case eventClick:
		return w.onClick(ctx, e.click)
	case eventSync:
		return w.onSync(ctx)
	case eventCleanup:
		return w.onCleanup(ctx)
	case eventMessage:
		w.onMessage(ctx, e.req)
		return nil
	}

	return fmt.Errorf("unknown event %q", e.kind)
}

func (w *Worker) onPush(ctx context.Context, data []byte) error {
	p, err := decodePayload(data)
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("malformed push payload, showing fallback")
	}

	rec := w.record(p)

	if err := w.cfg.Renderer.Show(ctx, p); err != nil {
		zlog.Logger.Error().Err(err).Str("record_id", rec.ID).Msg("failed to show notification")
	} else {
		rec.Shown = true
	}

	if err := w.cfg.Store.Put(ctx, rec); err != nil {
		return fmt.Errorf("cache push record: %w", err)
	}

	// a failed sync leaves the record queued for the next sync event
	_ = w.onSync(ctx)

	return nil
}

func (w *Worker) onClick(ctx context.Context, c Click) error {
	w.cfg.Renderer.Close(c.Tag)

	if c.Action == ActionDismiss {
		return nil
	}

	target := c.Data.URL
	if target == "" {
		target = "/"
	}

	if w.cfg.Windows.Focus(target) {
		return nil
	}

	if err := w.cfg.Windows.Open(target); err != nil {
		return fmt.Errorf("open window: %w", err)
	}

	return nil
}

// onSync replays the queue. Each record is rendered if it never was, then
// confirmed; confirmed records are removed, the rest stay queued.
func (w *Worker) onSync(ctx context.Context) error {
	records, err := w.cfg.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	var failed []error
	for _, rec := range records {
		if err := w.syncRecord(ctx, rec); err != nil {
			failed = append(failed, err)
		}
	}

	w.observeQueue(ctx)

	return errors.Join(failed...)
}

func (w *Worker) syncRecord(ctx context.Context, rec model.CachedRecord) error {
	if !rec.Shown {
		if err := w.cfg.Renderer.Show(ctx, rec.Payload); err == nil {
			rec.Shown = true
		}
	}

	var err error
	if w.cfg.Confirmer != nil {
		err = w.cfg.Confirmer.Confirm(ctx, rec)
	}

	if err == nil {
		metrics.BoundarySyncs.WithLabelValues("confirmed").Inc()
		return w.cfg.Store.Delete(ctx, rec.ID)
	}

	rec.Attempts++
	rec.LastError = err.Error()
	if putErr := w.cfg.Store.Put(ctx, rec); putErr != nil {
		zlog.Logger.Error().Err(putErr).Str("record_id", rec.ID).Msg("failed to update record")
	}

	metrics.BoundarySyncs.WithLabelValues("failed").Inc()

	syncErr := &model.SyncError{RecordID: rec.ID, Err: err}
	zlog.Logger.Warn().Err(syncErr).Int("attempts", rec.Attempts).Msg("sync failed, record stays queued")

	return syncErr
}

func (w *Worker) onCleanup(ctx context.Context) error {
	records, err := w.cfg.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	cutoff := w.now().Add(-w.cfg.Retention)
	removed := 0
	for _, rec := range records {
		if rec.EnqueuedAt.Before(cutoff) {
			if err := w.cfg.Store.Delete(ctx, rec.ID); err != nil {
				return err
			}
			removed++
		}
	}

	if removed > 0 {
		zlog.Logger.Info().Int("removed", removed).Msg("expired push records pruned")
	}
	w.observeQueue(ctx)

	return nil
}

func (w *Worker) onMessage(ctx context.Context, req Request) {
	resp := Response{ID: req.ID, Type: req.Type}

	switch req.Type {
	case MsgGetNotifications:
		resp.Records, resp.Err = w.cfg.Store.List(ctx)
	case MsgClearNotifications:
		resp.Closed = w.cfg.Renderer.CloseAll()
	case MsgCacheNotification:
		if req.Payload == nil {
			resp.Err = model.NewValidationError("payload", "required")
			break
		}
		resp.Err = w.cfg.Store.Put(ctx, w.record(*req.Payload))
		w.observeQueue(ctx)
	case MsgSkipWaiting:
		if w.lifecycle != nil {
			resp.Err = w.lifecycle.skipWaiting(w)
		}
	default:
		resp.Err = fmt.Errorf("unknown message type %q", req.Type)
	}

	if req.Reply != nil {
		req.Reply <- resp
	}
}

func (w *Worker) record(p model.PushPayload) model.CachedRecord {
	id := p.Data.PrimaryKey
	if id == "" {
		id = uuid.NewString()
	}

	return model.CachedRecord{ID: id, Payload: p, EnqueuedAt: w.now().UTC()}
}

func (w *Worker) observeQueue(ctx context.Context) {
	if records, err := w.cfg.Store.List(ctx); err == nil {
		metrics.BoundaryQueued.Set(float64(len(records)))
	}
}

func decodePayload(data []byte) (model.PushPayload, error) {
	var p model.PushPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			return model.PushPayload{Title: "New notification", Data: model.PushData{URL: "/"}}, err
		}
	}

	if p.Title == "" {
		p.Title = "New notification"
	}
	if p.Data.URL == "" {
		p.Data.URL = "/"
	}

	return p, nil
}
