package boundary

import (
	"context"
	"fmt"
	"sync"

	"github.com/wb-go/wbf/zlog"
)

// Registration owns the installed worker versions and their caches. At most
// one version is active and at most one waits to replace it.
type Registration struct {
	ctx    context.Context
	cfg    Config
	caches *CacheStorage

	mu      sync.Mutex
	active  *Worker
	waiting *Worker
}

// NewRegistration creates an empty registration. Worker loops stop with ctx.
func NewRegistration(ctx context.Context, cfg Config) *Registration {
	return &Registration{ctx: ctx, cfg: cfg, caches: NewCacheStorage()}
}

func (r *Registration) Caches() *CacheStorage {
	return r.caches
}

// Install starts version and pre-caches its offline shell. The first version
// activates at once; later ones wait for SKIP_WAITING.
func (r *Registration) Install(version string, shell map[string][]byte) (*Worker, error) {
	if version == "" {
		return nil, fmt.Errorf("install: empty version")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil && r.active.version == version {
		return r.active, nil
	}

	w := newWorker(version, r.cfg, r)

	cache := r.caches.Open(ShellCacheName(version))
	for path, body := range shell {
		cache.Put(path, body)
	}

	w.start(r.ctx)

	if r.active == nil {
		r.activate(w)
		return w, nil
	}

	if r.waiting != nil {
		r.waiting.retire()
		r.caches.Delete(ShellCacheName(r.waiting.version))
	}
	r.waiting = w
	w.setState(StateWaiting)

	zlog.Logger.Info().Str("version", version).Str("active", r.active.version).Msg("boundary version waiting")

	return w, nil
}

func (r *Registration) Active() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.active
}

func (r *Registration) Waiting() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.waiting
}

func (r *Registration) skipWaiting(w *Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.waiting != w {
		return nil
	}

	r.activate(w)
	return nil
}

// activate must be called with r.mu held.
func (r *Registration) activate(w *Worker) {
	prev := r.active

	r.active = w
	if r.waiting == w {
		r.waiting = nil
	}
	w.setState(StateActive)

	removed := r.caches.prune(ShellCacheName(w.version))

	if prev != nil {
		prev.retire()
	}

	zlog.Logger.Info().Str("version", w.version).Strs("removed_caches", removed).Msg("boundary version activated")
}
