package boundary

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"
)

// ConnectivityMonitor probes the backend and fires onOnline when the device
// comes back from offline.
type ConnectivityMonitor struct {
	probeURL string
	client   *http.Client
	onOnline func(ctx context.Context) error

	mu     sync.Mutex
	online bool
	known  bool
}

func NewConnectivityMonitor(backendURL string, client *http.Client, onOnline func(ctx context.Context) error) *ConnectivityMonitor {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	return &ConnectivityMonitor{
		probeURL: strings.TrimRight(backendURL, "/") + "/healthz",
		client:   client,
		onOnline: onOnline,
	}
}

// Check probes once and reports whether the backend is reachable.
func (m *ConnectivityMonitor) Check(ctx context.Context) bool {
	online := m.probe(ctx)

	m.mu.Lock()
	recovered := m.known && !m.online && online
	if m.known && m.online && !online {
		zlog.Logger.Warn().Str("probe", m.probeURL).Msg("boundary offline")
	}
	m.online, m.known = online, true
	m.mu.Unlock()

	if recovered {
		zlog.Logger.Info().Msg("boundary back online, syncing")
		if m.onOnline != nil {
			if err := m.onOnline(ctx); err != nil {
				zlog.Logger.Warn().Err(err).Msg("sync after reconnect failed")
			}
		}
	}

	return online
}

func (m *ConnectivityMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return !m.known || m.online
}

func (m *ConnectivityMonitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode < 500
}
