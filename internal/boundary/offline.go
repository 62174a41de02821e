package boundary

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wb-go/wbf/zlog"
)

// ShellEntry is the cached document served to navigations while offline.
const ShellEntry = "/index.html"

// OfflineHandler serves requests from the network and answers navigations
// from the active shell cache when the network fails.
type OfflineHandler struct {
	reg      *Registration
	upstream string
	client   *http.Client
}

func NewOfflineHandler(reg *Registration, upstream string, client *http.Client) *OfflineHandler {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &OfflineHandler{reg: reg, upstream: strings.TrimRight(upstream, "/"), client: client}
}

func (h *OfflineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := http.NewRequestWithContext(r.Context(), r.Method, h.upstream+r.URL.RequestURI(), r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Header = r.Header.Clone()

	resp, err := h.client.Do(req)
	if err != nil {
		if isNavigation(r) && h.serveShell(w) {
			return
		}

		zlog.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("network request failed")
		http.Error(w, "offline", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func (h *OfflineHandler) serveShell(w http.ResponseWriter) bool {
	active := h.reg.Active()
	if active == nil {
		return false
	}

	cache, ok := h.reg.Caches().Get(ShellCacheName(active.Version()))
	if !ok {
		return false
	}

	body, ok := cache.Match(ShellEntry)
	if !ok {
		return false
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)

	return true
}

func isNavigation(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}
