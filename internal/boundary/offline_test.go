package boundary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := NewRegistration(ctx, Config{})
	_, err := reg.Install("v1", map[string][]byte{ShellEntry: []byte("<html>shell</html>")})
	require.NoError(t, err)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("live " + r.URL.Path))
	}))

	h := NewOfflineHandler(reg, upstream.URL, upstream.Client())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dues", nil)
	req.Header.Set("Accept", "text/html")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "live /dues", rec.Body.String())

	upstream.Close()

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>shell</html>", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notify", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
