package boundary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	d, err := Start(ctx, DeviceConfig{
		Version:    "v1",
		DeviceID:   "laptop",
		BackendURL: backend.URL,
		Shell:      map[string][]byte{ShellEntry: []byte("<html>offline</html>")},
	})
	require.NoError(t, err)

	require.NotNil(t, d.Registration.Active())
	assert.Equal(t, "v1", d.Registration.Active().Version())

	shell, ok := d.Registration.Caches().Get(ShellCacheName("v1"))
	require.True(t, ok)
	body, ok := shell.Match(ShellEntry)
	require.True(t, ok)
	assert.Equal(t, "<html>offline</html>", string(body))

	assert.True(t, d.Monitor.Check(ctx))

	sub, err := d.Client.Subscribe(ctx, "", "public-key")
	require.NoError(t, err)
	assert.Equal(t, "laptop", sub.DeviceID)
}

func TestStart_RequiresDevice(t *testing.T) {
	_, err := Start(context.Background(), DeviceConfig{Version: "v1"})
	assert.Error(t, err)
}

func TestStart_RequiresVersion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := Start(ctx, DeviceConfig{DeviceID: "laptop"})
	assert.Error(t, err)
}
