package boundary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

func TestRegistration_Lifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := NewRegistration(ctx, Config{})
	client := NewClient(reg, "laptop")

	v1, err := reg.Install("v1", map[string][]byte{ShellEntry: []byte("v1")})
	require.NoError(t, err)
	assert.Equal(t, StateActive, v1.State())

	v2, err := reg.Install("v2", map[string][]byte{ShellEntry: []byte("v2")})
	require.NoError(t, err)
	assert.Equal(t, StateWaiting, v2.State())
	assert.Equal(t, v1, reg.Active())
	assert.Equal(t, []string{"shell-v1", "shell-v2"}, reg.Caches().Keys())

	require.NoError(t, client.SkipWaiting(ctx))

	assert.Equal(t, v2, reg.Active())
	assert.Nil(t, reg.Waiting())
	assert.Equal(t, StateActive, v2.State())
	assert.Equal(t, StateRedundant, v1.State())
	assert.Equal(t, []string{"shell-v2"}, reg.Caches().Keys())

	require.Eventually(t, func() bool {
		return v1.post(ctx, event{kind: eventSync}) == model.ErrBoundaryUnavailable
	}, time.Second, 10*time.Millisecond)
}

func TestRegistration_SkipWaitingWithoutWaitingVersion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := NewRegistration(ctx, Config{})
	v1, err := reg.Install("v1", nil)
	require.NoError(t, err)

	require.NoError(t, NewClient(reg, "laptop").SkipWaiting(ctx))
	assert.Equal(t, v1, reg.Active())
}

func TestRegistration_ReinstallSameVersion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := NewRegistration(ctx, Config{})
	v1, err := reg.Install("v1", nil)
	require.NoError(t, err)

	again, err := reg.Install("v1", nil)
	require.NoError(t, err)
	assert.Same(t, v1, again)
	assert.Nil(t, reg.Waiting())
}

func TestClient_NoActiveVersion(t *testing.T) {
	reg := NewRegistration(context.Background(), Config{})

	_, err := NewClient(reg, "laptop").GetNotifications(context.Background())
	assert.ErrorIs(t, err, model.ErrBoundaryUnavailable)
}
