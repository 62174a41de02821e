package push

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/pkg/fcm"
)

func TestBuildPayload(t *testing.T) {
	n := model.Notification{
		ID:       uuid.New(),
		UserID:   "u1",
		Title:    "Payment Due",
		Message:  "$500 due tomorrow",
		Type:     model.TypePaymentDue,
		Priority: model.PriorityUrgent,
		Actions: []model.Action{
			{Label: "Pay", Action: "pay"},
			{Label: "Later", Action: "snooze"},
			{Label: "Dismiss", Action: "dismiss"},
		},
	}

	p := BuildPayload(n, false, PayloadOptions{Icon: "/icon.png", Badge: "/badge.png", BaseURL: "https://app.example/"})

	assert.Equal(t, "Payment Due", p.Title)
	assert.Equal(t, "$500 due tomorrow", p.Body)
	assert.Equal(t, "payment_due", p.Tag)
	assert.True(t, p.RequireInteraction)
	assert.False(t, p.Silent)
	assert.Len(t, p.Actions, 2)
	assert.Equal(t, "https://app.example/payments?id="+n.ID.String(), p.Data.URL)
	assert.Equal(t, n.ID.String(), p.Data.PrimaryKey)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"requireInteraction":true`)
	assert.Contains(t, string(raw), `"primaryKey"`)
}

func TestBuildPayload_LowPriorityIsSilent(t *testing.T) {
	p := BuildPayload(model.Notification{ID: uuid.New(), Type: model.TypeInfo, Priority: model.PriorityLow}, false, PayloadOptions{})

	assert.True(t, p.Silent)
	assert.False(t, p.RequireInteraction)
	assert.Contains(t, p.Data.URL, "/notifications?id=")
}

type fakeReceiver struct {
	endpoint string
	data     []byte
	err      error
}

func (f *fakeReceiver) Push(_ context.Context, endpoint string, data []byte) error {
	f.endpoint, f.data = endpoint, data
	return f.err
}

func TestLocalTransport_Send(t *testing.T) {
	r := &fakeReceiver{}
	tr := NewLocalTransport(r)

	err := tr.Send(context.Background(), model.PushSubscription{Endpoint: "local://laptop"}, model.PushPayload{Title: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "local://laptop", r.endpoint)

	var got model.PushPayload
	require.NoError(t, json.Unmarshal(r.data, &got))
	assert.Equal(t, "Hi", got.Title)

	r.err = model.ErrEndpointExpired
	err = tr.Send(context.Background(), model.PushSubscription{Endpoint: "local://gone"}, model.PushPayload{})
	assert.ErrorIs(t, err, model.ErrEndpointExpired)
}

type fakeFCM struct {
	token string
	n     fcm.Notification
	err   error
}

func (f *fakeFCM) Send(_ context.Context, token string, n fcm.Notification) (string, error) {
	f.token, f.n = token, n
	return "msg-1", f.err
}

func TestFCMTransport_Send(t *testing.T) {
	client := &fakeFCM{}
	tr := NewFCMTransport(client)

	payload := model.PushPayload{Title: "Hi", Data: model.PushData{URL: "https://app/x", PrimaryKey: "42"}}
	require.NoError(t, tr.Send(context.Background(), model.PushSubscription{Endpoint: "token-1"}, payload))
	assert.Equal(t, "token-1", client.token)
	assert.Equal(t, "https://app/x", client.n.Link)
	assert.Equal(t, "42", client.n.Data["primaryKey"])

	client.err = fcm.ErrUnregistered
	err := tr.Send(context.Background(), model.PushSubscription{Endpoint: "token-1"}, payload)
	assert.ErrorIs(t, err, model.ErrEndpointExpired)

	client.err = errors.New("unavailable")
	err = tr.Send(context.Background(), model.PushSubscription{Endpoint: "token-1"}, payload)
	assert.NotErrorIs(t, err, model.ErrEndpointExpired)
}
