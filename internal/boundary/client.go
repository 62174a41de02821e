package boundary

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// Client is the main-context handle of a device's boundary. It also plays
// the push platform for the local transport: it issues endpoints and turns
// pushes to them into push events.
type Client struct {
	reg      *Registration
	deviceID string
	now      func() time.Time

	mu        sync.RWMutex
	endpoints map[string]model.PushSubscription // by endpoint
}

func NewClient(reg *Registration, deviceID string) *Client {
	return &Client{
		reg:       reg,
		deviceID:  deviceID,
		now:       time.Now,
		endpoints: make(map[string]model.PushSubscription),
	}
}

func (c *Client) active() (*Worker, error) {
	w := c.reg.Active()
	if w == nil {
		return nil, model.ErrBoundaryUnavailable
	}
	return w, nil
}

// request posts a message to w and waits for the reply with the same id.
func (c *Client) request(ctx context.Context, w *Worker, t MessageType, p *model.PushPayload) (Response, error) {
	req := Request{ID: uuid.New(), Type: t, Payload: p, Reply: make(chan Response, 1)}

	if err := w.post(ctx, event{kind: eventMessage, req: req}); err != nil {
		return Response{}, err
	}

	select {
	case resp := <-req.Reply:
		if resp.ID != req.ID {
			return Response{}, fmt.Errorf("reply %s does not match request %s", resp.ID, req.ID)
		}
		return resp, resp.Err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// GetNotifications returns the queued records.
func (c *Client) GetNotifications(ctx context.Context) ([]model.CachedRecord, error) {
	w, err := c.active()
	if err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, w, MsgGetNotifications, nil)
	return resp.Records, err
}

// ClearNotifications closes every shown notification and returns how many were closed.
func (c *Client) ClearNotifications(ctx context.Context) (int, error) {
	w, err := c.active()
	if err != nil {
		return 0, err
	}

	resp, err := c.request(ctx, w, MsgClearNotifications, nil)
	return resp.Closed, err
}

// CacheNotification queues p for replay on the next sync.
func (c *Client) CacheNotification(ctx context.Context, p model.PushPayload) error {
	w, err := c.active()
	if err != nil {
		return err
	}

	_, err = c.request(ctx, w, MsgCacheNotification, &p)
	return err
}

// SkipWaiting activates the waiting version, if any.
func (c *Client) SkipWaiting(ctx context.Context) error {
	w := c.reg.Waiting()
	if w == nil {
		var err error
		if w, err = c.active(); err != nil {
			return err
		}
	}

	_, err := c.request(ctx, w, MsgSkipWaiting, nil)
	return err
}

// Sync fires a sync event.
func (c *Client) Sync(ctx context.Context) error {
	w, err := c.active()
	if err != nil {
		return err
	}

	return w.post(ctx, event{kind: eventSync})
}

// Cleanup fires the periodic cleanup event.
func (c *Client) Cleanup(ctx context.Context) error {
	w, err := c.active()
	if err != nil {
		return err
	}

	return w.post(ctx, event{kind: eventCleanup})
}

// Click fires a notificationclick event.
func (c *Client) Click(ctx context.Context, click Click) error {
	w, err := c.active()
	if err != nil {
		return err
	}

	return w.post(ctx, event{kind: eventClick, click: click})
}

// Push delivers data to the device behind endpoint. Unknown endpoints
// report ErrEndpointExpired.
func (c *Client) Push(ctx context.Context, endpoint string, data []byte) error {
	c.mu.RLock()
	_, ok := c.endpoints[endpoint]
	c.mu.RUnlock()

	if !ok {
		return model.ErrEndpointExpired
	}

	w, err := c.active()
	if err != nil {
		return err
	}

	return w.post(ctx, event{kind: eventPush, data: data})
}

// Subscribe issues an endpoint with fresh keys for deviceID. It replaces any
// earlier endpoint of the device.
func (c *Client) Subscribe(_ context.Context, deviceID, publicKey string) (*model.PushSubscription, error) {
	if publicKey == "" {
		return nil, model.NewValidationError("public_key", "required")
	}
	if deviceID == "" {
		deviceID = c.deviceID
	}

	p256dh, err := randomKey(65)
	if err != nil {
		return nil, err
	}
	auth, err := randomKey(16)
	if err != nil {
		return nil, err
	}

	sub := model.PushSubscription{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Endpoint:  fmt.Sprintf("local://%s/%s", deviceID, uuid.NewString()),
		Keys:      model.SubscriptionKeys{P256dh: p256dh, Auth: auth},
		CreatedAt: c.now().UTC(),
	}

	c.mu.Lock()
	for ep, s := range c.endpoints {
		if s.DeviceID == deviceID {
			delete(c.endpoints, ep)
		}
	}
	c.endpoints[sub.Endpoint] = sub
	c.mu.Unlock()

	return &sub, nil
}

// Unsubscribe drops the endpoint of deviceID.
func (c *Client) Unsubscribe(_ context.Context, deviceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ep, s := range c.endpoints {
		if s.DeviceID == deviceID {
			delete(c.endpoints, ep)
		}
	}

	return nil
}

func randomKey(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
