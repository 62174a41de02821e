package boundary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// Confirmer tells the backend that a cached record reached the device.
type Confirmer interface {
	Confirm(ctx context.Context, rec model.CachedRecord) error
}

// ConfirmRequest is the body of POST /api/notify/push/confirm.
type ConfirmRequest struct {
	NotificationID string `json:"notification_id"`
	PrimaryKey     string `json:"primary_key"`
	UserID         string `json:"user_id,omitempty"`
	DeviceID       string `json:"device_id,omitempty"`
}

// HTTPConfirmer posts confirmations to the backend. A 404 means the
// notification is gone and counts as confirmed.
type HTTPConfirmer struct {
	baseURL  string
	deviceID string
	client   *http.Client
}

func NewHTTPConfirmer(baseURL, deviceID string, client *http.Client) *HTTPConfirmer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &HTTPConfirmer{baseURL: strings.TrimRight(baseURL, "/"), deviceID: deviceID, client: client}
}

func (c *HTTPConfirmer) Confirm(ctx context.Context, rec model.CachedRecord) error {
	body, err := json.Marshal(ConfirmRequest{
		NotificationID: rec.Payload.Data.NotificationID,
		PrimaryKey:     rec.Payload.Data.PrimaryKey,
		UserID:         rec.Payload.Data.UserID,
		DeviceID:       c.deviceID,
	})
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/notify/push/confirm", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build confirmation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if rec.Payload.Data.UserID != "" {
		req.Header.Set("X-User-ID", rec.Payload.Data.UserID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("confirm record: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode >= 300:
		return fmt.Errorf("confirm record: unexpected status %d", resp.StatusCode)
	}

	return nil
}
