// Package client is the Go client of the notifier HTTP API and its live feed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/debt-notifier/internal/api/dto"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

const apiPrefix = "/api/notify"

// Client calls the API on behalf of the user resolved for each request.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Result   json.RawMessage    `json:"result"`
	Error    string             `json:"error"`
	Category model.Category     `json:"category"`
	Fields   []model.FieldError `json:"fields"`
}

// APIError is an error answer the client could not map to a model error.
type APIError struct {
	StatusCode int
	Message    string
	Category   model.Category
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notifier API error %d: %s", e.StatusCode, e.Message)
}

// do sends body as JSON and decodes the result into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path, userID string, query url.Values, body, out interface{}) error {
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return toError(resp.StatusCode, env, userID, path)
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

func toError(status int, env envelope, userID, path string) error {
	switch status {
	case http.StatusBadRequest:
		if len(env.Fields) > 0 {
			return &model.ValidationError{Fields: env.Fields}
		}
		return model.NewValidationError("request", env.Error)
	case http.StatusNotFound:
		return &model.NotFoundError{Resource: "notification", ID: strings.Trim(path, "/")}
	case http.StatusForbidden:
		return &model.PermissionError{UserID: userID, State: model.PermissionDenied}
	}

	return &APIError{StatusCode: status, Message: env.Error, Category: env.Category}
}

func (c *Client) Create(ctx context.Context, spec model.CreateSpec) (model.Notification, error) {
	var n model.Notification
	err := c.do(ctx, http.MethodPost, "/", spec.UserID, nil, dto.CreateRequest{
		UserID:       spec.UserID,
		Title:        spec.Title,
		Message:      spec.Message,
		Type:         spec.Type,
		Priority:     spec.Priority,
		Channels:     spec.Channels,
		ScheduledFor: spec.ScheduledFor,
		Tags:         spec.Tags,
		Actions:      spec.Actions,
	}, &n)
	return n, err
}

func (c *Client) List(ctx context.Context, userID string, f model.Filter) ([]model.Notification, error) {
	q := url.Values{}
	if f.ReadState != "" {
		q.Set("read", string(f.ReadState))
	}
	if f.Archived {
		q.Set("archived", "true")
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	var list []model.Notification
	err := c.do(ctx, http.MethodGet, "/", userID, q, nil, &list)
	return list, err
}

func (c *Client) Get(ctx context.Context, userID string, id uuid.UUID) (model.Notification, error) {
	var n model.Notification
	err := c.do(ctx, http.MethodGet, "/"+id.String(), userID, nil, nil, &n)
	return n, err
}

func (c *Client) Stats(ctx context.Context, userID string) (model.Stats, error) {
	var s model.Stats
	err := c.do(ctx, http.MethodGet, "/stats", userID, nil, nil, &s)
	return s, err
}

func (c *Client) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	return c.do(ctx, http.MethodPut, "/"+id.String()+"/read", userID, nil, nil, nil)
}

func (c *Client) Archive(ctx context.Context, userID string, id uuid.UUID) error {
	return c.do(ctx, http.MethodPut, "/"+id.String()+"/archive", userID, nil, nil, nil)
}

func (c *Client) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/"+id.String(), userID, nil, nil, nil)
}

func (c *Client) Preferences(ctx context.Context, userID string) (model.Preferences, error) {
	var p model.Preferences
	err := c.do(ctx, http.MethodGet, "/preferences", userID, nil, nil, &p)
	return p, err
}

func (c *Client) UpdatePreferences(ctx context.Context, userID string, p model.Preferences) (model.Preferences, error) {
	var saved model.Preferences
	err := c.do(ctx, http.MethodPut, "/preferences", userID, nil, p, &saved)
	return saved, err
}

// RecordPermission reports the push permission state of a device.
func (c *Client) RecordPermission(ctx context.Context, userID, deviceID string, p model.Permission) error {
	return c.do(ctx, http.MethodPost, "/push/permission", userID, nil,
		dto.PermissionRequest{DeviceID: deviceID, State: p}, nil)
}

// RegisterSubscription hands a subscription created on a device to the backend.
func (c *Client) RegisterSubscription(ctx context.Context, sub model.PushSubscription) (model.PushSubscription, error) {
	var saved model.PushSubscription
	err := c.do(ctx, http.MethodPost, "/push/subscriptions", sub.UserID, nil, dto.SubscriptionRequest{
		DeviceID: sub.DeviceID,
		Endpoint: sub.Endpoint,
		Keys:     sub.Keys,
	}, &saved)
	return saved, err
}

func (c *Client) Unsubscribe(ctx context.Context, userID, deviceID string) (bool, error) {
	var removed bool
	err := c.do(ctx, http.MethodDelete, "/push/subscriptions", userID, url.Values{"device_id": {deviceID}}, nil, &removed)
	return removed, err
}
