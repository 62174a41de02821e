package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/api/dto"
	"github.com/aliskhannn/debt-notifier/internal/api/respond"
	"github.com/aliskhannn/debt-notifier/internal/metrics"
	"github.com/aliskhannn/debt-notifier/internal/middlewares"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/push/mock.go -package=mocks
type subscriptionManager interface {
	RecordPermission(ctx context.Context, userID, deviceID string, p model.Permission) error
	Register(ctx context.Context, sub model.PushSubscription) (*model.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID, deviceID string) (bool, error)
}

type notificationReader interface {
	Get(ctx context.Context, userID string, id uuid.UUID) (model.Notification, error)
}

type Handler struct {
	manager       subscriptionManager
	notifications notificationReader
	validator     *validator.Validate
}

func NewHandler(m subscriptionManager, n notificationReader, v *validator.Validate) *Handler {
	return &Handler{manager: m, notifications: n, validator: v}
}

// decode reads the body into req and validates it, writing 400 on failure.
func (h *Handler) decode(c *ginext.Context, req interface{}) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return false
	}

	return true
}

func (h *Handler) Permission(c *ginext.Context) {
	var req dto.PermissionRequest
	if !h.decode(c, &req) {
		return
	}

	userID := middlewares.UserID(c)
	if err := h.manager.RecordPermission(c.Request.Context(), userID, req.DeviceID, req.State); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Str("device_id", req.DeviceID).Msg("failed to record push permission")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, req.State)
}

func (h *Handler) Subscribe(c *ginext.Context) {
	var req dto.SubscriptionRequest
	if !h.decode(c, &req) {
		return
	}

	sub, err := h.manager.Register(c.Request.Context(), model.PushSubscription{
		UserID:   middlewares.UserID(c),
		DeviceID: req.DeviceID,
		Endpoint: req.Endpoint,
		Keys:     req.Keys,
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("device_id", req.DeviceID).Msg("failed to register push subscription")
		respond.Error(c.Writer, err)
		return
	}

	respond.Created(c.Writer, sub)
}

func (h *Handler) Unsubscribe(c *ginext.Context) {
	req := dto.UnsubscribeRequest{DeviceID: c.Query("device_id")}
	if req.DeviceID == "" && !h.decode(c, &req) {
		return
	}

	removed, err := h.manager.Unsubscribe(c.Request.Context(), middlewares.UserID(c), req.DeviceID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("device_id", req.DeviceID).Msg("failed to remove push subscription")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, removed)
}

// Confirm acknowledges a push payload replayed by a device boundary. A
// notification that no longer exists answers 404.
func (h *Handler) Confirm(c *ginext.Context) {
	var req dto.ConfirmRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	id, err := uuid.Parse(req.Target())
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid notification id"))
		return
	}

	userID := middlewares.UserID(c)
	if _, err := h.notifications.Get(c.Request.Context(), userID, id); err != nil {
		respond.Error(c.Writer, err)
		return
	}

	metrics.PushConfirmations.Inc()
	zlog.Logger.Info().Str("id", id.String()).Str("user_id", userID).Str("device_id", req.DeviceID).Msg("push delivery confirmed")

	respond.OK(c.Writer, "confirmed")
}
