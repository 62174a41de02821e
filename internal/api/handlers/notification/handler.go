package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/api/dto"
	"github.com/aliskhannn/debt-notifier/internal/api/respond"
	"github.com/aliskhannn/debt-notifier/internal/middlewares"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/notification/mock.go -package=mocks
type notificationService interface {
	Create(ctx context.Context, spec model.CreateSpec) (model.Notification, error)
	List(ctx context.Context, userID string, f model.Filter) ([]model.Notification, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (model.Notification, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) error
	Archive(ctx context.Context, userID string, id uuid.UUID) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	Stats(ctx context.Context, userID string) (model.Stats, error)
}

type Handler struct {
	service notificationService
}

func NewHandler(s notificationService) *Handler {
	return &Handler{service: s}
}

func (h *Handler) Create(c *ginext.Context) {
	var req dto.CreateRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	n, err := h.service.Create(c.Request.Context(), req.Spec(middlewares.UserID(c)))
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("title", req.Title).Msg("failed to create notification")
		respond.Error(c.Writer, err)
		return
	}

	respond.Created(c.Writer, n)
}

func (h *Handler) List(c *ginext.Context) {
	f, err := parseFilter(c)
	if err != nil {
		respond.Error(c.Writer, err)
		return
	}

	list, err := h.service.List(c.Request.Context(), middlewares.UserID(c), f)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", middlewares.UserID(c)).Msg("failed to list notifications")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, list)
}

func (h *Handler) Stats(c *ginext.Context) {
	s, err := h.service.Stats(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", middlewares.UserID(c)).Msg("failed to get notification stats")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, s)
}

func (h *Handler) Get(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	n, err := h.service.Get(c.Request.Context(), middlewares.UserID(c), id)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("id", id.String()).Msg("failed to get notification")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, n)
}

func (h *Handler) MarkRead(c *ginext.Context) {
	h.mutate(c, "read", h.service.MarkRead)
}

func (h *Handler) Archive(c *ginext.Context) {
	h.mutate(c, "archived", h.service.Archive)
}

func (h *Handler) Delete(c *ginext.Context) {
	h.mutate(c, "deleted", h.service.Delete)
}

func (h *Handler) mutate(c *ginext.Context, result string, op func(context.Context, string, uuid.UUID) error) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), middlewares.UserID(c), id); err != nil {
		zlog.Logger.Warn().Err(err).Str("id", id.String()).Msgf("failed to mark notification %s", result)
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, "notification "+result)
}

func parseID(c *ginext.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("id", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		zlog.Logger.Warn().Msg("missing id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing id"))
		return uuid.Nil, false
	}

	return id, true
}

// parseFilter reads read, archived, type, q and limit from the query string.
func parseFilter(c *ginext.Context) (model.Filter, error) {
	f := model.Filter{
		ReadState: model.ReadState(strings.ToLower(c.Query("read"))),
		Type:      model.Type(c.Query("type")),
		Query:     c.Query("q"),
	}

	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			return model.Filter{}, model.NewValidationError("archived", "must be a boolean")
		}
		f.Archived = archived
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return model.Filter{}, model.NewValidationError("limit", "must be a non-negative integer")
		}
		f.Limit = limit
	}

	return f, nil
}
