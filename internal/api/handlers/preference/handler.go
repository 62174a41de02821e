package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/api/respond"
	"github.com/aliskhannn/debt-notifier/internal/middlewares"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/preference/mock.go -package=mocks
type preferenceService interface {
	Get(ctx context.Context, userID string) (model.Preferences, error)
	Set(ctx context.Context, userID string, p model.Preferences) (model.Preferences, error)
}

type Handler struct {
	service preferenceService
}

func NewHandler(s preferenceService) *Handler {
	return &Handler{service: s}
}

func (h *Handler) Get(c *ginext.Context) {
	userID := middlewares.UserID(c)

	p, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to get preferences")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, p)
}

func (h *Handler) Update(c *ginext.Context) {
	userID := middlewares.UserID(c)

	var p model.Preferences
	if err := json.NewDecoder(c.Request.Body).Decode(&p); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	saved, err := h.service.Set(c.Request.Context(), userID, p)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("user_id", userID).Msg("failed to update preferences")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, saved)
}
