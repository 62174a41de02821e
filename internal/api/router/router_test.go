package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/aliskhannn/debt-notifier/internal/api/handlers/feed"
	"github.com/aliskhannn/debt-notifier/internal/api/handlers/notification"
	"github.com/aliskhannn/debt-notifier/internal/api/handlers/preference"
	"github.com/aliskhannn/debt-notifier/internal/api/handlers/push"
	"github.com/aliskhannn/debt-notifier/internal/bus"
	notifmocks "github.com/aliskhannn/debt-notifier/internal/mocks/api/handlers/notification"
	prefmocks "github.com/aliskhannn/debt-notifier/internal/mocks/api/handlers/preference"
	pushmocks "github.com/aliskhannn/debt-notifier/internal/mocks/api/handlers/push"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

func setupRouter(t *testing.T) (http.Handler, *notifmocks.MocknotificationService) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	notifs := notifmocks.NewMocknotificationService(ctrl)
	e := New(Handlers{
		Notification: notification.NewHandler(notifs),
		Preference:   preference.NewHandler(prefmocks.NewMockpreferenceService(ctrl)),
		Push:         push.NewHandler(pushmocks.NewMocksubscriptionManager(ctrl), pushmocks.NewMocknotificationReader(ctrl), nil),
		Feed:         feed.NewHandler(bus.New(0)),
	})

	return e, notifs
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_RequiresOwner(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notify/stats", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_OwnerFromHeaderAndQuery(t *testing.T) {
	r, notifs := setupRouter(t)

	notifs.EXPECT().Stats(gomock.Any(), "u1").Return(model.Stats{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/notify/stats", nil)
	req.Header.Set("X-User-ID", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	id := uuid.New()
	notifs.EXPECT().MarkRead(gomock.Any(), "u2", id).Return(nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/notify/"+id.String()+"/read?user_id=u2", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/notify/", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
