package feed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/debt-notifier/internal/bus"
	"github.com/aliskhannn/debt-notifier/internal/middlewares"
	"github.com/aliskhannn/debt-notifier/internal/model"
)

func TestHandler_StreamsOwnEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)

	b := bus.New(0)
	e := gin.New()
	e.GET("/feed", middlewares.Owner(), NewHandler(b).Stream)

	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed?user_id=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the subscription is registered right after the upgrade completes
	time.Sleep(100 * time.Millisecond)

	b.Publish(bus.Event{Topic: bus.TopicInApp, UserID: "u2", Notification: &model.Notification{Title: "not mine"}})
	b.Publish(bus.Event{Topic: bus.TopicInApp, UserID: "u1", Notification: &model.Notification{Title: "mine"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var got bus.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, bus.TopicInApp, got.Topic)
	assert.Equal(t, "u1", got.UserID)
	require.NotNil(t, got.Notification)
	assert.Equal(t, "mine", got.Notification.Title)
}
