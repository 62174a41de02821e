// Package feed streams bus events of one user over a websocket.
package feed

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/bus"
	"github.com/aliskhannn/debt-notifier/internal/middlewares"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type subscriber interface {
	Subscribe(topics ...bus.Topic) (<-chan bus.Event, func())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	bus subscriber
}

func NewHandler(b subscriber) *Handler {
	return &Handler{bus: b}
}

// Stream upgrades the request and forwards in-app, change and dispatch
// events of the acting user until either side closes.
func (h *Handler) Stream(c *ginext.Context) {
	userID := middlewares.UserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := h.bus.Subscribe(bus.TopicInApp, bus.TopicChanged, bus.TopicDispatched)
	defer cancel()

	zlog.Logger.Info().Str("user_id", userID).Msg("feed connected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)

		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			zlog.Logger.Info().Str("user_id", userID).Msg("feed disconnected")
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.UserID != userID {
				continue
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				zlog.Logger.Warn().Err(err).Str("user_id", userID).Msg("failed to write feed event")
				return
			}
		}
	}
}
