package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/debt-notifier/internal/api/handlers/feed"
	"github.com/aliskhannn/debt-notifier/internal/api/handlers/notification"
	"github.com/aliskhannn/debt-notifier/internal/api/handlers/preference"
	"github.com/aliskhannn/debt-notifier/internal/api/handlers/push"
	"github.com/aliskhannn/debt-notifier/internal/metrics"
	"github.com/aliskhannn/debt-notifier/internal/middlewares"
)

// Handlers groups the API handlers mounted by New.
type Handlers struct {
	Notification *notification.Handler
	Preference   *preference.Handler
	Push         *push.Handler
	Feed         *feed.Handler
}

func New(h Handlers) *ginext.Engine {
	e := ginext.New()
	e.Use(middlewares.CORSMiddleware())
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	e.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	e.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := e.Group("/api/notify", middlewares.Owner())
	{
		api.POST("/", h.Notification.Create)
		api.GET("/", h.Notification.List)
		api.GET("/stats", h.Notification.Stats)

		api.GET("/preferences", h.Preference.Get)
		api.PUT("/preferences", h.Preference.Update)

		api.POST("/push/permission", h.Push.Permission)
		api.POST("/push/subscriptions", h.Push.Subscribe)
		api.DELETE("/push/subscriptions", h.Push.Unsubscribe)
		api.POST("/push/confirm", h.Push.Confirm)

		api.GET("/feed", h.Feed.Stream)

		api.GET("/:id", h.Notification.Get)
		api.PUT("/:id/read", h.Notification.MarkRead)
		api.PUT("/:id/archive", h.Notification.Archive)
		api.DELETE("/:id", h.Notification.Delete)
	}

	return e
}
