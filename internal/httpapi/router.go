package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suPer8Hu/icebreaker-bot/internal/common"
	"github.com/suPer8Hu/icebreaker-bot/internal/httpapi/handlers"
	"github.com/suPer8Hu/icebreaker-bot/internal/httpapi/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *handlers.Handler, jwtSecret string, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// telegram (shared secret header)
	r.POST("/telegram/webhook", h.TelegramWebhook)

	// events API (JWT required)
	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(jwtSecret))
	authGroup.POST("/events/generation-completed", h.GenerationCompleted)
	authGroup.POST("/events/credits-updated", h.CreditsUpdated)
	authGroup.GET("/generation/:request_id", h.GenerationStatus)
	return r
}
