package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/common"
	"github.com/suPer8Hu/icebreaker-bot/internal/events"
	"github.com/suPer8Hu/icebreaker-bot/internal/httpapi/middleware"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"go.uber.org/zap"
)

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u chat.Update)
}

type CallbackAnswerer interface {
	AnswerCallback(ctx context.Context, callbackID string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic events.Topic, payload any) error
}

type TaskReader interface {
	Get(ctx context.Context, requestID string) (*models.GenerationTask, error)
}

type Handler struct {
	Bot           UpdateHandler
	Callbacks     CallbackAnswerer
	Events        EventPublisher
	Tasks         TaskReader
	WebhookSecret string
	Log           *zap.Logger
}

func NewHandler(bot UpdateHandler, callbacks CallbackAnswerer, pub EventPublisher, tasks TaskReader, webhookSecret string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Bot:           bot,
		Callbacks:     callbacks,
		Events:        pub,
		Tasks:         tasks,
		WebhookSecret: webhookSecret,
		Log:           log,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func fail(c *gin.Context, status, code int, msg string) {
	common.Fail(c, status, code, msg)
}

func badRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, 40000, msg)
}
