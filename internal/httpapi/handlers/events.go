package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/icebreaker-bot/internal/common"
	"github.com/suPer8Hu/icebreaker-bot/internal/events"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"go.uber.org/zap"
)

type generationCompletedReq struct {
	RequestID  string `json:"request_id"`
	UserID     string `json:"user_id" binding:"required"`
	ChatID     string `json:"chat_id"`
	CategoryID string `json:"category_id" binding:"required"`
	Name       string `json:"name"`
}

func (h *Handler) GenerationCompleted(c *gin.Context) {
	var req generationCompletedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user_id and category_id required")
		return
	}
	ev := events.GenerationCompletedEvent{
		RequestID:  req.RequestID,
		UserID:     req.UserID,
		ChatID:     req.ChatID,
		CategoryID: req.CategoryID,
		Name:       strings.TrimSpace(req.Name),
	}
	if err := h.Events.Publish(c.Request.Context(), events.GenerationCompleted, ev); err != nil {
		h.Log.Error("publish generation completed", zap.String("user_id", req.UserID), zap.Error(err))
		fail(c, http.StatusInternalServerError, 50001, "failed to notify")
		return
	}
	common.OK(c, gin.H{"accepted": true})
}

type creditsUpdatedReq struct {
	UserID  string `json:"user_id"`
	ChatID  string `json:"chat_id"`
	Credits *int   `json:"credits" binding:"required,min=0"`
}

func (h *Handler) CreditsUpdated(c *gin.Context) {
	var req creditsUpdatedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "credits must be a non-negative number")
		return
	}
	if req.UserID == "" && req.ChatID == "" {
		badRequest(c, "user_id or chat_id required")
		return
	}
	ev := events.CreditsUpdatedEvent{UserID: req.UserID, ChatID: req.ChatID, Credits: *req.Credits}
	if err := h.Events.Publish(c.Request.Context(), events.CreditsUpdated, ev); err != nil {
		h.Log.Error("publish credits updated", zap.String("user_id", req.UserID), zap.Error(err))
		fail(c, http.StatusInternalServerError, 50001, "failed to notify")
		return
	}
	common.OK(c, gin.H{"accepted": true})
}

// GenerationStatus reports a generation task to the user who started it.
func (h *Handler) GenerationStatus(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	task, err := h.Tasks.Get(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			fail(c, http.StatusNotFound, 40401, "generation not found")
			return
		}
		h.Log.Error("load generation task", zap.Error(err))
		fail(c, http.StatusInternalServerError, 20001, "redis error")
		return
	}
	if task.UserID != uid {
		fail(c, http.StatusForbidden, 40301, "forbidden")
		return
	}
	common.OK(c, task)
}
