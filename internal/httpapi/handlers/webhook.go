package handlers

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/common"
	"github.com/suPer8Hu/icebreaker-bot/internal/telegram"
	"go.uber.org/zap"
)

const (
	webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"
	maxUpdateBody       = 1 << 20
)

// TelegramWebhook feeds one Telegram update to the bot. It always answers 200
// for well-formed requests so Telegram does not redeliver. Without a
// configured secret every call is refused.
func (h *Handler) TelegramWebhook(c *gin.Context) {
	if h.WebhookSecret == "" {
		fail(c, http.StatusForbidden, 40301, "webhook secret not configured")
		return
	}
	got := c.GetHeader(webhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.WebhookSecret)) != 1 {
		fail(c, http.StatusUnauthorized, 40102, "bad webhook secret")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUpdateBody))
	if err != nil {
		badRequest(c, "unreadable body")
		return
	}
	u, ok, err := telegram.DecodeUpdate(body)
	if err != nil {
		badRequest(c, "invalid update")
		return
	}
	if !ok {
		common.OK(c, nil)
		return
	}

	ctx := c.Request.Context()
	if u.Kind == chat.KindAction && u.CallbackID != "" && h.Callbacks != nil {
		if err := h.Callbacks.AnswerCallback(ctx, u.CallbackID); err != nil {
			h.Log.Debug("answer callback failed", zap.String("chat_id", u.ChatID), zap.Error(err))
		}
	}
	h.Bot.HandleUpdate(ctx, u)
	common.OK(c, nil)
}
