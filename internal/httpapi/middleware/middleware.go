package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/icebreaker-bot/internal/auth"
	"github.com/suPer8Hu/icebreaker-bot/internal/common"
	"go.uber.org/zap"
)

const (
	UserIDKey    = "user_id"
	RequestIDKey = "request_id"
	// RequestIDHeader is echoed back when the caller sends one.
	RequestIDHeader = "X-Request-ID"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			var err error
			if id, err = common.NewULID(); err != nil {
				id = "unknown"
			}
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger writes one line per request once it completed.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(RequestIDKey)),
		)
	}
}

func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(RequestIDKey)),
					zap.Stack("stack"),
				)
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// AuthRequired accepts "Authorization: Bearer <jwt>" signed with secret.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			common.Fail(c, http.StatusUnauthorized, 40100, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := auth.ParseJWT(strings.TrimSpace(token), secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
			c.Abort()
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}
