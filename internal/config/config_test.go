package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "")
	t.Setenv("DELIVERY_MAX_ATTEMPTS", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")

	cfg := Load()

	require.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 5, cfg.DeliveryMaxAttempts)
	require.Equal(t, "mysql", cfg.DBDriver)
	require.Contains(t, cfg.DBDSN, "tcp(127.0.0.1:3306)")
	require.Equal(t, "telegram_messages", cfg.RabbitQueue)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "soon")
	t.Setenv("DELIVERY_MAX_ATTEMPTS", "-3")
	t.Setenv("DELIVERY_SEND_DELAY_MS", "250")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "")

	cfg := Load()

	require.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 5, cfg.DeliveryMaxAttempts)
	require.Equal(t, 250*time.Millisecond, cfg.DeliverySendDelay)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, "icebreaker.db", cfg.DBDSN)
}

func TestInsecure(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "")
	cfg := Load()
	require.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	require.Len(t, cfg.Insecure(), 2)

	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "hook")
	require.Empty(t, Load().Insecure())
}
