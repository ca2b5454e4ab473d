package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"go.uber.org/zap"
)

const sessionPrefix = "session:"

// SessionStore keeps one JSON session per chat with a sliding TTL.
// It never returns errors: a broken store must not block bot replies.
type SessionStore struct {
	store *Store
	ttl   time.Duration
	lang  models.Language
	log   *zap.Logger
}

func NewSessionStore(store *Store, ttl time.Duration, fallback models.Language, log *zap.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{store: store, ttl: ttl, lang: fallback, log: log}
}

func sessionKey(chatID string) string {
	return sessionPrefix + chatID
}

// Get returns the stored session, or a fresh default one when it is missing,
// expired or unreadable.
func (s *SessionStore) Get(ctx context.Context, chatID string) *session.Session {
	raw, err := s.store.rdb.Get(ctx, sessionKey(chatID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Error("session get failed", zap.String("chat_id", chatID), zap.Error(err))
		}
		return session.New(chatID, s.lang)
	}

	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.log.Warn("session decode failed, starting fresh", zap.String("chat_id", chatID), zap.Error(err))
		return session.New(chatID, s.lang)
	}
	sess.ChatID = chatID
	if _, ok := models.ParseLanguage(string(sess.Language)); !ok {
		sess.Language = s.lang
	}
	return &sess
}

// Put overwrites the session and restarts its TTL.
func (s *SessionStore) Put(ctx context.Context, chatID string, sess *session.Session) {
	if strings.TrimSpace(chatID) == "" || sess == nil {
		s.log.Warn("session put skipped: empty chat id")
		return
	}
	sess.ChatID = chatID
	b, err := json.Marshal(sess)
	if err != nil {
		s.log.Error("session encode failed", zap.String("chat_id", chatID), zap.Error(err))
		return
	}
	if err := s.store.rdb.Set(ctx, sessionKey(chatID), b, s.ttl).Err(); err != nil {
		s.log.Error("session put failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}

func (s *SessionStore) Clear(ctx context.Context, chatID string) {
	if strings.TrimSpace(chatID) == "" {
		return
	}
	if err := s.store.rdb.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		s.log.Error("session clear failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}
