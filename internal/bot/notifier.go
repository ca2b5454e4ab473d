package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/suPer8Hu/icebreaker-bot/internal/delivery"
	"github.com/suPer8Hu/icebreaker-bot/internal/events"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"go.uber.org/zap"
)

type SessionReader interface {
	Get(ctx context.Context, chatID string) *session.Session
}

// Notifier turns domain events into queued chat messages.
type Notifier struct {
	outbox   Outbox
	users    UserRepository
	sessions SessionReader
	log      *zap.Logger
}

func NewNotifier(outbox Outbox, users UserRepository, sessions SessionReader, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{outbox: outbox, users: users, sessions: sessions, log: log}
}

// Register subscribes the notifier and returns a function that undoes it.
func (n *Notifier) Register(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(events.GenerationCompleted, n.onGenerationCompleted),
		bus.Subscribe(events.GenerationFailed, n.onGenerationFailed),
		bus.Subscribe(events.CreditsUpdated, n.onCreditsUpdated),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (n *Notifier) onGenerationCompleted(ctx context.Context, payload any) error {
	ev, ok := payload.(events.GenerationCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	chatID, err := n.chatFor(ctx, ev.ChatID, ev.UserID)
	if err != nil {
		return err
	}
	l := n.sessions.Get(ctx, chatID).Language
	return n.outbox.Enqueue(ctx, delivery.Job{
		ChatID: chatID,
		Text:   T(l, "generate.completed", ev.Name),
		Extras: playKeyboard(l, ev.CategoryID),
	})
}

func (n *Notifier) onGenerationFailed(ctx context.Context, payload any) error {
	ev, ok := payload.(events.GenerationFailedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	chatID, err := n.chatFor(ctx, ev.ChatID, ev.UserID)
	if err != nil {
		return err
	}
	n.log.Info("notifying failed generation", zap.String("request_id", ev.RequestID), zap.String("reason", ev.Reason))
	l := n.sessions.Get(ctx, chatID).Language
	return n.outbox.Enqueue(ctx, delivery.Job{
		ChatID: chatID,
		Text:   T(l, "generate.failed"),
	})
}

func (n *Notifier) onCreditsUpdated(ctx context.Context, payload any) error {
	ev, ok := payload.(events.CreditsUpdatedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	chatID, err := n.chatFor(ctx, ev.ChatID, ev.UserID)
	if err != nil {
		return err
	}
	l := n.sessions.Get(ctx, chatID).Language
	credits := ev.Credits
	return n.outbox.Enqueue(ctx, delivery.Job{
		ChatID:  chatID,
		Text:    T(l, "credits.updated", credits),
		Credits: &credits,
	})
}

// chatFor prefers the chat named by the event and falls back to the user's linked chat.
func (n *Notifier) chatFor(ctx context.Context, chatID, userID string) (string, error) {
	if chatID != "" {
		return chatID, nil
	}
	if userID == "" {
		return "", errors.New("event names neither a chat nor a user")
	}
	u, err := n.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if u.ChatID == nil || *u.ChatID == "" {
		return "", fmt.Errorf("user %s has no linked chat: %w", userID, models.ErrNotFound)
	}
	return *u.ChatID, nil
}
