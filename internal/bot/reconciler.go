package bot

import (
	"context"

	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/metrics"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"go.uber.org/zap"
)

type RenderAction string

const (
	RenderNoop   RenderAction = "noop"
	RenderEdited RenderAction = "edited"
	RenderSent   RenderAction = "sent"
	// RenderResent means tracking was reset after a transport error and the retry succeeded.
	RenderResent RenderAction = "resent"
	RenderFailed RenderAction = "failed"
)

// DeleteResult aggregates a best-effort cleanup of old messages.
type DeleteResult struct {
	Attempted int
	Succeeded int
}

type RenderResult struct {
	Action    RenderAction
	MessageID int
	Cleanup   DeleteResult
}

// Reconciler keeps a single live bot message per chat, editing it in place
// when it can and replacing it when it cannot.
type Reconciler struct {
	transport chat.Transport
	log       *zap.Logger
}

func NewReconciler(transport chat.Transport, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{transport: transport, log: log}
}

func (r *Reconciler) Render(ctx context.Context, s *session.Session, text string, extras chat.Extras) RenderResult {
	res := r.render(ctx, s, text, extras)
	metrics.RendersTotal.WithLabelValues(string(res.Action)).Inc()
	return res
}

func (r *Reconciler) render(ctx context.Context, s *session.Session, text string, extras chat.Extras) RenderResult {
	markup := extras.Fingerprint()
	log := r.log.With(zap.String("chat_id", s.ChatID))

	latest, ok := s.LatestMessageID()
	if !ok {
		id, err := r.transport.Send(ctx, s.ChatID, text, extras)
		if err != nil {
			log.Warn("send failed", zap.Error(err))
			return r.resend(ctx, s, text, extras)
		}
		s.Track(id, text, markup)
		return RenderResult{Action: RenderSent, MessageID: id}
	}

	if s.LastMessageText == text && s.LastMarkup == markup {
		return RenderResult{Action: RenderNoop, MessageID: latest}
	}

	err := r.transport.Edit(ctx, s.ChatID, latest, text, extras)
	if err == nil {
		s.LastMessageText = text
		s.LastMarkup = markup
		older := s.BotMessageIDs[:len(s.BotMessageIDs)-1]
		cleanup := r.deleteAll(ctx, s.ChatID, older)
		s.BotMessageIDs = []int{latest}
		return RenderResult{Action: RenderEdited, MessageID: latest, Cleanup: cleanup}
	}
	log.Debug("edit failed, sending a new message", zap.Int("message_id", latest), zap.Error(err))

	old := append([]int(nil), s.BotMessageIDs...)
	id, err := r.transport.Send(ctx, s.ChatID, text, extras)
	if err != nil {
		log.Warn("send after failed edit failed", zap.Error(err))
		res := r.resend(ctx, s, text, extras)
		if res.Action == RenderResent {
			res.Cleanup = r.deleteAll(ctx, s.ChatID, old)
		}
		return res
	}
	s.ResetTracking()
	s.Track(id, text, markup)
	return RenderResult{Action: RenderSent, MessageID: id, Cleanup: r.deleteAll(ctx, s.ChatID, old)}
}

// resend forgets all tracking and tries one more plain send.
func (r *Reconciler) resend(ctx context.Context, s *session.Session, text string, extras chat.Extras) RenderResult {
	s.ResetTracking()
	id, err := r.transport.Send(ctx, s.ChatID, text, extras)
	if err != nil {
		r.log.Error("render gave up", zap.String("chat_id", s.ChatID), zap.Error(err))
		return RenderResult{Action: RenderFailed}
	}
	s.Track(id, text, extras.Fingerprint())
	return RenderResult{Action: RenderResent, MessageID: id}
}

// DeleteMessages removes ids best-effort; failures are logged and counted.
func (r *Reconciler) DeleteMessages(ctx context.Context, chatID string, ids ...int) DeleteResult {
	return r.deleteAll(ctx, chatID, ids)
}

func (r *Reconciler) deleteAll(ctx context.Context, chatID string, ids []int) DeleteResult {
	var res DeleteResult
	for _, id := range ids {
		res.Attempted++
		if err := r.transport.Delete(ctx, chatID, id); err != nil {
			r.log.Debug("delete failed", zap.String("chat_id", chatID), zap.Int("message_id", id), zap.Error(err))
			continue
		}
		res.Succeeded++
	}
	return res
}
