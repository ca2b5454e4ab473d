package delivery

import (
	"context"
	"time"

	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"go.uber.org/zap"
)

type SessionStore interface {
	Get(ctx context.Context, chatID string) *session.Session
	Put(ctx context.Context, chatID string, s *session.Session)
}

// Processor sends one job and records the message in the chat's session so the
// next bot render edits it in place.
type Processor struct {
	sessions  SessionStore
	transport chat.Transport
	delay     time.Duration
	log       *zap.Logger
}

func NewProcessor(sessions SessionStore, transport chat.Transport, delay time.Duration, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{sessions: sessions, transport: transport, delay: delay, log: log}
}

func (p *Processor) Process(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s := p.sessions.Get(ctx, job.ChatID)
	id, err := p.transport.Send(ctx, job.ChatID, job.Text, job.Extras)
	if err != nil {
		return err
	}

	s.Track(id, job.Text, job.Extras.Fingerprint())
	if job.Credits != nil {
		s.Credits = *job.Credits
	}
	p.sessions.Put(ctx, job.ChatID, s)

	p.log.Debug("delivered",
		zap.String("job_id", job.ID),
		zap.String("chat_id", job.ChatID),
		zap.Int("message_id", id),
	)

	// stay under the transport's per-bot send rate
	return sleep(ctx, p.delay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
