package bot

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/suPer8Hu/icebreaker-bot/internal/delivery"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"go.uber.org/zap"
)

const (
	minGameDescription = 3
	maxGameDescription = 500
)

type helpState struct{ m *Machine }

func (st *helpState) Enter(ctx context.Context, t *turn) error {
	s := t.s
	s.Step = session.StepHelp
	text := T(s.Language, "help.message")
	if s.Authenticated() && s.Credits > 0 {
		text = T(s.Language, "help.message_supporters", s.Credits)
	}
	t.render(ctx, text, helpKeyboard(s.Language, s.Credits))
	return nil
}

func (st *helpState) OnInput(ctx context.Context, t *turn) error {
	t.dropInput(ctx)
	return st.Enter(ctx, t)
}

type suggestionState struct{ m *Machine }

func (st *suggestionState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepSuggestionCreation
	t.render(ctx, T(t.s.Language, "suggestion.prompt"), cancelKeyboard(t.s.Language))
	return nil
}

func (st *suggestionState) OnInput(ctx context.Context, t *turn) error {
	t.dropInput(ctx)
	l := t.s.Language

	question := strings.TrimSpace(t.u.Text)
	if question == "" {
		t.render(ctx, T(l, "suggestion.empty"), cancelKeyboard(l))
		return nil
	}
	sg, err := st.m.Suggestions.Create(ctx, t.s.UserID, question)
	if err != nil {
		return err
	}
	t.log.Info("suggestion saved", zap.String("suggestion_id", sg.ID))

	t.s.Step = session.StepNone
	t.render(ctx, T(l, "suggestion.success"), backKeyboard(l))
	return nil
}

// broadcastState lets an admin fan a message out to every linked chat.
type broadcastState struct{ m *Machine }

func (st *broadcastState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepBroadcast
	t.render(ctx, T(t.s.Language, "broadcast.prompt"), cancelKeyboard(t.s.Language))
	return nil
}

func (st *broadcastState) OnInput(ctx context.Context, t *turn) error {
	t.dropInput(ctx)

	text := strings.TrimSpace(t.u.Text)
	if text == "" {
		return st.Enter(ctx, t)
	}
	if st.m.Outbox == nil {
		return errors.New("broadcast: no outbox configured")
	}
	users, err := st.m.Users.ListWithChat(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for _, u := range users {
		if u.ChatID == nil {
			continue
		}
		if err := st.m.Outbox.Enqueue(ctx, delivery.Job{ChatID: *u.ChatID, Text: text}); err != nil {
			t.log.Warn("broadcast enqueue failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		sent++
	}
	t.log.Info("broadcast queued", zap.Int("recipients", sent))

	t.s.Step = session.StepNone
	t.render(ctx, T(t.s.Language, "broadcast.sent", sent), backKeyboard(t.s.Language))
	return nil
}

type gameGenerationState struct{ m *Machine }

func (st *gameGenerationState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepGameGeneration
	extras := cancelKeyboard(t.s.Language)
	extras.HTML = true
	t.render(ctx, T(t.s.Language, "generate.rules"), extras)
	return nil
}

func (st *gameGenerationState) OnInput(ctx context.Context, t *turn) error {
	t.dropInput(ctx)
	l := t.s.Language

	desc := strings.TrimSpace(t.u.Text)
	if n := utf8.RuneCountInString(desc); n < minGameDescription || n > maxGameDescription {
		t.flash(T(l, "generate.invalid"))
		return st.Enter(ctx, t)
	}
	if st.m.Generator == nil {
		return errors.New("generate: no generator configured")
	}
	h, err := st.m.Generator.Generate(ctx, t.s.UserID, t.s.ChatID, desc)
	if errors.Is(err, models.ErrNoCredits) {
		t.s.Credits = 0
		t.s.Step = session.StepNone
		t.flash(T(l, "generate.no_credits"))
		t.reuse = true
		return st.m.enterResolved(ctx, t)
	}
	if err != nil {
		return err
	}
	t.log.Info("generation started", zap.String("request_id", h.RequestID))
	// the credit is taken up front; the delivered balance update confirms it
	if t.s.Credits > 0 {
		t.s.Credits--
	}

	t.s.Step = session.StepNone
	t.render(ctx, T(l, "generate.started"), backKeyboard(l))
	return nil
}
