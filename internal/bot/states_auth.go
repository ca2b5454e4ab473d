package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/suPer8Hu/icebreaker-bot/internal/auth"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"go.uber.org/zap"
)

const phraseAttempts = 3

// authenticationState logs a chat in by secret phrase. Phrases are single use.
type authenticationState struct{ m *Machine }

func (st *authenticationState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepAuthentication
	t.render(ctx, T(t.s.Language, "auth.welcome"), authKeyboard(t.s.Language))
	return nil
}

func (st *authenticationState) OnInput(ctx context.Context, t *turn) error {
	t.dropInput(ctx)

	phrase := strings.TrimSpace(t.u.Text)
	if phrase == "" {
		return st.Enter(ctx, t)
	}
	u, err := st.m.Users.ConnectChat(ctx, phrase, t.s.ChatID)
	if errors.Is(err, models.ErrNotFound) {
		t.flash(T(t.s.Language, "auth.invalid"))
		return st.Enter(ctx, t)
	}
	if err != nil {
		return err
	}
	if err := st.m.login(ctx, t, u); err != nil {
		return err
	}
	t.flash(T(t.s.Language, "login.done", u.Name))
	return st.m.enterResolved(ctx, t)
}

type signupEmailState struct{ m *Machine }

func (st *signupEmailState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepSignupEmail
	t.render(ctx, T(t.s.Language, "signup.enter_email"), cancelKeyboard(t.s.Language))
	return nil
}

func (st *signupEmailState) OnInput(ctx context.Context, t *turn) error {
	t.dropInput(ctx)
	l := t.s.Language

	email := strings.ToLower(strings.TrimSpace(t.u.Text))
	if err := st.m.validate.Var(email, "required,email"); err != nil {
		t.render(ctx, T(l, "signup.invalid_email", email), cancelKeyboard(l))
		return nil
	}

	_, err := st.m.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		t.render(ctx, T(l, "signup.user_exists"), cancelKeyboard(l))
		return nil
	case !errors.Is(err, models.ErrNotFound):
		return err
	}

	t.s.Email = email
	return st.m.states[session.StepSignupName].Enter(ctx, t)
}

type signupNameState struct{ m *Machine }

func (st *signupNameState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepSignupName
	t.render(ctx, T(t.s.Language, "signup.enter_name"), cancelKeyboard(t.s.Language))
	return nil
}

// OnInput creates the account. The user never sees the password; they sign
// back in with the generated secret phrase.
func (st *signupNameState) OnInput(ctx context.Context, t *turn) error {
	t.dropInput(ctx)
	l := t.s.Language

	name := strings.TrimSpace(t.u.Text)
	if err := st.m.validate.Var(name, "required,max=100"); err != nil {
		t.render(ctx, T(l, "signup.name_empty"), cancelKeyboard(l))
		return nil
	}

	hash, err := auth.HashPassword(auth.RandomPassword())
	if err != nil {
		return err
	}
	chatID := t.s.ChatID
	var (
		u      *models.User
		phrase string
	)
	for attempt := 1; ; attempt++ {
		if phrase, err = auth.NewSecretPhrase(); err != nil {
			return err
		}
		u = &models.User{
			Email:        t.s.Email,
			Name:         name,
			PasswordHash: hash,
			ChatID:       &chatID,
			SecretPhrase: &phrase,
		}
		err = st.m.Users.Create(ctx, u)
		if errors.Is(err, models.ErrPhraseTaken) && attempt < phraseAttempts {
			t.log.Warn("secret phrase collision, retrying", zap.Int("attempt", attempt))
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			t.s.Email = ""
			t.flash(T(l, "signup.user_exists"))
			return st.m.states[session.StepSignupEmail].Enter(ctx, t)
		}
		return err
	}
	t.log.Info("user signed up", zap.String("user_id", u.ID))

	// AttachChat also detaches any older account bound to this chat.
	u.ChatID = nil
	if err := st.m.login(ctx, t, u); err != nil {
		return err
	}
	t.flash(T(t.s.Language, "signup.done", phrase))
	return st.m.enterResolved(ctx, t)
}
