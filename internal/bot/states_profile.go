package bot

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"go.uber.org/zap"
)

const maxProfileName = 50

type profileSelectionState struct{ m *Machine }

func (st *profileSelectionState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepProfileSelection
	profiles, err := st.m.Profiles.FindAllForUser(ctx, t.s.UserID)
	if err != nil {
		return err
	}
	t.render(ctx, T(t.s.Language, "profile.select_prompt"), profileKeyboard(t.s.Language, profiles))
	return nil
}

func (st *profileSelectionState) OnInput(ctx context.Context, t *turn) error {
	switch a := t.u.Action; {
	case a == actProfileNew:
		return st.m.states[session.StepProfileCreation].Enter(ctx, t)
	case a == actProfileDelete:
		return st.m.states[session.StepProfileDeletion].Enter(ctx, t)
	case strings.HasPrefix(a, actProfilePrefix):
		return st.choose(ctx, t, strings.TrimPrefix(a, actProfilePrefix))
	}

	t.dropInput(ctx)
	t.flash(T(t.s.Language, "profile.invalid"))
	return st.Enter(ctx, t)
}

// choose degrades to a fresh profile prompt on any lookup failure.
func (st *profileSelectionState) choose(ctx context.Context, t *turn, id string) error {
	p, err := st.m.Profiles.FindOne(ctx, id, t.s.UserID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrForbidden) {
			t.log.Warn("profile lookup failed", zap.String("profile_id", id), zap.Error(err))
		}
		clearProfile(t.s)
		t.flash(T(t.s.Language, "profile.unavailable"))
		return st.Enter(ctx, t)
	}

	clearProfile(t.s)
	t.s.SelectedProfileID = p.ID
	return st.m.categories.Enter(ctx, t)
}

// clearProfile drops the profile and everything scoped to it.
func clearProfile(s *session.Session) {
	s.SelectedProfileID = ""
	s.SelectedCategories = session.Unset()
	s.Card = nil
	s.PreviousCard = nil
}

type profileCreationState struct{ m *Machine }

func (st *profileCreationState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepProfileCreation
	t.render(ctx, T(t.s.Language, "profile.create_prompt"), cancelKeyboard(t.s.Language))
	return nil
}

func (st *profileCreationState) OnInput(ctx context.Context, t *turn) error {
	t.dropInput(ctx)
	l := t.s.Language

	name := strings.TrimSpace(t.u.Text)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxProfileName {
		t.render(ctx, T(l, "profile.length_error"), cancelKeyboard(l))
		return nil
	}
	p, err := st.m.Profiles.Create(ctx, t.s.UserID, name)
	if err != nil {
		return err
	}

	clearProfile(t.s)
	t.s.SelectedProfileID = p.ID
	t.flash(T(l, "profile.created", p.Name))
	return st.m.categories.Enter(ctx, t)
}

type profileDeletionState struct{ m *Machine }

func (st *profileDeletionState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepProfileDeletion
	profiles, err := st.m.Profiles.FindAllForUser(ctx, t.s.UserID)
	if err != nil {
		return err
	}
	t.render(ctx, T(t.s.Language, "profile.delete_prompt"), profileDeletionKeyboard(t.s.Language, profiles))
	return nil
}

func (st *profileDeletionState) OnInput(ctx context.Context, t *turn) error {
	a := t.u.Action
	switch {
	case a == actProfileDelCancel:
		t.s.Step = session.StepNone
		return st.m.profiles.Enter(ctx, t)
	case strings.HasPrefix(a, actProfileConfirm):
		return st.confirm(ctx, t, strings.TrimPrefix(a, actProfileConfirm))
	case strings.HasPrefix(a, actProfileDelPrefix):
		return st.ask(ctx, t, strings.TrimPrefix(a, actProfileDelPrefix))
	}

	t.dropInput(ctx)
	return st.Enter(ctx, t)
}

func (st *profileDeletionState) ask(ctx context.Context, t *turn, id string) error {
	p, ok := st.lookup(ctx, t, id)
	if !ok {
		return st.m.profiles.Enter(ctx, t)
	}
	t.s.Step = session.StepProfileDeletion
	l := t.s.Language
	t.render(ctx, T(l, "profile.delete_confirm", p.Name), profileConfirmKeyboard(l, p.ID))
	return nil
}

func (st *profileDeletionState) confirm(ctx context.Context, t *turn, id string) error {
	p, ok := st.lookup(ctx, t, id)
	if !ok {
		return st.m.profiles.Enter(ctx, t)
	}
	if err := st.m.Profiles.Delete(ctx, p.ID, t.s.UserID); err != nil {
		return err
	}
	t.log.Info("profile deleted", zap.String("profile_id", p.ID))

	if t.s.SelectedProfileID == p.ID {
		clearProfile(t.s)
	}
	t.s.Step = session.StepNone
	t.flash(T(t.s.Language, "profile.deleted", p.Name))
	return st.m.profiles.Enter(ctx, t)
}

func (st *profileDeletionState) lookup(ctx context.Context, t *turn, id string) (*models.Profile, bool) {
	p, err := st.m.Profiles.FindOne(ctx, id, t.s.UserID)
	if err != nil {
		t.log.Warn("profile lookup failed", zap.String("profile_id", id), zap.Error(err))
		t.s.Step = session.StepNone
		t.flash(T(t.s.Language, "profile.unavailable"))
		return nil, false
	}
	return p, true
}
