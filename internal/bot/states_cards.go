package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/suPer8Hu/icebreaker-bot/internal/cards"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
	"go.uber.org/zap"
)

type categorySelectionState struct{ m *Machine }

// Enter leaves the current selection alone; callers that want a fresh pick
// reset it to Unset first.
func (st *categorySelectionState) Enter(ctx context.Context, t *turn) error {
	t.s.Step = session.StepCategorySelection
	cats, err := st.m.Categories.FindAll(ctx, t.s.UserID)
	if err != nil {
		return err
	}
	st.show(ctx, t, cats)
	return nil
}

func (st *categorySelectionState) show(ctx context.Context, t *turn, cats []models.Category) {
	l := t.s.Language
	text := T(l, "category.prompt")
	if len(cats) == 0 {
		text = T(l, "category.none")
	}
	if n := t.s.SelectedCategories.Len(); n > 0 {
		text += "\n\n" + T(l, "category.selected_count", n)
	}
	t.render(ctx, text, categoryKeyboard(l, cats, t.s.SelectedCategories))
}

func (st *categorySelectionState) OnInput(ctx context.Context, t *turn) error {
	a := t.u.Action
	switch {
	case a == actCategoriesDone:
		return st.done(ctx, t)
	case strings.HasPrefix(a, actCategoryPrefix):
		return st.toggle(ctx, t, strings.TrimPrefix(a, actCategoryPrefix))
	}
	t.dropInput(ctx)
	return st.Enter(ctx, t)
}

func (st *categorySelectionState) toggle(ctx context.Context, t *turn, id string) error {
	t.s.Step = session.StepCategorySelection
	cats, err := st.m.Categories.FindAll(ctx, t.s.UserID)
	if err != nil {
		return err
	}
	for _, c := range cats {
		if c.ID == id {
			t.s.SelectedCategories = t.s.SelectedCategories.Toggle(id)
			break
		}
	}
	st.show(ctx, t, cats)
	return nil
}

func (st *categorySelectionState) done(ctx context.Context, t *turn) error {
	if t.s.SelectedCategories.Len() == 0 {
		t.flash(T(t.s.Language, "category.select_at_least_one"))
		return st.Enter(ctx, t)
	}
	t.s.Card = nil
	t.s.PreviousCard = nil
	return st.m.cards.enter(ctx, t, false)
}

type cardRetrievalState struct{ m *Machine }

func (st *cardRetrievalState) Enter(ctx context.Context, t *turn) error {
	return st.enter(ctx, t, t.reuse)
}

// enter shows a card. With reuse and a card already on screen it only
// re-renders, without touching the content store.
func (st *cardRetrievalState) enter(ctx context.Context, t *turn, reuse bool) error {
	s := t.s
	s.Step = session.StepCardRetrieval
	if reuse && s.Card != nil {
		st.show(ctx, t, "")
		return nil
	}

	q := st.query(s)
	var currentID string
	if s.Card != nil {
		currentID = s.Card.ID
	}
	pick, err := st.m.Cards.NextCard(ctx, q, currentID)
	if errors.Is(err, models.ErrNotFound) {
		s.SelectedCategories = session.Unset()
		s.Card = nil
		s.PreviousCard = nil
		t.flash(T(s.Language, "category.unavailable"))
		return st.m.categories.Enter(ctx, t)
	}
	if err != nil {
		return err
	}

	if pick.Item == nil {
		s.ShowCard(nil)
		t.render(ctx, html.EscapeString(T(s.Language, "card.no_cards")), cardKeyboard(s))
		return nil
	}
	s.ShowCard(session.SnapshotOf(pick.Item.Card, pick.Item.Status))

	var hint string
	switch {
	case pick.Exhausted:
		hint = T(s.Language, "card.all_viewed")
	case s.IncludeArchived || s.IncludeLoved:
		only, err := st.m.Cards.HasOnlyNeutralCardsLeft(ctx, q)
		if err != nil {
			t.log.Warn("neutral check failed", zap.Error(err))
		} else if only {
			hint = T(s.Language, "card.only_neutral")
		}
	}
	st.show(ctx, t, hint)
	return nil
}

func (st *cardRetrievalState) query(s *session.Session) cards.Query {
	return cards.Query{
		UserID:          s.UserID,
		ProfileID:       s.SelectedProfileID,
		CategoryIDs:     s.SelectedCategories.IDs(),
		IncludeArchived: s.IncludeArchived,
		IncludeLoved:    s.IncludeLoved,
	}
}

func (st *cardRetrievalState) show(ctx context.Context, t *turn, hint string) {
	t.render(ctx, cardText(t.s, hint), cardKeyboard(t.s))
}

func cardText(s *session.Session, hint string) string {
	l := s.Language
	c := s.Card

	var b strings.Builder
	fmt.Fprintf(&b, "<blockquote><b>%s</b></blockquote>", html.EscapeString(c.Question(l)))
	if name := c.CategoryName(l); name != "" {
		fmt.Fprintf(&b, "\n\n<code>%s</code>", html.EscapeString(T(l, "card.category_info", name)))
	}
	switch c.Status {
	case models.StatusLoved:
		b.WriteString("\n" + T(l, "card.status.loved"))
	case models.StatusArchived:
		b.WriteString("\n" + T(l, "card.status.archived"))
	}
	if hint != "" {
		b.WriteString("\n\n<i>" + html.EscapeString(hint) + "</i>")
	}
	return b.String()
}

func (st *cardRetrievalState) OnInput(ctx context.Context, t *turn) error {
	s := t.s
	a := t.u.Action

	switch {
	case a == actCardAnother:
		return st.enter(ctx, t, false)
	case a == actCardUndo:
		if s.Undo() {
			s.Step = session.StepCardRetrieval
			st.show(ctx, t, "")
			return nil
		}
		return st.enter(ctx, t, true)
	case a == actCardLove:
		return st.toggleStatus(ctx, t, models.StatusLoved)
	case a == actCardArchive:
		return st.toggleStatus(ctx, t, models.StatusArchived)
	case a == actCardBan:
		if s.Card == nil {
			return st.enter(ctx, t, false)
		}
		if _, err := st.m.Cards.SetStatus(ctx, s.Card.ID, s.SelectedProfileID, models.StatusBanned); err != nil {
			return err
		}
		// a banned card must not come back through undo
		s.Card = nil
		return st.enter(ctx, t, false)
	case a == actCardToggleArch:
		s.IncludeArchived = !s.IncludeArchived
		return st.enter(ctx, t, true)
	case a == actCardToggleLoved:
		s.IncludeLoved = !s.IncludeLoved
		return st.enter(ctx, t, true)
	case a == actCardChangeCats:
		s.SelectedCategories = session.Unset()
		s.Card = nil
		s.PreviousCard = nil
		return st.m.categories.Enter(ctx, t)
	case a == actCardChangeProfile:
		clearProfile(s)
		return st.m.profiles.Enter(ctx, t)
	case strings.HasPrefix(a, actPlayPrefix):
		return st.play(ctx, t, strings.TrimPrefix(a, actPlayPrefix))
	case a != "":
		return st.enter(ctx, t, true)
	}

	// free text lands here once a category is toggled; keep the picker up
	t.dropInput(ctx)
	if s.Step == session.StepCategorySelection {
		return st.m.categories.Enter(ctx, t)
	}
	return st.enter(ctx, t, true)
}

// toggleStatus flips the card between status and active.
func (st *cardRetrievalState) toggleStatus(ctx context.Context, t *turn, status models.CardStatus) error {
	s := t.s
	if s.Card == nil {
		return st.enter(ctx, t, false)
	}
	next := status
	if s.Card.Status == status {
		next = models.StatusActive
	}
	if _, err := st.m.Cards.SetStatus(ctx, s.Card.ID, s.SelectedProfileID, next); err != nil {
		return err
	}
	s.Card.Status = next

	if next == models.StatusArchived && !s.IncludeArchived {
		// hidden from now on, so it is no undo target either
		s.Card = nil
		return st.enter(ctx, t, false)
	}
	return st.enter(ctx, t, true)
}

// play jumps straight into a single category, e.g. a freshly generated one.
func (st *cardRetrievalState) play(ctx context.Context, t *turn, categoryID string) error {
	s := t.s
	s.Card = nil
	s.PreviousCard = nil
	if _, err := st.m.Categories.FindOne(ctx, categoryID, s.UserID); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}
		s.SelectedCategories = session.Unset()
		t.flash(T(s.Language, "category.unavailable"))
		return st.m.categories.Enter(ctx, t)
	}
	s.SelectedCategories = session.Selected(categoryID)
	if s.SelectedProfileID == "" {
		return st.m.profiles.Enter(ctx, t)
	}
	return st.enter(ctx, t, false)
}
