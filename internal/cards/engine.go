// Package cards serves random cards to a profile while honoring its
// per-card preferences (archived, loved, banned).
package cards

import (
	"context"
	"fmt"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
)

// ErrNoCategories is returned when a query resolves to zero accessible categories.
var ErrNoCategories = fmt.Errorf("%w: no accessible categories", models.ErrNotFound)

type ContentRepository interface {
	RandomSample(ctx context.Context, f Filter, limit int) ([]models.Card, error)
	CountMatching(ctx context.Context, f Filter) (int64, error)
	Preferences(ctx context.Context, profileID string, cardIDs []string) (map[string]models.CardPreference, error)
	UpsertPreference(ctx context.Context, profileID, cardID string, status models.CardStatus) (*models.CardPreference, error)
	DeletePreference(ctx context.Context, profileID, cardID string) error
}

type CategoryRepository interface {
	FindAll(ctx context.Context, requesterID string) ([]models.Category, error)
}

type Query struct {
	// UserID is the requester; it decides which private categories are visible.
	UserID          string
	ProfileID       string
	CategoryIDs     []string
	Limit           int
	IncludeArchived bool
	IncludeLoved    bool
}

type Item struct {
	Card   models.Card
	Status models.CardStatus
}

// Pick is the outcome of NextCard.
type Pick struct {
	Item *Item
	// Exhausted means the only candidate left is the card already on screen.
	Exhausted bool
}

type Engine struct {
	content    ContentRepository
	categories CategoryRepository
}

func NewEngine(content ContentRepository, categories CategoryRepository) *Engine {
	return &Engine{content: content, categories: categories}
}

func (e *Engine) SelectRandom(ctx context.Context, q Query) ([]Item, error) {
	catIDs, err := e.resolveCategories(ctx, q.UserID, q.CategoryIDs)
	if err != nil {
		return nil, err
	}

	cards, err := e.content.RandomSample(ctx, Filter{
		ProfileID:       q.ProfileID,
		CategoryIDs:     catIDs,
		ExcludeStatuses: excludedStatuses(q.IncludeArchived, q.IncludeLoved),
	}, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("random sample: %w", err)
	}
	if len(cards) == 0 {
		return []Item{}, nil
	}

	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	prefs, err := e.content.Preferences(ctx, q.ProfileID, ids)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	out := make([]Item, 0, len(cards))
	for _, c := range cards {
		status := models.StatusActive
		if p, ok := prefs[c.ID]; ok {
			status = p.Status
		}
		out = append(out, Item{Card: c, Status: status})
	}
	return out, nil
}

// NextCard asks for two candidates and skips currentID when it comes first.
func (e *Engine) NextCard(ctx context.Context, q Query, currentID string) (Pick, error) {
	q.Limit = 2
	items, err := e.SelectRandom(ctx, q)
	if err != nil {
		return Pick{}, err
	}
	switch {
	case len(items) == 0:
		return Pick{}, nil
	case currentID == "" || items[0].Card.ID != currentID:
		return Pick{Item: &items[0]}, nil
	case len(items) > 1:
		return Pick{Item: &items[1]}, nil
	default:
		return Pick{Item: &items[0], Exhausted: true}, nil
	}
}

// HasOnlyNeutralCardsLeft reports whether no visible candidate carries a
// loved or archived preference. Banned cards are never candidates.
func (e *Engine) HasOnlyNeutralCardsLeft(ctx context.Context, q Query) (bool, error) {
	catIDs, err := e.resolveCategories(ctx, q.UserID, q.CategoryIDs)
	if err != nil {
		return false, err
	}

	var visible []models.CardStatus
	if q.IncludeArchived {
		visible = append(visible, models.StatusArchived)
	}
	if q.IncludeLoved {
		visible = append(visible, models.StatusLoved)
	}
	if len(visible) == 0 {
		return true, nil
	}

	n, err := e.content.CountMatching(ctx, Filter{
		ProfileID:    q.ProfileID,
		CategoryIDs:  catIDs,
		OnlyStatuses: visible,
	})
	if err != nil {
		return false, fmt.Errorf("count opinionated cards: %w", err)
	}
	return n == 0, nil
}

// SetStatus records a preference. Active deletes the row and returns nil.
func (e *Engine) SetStatus(ctx context.Context, cardID, profileID string, status models.CardStatus) (*models.CardPreference, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid card status %q", status)
	}
	if status == models.StatusActive {
		if err := e.content.DeletePreference(ctx, profileID, cardID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return e.content.UpsertPreference(ctx, profileID, cardID, status)
}

func (e *Engine) resolveCategories(ctx context.Context, userID string, requested []string) ([]string, error) {
	visible, err := e.categories.FindAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	allowed := make(map[string]struct{}, len(visible))
	for _, c := range visible {
		allowed[c.ID] = struct{}{}
	}

	var out []string
	if len(requested) == 0 {
		for _, c := range visible {
			out = append(out, c.ID)
		}
	} else {
		for _, id := range requested {
			if _, ok := allowed[id]; ok {
				out = append(out, id)
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoCategories
	}
	return out, nil
}

func excludedStatuses(includeArchived, includeLoved bool) []models.CardStatus {
	out := []models.CardStatus{models.StatusBanned}
	if !includeArchived {
		out = append(out, models.StatusArchived)
	}
	if !includeLoved {
		out = append(out, models.StatusLoved)
	}
	return out
}
