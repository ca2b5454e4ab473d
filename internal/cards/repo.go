package cards

import (
	"context"
	"time"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"gorm.io/gorm"
)

// Filter narrows the card pool for one profile.
type Filter struct {
	ProfileID   string
	CategoryIDs []string
	// ExcludeStatuses drops cards whose preference for ProfileID has one of these statuses.
	ExcludeStatuses []models.CardStatus
	// OnlyStatuses, when set, keeps only cards with a preference in one of these statuses.
	OnlyStatuses []models.CardStatus
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, c *models.Card) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// CreateCategoryWithCards stores a category and its cards atomically.
func (r *Repo) CreateCategoryWithCards(ctx context.Context, cat *models.Category, cards []models.Card) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cat).Error; err != nil {
			return err
		}
		for i := range cards {
			cards[i].CategoryID = cat.ID
		}
		if len(cards) == 0 {
			return nil
		}
		return tx.Create(&cards).Error
	})
}

// RandomSample returns up to limit cards in random order, with their category preloaded.
func (r *Repo) RandomSample(ctx context.Context, f Filter, limit int) ([]models.Card, error) {
	if limit <= 0 {
		limit = 1
	}
	var out []models.Card
	if err := r.scoped(ctx, f).
		Preload("Category").
		Order(r.randomOrder()).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CountMatching(ctx context.Context, f Filter) (int64, error) {
	var n int64
	if err := r.scoped(ctx, f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// SampleQuestions returns random English questions from public categories.
func (r *Repo) SampleQuestions(ctx context.Context, limit int) ([]string, error) {
	var qs []string
	if err := r.db.WithContext(ctx).Model(&models.Card{}).
		Joins("JOIN categories ON categories.id = cards.category_id").
		Where("categories.is_public = ? AND cards.question_en <> ''", true).
		Order(r.randomOrder()).
		Limit(limit).
		Pluck("cards.question_en", &qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

// Preferences maps card id to the profile's stored preference.
func (r *Repo) Preferences(ctx context.Context, profileID string, cardIDs []string) (map[string]models.CardPreference, error) {
	out := make(map[string]models.CardPreference, len(cardIDs))
	if len(cardIDs) == 0 {
		return out, nil
	}
	var rows []models.CardPreference
	if err := r.db.WithContext(ctx).
		Where("profile_id = ? AND card_id IN ?", profileID, cardIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.CardID] = p
	}
	return out, nil
}

func (r *Repo) UpsertPreference(ctx context.Context, profileID, cardID string, status models.CardStatus) (*models.CardPreference, error) {
	now := time.Now()
	p := models.CardPreference{ProfileID: profileID, CardID: cardID, Status: status, LastInteractionAt: now}
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND card_id = ?", profileID, cardID).
		Assign(map[string]any{"status": status, "last_interaction_at": now}).
		FirstOrCreate(&p).Error
	if err != nil {
		return nil, err
	}
	p.Status = status
	p.LastInteractionAt = now
	return &p, nil
}

func (r *Repo) DeletePreference(ctx context.Context, profileID, cardID string) error {
	return r.db.WithContext(ctx).
		Where("profile_id = ? AND card_id = ?", profileID, cardID).
		Delete(&models.CardPreference{}).Error
}

func (r *Repo) scoped(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Card{}).
		Where("cards.category_id IN ?", f.CategoryIDs)

	if len(f.ExcludeStatuses) > 0 {
		q = q.Where("NOT EXISTS (?)", r.preferenceProbe(f.ProfileID, f.ExcludeStatuses))
	}
	if len(f.OnlyStatuses) > 0 {
		q = q.Where("EXISTS (?)", r.preferenceProbe(f.ProfileID, f.OnlyStatuses))
	}
	return q
}

func (r *Repo) preferenceProbe(profileID string, statuses []models.CardStatus) *gorm.DB {
	return r.db.Model(&models.CardPreference{}).
		Select("1").
		Where("card_preferences.card_id = cards.id").
		Where("card_preferences.profile_id = ?", profileID).
		Where("card_preferences.status IN ?", statuses)
}

func (r *Repo) randomOrder() string {
	if r.db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}
