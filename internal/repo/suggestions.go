package repo

import (
	"context"
	"strings"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"gorm.io/gorm"
)

type SuggestionRepo struct {
	db *gorm.DB
}

func NewSuggestionRepo(db *gorm.DB) *SuggestionRepo {
	return &SuggestionRepo{db: db}
}

func (r *SuggestionRepo) Create(ctx context.Context, userID, question string) (*models.Suggestion, error) {
	s := &models.Suggestion{UserID: userID, Question: strings.TrimSpace(question)}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}
