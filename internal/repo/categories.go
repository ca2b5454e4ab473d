package repo

import (
	"context"
	"errors"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"gorm.io/gorm"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindAll returns public categories plus the requester's private ones.
func (r *CategoryRepo) FindAll(ctx context.Context, requesterID string) ([]models.Category, error) {
	q := r.db.WithContext(ctx).Model(&models.Category{})
	if requesterID != "" {
		q = q.Where("is_public = ? OR (is_public = ? AND user_id = ?)", true, false, requesterID)
	} else {
		q = q.Where("is_public = ?", true)
	}

	var cats []models.Category
	if err := q.Order("created_at ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *CategoryRepo) FindOne(ctx context.Context, id, requesterID string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if !c.IsPublic && (c.UserID == nil || *c.UserID != requesterID) {
		// private categories are invisible to everyone else
		return nil, models.ErrNotFound
	}
	return &c, nil
}
