package repo

import (
	"context"
	"errors"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"gorm.io/gorm"
)

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Create(ctx context.Context, userID, name string) (*models.Profile, error) {
	p := &models.Profile{UserID: userID, Name: name}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepo) FindAllForUser(ctx context.Context, userID string) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// FindOne loads a profile; a non-empty requesterID must own it.
func (r *ProfileRepo) FindOne(ctx context.Context, id, requesterID string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if requesterID != "" && p.UserID != requesterID {
		return nil, models.ErrForbidden
	}
	return &p, nil
}

// Delete removes the profile and its card preferences.
func (r *ProfileRepo) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := r.FindOne(ctx, id, requesterID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&models.CardPreference{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Profile{}).Error
	})
}
