package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	var cnt int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", u.Email).
		Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return models.ErrConflict
	}
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if u.SecretPhrase != nil {
			if _, ferr := r.first(ctx, "secret_phrase = ?", *u.SecretPhrase); ferr == nil {
				return models.ErrPhraseTaken
			}
		}
		return models.ErrConflict
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByChatID(ctx context.Context, chatID string) (*models.User, error) {
	return r.first(ctx, "chat_id = ?", chatID)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// ConnectChat logs chatID in as the owner of phrase. A phrase works once: it
// is cleared as the chat gets bound, and the chat is detached from anyone else.
func (r *UserRepo) ConnectChat(ctx context.Context, phrase, chatID string) (*models.User, error) {
	phrase = strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
	if phrase == "" {
		return nil, models.ErrNotFound
	}

	var u models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("secret_phrase = ?", phrase).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("chat_id = ? AND id <> ?", chatID, u.ID).
			Update("chat_id", nil).Error; err != nil {
			return err
		}
		res := tx.Model(&models.User{}).
			Where("id = ? AND secret_phrase = ?", u.ID, phrase).
			Updates(map[string]any{"chat_id": chatID, "secret_phrase": nil})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// someone else used it first
			return models.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.ChatID = &chatID
	u.SecretPhrase = nil
	return &u, nil
}

// AttachChat binds a chat identity to the user, detaching it from any previous owner.
func (r *UserRepo) AttachChat(ctx context.Context, userID, chatID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("chat_id = ? AND id <> ?", chatID, userID).
			Update("chat_id", nil).Error; err != nil {
			return err
		}
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("chat_id", chatID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

// AddCredits applies delta (negative to spend) and returns the updated user.
// The balance never goes below zero: such a spend fails with ErrNoCredits.
func (r *UserRepo) AddCredits(ctx context.Context, userID string, delta int) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND credits + ? >= 0", userID, delta).
		Update("credits", gorm.Expr("credits + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, models.ErrNoCredits
	}
	return r.FindByID(ctx, userID)
}

// ListWithChat returns users reachable through the chat transport.
func (r *UserRepo) ListWithChat(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("chat_id IS NOT NULL AND chat_id <> ''").
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
