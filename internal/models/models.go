package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	IsActivated  bool      `gorm:"not null;default:true" json:"is_activated"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	ChatID       *string   `gorm:"type:varchar(64);index" json:"chat_id,omitempty"`
	SecretPhrase *string   `gorm:"type:varchar(128);uniqueIndex" json:"-"`
	Credits      int       `gorm:"not null;default:0" json:"credits"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Profile struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Category struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	NameEN        string    `gorm:"column:name_en;type:varchar(255)" json:"name_en"`
	NameRU        string    `gorm:"column:name_ru;type:varchar(255)" json:"name_ru"`
	NameFR        string    `gorm:"column:name_fr;type:varchar(255)" json:"name_fr"`
	NameIT        string    `gorm:"column:name_it;type:varchar(255)" json:"name_it"`
	DescriptionEN string    `gorm:"column:description_en;type:text" json:"description_en"`
	IsPublic      bool      `gorm:"not null;index" json:"is_public"`
	UserID        *string   `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Name returns the localized name, falling back to English.
func (c Category) Name(lang Language) string {
	return localized(lang, c.NameEN, c.NameRU, c.NameFR, c.NameIT)
}

type Card struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	QuestionEN string    `gorm:"column:question_en;type:text" json:"question_en"`
	QuestionRU string    `gorm:"column:question_ru;type:text" json:"question_ru"`
	QuestionFR string    `gorm:"column:question_fr;type:text" json:"question_fr"`
	QuestionIT string    `gorm:"column:question_it;type:text" json:"question_it"`
	CategoryID string    `gorm:"type:varchar(36);index;not null" json:"category_id"`
	Category   Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c Card) Question(lang Language) string {
	return localized(lang, c.QuestionEN, c.QuestionRU, c.QuestionFR, c.QuestionIT)
}

type CardStatus string

const (
	StatusActive   CardStatus = "active"
	StatusArchived CardStatus = "archived"
	StatusLoved    CardStatus = "loved"
	StatusBanned   CardStatus = "banned"
)

func (s CardStatus) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusLoved, StatusBanned:
		return true
	}
	return false
}

// CardPreference exists only for non-active statuses.
type CardPreference struct {
	ID                string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProfileID         string     `gorm:"type:varchar(36);not null;index:uniq_pref_profile_card,unique,priority:1" json:"profile_id"`
	CardID            string     `gorm:"type:varchar(36);not null;index:uniq_pref_profile_card,unique,priority:2" json:"card_id"`
	Status            CardStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	LastInteractionAt time.Time  `json:"last_interaction_at"`
}

func (p *CardPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Suggestion struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Suggestion) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func localized(lang Language, en, ru, fr, it string) string {
	var v string
	switch lang {
	case Russian:
		v = ru
	case French:
		v = fr
	case Italian:
		v = it
	default:
		v = en
	}
	if v == "" {
		return en
	}
	return v
}
