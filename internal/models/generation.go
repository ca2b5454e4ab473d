package models

import "time"

type GenerationStatus string

const (
	GenerationProcessing GenerationStatus = "processing"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// GenerationTask tracks one background game generation. It lives in redis, not SQL.
type GenerationTask struct {
	RequestID   string           `json:"request_id"`
	UserID      string           `json:"user_id"`
	ChatID      string           `json:"chat_id,omitempty"`
	Description string           `json:"description"`
	Status      GenerationStatus `json:"status"`
	CategoryID  string           `json:"category_id,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
