package models

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("already exists")
	ErrNoCredits = errors.New("not enough credits")

	// ErrPhraseTaken is a secret phrase collision on create; retry with a new phrase.
	ErrPhraseTaken = errors.New("secret phrase taken")
)
