// Package delivery is the outbound message queue used for server-initiated
// notifications: generation results, credit changes and admin broadcasts.
package delivery

import (
	"context"
	"errors"
	"strings"

	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/common"
)

type Job struct {
	ID      string      `json:"id"`
	ChatID  string      `json:"chat_id"`
	Text    string      `json:"text"`
	Extras  chat.Extras `json:"extras,omitempty"`
	Attempt int         `json:"attempt"`
	// Credits, when set, refreshes the cached balance in the chat's session.
	Credits *int `json:"credits,omitempty"`
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.ChatID) == "" {
		return errors.New("delivery: chat id is required")
	}
	if strings.TrimSpace(j.Text) == "" {
		return errors.New("delivery: text is required")
	}
	return nil
}

type JobPublisher interface {
	Publish(ctx context.Context, v any) error
}

// Queue is the producer side used by the bot and the event handlers.
type Queue struct {
	pub JobPublisher
}

func NewQueue(pub JobPublisher) *Queue {
	return &Queue{pub: pub}
}

func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	if job.ID == "" {
		id, err := common.NewULID()
		if err != nil {
			return err
		}
		job.ID = id
	}
	job.Attempt = 0
	return q.pub.Publish(ctx, job)
}
