// Package events is a small in-process publish/subscribe registry for domain events.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type Topic string

const (
	GenerationCompleted Topic = "generation.completed"
	GenerationFailed    Topic = "generation.failed"
	CreditsUpdated      Topic = "credits.updated"
)

type GenerationCompletedEvent struct {
	RequestID  string `json:"request_id"`
	UserID     string `json:"user_id"`
	ChatID     string `json:"chat_id,omitempty"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name,omitempty"`
}

type GenerationFailedEvent struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	ChatID    string `json:"chat_id,omitempty"`
	Reason    string `json:"reason"`
}

type CreditsUpdatedEvent struct {
	UserID  string `json:"user_id,omitempty"`
	ChatID  string `json:"chat_id"`
	Credits int    `json:"credits"`
}

type Handler func(ctx context.Context, payload any) error

type subscription struct {
	id uint64
	h  Handler
}

type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscription
	log    *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{subs: make(map[Topic][]subscription), log: log}
}

// Subscribe registers h for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, h: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every handler of topic in subscription order and joins their errors.
func (b *Bus) Publish(ctx context.Context, topic Topic, payload any) error {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[topic]...)
	b.mu.RUnlock()

	if len(subs) == 0 {
		b.log.Debug("event without subscribers", zap.String("topic", string(topic)))
		return nil
	}

	var errs []error
	for _, s := range subs {
		if err := s.h(ctx, payload); err != nil {
			b.log.Error("event handler failed", zap.String("topic", string(topic)), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}
