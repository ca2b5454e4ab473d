package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
)

const taskPrefix = "game_generation:"

type TaskStore struct {
	store *Store
	ttl   time.Duration
}

func NewTaskStore(store *Store, ttl time.Duration) *TaskStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TaskStore{store: store, ttl: ttl}
}

func (t *TaskStore) Save(ctx context.Context, task *models.GenerationTask) error {
	task.UpdatedAt = time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = task.UpdatedAt
	}
	b, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return t.store.rdb.Set(ctx, taskPrefix+task.RequestID, b, t.ttl).Err()
}

func (t *TaskStore) Get(ctx context.Context, requestID string) (*models.GenerationTask, error) {
	raw, err := t.store.rdb.Get(ctx, taskPrefix+requestID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	var task models.GenerationTask
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
