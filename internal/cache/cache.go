// Package cache membungkus repository.Store dengan cache Redis untuk pembacaan task.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func taskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id)
}

func boardTasksKey(boardID uuid.UUID) string {
	return fmt.Sprintf("board:%s:tasks", boardID)
}

// Store menyajikan GetTask dan ListTasks dari Redis jika ada, selain itu
// meneruskan ke base. Semua penulisan menghapus key yang terdampak.
// Kegagalan Redis hanya dicatat; database tetap sumber kebenaran.
type Store struct {
	repository.Store
	redis *redis.Client
	ttl   time.Duration
}

func New(base repository.Store, client *redis.Client, ttl time.Duration) *Store {
	if base == nil {
		panic("cache.New: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Store{Store: base, redis: client, ttl: ttl}
}

func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if s.load(ctx, taskKey(id), &task) {
		return &task, nil
	}

	t, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, taskKey(id), t)
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	if s.load(ctx, boardTasksKey(boardID), &tasks) {
		return tasks, nil
	}

	tasks, err := s.Store.ListTasks(ctx, boardID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, boardTasksKey(boardID), tasks)
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	if err := s.Store.CreateTask(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx, boardTasksKey(t.BoardID))
	return nil
}

func (s *Store) SaveTask(ctx context.Context, t *models.Task) error {
	if err := s.Store.SaveTask(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx, taskKey(t.ID), boardTasksKey(t.BoardID))
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	// board id diperlukan untuk menghapus cache list
	t, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, taskKey(id), boardTasksKey(t.BoardID))
	return nil
}

func (s *Store) DeleteBoard(ctx context.Context, id uuid.UUID) (int64, error) {
	tasks, err := s.Store.ListTasks(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := s.Store.DeleteBoard(ctx, id)
	if err != nil {
		return 0, err
	}
	keys := []string{boardTasksKey(id)}
	for _, t := range tasks {
		keys = append(keys, taskKey(t.ID))
	}
	s.invalidate(ctx, keys...)
	return n, nil
}

func (s *Store) load(ctx context.Context, key string, dest any) bool {
	if s.redis == nil {
		return false
	}
	cached, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.ErrorLogger.Error("Redis get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(cached, dest); err != nil {
		logger.ErrorLogger.Error("Corrupt cache entry", zap.String("key", key), zap.Error(err))
		s.invalidate(ctx, key)
		return false
	}
	return true
}

func (s *Store) store(ctx context.Context, key string, value any) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		logger.ErrorLogger.Error("Error caching entry", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) invalidate(ctx context.Context, keys ...string) {
	if s.redis == nil || len(keys) == 0 {
		return
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		logger.ErrorLogger.Error("Error invalidating cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
