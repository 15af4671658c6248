package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"roombook/internal/config"
	"roombook/internal/events"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Pop when no task is pending.
var ErrEmpty = errors.New("queue is empty")

const (
	notifyQueueKey      = "notify:queue"
	notifyDeadLetterKey = "notify:deadletter"
)

// RedisQueue persists notification tasks in a redis list so pending
// deliveries survive restarts.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Push(ctx context.Context, task *events.NotificationTask) error {
	if q.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, notifyQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push task to redis: %w", err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context) (*events.NotificationTask, error) {
	if q.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := q.client.RPop(ctx, notifyQueueKey).Result()
	if err == redis.Nil {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop task from redis: %w", err)
	}

	var task events.NotificationTask
	if err := json.Unmarshal([]byte(val), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// DeadLetter stores a task that exhausted its retries.
func (q *RedisQueue) DeadLetter(ctx context.Context, task *events.NotificationTask) error {
	if q.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	return q.client.LPush(ctx, notifyDeadLetterKey, data).Err()
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
