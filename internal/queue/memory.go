package queue

import (
	"context"
	"fmt"

	"roombook/internal/events"
)

// MemoryQueue is the in-process fallback used when redis is unreachable or
// not configured. Tasks do not survive restarts.
type MemoryQueue struct {
	tasks chan *events.NotificationTask
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{tasks: make(chan *events.NotificationTask, size)}
}

func (q *MemoryQueue) Push(ctx context.Context, task *events.NotificationTask) error {
	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("notification queue is full")
	}
}

func (q *MemoryQueue) Pop(ctx context.Context) (*events.NotificationTask, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	default:
		return nil, ErrEmpty
	}
}
