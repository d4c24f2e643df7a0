package service

import (
	"context"

	"github.com/ds124wfegd/rentdesk/pkg/queue"
)

// QueueAdapter адаптирует queue.Queue к TaskPublisher интерфейсу
type QueueAdapter struct {
	queue queue.Queue
}

func NewQueueAdapter(q queue.Queue) *QueueAdapter {
	return &QueueAdapter{queue: q}
}

// Publish публикует задачу, преобразуя service.Task в queue.Task
func (a *QueueAdapter) Publish(ctx context.Context, task *Task) error {
	queueTask := queue.NewTask(queue.TaskType(task.Type), task.Data)
	if task.ID != "" {
		queueTask.ID = task.ID
	}
	if !task.ExecuteAt.IsZero() {
		queueTask.ExecuteAt = task.ExecuteAt
	}
	queueTask.MaxRetries = task.MaxRetries
	queueTask.Attempts = task.Attempts

	if err := a.queue.Publish(ctx, queueTask); err != nil {
		return err
	}
	task.ID = queueTask.ID
	return nil
}
