package transport

import (
	"context"
	"time"

	"github.com/ds124wfegd/rentdesk/internal/service"
	"github.com/ds124wfegd/rentdesk/pkg/queue"
)

// TaskQueue is the part of the task queue the health check and the failed
// task dashboard use.
type TaskQueue interface {
	HealthCheck(ctx context.Context) error
	GetQueueStats(ctx context.Context) (*queue.QueueStats, error)
	FailedTasks(ctx context.Context, limit int) ([]*queue.FailedTask, error)
	RequeueFailed(ctx context.Context, taskID string) error
}

type Handler struct {
	services       *service.Service
	cookieLifetime time.Duration
	queue          TaskQueue
	now            func() time.Time
}

// NewHandler builds the HTTP handlers. q may be nil.
func NewHandler(services *service.Service, cookieLifetime time.Duration, q TaskQueue) *Handler {
	return &Handler{
		services:       services,
		cookieLifetime: cookieLifetime,
		queue:          q,
		now:            time.Now,
	}
}
