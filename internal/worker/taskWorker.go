package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/store"
	"github.com/ds124wfegd/rentdesk/pkg/queue"
	"github.com/ds124wfegd/rentdesk/pkg/telegram"

	"github.com/sirupsen/logrus"
)

type ReminderSender interface {
	SendReminder(ctx context.Context, bookingID string) error
}

// Notifier delivers a text message to a chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// TaskWorker runs reminder and owner notification tasks taken off the queue.
type TaskWorker struct {
	reminders ReminderSender
	notifier  Notifier
	chatID    string
}

// NewTaskWorker accepts a nil notifier; status notifications are then dropped.
func NewTaskWorker(reminders ReminderSender, notifier Notifier, chatID string) *TaskWorker {
	return &TaskWorker{
		reminders: reminders,
		notifier:  notifier,
		chatID:    chatID,
	}
}

// Start subscribes to q and blocks until ctx ends.
func (w *TaskWorker) Start(ctx context.Context, q queue.Queue) error {
	if err := q.Subscribe(ctx, w.HandleTask); err != nil {
		return fmt.Errorf("failed to subscribe task worker: %w", err)
	}

	logrus.Info("Task worker started")
	<-ctx.Done()
	logrus.Info("Task worker stopped")
	return nil
}

func (w *TaskWorker) HandleTask(ctx context.Context, task *queue.Task) error {
	logrus.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"task_type": task.Type,
		"attempt":   task.Attempts,
	}).Debug("handling task")

	switch task.Type {
	case queue.TaskTypeSendReminder:
		return w.handleSendReminder(ctx, task)
	case queue.TaskTypeStatusNotification:
		return w.handleStatusNotification(ctx, task)
	default:
		return queue.Permanent(fmt.Errorf("unknown task type: %s", task.Type))
	}
}

func (w *TaskWorker) handleSendReminder(ctx context.Context, task *queue.Task) error {
	bookingID := task.GetString("booking_id")
	if bookingID == "" {
		return queue.Permanent(fmt.Errorf("task %s has no booking_id", task.ID))
	}

	if err := w.reminders.SendReminder(ctx, bookingID); err != nil {
		if !retryable(err) {
			return queue.Permanent(err)
		}
		return err
	}

	logrus.WithField("booking_id", bookingID).Info("reminder sent")
	return nil
}

func (w *TaskWorker) handleStatusNotification(ctx context.Context, task *queue.Task) error {
	if w.notifier == nil || w.chatID == "" {
		logrus.WithField("task_id", task.ID).Debug("no notifier configured, dropping status notification")
		return nil
	}

	if err := w.notifier.SendMessage(ctx, w.chatID, statusMessage(task)); err != nil {
		var apiErr *telegram.APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return queue.Permanent(err)
		}
		return err
	}
	return nil
}

func statusMessage(task *queue.Task) string {
	msg := fmt.Sprintf("Booking %s changed from %s to %s",
		task.GetString("booking_id"), task.GetString("from"), task.GetString("to"))
	if title := task.GetString("property_title"); title != "" {
		msg += "\nProperty: " + title
	}
	if tenant := task.GetString("tenant_name"); tenant != "" {
		msg += "\nTenant: " + tenant
	}
	if actor := task.GetString("actor"); actor != "" {
		msg += "\nBy: " + actor
	}
	return msg
}

// retryable is true for outages and 5xx answers. Anything else the store said no to stays no.
func retryable(err error) bool {
	if errors.Is(err, entity.ErrBookingNotFound) {
		return false
	}
	if errors.Is(err, entity.ErrStoreUnavailable) {
		return true
	}
	var statusErr *store.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= http.StatusInternalServerError
	}
	return true
}
