package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	// TaskTypeSendReminder asks the store to remind the tenant about a booking.
	TaskTypeSendReminder TaskType = "send_reminder"
	// TaskTypeStatusNotification tells the owner a booking changed status.
	TaskTypeStatusNotification TaskType = "status_notification"
)

// Task represents a unit of work in the queue
type Task struct {
	ID         string                 `json:"id"`
	Type       TaskType               `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	CreatedAt  time.Time              `json:"created_at"`
	Attempts   int                    `json:"attempts"`
	MaxRetries int                    `json:"max_retries"`
}

// NewTask builds an immediately runnable task with a fresh id.
func NewTask(taskType TaskType, data map[string]interface{}) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        fmt.Sprintf("%s_%s", taskType, uuid.NewString()),
		Type:      taskType,
		Data:      data,
		ExecuteAt: now,
		CreatedAt: now,
	}
}

// Validate checks if the task is valid
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task ID is required")
	}
	if strings.TrimSpace(string(t.Type)) == "" {
		return fmt.Errorf("task type is required")
	}
	if t.Data == nil {
		t.Data = make(map[string]interface{})
	}
	return nil
}

// GetString returns a string value from task data
func (t *Task) GetString(key string) string {
	if val, ok := t.Data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
