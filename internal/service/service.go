package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/rentdesk/internal/entity"
)

// Workflow owns the booking status state machine.
type Workflow interface {
	// AvailableActions lists the statuses a booking in current may move to. No I/O.
	AvailableActions(current entity.BookingStatus) []entity.BookingStatus
	// RequestTransition asks the store to move a booking to target and returns the
	// record as the store holds it afterwards.
	RequestTransition(ctx context.Context, bookingID, target, actor string) (*entity.Booking, error)
}

// ListOptions selects one page of a client-side paginated list.
type ListOptions struct {
	Page   int
	Search string
}

// BookingQuery is the read side used by views.
type BookingQuery interface {
	ListForTenant(ctx context.Context, tenantID string) ([]*entity.Booking, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*entity.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*entity.Booking, error)

	GetBookingView(ctx context.Context, bookingID string) (*entity.BookingView, error)
	TenantBookings(ctx context.Context, tenantID string, opts ListOptions) (*entity.Page[*entity.Booking], error)
	OwnerBookings(ctx context.Context, ownerID string, opts ListOptions) (*entity.Page[entity.BookingView], error)
	OwnerOverview(ctx context.Context, ownerID string) (*entity.BookingOverview, error)
}

// BookingCommands are the writes a tenant or owner may issue besides status changes.
type BookingCommands interface {
	CreateBooking(ctx context.Context, req *entity.CreateBookingRequest) (*entity.Booking, error)
	// SendReminder reports whether the reminder was queued rather than sent.
	SendReminder(ctx context.Context, bookingID string) (bool, error)
	CreatePayment(ctx context.Context, req *entity.CreatePaymentRequest) (*entity.Payment, error)
}

type SessionService interface {
	Login(ctx context.Context, creds *entity.Credentials) (*entity.Identity, error)
}

type HistoryService interface {
	History(ctx context.Context, bookingID string, limit int) ([]*entity.Transition, error)
}

// TaskPublisher интерфейс для публикации задач в очередь
type TaskPublisher interface {
	Publish(ctx context.Context, task *Task) error
}

// Task представляет задачу для очереди
type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

const (
	TaskTypeSendReminder       = "send_reminder"
	TaskTypeStatusNotification = "status_notification"
)

// Service groups everything the transport layer needs.
type Service struct {
	Workflow
	BookingQuery
	BookingCommands
	SessionService
	HistoryService
}
