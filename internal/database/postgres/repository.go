package repository

import (
	"context"

	"github.com/ds124wfegd/rentdesk/internal/entity"
)

// TransitionRepository is the append-only journal of status changes.
type TransitionRepository interface {
	Append(ctx context.Context, t *entity.Transition) error
	// ListByBooking returns the newest entries first.
	ListByBooking(ctx context.Context, bookingID string, limit int) ([]*entity.Transition, error)
}
