package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/rentdesk/internal/entity"
)

const defaultHistoryLimit = 50

type transitionRepository struct {
	db *sql.DB
}

func NewTransitionRepository(db *sql.DB) TransitionRepository {
	return &transitionRepository{db: db}
}

func (r *transitionRepository) Append(ctx context.Context, t *entity.Transition) error {
	if t.RequestedAt.IsZero() {
		t.RequestedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO booking_transitions (
			booking_id, from_status, to_status, actor, succeeded, reason, requested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		t.BookingID,
		nullString(string(t.From)),
		string(t.To),
		nullString(t.Actor),
		t.Succeeded,
		nullString(t.Reason),
		t.RequestedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to append transition: %w", err)
	}

	return nil
}

func (r *transitionRepository) ListByBooking(ctx context.Context, bookingID string, limit int) ([]*entity.Transition, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT id, booking_id, from_status, to_status, actor, succeeded, reason, requested_at
		FROM booking_transitions
		WHERE booking_id = $1
		ORDER BY requested_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, bookingID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	transitions := make([]*entity.Transition, 0)
	for rows.Next() {
		var (
			t                   entity.Transition
			from, actor, reason sql.NullString
			to                  string
		)
		if err := rows.Scan(&t.ID, &t.BookingID, &from, &to, &actor, &t.Succeeded, &reason, &t.RequestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		t.From = entity.BookingStatus(from.String)
		t.To = entity.BookingStatus(to)
		t.Actor = actor.String
		t.Reason = reason.String
		transitions = append(transitions, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transitions: %w", err)
	}

	return transitions, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
