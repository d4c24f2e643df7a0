package entity

import "time"

// Transition is one attempt to move a booking between statuses.
type Transition struct {
	ID          int64         `json:"id"`
	BookingID   string        `json:"booking_id"`
	From        BookingStatus `json:"from_status,omitempty"`
	To          BookingStatus `json:"to_status"`
	Actor       string        `json:"actor,omitempty"`
	Succeeded   bool          `json:"succeeded"`
	Reason      string        `json:"reason,omitempty"`
	RequestedAt time.Time     `json:"requested_at"`
}
