package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingStatuses lists every status in the order actions are offered.
var BookingStatuses = []BookingStatus{
	BookingStatusConfirmed,
	BookingStatusCancelled,
	BookingStatusPending,
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// ParseBookingStatus accepts any letter case and returns the canonical value.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(strings.ToLower(strings.TrimSpace(s))) {
	case BookingStatusPending:
		return BookingStatusPending, nil
	case BookingStatusConfirmed:
		return BookingStatusConfirmed, nil
	case BookingStatusCancelled:
		return BookingStatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBookingStatus, s)
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentStatusPending:
		return PaymentStatusPending, nil
	case PaymentStatusPaid:
		return PaymentStatusPaid, nil
	case PaymentStatusFailed:
		return PaymentStatusFailed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, s)
	}
}

func (s BookingStatus) Valid() bool {
	_, err := ParseBookingStatus(string(s))
	return err == nil
}

// TenantRef is the requesting party. Only ID is authoritative, the rest is a display snapshot.
type TenantRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Location struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// PropertyRef is the listed unit. Only ID is authoritative.
type PropertyRef struct {
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	Location Location `json:"location"`
	OwnerID  string   `json:"owner_id,omitempty"`
}

type Booking struct {
	ID            string          `json:"id"`
	Tenant        TenantRef       `json:"tenant"`
	Property      PropertyRef     `json:"property"`
	StartDate     Date            `json:"start_date"`
	EndDate       Date            `json:"end_date"`
	RentAmount    decimal.Decimal `json:"rent_amount"`
	Status        BookingStatus   `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// Validate checks the invariants every booking read from the store must hold.
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("booking id is empty")
	}
	if !b.Status.Valid() {
		return fmt.Errorf("booking %s: %w: %q", b.ID, ErrInvalidBookingStatus, b.Status)
	}
	if _, err := ParsePaymentStatus(string(b.PaymentStatus)); err != nil {
		return fmt.Errorf("booking %s: %w", b.ID, err)
	}
	if err := ValidateDateRange(b.StartDate, b.EndDate); err != nil {
		return fmt.Errorf("booking %s: %w", b.ID, err)
	}
	if b.RentAmount.IsNegative() {
		return fmt.Errorf("booking %s: %w", b.ID, ErrNegativeAmount)
	}
	return nil
}

// ValidateDateRange requires end strictly after start when both are known.
func ValidateDateRange(start, end Date) error {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	if !end.After(start.Time) {
		return fmt.Errorf("%w: %s is not after %s", ErrInvalidDateRange, end, start)
	}
	return nil
}

// BookingView is a booking together with what the viewer may do next.
type BookingView struct {
	Booking *Booking        `json:"booking"`
	Actions []BookingStatus `json:"actions"`
}

// CreateBookingRequest is the booking-request submission.
type CreateBookingRequest struct {
	TenantID   string          `json:"-"`
	PropertyID string          `json:"property" binding:"required"`
	StartDate  Date            `json:"start_date"`
	EndDate    Date            `json:"end_date"`
	RentAmount decimal.Decimal `json:"rent_amount"`
}

func (r *CreateBookingRequest) Validate() error {
	if strings.TrimSpace(r.TenantID) == "" {
		return ErrIdentityMissing
	}
	if strings.TrimSpace(r.PropertyID) == "" {
		return fmt.Errorf("%w: property is required", ErrInvalidInput)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if err := ValidateDateRange(r.StartDate, r.EndDate); err != nil {
		return err
	}
	if r.RentAmount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
