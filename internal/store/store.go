// Package store is the client of the external booking API, the service of record
// for bookings, payments and accounts.
package store

import (
	"context"

	"github.com/ds124wfegd/rentdesk/internal/entity"
)

type BookingStore interface {
	// Queries
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Booking, error)
	Get(ctx context.Context, bookingID string) (*entity.Booking, error)

	// Commands
	UpdateStatus(ctx context.Context, bookingID string, status entity.BookingStatus) error
	SendReminder(ctx context.Context, bookingID string) error
	// Create returns a nil booking when the API accepted the request without
	// sending the created document back.
	Create(ctx context.Context, req *entity.CreateBookingRequest) (*entity.Booking, error)
}

// PropertyStore resolves a listed unit when a booking only carries its id.
type PropertyStore interface {
	GetProperty(ctx context.Context, propertyID string) (*entity.PropertyRef, error)
}

type PaymentStore interface {
	CreatePayment(ctx context.Context, req *entity.CreatePaymentRequest) (*entity.Payment, error)
}

type AuthStore interface {
	Login(ctx context.Context, creds *entity.Credentials) (*entity.Identity, error)
}

// Store is everything the external API offers.
type Store interface {
	BookingStore
	PropertyStore
	PaymentStore
	AuthStore
}
