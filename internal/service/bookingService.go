package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/store"
	"github.com/sirupsen/logrus"
)

type bookingService struct {
	bookings store.BookingStore
	payments store.PaymentStore
	queue    TaskPublisher
}

// NewBookingService создает новый экземпляр BookingCommands. queue may be nil,
// reminders are then sent while the caller waits.
func NewBookingService(bookings store.BookingStore, payments store.PaymentStore, queue TaskPublisher) BookingCommands {
	return &bookingService{
		bookings: bookings,
		payments: payments,
		queue:    queue,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *entity.CreateBookingRequest) (*entity.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookings.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	if booking == nil {
		// committed but not echoed back; the id is unknown until the next list
		logrus.WithFields(logrus.Fields{
			"tenant_id":   req.TenantID,
			"property_id": req.PropertyID,
		}).Info("booking created, store sent no document")
		return acknowledged(req), nil
	}

	// a new booking always starts unconfirmed and unpaid
	if booking.Status != entity.BookingStatusPending || booking.PaymentStatus != entity.PaymentStatusPending {
		return nil, fmt.Errorf("%w: new booking %s has status %s/%s",
			entity.ErrMalformedResponse, booking.ID, booking.Status, booking.PaymentStatus)
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"tenant_id":   req.TenantID,
		"property_id": req.PropertyID,
	}).Info("booking created")

	return booking, nil
}

func (s *bookingService) SendReminder(ctx context.Context, bookingID string) (bool, error) {
	if strings.TrimSpace(bookingID) == "" {
		return false, fmt.Errorf("%w: booking id is required", entity.ErrInvalidInput)
	}

	if s.queue != nil {
		task := &Task{
			Type:       TaskTypeSendReminder,
			Data:       map[string]interface{}{"booking_id": bookingID},
			MaxRetries: 3,
		}
		err := s.queue.Publish(ctx, task)
		if err == nil {
			logrus.WithFields(logrus.Fields{"booking_id": bookingID, "task_id": task.ID}).Info("reminder queued")
			return true, nil
		}
		logrus.WithField("booking_id", bookingID).Warnf("failed to queue reminder, sending now: %v", err)
	}

	if err := s.bookings.SendReminder(ctx, bookingID); err != nil {
		return false, fmt.Errorf("failed to send reminder for booking %s: %w", bookingID, err)
	}
	logrus.WithField("booking_id", bookingID).Info("reminder sent")
	return false, nil
}

func (s *bookingService) CreatePayment(ctx context.Context, req *entity.CreatePaymentRequest) (*entity.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payment, err := s.payments.CreatePayment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"booking_id": req.BookingID,
		"tenant_id":  req.TenantID,
	}).Info("payment initiated")

	return payment, nil
}

func acknowledged(req *entity.CreateBookingRequest) *entity.Booking {
	return &entity.Booking{
		Tenant:        entity.TenantRef{ID: req.TenantID},
		Property:      entity.PropertyRef{ID: req.PropertyID},
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		RentAmount:    req.RentAmount,
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
	}
}
