package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/ds124wfegd/rentdesk/internal/database/postgres"
	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/store"
	"github.com/sirupsen/logrus"
)

// WorkflowOptions configures the optional parts of the workflow. Nil journal,
// publisher and properties are allowed.
type WorkflowOptions struct {
	CancelledTerminal bool
	// EnforceOwner limits status changes to the owner of the booked property
	// whenever the owner is known.
	EnforceOwner bool
	Guard        Guard
	Journal      repository.TransitionRepository
	Publisher    TaskPublisher
	// Properties looks up the owner when the booking only carries a property id.
	Properties store.PropertyStore
}

type workflow struct {
	store             store.BookingStore
	properties        store.PropertyStore
	guard             Guard
	journal           repository.TransitionRepository
	publisher         TaskPublisher
	cancelledTerminal bool
	enforceOwner      bool
}

func NewWorkflow(st store.BookingStore, opts WorkflowOptions) Workflow {
	guard := opts.Guard
	if guard == nil {
		guard = NewMemoryGuard(defaultInflightTTL)
	}
	return &workflow{
		store:             st,
		properties:        opts.Properties,
		guard:             guard,
		journal:           opts.Journal,
		publisher:         opts.Publisher,
		cancelledTerminal: opts.CancelledTerminal,
		enforceOwner:      opts.EnforceOwner,
	}
}

func (w *workflow) AvailableActions(current entity.BookingStatus) []entity.BookingStatus {
	status, err := entity.ParseBookingStatus(string(current))
	if err != nil {
		return []entity.BookingStatus{}
	}
	if w.cancelledTerminal && status == entity.BookingStatusCancelled {
		return []entity.BookingStatus{}
	}

	actions := make([]entity.BookingStatus, 0, len(entity.BookingStatuses)-1)
	for _, s := range entity.BookingStatuses {
		if s != status {
			actions = append(actions, s)
		}
	}
	return actions
}

func (w *workflow) allowed(from, to entity.BookingStatus) bool {
	for _, s := range w.AvailableActions(from) {
		if s == to {
			return true
		}
	}
	return false
}

func (w *workflow) RequestTransition(ctx context.Context, bookingID, target, actor string) (*entity.Booking, error) {
	to, err := entity.ParseBookingStatus(target)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(bookingID) == "" {
		return nil, fmt.Errorf("%w: booking id is required", entity.ErrInvalidInput)
	}

	log := logrus.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"target":     to,
		"actor":      actor,
	})

	release, err := w.guard.Acquire(ctx, bookingID)
	if err != nil {
		if errors.Is(err, entity.ErrTransitionInFlight) {
			log.Info("status change rejected, another one is in flight")
		}
		return nil, err
	}
	defer release()

	current, err := w.store.Get(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}

	if err := w.checkOwner(ctx, current, actor); err != nil {
		log.Warnf("status change rejected: %v", err)
		return nil, err
	}

	if current.Status == to {
		log.Debug("booking already has the requested status")
		return current, nil
	}

	entry := &entity.Transition{
		BookingID:   bookingID,
		From:        current.Status,
		To:          to,
		Actor:       actor,
		RequestedAt: time.Now().UTC(),
	}

	if !w.allowed(current.Status, to) {
		err := fmt.Errorf("%w: %s to %s", entity.ErrTransitionNotAllowed, current.Status, to)
		w.record(ctx, entry, err)
		return nil, err
	}

	if err := w.store.UpdateStatus(ctx, bookingID, to); err != nil {
		w.record(ctx, entry, err)
		log.Warnf("store refused status change: %v", err)
		return nil, fmt.Errorf("failed to update booking %s: %w", bookingID, err)
	}
	w.record(ctx, entry, nil)
	log.WithField("from", current.Status).Info("booking status changed")

	w.notify(ctx, current, to, actor)

	updated, err := w.store.Get(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("status of booking %s updated but reload failed: %w", bookingID, err)
	}
	return updated, nil
}

// checkOwner passes when enforcement is off or the owner cannot be determined.
func (w *workflow) checkOwner(ctx context.Context, b *entity.Booking, actor string) error {
	if !w.enforceOwner {
		return nil
	}

	ownerID := b.Property.OwnerID
	if ownerID == "" && w.properties != nil && b.Property.ID != "" {
		property, err := w.properties.GetProperty(ctx, b.Property.ID)
		if err != nil {
			return fmt.Errorf("failed to resolve owner of booking %s: %w", b.ID, err)
		}
		ownerID = property.OwnerID
	}
	if ownerID == "" {
		logrus.WithField("booking_id", b.ID).Debug("owner unknown, status change not restricted")
		return nil
	}

	if ownerID != actor {
		return fmt.Errorf("%w: booking %s", entity.ErrNotBookingOwner, b.ID)
	}
	return nil
}

// record appends to the journal. Journal trouble never fails a transition.
func (w *workflow) record(ctx context.Context, entry *entity.Transition, cause error) {
	if w.journal == nil {
		return
	}
	entry.Succeeded = cause == nil
	if cause != nil {
		entry.Reason = cause.Error()
	}
	if err := w.journal.Append(ctx, entry); err != nil {
		logrus.WithField("booking_id", entry.BookingID).Errorf("failed to journal transition: %v", err)
	}
}

func (w *workflow) notify(ctx context.Context, b *entity.Booking, to entity.BookingStatus, actor string) {
	if w.publisher == nil {
		return
	}
	task := &Task{
		Type: TaskTypeStatusNotification,
		Data: map[string]interface{}{
			"booking_id":     b.ID,
			"from":           string(b.Status),
			"to":             string(to),
			"actor":          actor,
			"property_title": b.Property.Title,
			"tenant_name":    b.Tenant.Name,
		},
		MaxRetries: 3,
	}
	if err := w.publisher.Publish(ctx, task); err != nil {
		logrus.WithField("booking_id", b.ID).Errorf("failed to queue status notification: %v", err)
	}
}
