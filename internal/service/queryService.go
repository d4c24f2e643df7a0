package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/store"
	"github.com/sirupsen/logrus"
)

type queryService struct {
	store      store.BookingStore
	properties store.PropertyStore
	workflow   Workflow
	pageSize   int
}

// NewQueryService passes queries straight to the store. Nothing is cached and
// paging happens after the full list is fetched. properties may be nil, the
// detail view then shows whatever property snapshot the booking carries.
func NewQueryService(st store.BookingStore, properties store.PropertyStore, wf Workflow, pageSize int) BookingQuery {
	if pageSize <= 0 {
		pageSize = entity.DefaultPageSize
	}
	return &queryService{store: st, properties: properties, workflow: wf, pageSize: pageSize}
}

func (s *queryService) ListForTenant(ctx context.Context, tenantID string) ([]*entity.Booking, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, entity.ErrIdentityMissing
	}
	bookings, err := s.store.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings of tenant %s: %w", tenantID, err)
	}
	return bookings, nil
}

func (s *queryService) ListForOwner(ctx context.Context, ownerID string) ([]*entity.Booking, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, entity.ErrIdentityMissing
	}
	bookings, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings of owner %s: %w", ownerID, err)
	}
	return bookings, nil
}

func (s *queryService) GetBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	if strings.TrimSpace(bookingID) == "" {
		return nil, fmt.Errorf("%w: booking id is required", entity.ErrInvalidInput)
	}
	booking, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %s: %w", bookingID, err)
	}
	return booking, nil
}

func (s *queryService) view(b *entity.Booking) entity.BookingView {
	return entity.BookingView{Booking: b, Actions: s.workflow.AvailableActions(b.Status)}
}

func (s *queryService) GetBookingView(ctx context.Context, bookingID string) (*entity.BookingView, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.resolveProperty(ctx, booking)
	v := s.view(booking)
	return &v, nil
}

// resolveProperty fills in a property the store sent as a bare id. A failed
// lookup leaves the snapshot as it was.
func (s *queryService) resolveProperty(ctx context.Context, b *entity.Booking) {
	if s.properties == nil || b.Property.ID == "" || b.Property.Title != "" {
		return
	}

	property, err := s.properties.GetProperty(ctx, b.Property.ID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"booking_id":  b.ID,
			"property_id": b.Property.ID,
		}).Warnf("property lookup failed, showing booking snapshot: %v", err)
		return
	}
	mergeProperty(&b.Property, property)
}

func mergeProperty(dst *entity.PropertyRef, src *entity.PropertyRef) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Location == (entity.Location{}) {
		dst.Location = src.Location
	}
	if dst.OwnerID == "" {
		dst.OwnerID = src.OwnerID
	}
}

func (s *queryService) TenantBookings(ctx context.Context, tenantID string, opts ListOptions) (*entity.Page[*entity.Booking], error) {
	bookings, err := s.ListForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	page := entity.Paginate(entity.Search(bookings, opts.Search), opts.Page, s.pageSize)
	return &page, nil
}

func (s *queryService) OwnerBookings(ctx context.Context, ownerID string, opts ListOptions) (*entity.Page[entity.BookingView], error) {
	bookings, err := s.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	matched := entity.Search(bookings, opts.Search)
	views := make([]entity.BookingView, 0, len(matched))
	for _, b := range matched {
		views = append(views, s.view(b))
	}
	page := entity.Paginate(views, opts.Page, s.pageSize)
	return &page, nil
}

func (s *queryService) OwnerOverview(ctx context.Context, ownerID string) (*entity.BookingOverview, error) {
	bookings, err := s.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return entity.Overview(bookings), nil
}
