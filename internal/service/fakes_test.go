package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/shopspring/decimal"
)

// fakeStore behaves like the external API: it owns the records and hands out copies.
type fakeStore struct {
	mu sync.Mutex

	bookings map[string]*entity.Booking
	byTenant map[string][]string
	byOwner  map[string][]string

	getCalls  int
	listCalls int
	puts      []entity.BookingStatus
	reminders []string

	getErr      error
	updateErr   error
	reminderErr error

	// updateGate, when set, holds UpdateStatus until it is closed.
	updateGate    chan struct{}
	updateStarted chan struct{}

	created    *entity.Booking
	createErr  error
	createReqs []*entity.CreateBookingRequest

	payment    *entity.Payment
	paymentErr error
	payReqs    []*entity.CreatePaymentRequest

	identity *entity.Identity
	loginErr error

	properties    map[string]*entity.PropertyRef
	propertyCalls int
	propertyErr   error
}

func newFakeStore(bookings ...*entity.Booking) *fakeStore {
	f := &fakeStore{
		bookings: make(map[string]*entity.Booking),
		byTenant: make(map[string][]string),
		byOwner:  make(map[string][]string),

		properties: make(map[string]*entity.PropertyRef),
	}
	for _, b := range bookings {
		f.add(b)
	}
	return f
}

func (f *fakeStore) add(b *entity.Booking) {
	f.bookings[b.ID] = b
	f.byTenant[b.Tenant.ID] = append(f.byTenant[b.Tenant.ID], b.ID)
	f.byOwner[b.Property.OwnerID] = append(f.byOwner[b.Property.OwnerID], b.ID)
}

func copyBooking(b *entity.Booking) *entity.Booking {
	c := *b
	return &c
}

func (f *fakeStore) list(ids []string) []*entity.Booking {
	out := make([]*entity.Booking, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyBooking(f.bookings[id]))
	}
	return out
}

func (f *fakeStore) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.list(f.byTenant[tenantID]), nil
}

func (f *fakeStore) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.list(f.byOwner[ownerID]), nil
}

func (f *fakeStore) Get(ctx context.Context, bookingID string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrBookingNotFound, bookingID)
	}
	return copyBooking(b), nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, bookingID string, status entity.BookingStatus) error {
	f.mu.Lock()
	gate, started := f.updateGate, f.updateStarted
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, status)
	if f.updateErr != nil {
		return f.updateErr
	}
	b, ok := f.bookings[bookingID]
	if !ok {
		return entity.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeStore) GetProperty(ctx context.Context, propertyID string) (*entity.PropertyRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.propertyCalls++
	if f.propertyErr != nil {
		return nil, f.propertyErr
	}
	p, ok := f.properties[propertyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrPropertyNotFound, propertyID)
	}
	c := *p
	return &c, nil
}

func (f *fakeStore) SendReminder(ctx context.Context, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, bookingID)
	return f.reminderErr
}

func (f *fakeStore) Create(ctx context.Context, req *entity.CreateBookingRequest) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createReqs = append(f.createReqs, req)
	return f.created, f.createErr
}

func (f *fakeStore) CreatePayment(ctx context.Context, req *entity.CreatePaymentRequest) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payReqs = append(f.payReqs, req)
	return f.payment, f.paymentErr
}

func (f *fakeStore) Login(ctx context.Context, creds *entity.Credentials) (*entity.Identity, error) {
	return f.identity, f.loginErr
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []*entity.Transition
	err     error
}

func (j *fakeJournal) Append(ctx context.Context, t *entity.Transition) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, t)
	return j.err
}

func (j *fakeJournal) ListByBooking(ctx context.Context, bookingID string, limit int) ([]*entity.Transition, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*entity.Transition
	for i := len(j.entries) - 1; i >= 0; i-- {
		if j.entries[i].BookingID == bookingID {
			out = append(out, j.entries[i])
		}
	}
	return out, j.err
}

type fakePublisher struct {
	mu    sync.Mutex
	tasks []*Task
	err   error
}

func (p *fakePublisher) Publish(ctx context.Context, task *Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	task.ID = fmt.Sprintf("task-%d", len(p.tasks)+1)
	p.tasks = append(p.tasks, task)
	return nil
}

func booking(id string, status entity.BookingStatus) *entity.Booking {
	return &entity.Booking{
		ID:            id,
		Tenant:        entity.TenantRef{ID: "T1", Name: "Jane Smith"},
		Property:      entity.PropertyRef{ID: "P1", Title: "Kigali Villa", OwnerID: "O1"},
		RentAmount:    decimal.NewFromInt(100),
		Status:        status,
		PaymentStatus: entity.PaymentStatusPending,
	}
}
