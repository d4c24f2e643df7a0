package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/rentdesk/config"
	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/service"
	"github.com/ds124wfegd/rentdesk/pkg/queue"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubStore struct {
	mu        sync.Mutex
	bookings  map[string]*entity.Booking
	order     []string
	calls     int
	puts      []entity.BookingStatus
	reminders []string
	err       error
	identity  *entity.Identity
	ack       bool

	properties map[string]*entity.PropertyRef
}

func newStubStore(bookings ...*entity.Booking) *stubStore {
	s := &stubStore{bookings: make(map[string]*entity.Booking)}
	for _, b := range bookings {
		s.bookings[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	return s
}

func (s *stubStore) all() []*entity.Booking {
	out := make([]*entity.Booking, 0, len(s.order))
	for _, id := range s.order {
		c := *s.bookings[id]
		out = append(out, &c)
	}
	return out
}

func (s *stubStore) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.all(), nil
}

func (s *stubStore) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Booking, error) {
	return s.ListByTenant(ctx, ownerID)
}

func (s *stubStore) Get(ctx context.Context, bookingID string) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	c := *b
	return &c, nil
}

func (s *stubStore) UpdateStatus(ctx context.Context, bookingID string, status entity.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.puts = append(s.puts, status)
	s.bookings[bookingID].Status = status
	return nil
}

func (s *stubStore) SendReminder(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, bookingID)
	return nil
}

func (s *stubStore) GetProperty(ctx context.Context, propertyID string) (*entity.PropertyRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[propertyID]
	if !ok {
		return nil, entity.ErrPropertyNotFound
	}
	c := *p
	return &c, nil
}

func (s *stubStore) Create(ctx context.Context, req *entity.CreateBookingRequest) (*entity.Booking, error) {
	if s.ack {
		return nil, nil
	}
	return &entity.Booking{
		ID:            "NEW",
		Tenant:        entity.TenantRef{ID: req.TenantID},
		Property:      entity.PropertyRef{ID: req.PropertyID},
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		RentAmount:    req.RentAmount,
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
	}, nil
}

func (s *stubStore) CreatePayment(ctx context.Context, req *entity.CreatePaymentRequest) (*entity.Payment, error) {
	return &entity.Payment{ID: "PAY1", BookingID: req.BookingID, Amount: req.Amount, Status: entity.PaymentStatusPending}, nil
}

func (s *stubStore) Login(ctx context.Context, creds *entity.Credentials) (*entity.Identity, error) {
	if s.identity == nil {
		return nil, entity.ErrUnauthorized
	}
	return s.identity, nil
}

type busyGuard struct{}

func (busyGuard) Acquire(ctx context.Context, bookingID string) (func(), error) {
	return nil, entity.ErrTransitionInFlight
}

func testBooking(id string, status entity.BookingStatus) *entity.Booking {
	return &entity.Booking{
		ID:            id,
		Tenant:        entity.TenantRef{ID: "T1", Name: "Jane Smith"},
		Property:      entity.PropertyRef{ID: "P1", Title: "Kigali Villa", OwnerID: "O1"},
		RentAmount:    decimal.NewFromInt(100),
		Status:        status,
		PaymentStatus: entity.PaymentStatusPending,
	}
}

func newRouter(st *stubStore, opts service.WorkflowOptions) *gin.Engine {
	return newRouterWithQueue(st, opts, nil)
}

func newRouterWithQueue(st *stubStore, opts service.WorkflowOptions, q TaskQueue) *gin.Engine {
	wf := service.NewWorkflow(st, opts)
	services := &service.Service{
		Workflow:        wf,
		BookingQuery:    service.NewQueryService(st, st, wf, 10),
		BookingCommands: service.NewBookingService(st, st, nil),
		SessionService:  service.NewSessionService(st),
		HistoryService:  service.NewHistoryService(nil),
	}
	h := NewHandler(services, time.Hour, q)
	h.now = func() time.Time { return time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC) }
	return InitRoutes(h, &config.ServerConfig{AllowedOrigin: "http://localhost:5173", RequestTimeout: 5 * time.Second})
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Meta    PageMeta        `json:"meta"`
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}, cookies map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

var (
	tenant = map[string]string{"tenantID": "T1"}
	owner  = map[string]string{"userID": "O1", "name": "Owner%20One"}
)

func TestMyBookingsRequiresLogin(t *testing.T) {
	st := newStubStore(testBooking("B1", entity.BookingStatusPending))
	r := newRouter(st, service.WorkflowOptions{})

	w, env := do(t, r, http.MethodGet, "/api/v1/me/bookings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "please log in", env.Error)

	w, _ = do(t, r, http.MethodGet, "/api/v1/me/bookings", nil, map[string]string{"tenantID": ""})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Zero(t, st.calls)
}

func TestMyBookingsEmpty(t *testing.T) {
	r := newRouter(newStubStore(), service.WorkflowOptions{})

	w, env := do(t, r, http.MethodGet, "/api/v1/me/bookings", nil, tenant)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "no bookings", env.Message)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Zero(t, env.Meta.TotalPages)
}

func TestMyBookingsPaged(t *testing.T) {
	st := newStubStore()
	for i := 1; i <= 25; i++ {
		b := testBooking(fmt.Sprintf("B%02d", i), entity.BookingStatusPending)
		st.bookings[b.ID] = b
		st.order = append(st.order, b.ID)
	}
	r := newRouter(st, service.WorkflowOptions{})

	w, env := do(t, r, http.MethodGet, "/api/v1/me/bookings?page=3", nil, tenant)
	require.Equal(t, http.StatusOK, w.Code)

	var items []entity.Booking
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 5)
	assert.Equal(t, 3, env.Meta.Page)
	assert.Equal(t, 3, env.Meta.TotalPages)
	assert.Equal(t, 25, env.Meta.TotalItems)
	assert.True(t, env.Meta.HasPrev)

	w, env = do(t, r, http.MethodGet, "/api/v1/me/bookings?page=abc", nil, tenant)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Meta.Page)
}

func TestDashboardBookingsCarryActions(t *testing.T) {
	r := newRouter(newStubStore(testBooking("B1", entity.BookingStatusPending)), service.WorkflowOptions{})

	w, env := do(t, r, http.MethodGet, "/api/v1/dashboard/bookings", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)

	var views []entity.BookingView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusConfirmed, entity.BookingStatusCancelled}, views[0].Actions)

	w, _ = do(t, r, http.MethodGet, "/api/v1/dashboard/bookings", nil, tenant)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	st := newStubStore(testBooking("B1", entity.BookingStatusPending))
	r := newRouter(st, service.WorkflowOptions{})

	w, env := do(t, r, http.MethodPut, "/api/v1/bookings/B1/status", gin.H{"status": "confirmed"}, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view entity.BookingView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, entity.BookingStatusConfirmed, view.Booking.Status)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusCancelled, entity.BookingStatusPending}, view.Actions)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusConfirmed}, st.puts)

	w, env = do(t, r, http.MethodGet, "/api/v1/bookings/B1", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, entity.BookingStatusConfirmed, view.Booking.Status)
}

func TestUpdateStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		opts     service.WorkflowOptions
		storeErr error
		path     string
		body     interface{}
		cookies  map[string]string
		wantCode int
		wantErr  string
	}{
		{name: "no identity", path: "/api/v1/bookings/B1/status", body: gin.H{"status": "confirmed"}, wantCode: http.StatusUnauthorized, wantErr: "please log in"},
		{name: "tenant may not", path: "/api/v1/bookings/B1/status", body: gin.H{"status": "confirmed"}, cookies: tenant, wantCode: http.StatusUnauthorized},
		{name: "missing body", path: "/api/v1/bookings/B1/status", body: gin.H{}, cookies: owner, wantCode: http.StatusBadRequest},
		{name: "unknown status", path: "/api/v1/bookings/B1/status", body: gin.H{"status": "completed"}, cookies: owner, wantCode: http.StatusBadRequest},
		{name: "unknown booking", path: "/api/v1/bookings/B9/status", body: gin.H{"status": "confirmed"}, cookies: owner, wantCode: http.StatusNotFound, wantErr: "booking not found"},
		{name: "in flight", opts: service.WorkflowOptions{Guard: busyGuard{}}, path: "/api/v1/bookings/B1/status", body: gin.H{"status": "confirmed"}, cookies: owner, wantCode: http.StatusConflict, wantErr: "another status change is in progress"},
		{name: "store down", storeErr: fmt.Errorf("%w: dial tcp", entity.ErrStoreUnavailable), path: "/api/v1/bookings/B1/status", body: gin.H{"status": "confirmed"}, cookies: owner, wantCode: http.StatusServiceUnavailable, wantErr: "failed to update booking status, please try again"},
		{name: "store garbage", storeErr: entity.ErrMalformedResponse, path: "/api/v1/bookings/B1/status", body: gin.H{"status": "confirmed"}, cookies: owner, wantCode: http.StatusBadGateway, wantErr: "failed to update booking status, please try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newStubStore(testBooking("B1", entity.BookingStatusPending))
			st.err = tt.storeErr
			r := newRouter(st, tt.opts)

			w, env := do(t, r, http.MethodPut, tt.path, tt.body, tt.cookies)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.False(t, env.Success)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, env.Error)
			}
			assert.Empty(t, st.puts)
		})
	}
}

func TestTenantSeesNoActions(t *testing.T) {
	r := newRouter(newStubStore(testBooking("B1", entity.BookingStatusPending)), service.WorkflowOptions{})

	w, env := do(t, r, http.MethodGet, "/api/v1/bookings/B1", nil, tenant)
	require.Equal(t, http.StatusOK, w.Code)
	var view entity.BookingView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Empty(t, view.Actions)

	w, _ = do(t, r, http.MethodGet, "/api/v1/bookings/B1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBooking(t *testing.T) {
	r := newRouter(newStubStore(), service.WorkflowOptions{})

	body := gin.H{"property": "P1", "start_date": "2024-04-15", "end_date": "2024-04-20", "rent_amount": 150, "tenant": "SOMEONE_ELSE"}
	w, env := do(t, r, http.MethodPost, "/api/v1/me/bookings", body, tenant)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var b entity.Booking
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, "T1", b.Tenant.ID)
	assert.Equal(t, entity.BookingStatusPending, b.Status)

	body["end_date"] = "2024-04-10"
	w, _ = do(t, r, http.MethodPost, "/api/v1/me/bookings", body, tenant)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/me/bookings", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePayment(t *testing.T) {
	r := newRouter(newStubStore(), service.WorkflowOptions{})

	body := gin.H{"booking_id": "B1", "owner_id": "O1", "amount": "500", "phone": "+250781234567"}
	w, env := do(t, r, http.MethodPost, "/api/v1/me/payments", body, tenant)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "payment initiated", env.Message)

	body["phone"] = "12"
	w, _ = do(t, r, http.MethodPost, "/api/v1/me/payments", body, tenant)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendReminder(t *testing.T) {
	st := newStubStore(testBooking("B1", entity.BookingStatusPending))
	r := newRouter(st, service.WorkflowOptions{})

	w, env := do(t, r, http.MethodPost, "/api/v1/bookings/B1/reminder", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reminder sent", env.Message)
	assert.Equal(t, []string{"B1"}, st.reminders)
}

func TestHistoryDisabled(t *testing.T) {
	r := newRouter(newStubStore(), service.WorkflowOptions{})

	w, env := do(t, r, http.MethodGet, "/api/v1/bookings/B1/history", nil, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, entity.ErrHistoryDisabled.Error(), env.Error)
}

func TestOverview(t *testing.T) {
	r := newRouter(newStubStore(testBooking("B1", entity.BookingStatusConfirmed)), service.WorkflowOptions{})

	w, env := do(t, r, http.MethodGet, "/api/v1/dashboard/overview", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	var o entity.BookingOverview
	require.NoError(t, json.Unmarshal(env.Data, &o))
	assert.Equal(t, 1, o.TotalBookings)
	assert.True(t, decimal.NewFromInt(100).Equal(o.ConfirmedRevenue))
}

func TestLoginWritesCookies(t *testing.T) {
	st := newStubStore()
	st.identity = &entity.Identity{UserID: "U 1", Name: "Jane Doe"}
	r := newRouter(st, service.WorkflowOptions{})

	w, env := do(t, r, http.MethodPost, "/api/v1/session", gin.H{"email": "jane@example.com", "password": "secret"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, "userID")
	require.Contains(t, cookies, "name")
	assert.NotContains(t, cookies, "tenantID")
	assert.Equal(t, "U%201", cookies["userID"].Value)
	assert.Equal(t, "/", cookies["userID"].Path)
	assert.True(t, cookies["userID"].Secure)

	w, _ = do(t, r, http.MethodPost, "/api/v1/session", gin.H{"email": "jane@example.com", "password": "secret", "role": "tenant"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	names := []string{}
	for _, c := range w.Result().Cookies() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "tenantID")
	assert.NotContains(t, names, "userID")
}

func TestLoginFailures(t *testing.T) {
	r := newRouter(newStubStore(), service.WorkflowOptions{})

	w, env := do(t, r, http.MethodPost, "/api/v1/session", gin.H{"email": "jane@example.com", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", env.Error)

	w, _ = do(t, r, http.MethodPost, "/api/v1/session", gin.H{"email": "not-an-email", "password": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutClearsCookies(t *testing.T) {
	r := newRouter(newStubStore(), service.WorkflowOptions{})

	w, _ := do(t, r, http.MethodDelete, "/api/v1/session", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, c := range cookies {
		assert.Equal(t, -1, c.MaxAge, c.Name)
	}
}

func TestHealthAndCORS(t *testing.T) {
	r := newRouter(newStubStore(), service.WorkflowOptions{})

	w, _ := do(t, r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/me/bookings", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

type stubQueue struct {
	healthErr error
	failed    []*queue.FailedTask
	requeued  []string
}

func (q *stubQueue) HealthCheck(ctx context.Context) error { return q.healthErr }

func (q *stubQueue) GetQueueStats(ctx context.Context) (*queue.QueueStats, error) {
	return &queue.QueueStats{DLQ: int64(len(q.failed))}, nil
}

func (q *stubQueue) FailedTasks(ctx context.Context, limit int) ([]*queue.FailedTask, error) {
	if limit < len(q.failed) {
		return q.failed[:limit], nil
	}
	return q.failed, nil
}

func (q *stubQueue) RequeueFailed(ctx context.Context, taskID string) error {
	for i, f := range q.failed {
		if f.Task.ID == taskID {
			q.failed = append(q.failed[:i], q.failed[i+1:]...)
			q.requeued = append(q.requeued, taskID)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", queue.ErrTaskNotFound, taskID)
}

func TestFailedTasks(t *testing.T) {
	q := &stubQueue{failed: []*queue.FailedTask{
		{Task: &queue.Task{ID: "send_reminder_1", Type: queue.TaskTypeSendReminder}, Error: "booking not found", Attempts: 1},
		{Task: &queue.Task{ID: "send_reminder_2", Type: queue.TaskTypeSendReminder}, Error: "store down", Attempts: 3},
	}}
	r := newRouterWithQueue(newStubStore(), service.WorkflowOptions{}, q)

	w, _ := do(t, r, http.MethodGet, "/api/v1/dashboard/tasks/failed", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/v1/dashboard/tasks/failed?limit=1", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	var failed []queue.FailedTask
	require.NoError(t, json.Unmarshal(env.Data, &failed))
	require.Len(t, failed, 1)
	assert.Equal(t, "send_reminder_1", failed[0].Task.ID)

	w, env = do(t, r, http.MethodPost, "/api/v1/dashboard/tasks/failed/send_reminder_2/requeue", nil, owner)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "task requeued", env.Message)
	assert.Equal(t, []string{"send_reminder_2"}, q.requeued)

	w, env = do(t, r, http.MethodPost, "/api/v1/dashboard/tasks/failed/send_reminder_2/requeue", nil, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, queue.ErrTaskNotFound.Error(), env.Error)
}

func TestFailedTasksWithoutQueue(t *testing.T) {
	r := newRouter(newStubStore(), service.WorkflowOptions{})

	w, env := do(t, r, http.MethodGet, "/api/v1/dashboard/tasks/failed", nil, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "task queue is not enabled", env.Error)
}

func TestHealthReportsQueue(t *testing.T) {
	q := &stubQueue{}
	r := newRouterWithQueue(newStubStore(), service.WorkflowOptions{}, q)

	var body map[string]interface{}
	w, _ := do(t, r, http.MethodGet, "/health", nil, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "queue")

	q.healthErr = errors.New("redis connection failed")
	w, _ = do(t, r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "redis connection failed", body["queue_error"])
}

func TestBookingDetailResolvesProperty(t *testing.T) {
	b := testBooking("B1", entity.BookingStatusPending)
	b.Property = entity.PropertyRef{ID: "P2"}
	st := newStubStore(b)
	st.properties = map[string]*entity.PropertyRef{
		"P2": {ID: "P2", Title: "Lake Kivu Cottage", Location: entity.Location{City: "Gisenyi"}, OwnerID: "O1"},
	}
	r := newRouter(st, service.WorkflowOptions{})

	w, env := do(t, r, http.MethodGet, "/api/v1/bookings/B1", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	var view entity.BookingView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "Lake Kivu Cottage", view.Booking.Property.Title)
	assert.Equal(t, "Gisenyi", view.Booking.Property.Location.City)
}

func TestUpdateStatusByStranger(t *testing.T) {
	st := newStubStore(testBooking("B1", entity.BookingStatusPending))
	r := newRouter(st, service.WorkflowOptions{EnforceOwner: true, Properties: st})

	stranger := map[string]string{"userID": "O2"}
	w, env := do(t, r, http.MethodPut, "/api/v1/bookings/B1/status", gin.H{"status": "confirmed"}, stranger)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, entity.ErrNotBookingOwner.Error(), env.Error)
	assert.Empty(t, st.puts)

	w, _ = do(t, r, http.MethodPut, "/api/v1/bookings/B1/status", gin.H{"status": "confirmed"}, owner)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateBookingAcknowledged(t *testing.T) {
	st := newStubStore()
	st.ack = true
	r := newRouter(st, service.WorkflowOptions{})

	body := gin.H{"property": "P1", "start_date": "2024-04-15", "end_date": "2024-04-20", "rent_amount": 150}
	w, env := do(t, r, http.MethodPost, "/api/v1/me/bookings", body, tenant)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var b entity.Booking
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Empty(t, b.ID)
	assert.Equal(t, "T1", b.Tenant.ID)
	assert.Equal(t, entity.BookingStatusPending, b.Status)
}
