package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ds124wfegd/rentdesk/config"
	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 4 << 20

type httpStore struct {
	baseURL string
	client  *http.Client
}

func NewHTTPStore(cfg *config.StoreConfig) Store {
	return &httpStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// NewHTTPStoreWithClient lets callers bring their own transport.
func NewHTTPStoreWithClient(baseURL string, client *http.Client) Store {
	return &httpStore{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// errNotFound marks a 404 so each operation can decide what absence means.
var errNotFound = errors.New("not found")

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s %s: %d %s", entity.ErrStoreRejected, e.Method, e.Path, e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case entity.ErrStoreRejected:
		return true
	case errNotFound:
		return e.Code == http.StatusNotFound
	case entity.ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	}
	return false
}

func (s *httpStore) do(ctx context.Context, method, path string, in interface{}) ([]byte, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{"method": method, "path": path}).Warnf("store request failed: %v", err)
		return nil, fmt.Errorf("%w: %s %s: %v", entity.ErrStoreUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %v", entity.ErrStoreUnavailable, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return data, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

func bookingPath(format, id string) string {
	return fmt.Sprintf(format, url.PathEscape(id))
}

func (s *httpStore) list(ctx context.Context, path string) ([]*entity.Booking, error) {
	data, err := s.do(ctx, http.MethodGet, path, nil)
	if errors.Is(err, errNotFound) {
		// the API answers 404 for someone without bookings
		return []*entity.Booking{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeBookings(data)
}

func (s *httpStore) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Booking, error) {
	return s.list(ctx, bookingPath("/booking/tenant/%s", tenantID))
}

func (s *httpStore) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Booking, error) {
	return s.list(ctx, bookingPath("/booking/id/%s", ownerID))
}

func (s *httpStore) Get(ctx context.Context, bookingID string) (*entity.Booking, error) {
	data, err := s.do(ctx, http.MethodGet, bookingPath("/booking/bookingid/%s", bookingID), nil)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: %s", entity.ErrBookingNotFound, bookingID)
	}
	if err != nil {
		return nil, err
	}
	return decodeBooking(data)
}

func (s *httpStore) UpdateStatus(ctx context.Context, bookingID string, status entity.BookingStatus) error {
	body := map[string]string{"status": string(status)}
	_, err := s.do(ctx, http.MethodPut, bookingPath("/booking/%s/status", bookingID), body)
	if errors.Is(err, errNotFound) {
		return fmt.Errorf("%w: %w", err, entity.ErrBookingNotFound)
	}
	return err
}

func (s *httpStore) SendReminder(ctx context.Context, bookingID string) error {
	_, err := s.do(ctx, http.MethodPost, bookingPath("/booking/%s/send-reminder", bookingID), nil)
	if errors.Is(err, errNotFound) {
		return fmt.Errorf("%w: %w", err, entity.ErrBookingNotFound)
	}
	return err
}

func (s *httpStore) GetProperty(ctx context.Context, propertyID string) (*entity.PropertyRef, error) {
	data, err := s.do(ctx, http.MethodGet, bookingPath("/property/find/%s", propertyID), nil)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: %s", entity.ErrPropertyNotFound, propertyID)
	}
	if err != nil {
		return nil, err
	}
	property, err := decodeProperty(data)
	if err != nil {
		return nil, err
	}
	if property.ID == "" {
		property.ID = propertyID
	}
	return property, nil
}

type createBookingBody struct {
	Tenant     string      `json:"tenant"`
	Property   string      `json:"property"`
	StartDate  entity.Date `json:"startDate"`
	EndDate    entity.Date `json:"endDate"`
	RentAmount json.Number `json:"rentAmount"`
}

func (s *httpStore) Create(ctx context.Context, req *entity.CreateBookingRequest) (*entity.Booking, error) {
	body := createBookingBody{
		Tenant:     req.TenantID,
		Property:   req.PropertyID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		RentAmount: json.Number(req.RentAmount.String()),
	}
	data, err := s.do(ctx, http.MethodPost, "/booking/new", body)
	if err != nil {
		return nil, err
	}
	if !hasBookingDocument(data) {
		logrus.WithField("property_id", req.PropertyID).Debug("booking acknowledged without a document")
		return nil, nil
	}
	return decodeBooking(data)
}

type createPaymentBody struct {
	BookingID string      `json:"bookingId"`
	TenantID  string      `json:"tenantId"`
	OwnerID   string      `json:"ownerId"`
	Amount    json.Number `json:"amount"`
	Phone     string      `json:"phone"`
}

func (s *httpStore) CreatePayment(ctx context.Context, req *entity.CreatePaymentRequest) (*entity.Payment, error) {
	body := createPaymentBody{
		BookingID: req.BookingID,
		TenantID:  req.TenantID,
		OwnerID:   req.OwnerID,
		Amount:    json.Number(req.Amount.String()),
		Phone:     req.Phone,
	}
	data, err := s.do(ctx, http.MethodPost, "/payment/create", body)
	if err != nil {
		return nil, err
	}
	return decodePayment(data)
}

func (s *httpStore) Login(ctx context.Context, creds *entity.Credentials) (*entity.Identity, error) {
	data, err := s.do(ctx, http.MethodPost, "/auth/login", creds)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code < http.StatusInternalServerError {
		// the API reports a wrong password as 400 or 401
		return nil, fmt.Errorf("%w: %s", entity.ErrUnauthorized, statusErr.Message)
	}
	if err != nil {
		return nil, err
	}
	return decodeIdentity(data)
}
