package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/shopspring/decimal"
)

// flexID is a reference the API sends either as a bare id or as a populated document.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	default:
		var doc struct {
			ID    string `json:"_id"`
			AltID string `json:"id"`
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
		*f = flexID(firstNonEmpty(doc.ID, doc.AltID))
		return nil
	}
}

type wireTenant struct {
	ID    string
	Name  string
	Email string
	Phone string
}

func (t *wireTenant) UnmarshalJSON(b []byte) error {
	var id flexID
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	t.ID = string(id)
	if b = bytes.TrimSpace(b); len(b) == 0 || b[0] != '{' {
		return nil
	}
	var doc struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	t.Name, t.Email, t.Phone = doc.Name, doc.Email, doc.Phone
	return nil
}

type wireProperty struct {
	ID       string
	Title    string
	Location entity.Location
	OwnerID  string
}

func (p *wireProperty) UnmarshalJSON(b []byte) error {
	var id flexID
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	p.ID = string(id)
	if b = bytes.TrimSpace(b); len(b) == 0 || b[0] != '{' {
		return nil
	}
	var doc struct {
		Title    string `json:"title"`
		Location struct {
			Address string `json:"address"`
			City    string `json:"city"`
		} `json:"location"`
		Owner flexID `json:"owner"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	p.Title = doc.Title
	p.Location = entity.Location{Address: doc.Location.Address, City: doc.Location.City}
	p.OwnerID = string(doc.Owner)
	return nil
}

type wireBooking struct {
	ID            string           `json:"_id"`
	AltID         string           `json:"id"`
	Tenant        wireTenant       `json:"tenant"`
	Property      wireProperty     `json:"property"`
	Status        string           `json:"status"`
	PaymentStatus string           `json:"paymentStatus"`
	StartDate     entity.Date      `json:"startDate"`
	EndDate       entity.Date      `json:"endDate"`
	RentAmount    *decimal.Decimal `json:"rentAmount"`
}

func (w *wireBooking) toEntity() (*entity.Booking, error) {
	b := &entity.Booking{
		ID: firstNonEmpty(w.ID, w.AltID),
		Tenant: entity.TenantRef{
			ID:    w.Tenant.ID,
			Name:  w.Tenant.Name,
			Email: w.Tenant.Email,
			Phone: w.Tenant.Phone,
		},
		Property: entity.PropertyRef{
			ID:       w.Property.ID,
			Title:    w.Property.Title,
			Location: w.Property.Location,
			OwnerID:  w.Property.OwnerID,
		},
		StartDate:  w.StartDate,
		EndDate:    w.EndDate,
		RentAmount: decimal.Zero,
	}
	if w.RentAmount != nil {
		b.RentAmount = *w.RentAmount
	}

	status, err := entity.ParseBookingStatus(w.Status)
	if err != nil {
		return nil, fmt.Errorf("booking %q status: %w", b.ID, err)
	}
	b.Status = status

	payment, err := entity.ParsePaymentStatus(w.PaymentStatus)
	if err != nil {
		return nil, fmt.Errorf("booking %q paymentStatus: %w", b.ID, err)
	}
	b.PaymentStatus = payment

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
}

// decodeBookings accepts a bare array or {"bookings": [...]}.
func decodeBookings(body []byte) ([]*entity.Booking, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []*entity.Booking{}, nil
	}

	var raw []wireBooking
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, malformed(err)
		}
	case '{':
		var envelope struct {
			Bookings *[]wireBooking `json:"bookings"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, malformed(err)
		}
		if envelope.Bookings == nil {
			return nil, malformed(fmt.Errorf("missing bookings field"))
		}
		raw = *envelope.Bookings
	default:
		return nil, malformed(fmt.Errorf("unexpected body %.32q", body))
	}

	out := make([]*entity.Booking, 0, len(raw))
	for i := range raw {
		b, err := raw[i].toEntity()
		if err != nil {
			return nil, malformed(err)
		}
		out = append(out, b)
	}
	return out, nil
}

// hasBookingDocument reports whether a create answer carries a booking. The API
// may only acknowledge, with an empty body, plain text or {"message": ...}.
func hasBookingDocument(body []byte) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return false
	}
	switch body[0] {
	case '[':
		return true
	case '{':
	default:
		return false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// broken JSON is left for decodeBooking to report
		return true
	}
	for _, key := range []string{"booking", "bookings", "_id", "id", "status"} {
		if v, ok := fields[key]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return true
		}
	}
	return false
}

// decodeBooking accepts {"bookings": [...]}, {"booking": {...}}, a bare array or
// a bare document. The first booking wins; none at all is ErrBookingNotFound.
func decodeBooking(body []byte) (*entity.Booking, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, entity.ErrBookingNotFound
	}

	if body[0] == '{' {
		var envelope struct {
			Bookings *json.RawMessage `json:"bookings"`
			Booking  *json.RawMessage `json:"booking"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, malformed(err)
		}
		switch {
		case envelope.Bookings != nil:
			body = *envelope.Bookings
		case envelope.Booking != nil:
			var w wireBooking
			if err := json.Unmarshal(*envelope.Booking, &w); err != nil {
				return nil, malformed(err)
			}
			return single(&w)
		default:
			var w wireBooking
			if err := json.Unmarshal(body, &w); err != nil {
				return nil, malformed(err)
			}
			return single(&w)
		}
	}

	list, err := decodeBookings(body)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, entity.ErrBookingNotFound
	}
	return list[0], nil
}

func single(w *wireBooking) (*entity.Booking, error) {
	b, err := w.toEntity()
	if err != nil {
		return nil, malformed(err)
	}
	return b, nil
}

// decodeProperty accepts a bare document or {"property": {...}}.
func decodeProperty(body []byte) (*entity.PropertyRef, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, malformed(fmt.Errorf("unexpected property body %.32q", body))
	}

	var envelope struct {
		Property *json.RawMessage `json:"property"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, malformed(err)
	}
	if envelope.Property != nil {
		body = bytes.TrimSpace(*envelope.Property)
		if len(body) == 0 || body[0] != '{' {
			return nil, malformed(fmt.Errorf("property is not a document"))
		}
	}

	var w wireProperty
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, malformed(err)
	}
	return &entity.PropertyRef{
		ID:       w.ID,
		Title:    w.Title,
		Location: w.Location,
		OwnerID:  w.OwnerID,
	}, nil
}

type wirePayment struct {
	ID        string           `json:"_id"`
	AltID     string           `json:"id"`
	Booking   flexID           `json:"booking"`
	BookingID string           `json:"bookingId"`
	Amount    *decimal.Decimal `json:"amount"`
	Status    string           `json:"status"`
}

// decodePayment accepts a bare document or {"payment": {...}}. A payment the API
// does not give a status for has just been initiated and is pending.
func decodePayment(body []byte) (*entity.Payment, error) {
	var envelope struct {
		Payment *json.RawMessage `json:"payment"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, malformed(err)
	}
	if envelope.Payment != nil {
		body = *envelope.Payment
	}

	var w wirePayment
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, malformed(err)
	}
	p := &entity.Payment{
		ID:        firstNonEmpty(w.ID, w.AltID),
		BookingID: firstNonEmpty(string(w.Booking), w.BookingID),
		Amount:    decimal.Zero,
		Status:    entity.PaymentStatusPending,
	}
	if p.ID == "" {
		return nil, malformed(fmt.Errorf("payment id is empty"))
	}
	if w.Amount != nil {
		p.Amount = *w.Amount
	}
	if w.Status != "" {
		status, err := entity.ParsePaymentStatus(w.Status)
		if err != nil {
			return nil, malformed(err)
		}
		p.Status = status
	}
	return p, nil
}

type wireIdentity struct {
	ID    string `json:"_id"`
	AltID string `json:"id"`
	Name  string `json:"name"`
}

func decodeIdentity(body []byte) (*entity.Identity, error) {
	var w wireIdentity
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, malformed(err)
	}
	id := firstNonEmpty(w.ID, w.AltID)
	if id == "" || strings.TrimSpace(w.Name) == "" {
		return nil, malformed(fmt.Errorf("login response lacks user id or name"))
	}
	return &entity.Identity{UserID: id, Name: w.Name}, nil
}

// errorMessage pulls a human readable reason out of an error body.
func errorMessage(body []byte) string {
	var doc struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &doc); err == nil {
		if msg := firstNonEmpty(doc.Error, doc.Message); msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 100 {
		msg = msg[:100]
	}
	return msg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
