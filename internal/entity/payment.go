package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

type CreatePaymentRequest struct {
	BookingID string          `json:"booking_id" binding:"required"`
	TenantID  string          `json:"-"`
	OwnerID   string          `json:"owner_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Phone     string          `json:"phone" binding:"required"`
}

func (r *CreatePaymentRequest) Validate() error {
	if strings.TrimSpace(r.TenantID) == "" {
		return ErrIdentityMissing
	}
	if strings.TrimSpace(r.BookingID) == "" || strings.TrimSpace(r.OwnerID) == "" {
		return fmt.Errorf("%w: booking and owner are required", ErrInvalidInput)
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !phonePattern.MatchString(strings.ReplaceAll(r.Phone, " ", "")) {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, r.Phone)
	}
	return nil
}

// Payment is what the store returns after a payment is initiated.
type Payment struct {
	ID        string          `json:"id"`
	BookingID string          `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    PaymentStatus   `json:"status"`
}

// Credentials and Identity belong to the login flow.
type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
