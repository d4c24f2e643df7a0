package entity

import "errors"

var (
	// Booking errors
	ErrBookingNotFound      = errors.New("booking not found")
	ErrInvalidBookingStatus = errors.New("invalid booking status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	ErrTransitionInFlight   = errors.New("another status change is in progress")
	ErrHistoryDisabled      = errors.New("transition history is not enabled")
	ErrNotBookingOwner      = errors.New("only the property owner can change this booking")
	ErrPropertyNotFound     = errors.New("property not found")

	// Value errors
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidPhone     = errors.New("invalid phone number")

	// Store errors
	ErrStoreUnavailable  = errors.New("booking service unavailable")
	ErrStoreRejected     = errors.New("booking service rejected the request")
	ErrMalformedResponse = errors.New("unexpected response from booking service")

	// General errors
	ErrIdentityMissing = errors.New("please log in")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("invalid credentials")
)
