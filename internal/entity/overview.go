package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BookingOverview is the summary shown above the owner's booking table.
type BookingOverview struct {
	TotalBookings     int                   `json:"total_bookings"`
	ByStatus          map[BookingStatus]int `json:"by_status"`
	ByPaymentStatus   map[PaymentStatus]int `json:"by_payment_status"`
	ConfirmedRevenue  decimal.Decimal       `json:"confirmed_revenue"`
	PaidRevenue       decimal.Decimal       `json:"paid_revenue"`
	OutstandingAmount decimal.Decimal       `json:"outstanding_amount"`
}

// Overview counts statuses and sums rent. Revenue is rent of confirmed bookings,
// outstanding is rent of confirmed bookings not yet paid.
func Overview(bookings []*Booking) *BookingOverview {
	o := &BookingOverview{
		TotalBookings:     len(bookings),
		ByStatus:          make(map[BookingStatus]int, len(BookingStatuses)),
		ByPaymentStatus:   make(map[PaymentStatus]int, 3),
		ConfirmedRevenue:  decimal.Zero,
		PaidRevenue:       decimal.Zero,
		OutstandingAmount: decimal.Zero,
	}
	for _, s := range BookingStatuses {
		o.ByStatus[s] = 0
	}
	for _, s := range []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed} {
		o.ByPaymentStatus[s] = 0
	}

	for _, b := range bookings {
		o.ByStatus[b.Status]++
		o.ByPaymentStatus[b.PaymentStatus]++
		if b.PaymentStatus == PaymentStatusPaid {
			o.PaidRevenue = o.PaidRevenue.Add(b.RentAmount)
		}
		if b.Status == BookingStatusConfirmed {
			o.ConfirmedRevenue = o.ConfirmedRevenue.Add(b.RentAmount)
			if b.PaymentStatus != PaymentStatusPaid {
				o.OutstandingAmount = o.OutstandingAmount.Add(b.RentAmount)
			}
		}
	}
	return o
}

// Search keeps bookings whose id, tenant name or status contains term, ignoring case.
func Search(bookings []*Booking, term string) []*Booking {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return bookings
	}
	out := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if strings.Contains(strings.ToLower(b.ID), term) ||
			strings.Contains(strings.ToLower(b.Tenant.Name), term) ||
			strings.Contains(string(b.Status), term) {
			out = append(out, b)
		}
	}
	return out
}
