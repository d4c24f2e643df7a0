package transport

import (
	"net/http"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/service"
	"github.com/ds124wfegd/rentdesk/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

// ListMyBookings is the tenant's booking list. Without a tenantID cookie the
// store is never asked.
func (h *Handler) ListMyBookings(c *gin.Context) {
	tenantID, ok := middleware.Session(c).TenantID()
	if !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}

	page, err := h.services.TenantBookings(c.Request.Context(), tenantID, service.ListOptions{
		Page:   pageParam(c),
		Search: c.Query("q"),
	})
	if err != nil {
		respondError(c, err, "failed to load bookings, please try again")
		return
	}

	respondPage(c, page)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	tenantID, ok := middleware.Session(c).TenantID()
	if !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}

	var req entity.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.TenantID = tenantID

	booking, err := h.services.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "failed to create booking, please try again")
		return
	}

	respondOK(c, http.StatusCreated, "booking created", booking)
}

func (h *Handler) CreatePayment(c *gin.Context) {
	tenantID, ok := middleware.Session(c).TenantID()
	if !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}

	var req entity.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.TenantID = tenantID

	payment, err := h.services.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "failed to initiate payment, please try again")
		return
	}

	respondOK(c, http.StatusCreated, "payment initiated", payment)
}
