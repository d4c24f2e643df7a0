package transport

import (
	"net/http"
	"strconv"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetBooking отдает бронирование вместе с доступными действиями
func (h *Handler) GetBooking(c *gin.Context) {
	sess := middleware.Session(c)
	_, isOwner := sess.UserID()
	_, isTenant := sess.TenantID()
	if !isOwner && !isTenant {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}

	view, err := h.services.GetBookingView(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to load booking, please try again")
		return
	}
	if !isOwner {
		// tenants see the record but cannot change its status
		view.Actions = []entity.BookingStatus{}
	}

	respondOK(c, http.StatusOK, "booking retrieved", view)
}

func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	actor, ok := middleware.Session(c).UserID()
	if !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.services.RequestTransition(c.Request.Context(), c.Param("id"), req.Status, actor)
	if err != nil {
		respondError(c, err, "failed to update booking status, please try again")
		return
	}

	respondOK(c, http.StatusOK, "booking status updated", entity.BookingView{
		Booking: booking,
		Actions: h.services.AvailableActions(booking.Status),
	})
}

func (h *Handler) SendReminder(c *gin.Context) {
	if _, ok := middleware.Session(c).UserID(); !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}

	queued, err := h.services.SendReminder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to send reminder, please try again")
		return
	}

	if queued {
		respondOK(c, http.StatusAccepted, "reminder queued", gin.H{"queued": true})
		return
	}
	respondOK(c, http.StatusOK, "reminder sent", gin.H{"queued": false})
}

func (h *Handler) GetBookingHistory(c *gin.Context) {
	if _, ok := middleware.Session(c).UserID(); !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	history, err := h.services.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err, "failed to load booking history")
		return
	}

	respondOK(c, http.StatusOK, "history retrieved", history)
}
