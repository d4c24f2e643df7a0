package transport

import (
	"net/http"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/service"
	"github.com/ds124wfegd/rentdesk/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListOwnerBookings(c *gin.Context) {
	ownerID, ok := middleware.Session(c).UserID()
	if !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}

	page, err := h.services.OwnerBookings(c.Request.Context(), ownerID, service.ListOptions{
		Page:   pageParam(c),
		Search: c.Query("q"),
	})
	if err != nil {
		respondError(c, err, "failed to load bookings, please try again")
		return
	}

	respondPage(c, page)
}

func (h *Handler) GetOwnerOverview(c *gin.Context) {
	ownerID, ok := middleware.Session(c).UserID()
	if !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}

	overview, err := h.services.OwnerOverview(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err, "failed to load overview, please try again")
		return
	}

	respondOK(c, http.StatusOK, "overview retrieved", overview)
}
