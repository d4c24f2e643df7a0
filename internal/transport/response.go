package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/pkg/queue"
	"github.com/gin-gonic/gin"
)

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// PageMeta describes the slice of a list that Data holds.
type PageMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

const (
	msgNoBookings = "no bookings"
	msgBookings   = "bookings retrieved"
)

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}

func respondPage[T any](c *gin.Context, page *entity.Page[T]) {
	message := msgBookings
	if page.TotalItems == 0 {
		message = msgNoBookings
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: message,
		Data:    page.Items,
		Meta: PageMeta{
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalItems: page.TotalItems,
			TotalPages: page.TotalPages,
			HasNext:    page.HasNext,
			HasPrev:    page.HasPrev,
		},
	})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Error: message})
}

// respondError maps err to a status code. Store failures of any kind are shown
// as fallback, the rest carry their own message.
func respondError(c *gin.Context, err error, fallback string) {
	c.Error(err)

	switch {
	case errors.Is(err, entity.ErrIdentityMissing):
		respondMessage(c, http.StatusUnauthorized, entity.ErrIdentityMissing.Error())
	case errors.Is(err, entity.ErrUnauthorized):
		respondMessage(c, http.StatusUnauthorized, entity.ErrUnauthorized.Error())
	case errors.Is(err, entity.ErrTransitionInFlight):
		respondMessage(c, http.StatusConflict, entity.ErrTransitionInFlight.Error())
	case errors.Is(err, entity.ErrNotBookingOwner):
		respondMessage(c, http.StatusForbidden, entity.ErrNotBookingOwner.Error())
	case errors.Is(err, entity.ErrTransitionNotAllowed):
		respondMessage(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, entity.ErrBookingNotFound):
		respondMessage(c, http.StatusNotFound, entity.ErrBookingNotFound.Error())
	case errors.Is(err, entity.ErrPropertyNotFound):
		respondMessage(c, http.StatusNotFound, entity.ErrPropertyNotFound.Error())
	case errors.Is(err, entity.ErrHistoryDisabled):
		respondMessage(c, http.StatusNotFound, entity.ErrHistoryDisabled.Error())
	case errors.Is(err, queue.ErrTaskNotFound):
		respondMessage(c, http.StatusNotFound, queue.ErrTaskNotFound.Error())
	case errors.Is(err, queue.ErrDLQDisabled):
		respondMessage(c, http.StatusNotFound, queue.ErrDLQDisabled.Error())
	case errors.Is(err, entity.ErrInvalidBookingStatus),
		errors.Is(err, entity.ErrInvalidPaymentStatus),
		errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidDate),
		errors.Is(err, entity.ErrInvalidDateRange),
		errors.Is(err, entity.ErrNegativeAmount),
		errors.Is(err, entity.ErrInvalidAmount),
		errors.Is(err, entity.ErrInvalidPhone):
		respondMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrStoreUnavailable):
		respondMessage(c, http.StatusServiceUnavailable, fallback)
	case errors.Is(err, entity.ErrStoreRejected), errors.Is(err, entity.ErrMalformedResponse):
		respondMessage(c, http.StatusBadGateway, fallback)
	default:
		respondMessage(c, http.StatusInternalServerError, fallback)
	}
}

func respondBindError(c *gin.Context, err error) {
	c.Error(err)
	respondMessage(c, http.StatusBadRequest, "invalid request body: "+err.Error())
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
