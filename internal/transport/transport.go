package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/ds124wfegd/rentdesk/config"
	"github.com/ds124wfegd/rentdesk/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigin))
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(middleware.Identity())

	api := router.Group("/api/v1")
	{
		api.POST("/session", h.Login)
		api.DELETE("/session", h.Logout)

		// Tenant routes
		me := api.Group("/me")
		{
			me.GET("/bookings", h.ListMyBookings)
			me.POST("/bookings", h.CreateBooking)
			me.POST("/payments", h.CreatePayment)
		}

		// Owner dashboard routes
		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("/bookings", h.ListOwnerBookings)
			dashboard.GET("/overview", h.GetOwnerOverview)
			dashboard.GET("/tasks/failed", h.ListFailedTasks)
			dashboard.POST("/tasks/failed/:taskId/requeue", h.RequeueFailedTask)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("/:id", h.GetBooking)
			bookings.PUT("/:id/status", h.UpdateBookingStatus)
			bookings.POST("/:id/reminder", h.SendReminder)
			bookings.GET("/:id/history", h.GetBookingHistory)
		}
	}

	router.GET("/health", h.Health)

	return router
}

func (h *Handler) Health(c *gin.Context) {
	body := gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	}

	if h.queue != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.queue.HealthCheck(ctx); err != nil {
			body["status"] = "degraded"
			body["queue_error"] = err.Error()
		} else if stats, err := h.queue.GetQueueStats(ctx); err != nil {
			body["status"] = "degraded"
			body["queue_error"] = err.Error()
		} else {
			body["queue"] = stats
		}
	}

	c.JSON(http.StatusOK, body)
}
