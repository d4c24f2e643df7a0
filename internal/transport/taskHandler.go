package transport

import (
	"net/http"
	"strconv"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

const msgQueueDisabled = "task queue is not enabled"

// ListFailedTasks shows reminders and notifications that ran out of retries.
func (h *Handler) ListFailedTasks(c *gin.Context) {
	if _, ok := middleware.Session(c).UserID(); !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}
	if h.queue == nil {
		respondMessage(c, http.StatusNotFound, msgQueueDisabled)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	tasks, err := h.queue.FailedTasks(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "failed to load failed tasks")
		return
	}

	respondOK(c, http.StatusOK, "failed tasks retrieved", tasks)
}

func (h *Handler) RequeueFailedTask(c *gin.Context) {
	if _, ok := middleware.Session(c).UserID(); !ok {
		respondError(c, entity.ErrIdentityMissing, "")
		return
	}
	if h.queue == nil {
		respondMessage(c, http.StatusNotFound, msgQueueDisabled)
		return
	}

	taskID := c.Param("taskId")
	if err := h.queue.RequeueFailed(c.Request.Context(), taskID); err != nil {
		respondError(c, err, "failed to requeue task, please try again")
		return
	}

	respondOK(c, http.StatusAccepted, "task requeued", gin.H{"task_id": taskID})
}
