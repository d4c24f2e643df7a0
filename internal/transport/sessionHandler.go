package transport

import (
	"net/http"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/session"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	entity.Credentials
	// Role "tenant" issues a tenantID cookie, anything else a userID cookie.
	Role string `json:"role"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	identity, err := h.services.Login(c.Request.Context(), &req.Credentials)
	if err != nil {
		respondError(c, err, "login failed, please try again")
		return
	}

	idKey := session.KeyUserID
	if req.Role == "tenant" {
		idKey = session.KeyTenantID
	}
	session.WriteIdentity(c.Writer, map[string]string{
		idKey:           identity.UserID,
		session.KeyName: identity.Name,
	}, h.cookieLifetime, h.now())

	respondOK(c, http.StatusOK, "logged in", identity)
}

func (h *Handler) Logout(c *gin.Context) {
	session.ClearIdentity(c.Writer, session.KeyUserID, session.KeyTenantID, session.KeyName)
	respondOK(c, http.StatusOK, "logged out", nil)
}
