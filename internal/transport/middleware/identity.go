package middleware

import (
	"github.com/ds124wfegd/rentdesk/internal/session"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Identity reads the identity cookies once per request.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, session.New(session.FromRequest(c.Request)))
		c.Next()
	}
}

// Session returns the request's session. Without the Identity middleware the
// cookies are read on demand.
func Session(c *gin.Context) session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(session.Session); ok {
			return s
		}
	}
	return session.New(session.FromRequest(c.Request))
}
