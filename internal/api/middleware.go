package api

import (
	"strings"

	"storefront-service/internal/auth"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader carries the browser session id in both directions
const SessionHeader = "X-Session-ID"

const (
	maxSessionIDLen = 128

	storefrontKey = "storefront"
	principalKey  = "principal"
)

// sessionMiddleware attaches the caller's storefront and principal. Requests
// without a session id get a new one, echoed back in SessionHeader.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := h.identity.Resolve(c.GetHeader("Authorization"))
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}

		sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
		if len(sessionID) > maxSessionIDLen {
			badRequest(c, "Invalid session id", nil)
			c.Abort()
			return
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		c.Header(SessionHeader, sessionID)

		sf, err := h.sessions.Get(c.Request.Context(), sessionID)
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Set(storefrontKey, sf)
		c.Next()
	}
}

func storefront(c *gin.Context) *service.Storefront {
	return c.MustGet(storefrontKey).(*service.Storefront)
}

func principal(c *gin.Context) auth.Principal {
	return c.MustGet(principalKey).(auth.Principal)
}
