// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/session"
)

const (
	sessionKey   = "session"
	sessionIDKey = "session_id"
)

// SessionMiddleware resolves the browser session from its cookie, issuing a new id when absent
func SessionMiddleware(cfg *config.Config, registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cfg.Session.CookieName)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Session.CookieName, sessionID, cfg.Session.CookieMaxAge, "/", "", cfg.Session.CookieSecure, true)
		}

		c.Set(sessionIDKey, sessionID)
		c.Set(sessionKey, registry.Get(c.Request.Context(), sessionID))
		c.Next()
	}
}

// RequireAuth rejects requests from signed-out sessions
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := GetSessionFromContext(c)
		if !ok || !sess.Auth.IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "AUTHENTICATION_REQUIRED",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSessionFromContext returns the session resolved by SessionMiddleware
func GetSessionFromContext(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

// GetSessionIDFromContext returns the browser session id
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	id, exists := c.Get(sessionIDKey)
	if !exists {
		return "", false
	}
	return id.(string), true
}
