package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
	"leaddesk/internal/models"
)

const (
	userKey          = "user"
	sessionUserID    = "user_id"
	sessionUserRole  = "role"
	unmatchedRouteID = "unmatched"
)

type Middleware struct {
	server ServerInterface
}

func NewMiddleware(server ServerInterface) *Middleware {
	return &Middleware{server: server}
}

// AuthMiddleware loads the session user. Sessions of deleted or deactivated
// users are cleared and rejected.
func (m *Middleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserID).(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		user, err := m.server.Users().Get(c.Request.Context(), userID)
		if errors.Is(err, models.ErrNotFound) || (err == nil && !user.IsActive) {
			session.Clear()
			_ = session.Save()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if err != nil {
			m.server.Logger().ErrorContext(c.Request.Context(), "load session user", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the current user's role grants p.
// It must run after AuthMiddleware.
func (m *Middleware) RequireRole(p auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !auth.Allowed(user.Role, p) {
			m.server.Logger().WarnContext(c.Request.Context(), "access denied",
				"user_id", user.ID, "role", user.Role, "permission", p)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request and records it in the request histogram.
func (m *Middleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = unmatchedRouteID
		}
		status := c.Writer.Status()
		m.server.Metrics().ObserveRequest(c.Request.Method, route, status, elapsed)

		log := m.server.Logger()
		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"client_ip", c.ClientIP(),
		}
		if status >= http.StatusInternalServerError {
			log.ErrorContext(c.Request.Context(), "http request", attrs...)
			return
		}
		log.DebugContext(c.Request.Context(), "http request", attrs...)
	}
}
