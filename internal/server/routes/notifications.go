package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
)

// NotificationRoutes serves follow-up reminders for the signed-in user.
type NotificationRoutes struct {
	server ServerInterface
}

func NewNotificationRoutes(server ServerInterface) *NotificationRoutes {
	return &NotificationRoutes{server: server}
}

func (nr *NotificationRoutes) RegisterRoutes(r *gin.Engine) {
	// Create middleware instance
	middleware := NewMiddleware(nr.server)

	r.GET("/notifications", middleware.AuthMiddleware(), middleware.RequireRole(auth.PermLeads), nr.getUserNotificationsHandler)
}

// getUserNotificationsHandler returns upcoming follow-ups on the leads the
// user can see
func (nr *NotificationRoutes) getUserNotificationsHandler(c *gin.Context) {
	// Get limit from query parameter, default to 50
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	// Cap the limit
	if limit > 100 {
		limit = 100
	}

	reminders, err := nr.server.Leads().Reminders(c.Request.Context(), currentUser(c), time.Now(), limit)
	if err != nil {
		respondError(c, nr.server.Logger(), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": reminders})
}
