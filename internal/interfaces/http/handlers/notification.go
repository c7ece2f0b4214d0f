package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// NotificationHandler hands queued toasts to the UI
type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// Drain handles GET /notifications; each notification is returned once
func (h *NotificationHandler) Drain(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	c.JSON(http.StatusOK, gin.H{
		"data": sess.Inbox.Drain(),
	})
}
