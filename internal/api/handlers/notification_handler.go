package handlers

import (
	"net/http"
	"time"

	"classroom-live/internal/adapters/kafka"
	"classroom-live/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	publisher *kafka.NotificationPublisher
}

func NewNotificationHandler(publisher *kafka.NotificationPublisher) *NotificationHandler {
	return &NotificationHandler{publisher: publisher}
}

type NotifyRequest struct {
	UserID uint                   `json:"userId" binding:"required"`
	Type   string                 `json:"type" binding:"required"`
	Data   map[string]interface{} `json:"data"`
}

// PushNotification publishes a notification event for delivery by whichever
// instance holds the user's binding. Delivery is not guaranteed; callers
// needing durability persist the notification themselves first.
// POST /api/v1/notifications
func (h *NotificationHandler) PushNotification(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &models.NotificationEvent{
		ID:        uuid.New().String(),
		Type:      req.Type,
		UserID:    req.UserID,
		Data:      req.Data,
		Timestamp: time.Now().Unix(),
	}
	if err := h.publisher.Publish(event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish notification"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": event.ID})
}
