package handlers

import (
	"net/http"

	"classroom-live/internal/models"
	"classroom-live/internal/repositories/postgres"
	"classroom-live/internal/utils"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 100

type MessageHandler struct {
	messageRepo *postgres.MessageRepository
}

func NewMessageHandler(messageRepo *postgres.MessageRepository) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo}
}

// GetCourseMessages returns the persisted message history for a course.
// GET /api/v1/courses/:courseId/messages
func (h *MessageHandler) GetCourseMessages(c *gin.Context) {
	courseID, err := utils.StringToUint(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid courseId parameter"})
		return
	}

	limit := defaultHistoryLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := utils.StringToUint(limitStr); err == nil && parsed > 0 {
			limit = int(parsed)
		}
	}

	messages, err := h.messageRepo.FindByCourseID(c.Request.Context(), courseID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, models.CourseMessagesResponse{
		CourseID: courseID,
		Messages: messages,
	})
}
