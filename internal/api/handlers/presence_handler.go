package handlers

import (
	"net/http"

	"classroom-live/internal/models"
	"classroom-live/internal/realtime"
	"classroom-live/internal/services"
	"classroom-live/internal/utils"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	presence     *realtime.PresenceTracker
	redisService *services.RedisService
}

func NewPresenceHandler(presence *realtime.PresenceTracker, redisService *services.RedisService) *PresenceHandler {
	return &PresenceHandler{
		presence:     presence,
		redisService: redisService,
	}
}

// GetCoursePresence returns the live roster for a course without requiring
// a WebSocket subscription. The default reads this instance's in-memory
// tracker; ?source=mirror reads the Redis copy, which covers connections
// held by other instances. GET /api/v1/courses/:courseId/presence
func (h *PresenceHandler) GetCoursePresence(c *gin.Context) {
	courseID, err := utils.StringToUint(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid courseId parameter"})
		return
	}

	if c.Query("source") == "mirror" {
		users, err := h.redisService.GetCourseRoster(c.Request.Context(), courseID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read presence mirror"})
			return
		}
		c.JSON(http.StatusOK, models.PresenceSnapshot{CourseID: courseID, Users: users})
		return
	}

	c.JSON(http.StatusOK, h.presence.Snapshot(courseID))
}
