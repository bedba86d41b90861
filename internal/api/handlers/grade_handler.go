package handlers

import (
	"net/http"
	"time"

	"classroom-live/internal/adapters/kafka"
	"classroom-live/internal/models"
	"classroom-live/internal/repositories/postgres"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GradeHandler struct {
	gradeRepo *postgres.GradeRepository
	publisher *kafka.NotificationPublisher
}

func NewGradeHandler(gradeRepo *postgres.GradeRepository, publisher *kafka.NotificationPublisher) *GradeHandler {
	return &GradeHandler{
		gradeRepo: gradeRepo,
		publisher: publisher,
	}
}

// CreateGrade persists a grade and publishes a notification event for the
// student. POST /api/v1/grades
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	var req models.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	graderID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	grade := &models.Grade{
		CourseID:     req.CourseID,
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
		Score:        req.Score,
		GradedBy:     graderID.(uint),
	}
	if err := h.gradeRepo.Create(c.Request.Context(), grade); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store grade"})
		return
	}

	event := &models.NotificationEvent{
		ID:     uuid.New().String(),
		Type:   "grade.posted",
		UserID: grade.StudentID,
		Data: map[string]interface{}{
			"gradeId":      grade.ID,
			"courseId":     grade.CourseID,
			"assignmentId": grade.AssignmentID,
			"score":        grade.Score,
		},
		Timestamp: time.Now().Unix(),
	}
	if err := h.publisher.Publish(event); err != nil {
		// The grade is durable; the live ping is best-effort.
		slog.Error("Failed to publish grade notification", "studentID", grade.StudentID, "error", err)
	}

	c.JSON(http.StatusCreated, grade)
}
