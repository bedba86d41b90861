package models

import "time"

/** --------------------ENTITIES-------------------- */

// Grade is a posted grade for one student's assignment. Writing one is the
// canonical trigger for a direct notification.
type Grade struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CourseID     uint      `gorm:"not null;index" json:"courseId"`
	AssignmentID uint      `gorm:"not null;index" json:"assignmentId"`
	StudentID    uint      `gorm:"not null;index" json:"studentId"`
	Score        float64   `gorm:"not null" json:"score"`
	GradedBy     uint      `gorm:"not null" json:"gradedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

/** -------------------- DTOs -------------------- */

// Request
type CreateGradeRequest struct {
	CourseID     uint    `json:"courseId" binding:"required"`
	AssignmentID uint    `json:"assignmentId" binding:"required"`
	StudentID    uint    `json:"studentId" binding:"required"`
	Score        float64 `json:"score" binding:"gte=0"`
}
