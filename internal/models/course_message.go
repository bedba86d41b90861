package models

import "time"

/** --------------------ENTITIES-------------------- */

// CourseMessage is a persisted chat message in a course channel. The id and
// timestamp are assigned by the database on create and are immutable after.
type CourseMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;index" json:"courseId"`
	AuthorID  uint      `gorm:"not null;index" json:"authorUserId"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"timestamp"`
}

/** -------------------- DTOs -------------------- */

// CourseMessagesResponse is the message-history page for one course.
type CourseMessagesResponse struct {
	CourseID uint             `json:"courseId"`
	Messages []*CourseMessage `json:"messages"`
}
