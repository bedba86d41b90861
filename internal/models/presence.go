package models

// PresenceSnapshot is the REST shape of a course's live roster.
type PresenceSnapshot struct {
	CourseID uint   `json:"courseId"`
	Users    []uint `json:"users"`
}
