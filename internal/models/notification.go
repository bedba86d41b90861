package models

// NotificationEvent is the payload pushed to a user's notification
// connection. It travels through Kafka between the producing handler and
// the instance holding the user's binding.
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // e.g. "grade.posted"
	UserID    uint                   `json:"userId"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}
