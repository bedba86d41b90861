package realtime

import (
	"encoding/json"
	"time"
)

// PayloadType represents the type of an outbound WebSocket payload using a
// custom enum type for better type safety.
type PayloadType string

const (
	PayloadTypeMessage      PayloadType = "message"
	PayloadTypePresence     PayloadType = "presence"
	PayloadTypeNotification PayloadType = "notification"
	PayloadTypeError        PayloadType = "error"
)

func (pt PayloadType) String() string {
	return string(pt)
}

// ChatInbound is the payload a chat subscriber sends on its connection.
type ChatInbound struct {
	Body string `json:"body"`
}

// ChatPayload is the broadcast form of a persisted course message. The id
// and timestamp come from the message store, never from the client.
type ChatPayload struct {
	Type         PayloadType `json:"type"`
	ID           uint        `json:"id"`
	CourseID     uint        `json:"courseId"`
	AuthorUserID uint        `json:"authorUserId"`
	Body         string      `json:"body"`
	Timestamp    time.Time   `json:"timestamp"`
}

// PresencePayload carries the authoritative roster for a course channel.
type PresencePayload struct {
	Type     PayloadType `json:"type"`
	CourseID uint        `json:"courseId"`
	Users    []uint      `json:"users"`
}

// ErrorPayload is sent to the originating connection when its inbound
// payload was rejected.
type ErrorPayload struct {
	Type    PayloadType `json:"type"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

func newErrorPayload(code, message string) []byte {
	data, _ := json.Marshal(ErrorPayload{
		Type:    PayloadTypeError,
		Code:    code,
		Message: message,
	})
	return data
}
