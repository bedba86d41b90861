package realtime

import "fmt"

// IntentKind classifies what a connection asked for when it was accepted.
type IntentKind int

const (
	IntentUnknown IntentKind = iota

	// IntentChat subscribes the connection to a course channel for chat
	// messages and presence updates.
	IntentChat

	// IntentPresence subscribes the connection to a course channel for
	// presence updates only.
	IntentPresence

	// IntentNotify binds the connection as the user's direct
	// notification target.
	IntentNotify
)

func (k IntentKind) String() string {
	switch k {
	case IntentChat:
		return "chat"
	case IntentPresence:
		return "presence"
	case IntentNotify:
		return "notify"
	default:
		return "unknown"
	}
}

// Intent is produced once when a connection is accepted and never changes
// for the lifetime of the connection. Dispatch happens on Kind; there is no
// path parsing anywhere past the HTTP handler.
type Intent struct {
	Kind     IntentKind
	CourseID uint
	UserID   uint
}

func ChatIntent(courseID uint) Intent {
	return Intent{Kind: IntentChat, CourseID: courseID}
}

func PresenceIntent(courseID uint) Intent {
	return Intent{Kind: IntentPresence, CourseID: courseID}
}

func NotifyIntent(userID uint) Intent {
	return Intent{Kind: IntentNotify, UserID: userID}
}

func (i Intent) String() string {
	switch i.Kind {
	case IntentChat, IntentPresence:
		return fmt.Sprintf("%s(course=%d)", i.Kind, i.CourseID)
	case IntentNotify:
		return fmt.Sprintf("notify(user=%d)", i.UserID)
	default:
		return "unknown"
	}
}
