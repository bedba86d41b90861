package realtime

import "fmt"

var (
	// ErrClientDisconnected is returned when a payload cannot be handed to a
	// client because its connection is closed or its send buffer is full.
	ErrClientDisconnected = fmt.Errorf("client disconnected")

	// ErrUnknownIntent is returned by Accept for a connection whose intent
	// could not be classified. The caller is expected to close the
	// connection with a protocol error.
	ErrUnknownIntent = fmt.Errorf("unknown connection intent")
)

// ValidationError reports a malformed inbound chat payload. It is sent back
// to the originating connection only and leaves channel state untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid chat payload: " + e.Reason
}

// PersistenceError reports that the message store rejected a write. The
// message is not broadcast and not retried.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persist chat message: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
