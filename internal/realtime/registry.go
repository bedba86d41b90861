package realtime

import (
	"context"
	"errors"
	"log/slog"
)

// Registry tracks live connections and routes each one, by its intent, into
// the course channel map or the notification bindings. It is the only
// component that mutates membership on connection open and close.
type Registry struct {
	channels *ChannelManager
	notifier *NotificationRouter
	presence *PresenceTracker
	relay    *Relay
}

func NewRegistry(store MessageStore, mirror PresenceMirror) *Registry {
	channels := NewChannelManager()
	presence := NewPresenceTracker(channels, mirror)

	r := &Registry{
		channels: channels,
		notifier: NewNotificationRouter(),
		presence: presence,
		relay:    NewRelay(channels, store),
	}

	// Subscribers evicted mid-broadcast left the channel without going
	// through OnClose; the roster still has to be re-announced.
	channels.onEvict = func(courseID uint, c *Client) {
		presence.MembershipChanged(courseID)
	}

	return r
}

func (r *Registry) Channels() *ChannelManager {
	return r.channels
}

func (r *Registry) Notifier() *NotificationRouter {
	return r.notifier
}

func (r *Registry) Presence() *PresenceTracker {
	return r.presence
}

// Accept registers a classified connection with the subsystem its intent
// names. An unknown intent is rejected; the connection gains no fan-out
// eligibility and the caller closes it with a protocol error.
func (r *Registry) Accept(c *Client) error {
	switch c.intent.Kind {
	case IntentChat, IntentPresence:
		r.channels.Subscribe(c.intent.CourseID, c)
		r.presence.MembershipChanged(c.intent.CourseID)
		return nil

	case IntentNotify:
		r.notifier.Bind(c.intent.UserID, c)
		slog.Info("Notification binding established", "clientID", c.id, "userID", c.intent.UserID)
		return nil

	default:
		slog.Warn("Rejecting connection with unknown intent", "clientID", c.id)
		return ErrUnknownIntent
	}
}

// OnClose removes the connection from whichever structure holds it.
// Idempotent: closing an already-removed connection changes nothing and
// triggers no broadcast.
func (r *Registry) OnClose(c *Client) {
	c.close()

	switch c.intent.Kind {
	case IntentChat, IntentPresence:
		if r.channels.Unsubscribe(c.intent.CourseID, c) {
			r.presence.MembershipChanged(c.intent.CourseID)
		}

	case IntentNotify:
		r.notifier.Unbind(c.intent.UserID, c)
	}
}

// Serve starts the connection's pumps after it was accepted.
func (r *Registry) Serve(c *Client) {
	go c.writePump()
	go c.readPump()
}

// handleInbound feeds one chat frame into the relay and reports rejections
// back to the sender only.
func (r *Registry) handleInbound(c *Client, raw []byte) {
	_, err := r.relay.Handle(context.Background(), c, raw)
	if err == nil {
		return
	}

	var vErr *ValidationError
	var pErr *PersistenceError
	switch {
	case errors.As(err, &vErr):
		c.sendError("INVALID_MESSAGE", vErr.Reason)
	case errors.As(err, &pErr):
		c.sendError("PERSISTENCE_FAILED", "message could not be stored")
	default:
		slog.Error("Unexpected relay error", "clientID", c.id, "error", err)
		c.sendError("INTERNAL", "internal error")
	}
}
