package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// NotificationRouter maps a user id to at most one live connection for
// direct delivery. Delivery is not guaranteed: callers that need durability
// must persist the notification themselves before calling Notify.
type NotificationRouter struct {
	mu       sync.Mutex
	bindings map[uint]*Client
}

func NewNotificationRouter() *NotificationRouter {
	return &NotificationRouter{
		bindings: make(map[uint]*Client),
	}
}

// Bind records the client as the user's notification target. A newer bind
// supersedes an older one; the superseded connection is left alone, its own
// close path cleans it up.
func (r *NotificationRouter) Bind(userID uint, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.bindings[userID]; ok && prev != c {
		slog.Info("Superseding notification binding", "userID", userID, "oldClientID", prev.id, "newClientID", c.id)
	}
	r.bindings[userID] = c
}

// Unbind removes the binding only while it still refers to the given client.
// A close arriving after the user reconnected must not erase the newer
// binding.
func (r *NotificationRouter) Unbind(userID uint, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bindings[userID] == c {
		delete(r.bindings, userID)
	}
}

// Bound reports whether the user currently has a live binding.
func (r *NotificationRouter) Bound(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bindings[userID]
	return ok
}

// Notify marshals the payload and sends it to the user's bound connection.
// Without a binding the notification is silently dropped. A failed send
// evicts the binding.
func (r *NotificationRouter) Notify(userID uint, payload interface{}) error {
	r.mu.Lock()
	c, ok := r.bindings[userID]
	r.mu.Unlock()

	if !ok {
		slog.Debug("No notification binding, dropping", "userID", userID)
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := c.SendPayload(data); err != nil {
		slog.Warn("Notification delivery failed, unbinding", "userID", userID, "clientID", c.id)
		r.Unbind(userID, c)
		return nil
	}
	return nil
}
