package realtime

import (
	"log/slog"
	"sync"
)

// ChannelManager owns the course id -> subscriber set map. Nothing outside
// this type touches the map; all mutation goes through Subscribe,
// Unsubscribe and the broadcast methods.
type ChannelManager struct {
	mu       sync.Mutex
	channels map[uint]map[*Client]struct{}

	// onEvict is invoked (without the lock held) for every client whose
	// delivery failed during a broadcast, after it has been removed from
	// the channel. Set once at registry construction.
	onEvict func(courseID uint, c *Client)
}

func NewChannelManager() *ChannelManager {
	return &ChannelManager{
		channels: make(map[uint]map[*Client]struct{}),
	}
}

// Subscribe adds the client to the course channel, creating the channel on
// first use. Idempotent per client.
func (m *ChannelManager) Subscribe(courseID uint, c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	members := m.channels[courseID]
	if members == nil {
		members = make(map[*Client]struct{})
		m.channels[courseID] = members
	}
	members[c] = struct{}{}

	slog.Info("Client subscribed", "clientID", c.id, "userID", c.userID, "courseID", courseID, "intent", c.intent.Kind.String())
}

// Unsubscribe removes the client from the course channel and reports whether
// membership actually changed. An empty channel entry is deleted so idle
// courses hold no memory.
func (m *ChannelManager) Unsubscribe(courseID uint, c *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.channels[courseID]
	if !ok {
		return false
	}
	if _, ok := members[c]; !ok {
		return false
	}

	delete(members, c)
	if len(members) == 0 {
		delete(m.channels, courseID)
	}

	slog.Info("Client unsubscribed", "clientID", c.id, "userID", c.userID, "courseID", courseID)
	return true
}

// Members returns a snapshot of the channel's subscribers.
func (m *ChannelManager) Members(courseID uint) []*Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	members := m.channels[courseID]
	snapshot := make([]*Client, 0, len(members))
	for c := range members {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

// ChannelCount returns the number of live course channels.
func (m *ChannelManager) ChannelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels)
}

// Broadcast delivers the payload to every subscriber of the course channel
// except exclude. Delivery is best-effort: a failed subscriber is evicted
// and never blocks the rest of the set.
func (m *ChannelManager) Broadcast(courseID uint, payload []byte, exclude *Client) {
	m.fanOut(courseID, payload, func(c *Client) bool {
		return c == exclude
	})
}

// BroadcastChat delivers a chat payload to the chat subscribers of the
// course channel. Presence-only subscribers never see chat traffic, and the
// sender does not receive an echo of its own message.
func (m *ChannelManager) BroadcastChat(courseID uint, payload []byte, sender *Client) {
	m.fanOut(courseID, payload, func(c *Client) bool {
		return c == sender || c.intent.Kind == IntentPresence
	})
}

// fanOut holds the lock for the whole enqueue pass so that concurrent
// broadcasts to one channel reach every subscriber in the same order.
func (m *ChannelManager) fanOut(courseID uint, payload []byte, skip func(*Client) bool) {
	m.mu.Lock()
	members, ok := m.channels[courseID]
	if !ok {
		m.mu.Unlock()
		return
	}

	var failed []*Client
	for c := range members {
		if skip != nil && skip(c) {
			continue
		}
		if err := c.SendPayload(payload); err != nil {
			failed = append(failed, c)
		}
	}

	for _, c := range failed {
		delete(members, c)
		slog.Warn("Evicting subscriber after failed delivery", "clientID", c.id, "userID", c.userID, "courseID", courseID)
	}
	if len(members) == 0 {
		delete(m.channels, courseID)
	}
	m.mu.Unlock()

	if m.onEvict != nil {
		for _, c := range failed {
			m.onEvict(courseID, c)
		}
	}
}
