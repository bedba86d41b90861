package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"classroom-live/internal/models"
)

const mirrorTimeout = 2 * time.Second

// PresenceMirror copies course rosters into an external store so services
// without a WebSocket connection can read them. Failures are logged and
// ignored; the in-memory roster stays authoritative.
type PresenceMirror interface {
	SyncCourseRoster(ctx context.Context, courseID uint, users []uint) error
}

// PresenceTracker derives "who is viewing course X" from the course
// channel's live membership. The roster is recomputed on every membership
// change, never stored.
type PresenceTracker struct {
	channels *ChannelManager
	mirror   PresenceMirror
}

func NewPresenceTracker(channels *ChannelManager, mirror PresenceMirror) *PresenceTracker {
	return &PresenceTracker{
		channels: channels,
		mirror:   mirror,
	}
}

// CurrentUsers returns the sorted, deduplicated user ids of all open
// connections subscribed to the course channel.
func (t *PresenceTracker) CurrentUsers(courseID uint) []uint {
	seen := make(map[uint]struct{})
	users := make([]uint, 0)
	for _, c := range t.channels.Members(courseID) {
		if c.isClosed() {
			continue
		}
		if _, ok := seen[c.userID]; ok {
			continue
		}
		seen[c.userID] = struct{}{}
		users = append(users, c.userID)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// MembershipChanged recomputes the course roster, mirrors it, and broadcasts
// the authoritative presence payload to the whole channel, including the
// connection whose state just changed.
func (t *PresenceTracker) MembershipChanged(courseID uint) {
	users := t.CurrentUsers(courseID)

	if t.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		if err := t.mirror.SyncCourseRoster(ctx, courseID, users); err != nil {
			slog.Warn("Failed to mirror course roster", "courseID", courseID, "error", err)
		}
		cancel()
	}

	payload, err := json.Marshal(PresencePayload{
		Type:     PayloadTypePresence,
		CourseID: courseID,
		Users:    users,
	})
	if err != nil {
		slog.Error("Failed to marshal presence payload", "courseID", courseID, "error", err)
		return
	}

	t.channels.Broadcast(courseID, payload, nil)
	slog.Debug("Presence roster broadcast", "courseID", courseID, "users", len(users))
}

// Snapshot returns the roster in its REST response shape.
func (t *PresenceTracker) Snapshot(courseID uint) models.PresenceSnapshot {
	return models.PresenceSnapshot{
		CourseID: courseID,
		Users:    t.CurrentUsers(courseID),
	}
}
