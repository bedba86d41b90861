package realtime

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
)

func lastPresencePayload(t *testing.T, payloads [][]byte) *PresencePayload {
	t.Helper()
	var last *PresencePayload
	for _, p := range payloads {
		if decodePayloadType(t, p) != PayloadTypePresence {
			continue
		}
		var decoded PresencePayload
		if err := json.Unmarshal(p, &decoded); err != nil {
			t.Fatalf("Failed to decode presence payload: %v", err)
		}
		last = &decoded
	}
	return last
}

func TestPresenceRosterFollowsMembership(t *testing.T) {
	reg, _ := newTestRegistry()

	conn1 := newTestClient(reg, 1, ChatIntent(7))
	conn2 := newTestClient(reg, 2, ChatIntent(7))

	if err := reg.Accept(conn1); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if err := reg.Accept(conn2); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if got := reg.Presence().CurrentUsers(7); !reflect.DeepEqual(got, []uint{1, 2}) {
		t.Fatalf("Expected roster [1 2], got %v", got)
	}

	// Both connections received the authoritative roster, including the
	// one whose subscription triggered the change.
	roster2 := lastPresencePayload(t, drain(conn2))
	if roster2 == nil {
		t.Fatal("Joining connection received no presence payload")
	}
	if !reflect.DeepEqual(roster2.Users, []uint{1, 2}) {
		t.Errorf("Expected roster [1 2], got %v", roster2.Users)
	}

	drain(conn1)

	reg.OnClose(conn1)

	if got := reg.Presence().CurrentUsers(7); !reflect.DeepEqual(got, []uint{2}) {
		t.Fatalf("Expected roster [2] after close, got %v", got)
	}

	roster := lastPresencePayload(t, drain(conn2))
	if roster == nil {
		t.Fatal("No presence payload broadcast after close")
	}
	if !reflect.DeepEqual(roster.Users, []uint{2}) {
		t.Errorf("Expected broadcast roster [2], got %v", roster.Users)
	}
}

func TestPresenceDeduplicatesUsers(t *testing.T) {
	reg, _ := newTestRegistry()

	// Same user on two devices.
	connA := newTestClient(reg, 9, ChatIntent(3))
	connB := newTestClient(reg, 9, PresenceIntent(3))

	if err := reg.Accept(connA); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if err := reg.Accept(connB); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if got := reg.Presence().CurrentUsers(3); !reflect.DeepEqual(got, []uint{9}) {
		t.Errorf("Expected deduplicated roster [9], got %v", got)
	}

	// Closing one device keeps the user present.
	reg.OnClose(connA)
	if got := reg.Presence().CurrentUsers(3); !reflect.DeepEqual(got, []uint{9}) {
		t.Errorf("Expected roster [9] while one device remains, got %v", got)
	}

	reg.OnClose(connB)
	if got := reg.Presence().CurrentUsers(3); len(got) != 0 {
		t.Errorf("Expected empty roster, got %v", got)
	}
}

func TestPresenceEmptyCourse(t *testing.T) {
	reg, _ := newTestRegistry()

	if got := reg.Presence().CurrentUsers(404); len(got) != 0 {
		t.Errorf("Expected empty roster for unknown course, got %v", got)
	}

	snap := reg.Presence().Snapshot(404)
	if snap.CourseID != 404 || len(snap.Users) != 0 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
}

type recordingMirror struct {
	courses map[uint][]uint
}

func (m *recordingMirror) SyncCourseRoster(ctx context.Context, courseID uint, users []uint) error {
	if m.courses == nil {
		m.courses = make(map[uint][]uint)
	}
	m.courses[courseID] = users
	return nil
}

func TestPresenceMirrorsRoster(t *testing.T) {
	mirror := &recordingMirror{}
	reg := NewRegistry(newFakeStore(), mirror)

	conn := newTestClient(reg, 4, ChatIntent(12))
	if err := reg.Accept(conn); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if !reflect.DeepEqual(mirror.courses[12], []uint{4}) {
		t.Errorf("Expected mirrored roster [4], got %v", mirror.courses[12])
	}

	reg.OnClose(conn)
	if got := mirror.courses[12]; len(got) != 0 {
		t.Errorf("Expected empty mirrored roster, got %v", got)
	}
}
