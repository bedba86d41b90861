package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"classroom-live/internal/models"
)

// fakeStore stands in for the gorm repository. It assigns ids and
// timestamps the way the database would.
type fakeStore struct {
	err     error
	nextID  uint
	now     time.Time
	created []*models.CourseMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 99,
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) Create(ctx context.Context, msg *models.CourseMessage) error {
	if s.err != nil {
		return s.err
	}
	msg.ID = s.nextID
	msg.CreatedAt = s.now
	s.nextID++
	s.created = append(s.created, msg)
	return nil
}

func newTestRegistry() (*Registry, *fakeStore) {
	store := newFakeStore()
	return NewRegistry(store, nil), store
}

// newTestClient builds a client without a live transport. Pumps are never
// started, so payloads accumulate in the send buffer for inspection.
func newTestClient(reg *Registry, userID uint, intent Intent) *Client {
	return NewClient(reg, nil, userID, intent)
}

func drain(c *Client) [][]byte {
	var payloads [][]byte
	for {
		select {
		case p := <-c.send:
			payloads = append(payloads, p)
		default:
			return payloads
		}
	}
}

func receiveOne(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case p := <-c.send:
		return p
	default:
		t.Fatal("expected a payload, send buffer is empty")
		return nil
	}
}

func decodePayloadType(t *testing.T, payload []byte) PayloadType {
	t.Helper()
	var envelope struct {
		Type PayloadType `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return envelope.Type
}

func errFailed(op string) error {
	return fmt.Errorf("%s failed", op)
}
