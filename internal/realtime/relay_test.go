package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestRelayValidation(t *testing.T) {
	reg, store := newTestRegistry()

	sender := newTestClient(reg, 5, ChatIntent(10))
	if err := reg.Accept(sender); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	drain(sender)

	cases := []struct {
		name string
		raw  string
	}{
		{"MalformedJSON", `{"body":`},
		{"EmptyBody", `{"body":""}`},
		{"WhitespaceBody", `{"body":"   "}`},
		{"MissingBody", `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.relay.Handle(context.Background(), sender, []byte(tc.raw))

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if len(store.created) != 0 {
				t.Error("Rejected payload must not reach the store")
			}
			// The sender stays subscribed; validation never closes the
			// connection.
			if len(reg.Channels().Members(10)) != 1 {
				t.Error("Sender was removed from the channel")
			}
		})
	}
}

func TestRelayPersistenceFailure(t *testing.T) {
	reg, store := newTestRegistry()
	store.err = errFailed("insert")

	sender := newTestClient(reg, 5, ChatIntent(10))
	receiver := newTestClient(reg, 6, ChatIntent(10))
	if err := reg.Accept(sender); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if err := reg.Accept(receiver); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	drain(sender)
	drain(receiver)

	_, err := reg.relay.Handle(context.Background(), sender, []byte(`{"body":"hi"}`))

	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("Expected PersistenceError, got %v", err)
	}

	// Persisted-but-not-broadcast must not occur, and neither must
	// broadcast-without-persist.
	if got := len(drain(receiver)); got != 0 {
		t.Errorf("Receiver got %d payloads despite persistence failure", got)
	}
}

func TestRelayPersistsThenBroadcasts(t *testing.T) {
	reg, store := newTestRegistry()

	userA := newTestClient(reg, 5, ChatIntent(10))
	userB := newTestClient(reg, 6, ChatIntent(10))
	if err := reg.Accept(userA); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if err := reg.Accept(userB); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	drain(userA)
	drain(userB)

	msg, err := reg.relay.Handle(context.Background(), userA, []byte(`{"body":"hi"}`))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("Expected 1 persisted message, got %d", len(store.created))
	}
	if msg.ID != 99 {
		t.Errorf("Expected durable id 99, got %d", msg.ID)
	}

	payload := receiveOne(t, userB)
	var decoded ChatPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Failed to decode broadcast payload: %v", err)
	}
	if decoded.ID != 99 {
		t.Errorf("Expected id 99, got %d", decoded.ID)
	}
	if decoded.CourseID != 10 {
		t.Errorf("Expected courseId 10, got %d", decoded.CourseID)
	}
	if decoded.AuthorUserID != 5 {
		t.Errorf("Expected authorUserId 5, got %d", decoded.AuthorUserID)
	}
	if decoded.Body != "hi" {
		t.Errorf("Expected body hi, got %q", decoded.Body)
	}
	if !decoded.Timestamp.Equal(store.now) {
		t.Errorf("Expected timestamp %v, got %v", store.now, decoded.Timestamp)
	}

	// The sender renders optimistically; no echo comes back over the
	// channel.
	if got := len(drain(userA)); got != 0 {
		t.Errorf("Sender received %d echo payloads", got)
	}
}
