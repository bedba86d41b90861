package realtime

import (
	"testing"
)

func TestChannelLifecycle(t *testing.T) {
	reg, _ := newTestRegistry()
	channels := reg.Channels()

	client := newTestClient(reg, 1, ChatIntent(42))

	t.Run("SubscribeCreatesChannel", func(t *testing.T) {
		channels.Subscribe(42, client)
		if got := channels.ChannelCount(); got != 1 {
			t.Errorf("Expected 1 channel, got %d", got)
		}
		if got := len(channels.Members(42)); got != 1 {
			t.Errorf("Expected 1 member in channel 42, got %d", got)
		}
	})

	t.Run("SubscribeIsIdempotent", func(t *testing.T) {
		channels.Subscribe(42, client)
		if got := len(channels.Members(42)); got != 1 {
			t.Errorf("Expected 1 member after duplicate subscribe, got %d", got)
		}
	})

	t.Run("UnsubscribeDeletesEmptyChannel", func(t *testing.T) {
		if !channels.Unsubscribe(42, client) {
			t.Error("Expected unsubscribe to report a membership change")
		}
		if got := channels.ChannelCount(); got != 0 {
			t.Errorf("Expected 0 channels after last member left, got %d", got)
		}
	})

	t.Run("UnsubscribeIsIdempotent", func(t *testing.T) {
		if channels.Unsubscribe(42, client) {
			t.Error("Second unsubscribe must be a no-op")
		}
		if got := channels.ChannelCount(); got != 0 {
			t.Errorf("Expected 0 channels, got %d", got)
		}
	})
}

func TestBroadcastExcludesConnection(t *testing.T) {
	reg, _ := newTestRegistry()
	channels := reg.Channels()

	sender := newTestClient(reg, 1, ChatIntent(10))
	receiverA := newTestClient(reg, 2, ChatIntent(10))
	receiverB := newTestClient(reg, 3, ChatIntent(10))

	channels.Subscribe(10, sender)
	channels.Subscribe(10, receiverA)
	channels.Subscribe(10, receiverB)

	payload := []byte(`{"type":"message"}`)
	channels.Broadcast(10, payload, sender)

	if got := len(drain(sender)); got != 0 {
		t.Errorf("Excluded connection received %d payloads", got)
	}
	if got := len(drain(receiverA)); got != 1 {
		t.Errorf("Expected receiver A to get 1 payload, got %d", got)
	}
	if got := len(drain(receiverB)); got != 1 {
		t.Errorf("Expected receiver B to get 1 payload, got %d", got)
	}
}

func TestBroadcastChatSkipsPresenceSubscribers(t *testing.T) {
	reg, _ := newTestRegistry()
	channels := reg.Channels()

	sender := newTestClient(reg, 1, ChatIntent(10))
	chatter := newTestClient(reg, 2, ChatIntent(10))
	watcher := newTestClient(reg, 3, PresenceIntent(10))

	channels.Subscribe(10, sender)
	channels.Subscribe(10, chatter)
	channels.Subscribe(10, watcher)

	channels.BroadcastChat(10, []byte(`{"type":"message"}`), sender)

	if got := len(drain(chatter)); got != 1 {
		t.Errorf("Expected chat subscriber to get 1 payload, got %d", got)
	}
	if got := len(drain(watcher)); got != 0 {
		t.Errorf("Presence-only subscriber received %d chat payloads", got)
	}
	if got := len(drain(sender)); got != 0 {
		t.Errorf("Sender received %d echo payloads", got)
	}
}

func TestBroadcastEvictsFailedSubscriber(t *testing.T) {
	reg, _ := newTestRegistry()
	channels := reg.Channels()

	healthy := newTestClient(reg, 1, ChatIntent(10))
	stalled := newTestClient(reg, 2, ChatIntent(10))

	channels.Subscribe(10, healthy)
	channels.Subscribe(10, stalled)

	// Saturate the stalled client's buffer so the next delivery fails.
	for i := 0; i < sendBufferSize; i++ {
		if err := stalled.SendPayload([]byte("x")); err != nil {
			t.Fatalf("Unexpected send failure while filling buffer: %v", err)
		}
	}

	channels.Broadcast(10, []byte(`{"type":"message"}`), nil)

	members := channels.Members(10)
	if len(members) != 1 || members[0] != healthy {
		t.Fatalf("Expected only the healthy client to remain, got %d members", len(members))
	}
	if !stalled.isClosed() {
		t.Error("Evicted client should be marked closed")
	}

	// The healthy client still got the payload despite the failure.
	payloads := drain(healthy)
	if len(payloads) == 0 {
		t.Fatal("Healthy subscriber received nothing")
	}
}

func TestBroadcastOrderIsFIFOPerChannel(t *testing.T) {
	reg, _ := newTestRegistry()
	channels := reg.Channels()

	receiver := newTestClient(reg, 1, ChatIntent(10))
	channels.Subscribe(10, receiver)

	channels.Broadcast(10, []byte("first"), nil)
	channels.Broadcast(10, []byte("second"), nil)
	channels.Broadcast(10, []byte("third"), nil)

	payloads := drain(receiver)
	want := []string{"first", "second", "third"}
	if len(payloads) != len(want) {
		t.Fatalf("Expected %d payloads, got %d", len(want), len(payloads))
	}
	for i, w := range want {
		if string(payloads[i]) != w {
			t.Errorf("Payload %d: expected %q, got %q", i, w, payloads[i])
		}
	}
}
