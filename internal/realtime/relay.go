package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"classroom-live/internal/models"
)

// MessageStore is the persistence collaborator for course messages. It
// assigns the durable id and timestamp.
type MessageStore interface {
	Create(ctx context.Context, msg *models.CourseMessage) error
}

// Relay turns an inbound chat frame into a persisted, broadcast course
// message. Broadcast happens strictly after the store accepted the write;
// a message is never visible to subscribers unless it is durable.
type Relay struct {
	channels *ChannelManager
	store    MessageStore
}

func NewRelay(channels *ChannelManager, store MessageStore) *Relay {
	return &Relay{
		channels: channels,
		store:    store,
	}
}

// Handle validates, persists and fans out one chat frame from sender.
// Validation and persistence failures are returned to the caller and leave
// channel state untouched.
func (r *Relay) Handle(ctx context.Context, sender *Client, raw []byte) (*models.CourseMessage, error) {
	var inbound ChatInbound
	if err := json.Unmarshal(raw, &inbound); err != nil {
		return nil, &ValidationError{Reason: "malformed payload"}
	}
	if strings.TrimSpace(inbound.Body) == "" {
		return nil, &ValidationError{Reason: "body must not be empty"}
	}

	msg := &models.CourseMessage{
		CourseID: sender.intent.CourseID,
		AuthorID: sender.userID,
		Body:     inbound.Body,
	}
	if err := r.store.Create(ctx, msg); err != nil {
		slog.Error("Failed to persist course message", "courseID", msg.CourseID, "authorID", msg.AuthorID, "error", err)
		return nil, &PersistenceError{Err: err}
	}

	payload, err := json.Marshal(ChatPayload{
		Type:         PayloadTypeMessage,
		ID:           msg.ID,
		CourseID:     msg.CourseID,
		AuthorUserID: msg.AuthorID,
		Body:         msg.Body,
		Timestamp:    msg.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	r.channels.BroadcastChat(msg.CourseID, payload, sender)
	slog.Debug("Course message relayed", "messageID", msg.ID, "courseID", msg.CourseID)
	return msg, nil
}
