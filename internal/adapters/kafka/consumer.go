package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"classroom-live/internal/models"

	"github.com/IBM/sarama"
)

// Notifier is the local delivery target for consumed notification events.
type Notifier interface {
	Notify(userID uint, payload interface{}) error
}

// NotificationConsumer reads notification events from Kafka and hands them
// to the notification router. Instances without a binding for the event's
// user simply drop it; the instance holding the binding delivers it.
type NotificationConsumer struct {
	group    sarama.ConsumerGroup
	topic    string
	notifier Notifier
}

func NewNotificationConsumer(brokers []string, groupID, topic string, notifier Notifier) (*NotificationConsumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_0_0_0
	config.ClientID = "classroom-live"
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	return &NotificationConsumer{
		group:    group,
		topic:    topic,
		notifier: notifier,
	}, nil
}

// Run consumes until the context is cancelled.
func (c *NotificationConsumer) Run(ctx context.Context) error {
	handler := &notificationHandler{notifier: c.notifier}

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			slog.Error("Kafka consume error", "topic", c.topic, "error", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *NotificationConsumer) Close() error {
	return c.group.Close()
}

type notificationHandler struct {
	notifier Notifier
}

func (h *notificationHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *notificationHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *notificationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var event models.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Error("Dropping malformed notification event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			session.MarkMessage(msg, "")
			continue
		}

		if err := h.notifier.Notify(event.UserID, &event); err != nil {
			slog.Error("Failed to deliver notification", "userID", event.UserID, "error", err)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

func keyForUser(userID uint) string {
	return fmt.Sprintf("user-%d", userID)
}
