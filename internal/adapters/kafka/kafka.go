package kafka

import (
	"encoding/json"

	"classroom-live/internal/models"

	"github.com/IBM/sarama"
)

func InitKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "classroom-live"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return producer, nil
}

// NotificationPublisher writes notification events to the notification
// topic, keyed by user id so one user's events stay ordered.
type NotificationPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewNotificationPublisher(producer sarama.SyncProducer, topic string) *NotificationPublisher {
	return &NotificationPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *NotificationPublisher) Publish(event *models.NotificationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(keyForUser(event.UserID)),
		Value: sarama.ByteEncoder(value),
	})
	return err
}
