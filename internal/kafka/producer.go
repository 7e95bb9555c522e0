package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"rsvp-collector/internal/logger"
	"rsvp-collector/internal/models"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher streams stored submissions to a topic.
type Publisher struct {
	Writer messageWriter
	Topic  string
	Logger *logger.Logger
}

func NewPublisher(brokers []string, topic string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}
	return &Publisher{Writer: writer, Topic: topic, Logger: log}
}

// PublishSubmitted writes the event keyed by its id, so every message for
// one response lands on the same partition.
func (p *Publisher) PublishSubmitted(ctx context.Context, event models.SubmittedEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode submission #%d: %w", event.ID, err)
	}

	p.Logger.LogKafka("PUBLISH", p.Topic, fmt.Sprintf("rsvp #%d", event.ID))

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ID, 10)),
		Value: msgBytes,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("rsvp_submitted")},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish submission #%d: %w", event.ID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.Writer.Close()
}
