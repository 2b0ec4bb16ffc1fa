package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingUpdated   = "booking_updated"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCompleted = "booking_completed"
)

type BookingEvent struct {
	Type             string     `json:"type"`
	BookingID        int64      `json:"booking_id"`
	BookingReference string     `json:"booking_reference"`
	UserID           int64      `json:"user_id"`
	DestinationID    int64      `json:"destination_id"`
	Status           string     `json:"status"`
	DepartureDate    time.Time  `json:"departure_date"`
	ReturnDate       *time.Time `json:"return_date,omitempty"`
	TotalPrice       int64      `json:"total_price"`
	OccurredAt       time.Time  `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
	log    *logrus.Entry
}

func NewProducer(brokers []string, log *logrus.Entry) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		log:    log,
	}
}

// Publish writes payload as JSON. Messages with the same key land on the same
// partition, so events of one booking stay ordered.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.WithFields(logrus.Fields{"topic": topic, "key": key}).Debug("published event")
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
