// Package events publishes calendar domain events after their transaction commits.
package events

import (
	"context"
	"fmt"
	"slotter/pkg/kafka"
	"slotter/pkg/logger"
	"slotter/pkg/middleware"
	"time"
)

const (
	SlotCreated      = "slot.created"
	SlotDeleted      = "slot.deleted"
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"

	SchemaVersion = "1"
)

// Event is the JSON payload shared by every calendar event type.
type Event struct {
	Type        string    `json:"type"`
	SlotID      string    `json:"slot_id"`
	OwnerID     string    `json:"owner_id"`
	BookingID   string    `json:"booking_id,omitempty"`
	BookedBy    string    `json:"booked_by,omitempty"`
	CancelledBy string    `json:"cancelled_by,omitempty"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher keys messages by slot id so that events of one slot stay ordered.
type KafkaPublisher struct {
	producer messagePublisher
	source   string
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafkaPublisher(producer messagePublisher, source string, timeout time.Duration, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		source:   source,
		timeout:  timeout,
		log:      log,
	}
}

// Publish sends event detached from the caller's cancellation so that a finished
// HTTP request does not abort the write.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(event.SlotID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		WithSource(p.source).
		WithSchemaVersion(SchemaVersion).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Emit publishes event and logs a failure instead of returning it; the write it
// describes has already committed.
func Emit(ctx context.Context, pub Publisher, log *logger.Logger, event Event) {
	if err := pub.Publish(ctx, event); err != nil {
		log.Error("Failed to publish event",
			"event_type", event.Type,
			"slot_id", event.SlotID,
			"error", err,
		)
	}
}
