package events

import (
	"context"
	"fmt"
	"time"

	"lockrent/pkg/kafka"
	"lockrent/pkg/logger"
	"lockrent/pkg/model"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
	source   string
	log      *logger.Logger
	now      func() time.Time
}

func NewKafkaPublisher(producer MessagePublisher, source string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Discard()
	}
	return &KafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PublishRentalEnded emits a rental.ended event keyed by lock id so all
// events of one lock land on the same partition.
func (p *KafkaPublisher) PublishRentalEnded(ctx context.Context, rental *model.Rental, retired bool) error {
	if rental == nil {
		return fmt.Errorf("%w: nil rental", kafka.ErrInvalidMessage)
	}

	msg, err := kafka.NewMessage().
		WithKey(rental.LockID).
		WithValue(RentalEndedEvent{Rental: rental, Retired: retired, OccurredAt: p.now()}).
		WithEventID(rental.ID).
		WithEventType(EventTypeRentalEnded).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		Build()
	if err != nil {
		return fmt.Errorf("build rental.ended event: %w", err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish rental.ended for lock %s: %w", rental.LockID, err)
	}
	return nil
}

// NoopPublisher drops events. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRentalEnded(context.Context, *model.Rental, bool) error {
	return nil
}
