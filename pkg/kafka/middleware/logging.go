package kafka_middleware

import (
	"context"
	"time"

	"lockrent/pkg/kafka"
	"lockrent/pkg/logger"
)

// LoggingProducerMiddleware logs message publishing operations
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Error("kafka publish failed", append(attrs, "error", err)...)
		} else {
			log.Debug("kafka message published", attrs...)
		}
		return err
	}
}

// LoggingConsumerMiddleware logs message consumption operations
func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"retry_count", msg.GetRetryCount(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Warn("kafka message handling failed", append(attrs, "error", err)...)
		} else {
			log.Debug("kafka message handled", attrs...)
		}
		return err
	}
}
