package kafka_middleware

import (
	"context"
	"time"

	"lockrent/pkg/kafka"
	"lockrent/pkg/metrics"
)

// MetricsProducerMiddleware records publish counts and latency per topic.
func MetricsProducerMiddleware(m *metrics.KafkaMetrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObservePublish(msg.Topic, time.Since(start), err)
		return err
	}
}

// MetricsConsumerMiddleware records handled message counts and latency per topic.
func MetricsConsumerMiddleware(m *metrics.KafkaMetrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveConsume(msg.Topic, time.Since(start), err)
		return err
	}
}
