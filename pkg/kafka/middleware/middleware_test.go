package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"lockrent/pkg/kafka"
	"lockrent/pkg/logger"
	"lockrent/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	m, err := metrics.NewKafkaMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	publish := MetricsProducerMiddleware(m)
	msg := kafka.Message{Topic: "rental-events", Key: "k"}

	require.NoError(t, publish(context.Background(), msg, func(context.Context, kafka.Message) error { return nil }))
	assert.Error(t, publish(context.Background(), msg, func(context.Context, kafka.Message) error { return errors.New("down") }))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Published.WithLabelValues("rental-events", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Published.WithLabelValues("rental-events", "failed")))

	consume := MetricsConsumerMiddleware(m)
	require.NoError(t, consume(context.Background(), kafka.Message{Topic: "lock-retirements"}, func(context.Context, kafka.Message) error { return nil }))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Consumed.WithLabelValues("lock-retirements", "ok")))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, Level: logger.DEBUG})

	publish := LoggingProducerMiddleware(log)
	err := publish(context.Background(), kafka.Message{Topic: "rental-events", Key: "lock-1"}, func(context.Context, kafka.Message) error {
		return errors.New("broker down")
	})
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "kafka publish failed")
	assert.Contains(t, buf.String(), "lock-1")

	buf.Reset()
	consume := LoggingConsumerMiddleware(log)
	require.NoError(t, consume(context.Background(), kafka.Message{Topic: "lock-retirements", Key: "lock-2"}, func(context.Context, kafka.Message) error {
		return nil
	}))
	assert.Contains(t, buf.String(), "kafka message handled")
}
