package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// KafkaMetrics tracks producer and consumer activity per topic.
type KafkaMetrics struct {
	Published       *prometheus.CounterVec
	PublishDuration *prometheus.HistogramVec
	Consumed        *prometheus.CounterVec
	ConsumeDuration *prometheus.HistogramVec
}

func NewKafkaMetrics(registry *prometheus.Registry) (*KafkaMetrics, error) {
	m := &KafkaMetrics{
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lockrent_kafka_messages_published_total",
			Help: "Kafka messages published by topic and status",
		}, []string{"topic", "status"}),
		PublishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lockrent_kafka_publish_duration_seconds",
			Help:    "Kafka publish latency",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"topic"}),
		Consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lockrent_kafka_messages_consumed_total",
			Help: "Kafka messages consumed by topic and status",
		}, []string{"topic", "status"}),
		ConsumeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lockrent_kafka_consume_duration_seconds",
			Help:    "Kafka handler latency",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"topic"}),
	}

	for _, c := range []prometheus.Collector{m.Published, m.PublishDuration, m.Consumed, m.ConsumeDuration} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register kafka metrics: %w", err)
		}
	}
	return m, nil
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

func (m *KafkaMetrics) ObservePublish(topic string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(topic, status(err)).Inc()
	m.PublishDuration.WithLabelValues(topic).Observe(elapsed.Seconds())
}

func (m *KafkaMetrics) ObserveConsume(topic string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.Consumed.WithLabelValues(topic, status(err)).Inc()
	m.ConsumeDuration.WithLabelValues(topic).Observe(elapsed.Seconds())
}
