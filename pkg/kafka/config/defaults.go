package kafka_config

import (
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultKafkaBrokers = "localhost:9092"

	// rental.ended events are small and keyed by lock, so batches stay short.
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = int(kafka.RequireAll)
	DefaultProducerCompression  = "snappy"

	DefaultConsumerStartOffset    = kafka.FirstOffset
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerSessionTimeout = 10 * time.Second
	DefaultConsumerMaxRetries     = 3
	DefaultConsumerRetryBackoff   = 200 * time.Millisecond

	DefaultEnableMiddleware = true
)
