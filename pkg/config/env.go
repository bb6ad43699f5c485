package config

const (
	EnvStoreBackend      = "STORE_BACKEND"
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvSQLDSN            = "SQL_DSN"
	EnvSQLMaxOpenConns   = "SQL_MAX_OPEN_CONNS"
	EnvSQLMaxIdleConns   = "SQL_MAX_IDLE_CONNS"
	EnvLockWaitTimeout   = "LOCK_WAIT_TIMEOUT"

	EnvPort         = "PORT"
	EnvLogLevel     = "LOG_LEVEL"
	EnvUserIDHeader = "USER_ID_HEADER"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvKafkaEnabled         = "KAFKA_ENABLED"
	EnvRentalEventsTopic    = "KAFKA_RENTAL_EVENTS_TOPIC"
	EnvLockRetirementsTopic = "KAFKA_LOCK_RETIREMENTS_TOPIC"
	EnvKafkaConsumerGroup   = "KAFKA_CONSUMER_GROUP"
	EnvKafkaDLQTopic        = "KAFKA_DLQ_TOPIC"

	EnvMetricsEnabled = "METRICS_ENABLED"
)
