package config

import "time"

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendSQLite   = "sqlite"
)

const (
	DefaultStoreBackend      = BackendMongo
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "lockrent"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultSQLMaxOpenConns   = 50
	DefaultSQLMaxIdleConns   = 10
	DefaultLockWaitTimeout   = 5 * time.Second

	DefaultPort         = "8080"
	DefaultLogLevel     = "info"
	DefaultUserIDHeader = "X-User-ID"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaEnabled         = false
	DefaultRentalEventsTopic    = "rental-events"
	DefaultLockRetirementsTopic = "lock-retirements"
	DefaultKafkaConsumerGroup   = "lockrent-rentals"
	DefaultKafkaDLQTopic        = "dlq-lockrent-rentals"

	DefaultMetricsEnabled = true

	DefaultPaginationLimit = 100
	MinPaginationLimit     = 10
)
