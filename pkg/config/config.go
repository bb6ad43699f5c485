package config

import (
	"fmt"
	"lockrent/pkg/client"
	"lockrent/pkg/db/sqldb"
	"lockrent/pkg/logger"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	StoreBackend      string
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	SQLDSN            string
	SQLMaxOpenConns   int
	SQLMaxIdleConns   int
	LockWaitTimeout   time.Duration

	Port         string
	UserIDHeader string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	KafkaEnabled         bool
	RentalEventsTopic    string
	LockRetirementsTopic string
	KafkaConsumerGroup   string
	KafkaDLQTopic        string

	MetricsEnabled bool

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		StoreBackend:      strings.ToLower(getEnvStr(EnvStoreBackend, DefaultStoreBackend)),
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		SQLDSN:            getEnvStr(EnvSQLDSN, ""),
		SQLMaxOpenConns:   getEnvNum(EnvSQLMaxOpenConns, DefaultSQLMaxOpenConns),
		SQLMaxIdleConns:   getEnvNum(EnvSQLMaxIdleConns, DefaultSQLMaxIdleConns),
		LockWaitTimeout:   getEnvDuration(EnvLockWaitTimeout, DefaultLockWaitTimeout),

		Port:         getEnvStr(EnvPort, DefaultPort),
		UserIDHeader: getEnvStr(EnvUserIDHeader, DefaultUserIDHeader),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		KafkaEnabled:         getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		RentalEventsTopic:    getEnvStr(EnvRentalEventsTopic, DefaultRentalEventsTopic),
		LockRetirementsTopic: getEnvStr(EnvLockRetirementsTopic, DefaultLockRetirementsTopic),
		KafkaConsumerGroup:   getEnvStr(EnvKafkaConsumerGroup, DefaultKafkaConsumerGroup),
		KafkaDLQTopic:        getEnvStr(EnvKafkaDLQTopic, DefaultKafkaDLQTopic),

		MetricsEnabled: getEnvBool(EnvMetricsEnabled, DefaultMetricsEnabled),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// SetStore connects to the configured backend. Exits on failure.
func (cfg *Config) SetStore() {
	if cfg.IsMongo() {
		cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
		return
	}
	cfg.Client.SetSQL(cfg.Log, sqldb.Config{
		Dialect:         cfg.StoreBackend,
		DSN:             cfg.SQLDSN,
		MaxOpenConns:    cfg.SQLMaxOpenConns,
		MaxIdleConns:    cfg.SQLMaxIdleConns,
		LockWaitTimeout: cfg.LockWaitTimeout,
	})
}

func (cfg *Config) IsMongo() bool {
	return cfg.StoreBackend == BackendMongo
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreBackend {
	case BackendMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case BackendPostgres, BackendMySQL, BackendSQLite:
		if cfg.SQLDSN == "" {
			errors = append(errors, fmt.Sprintf("SQLDSN is required for the %s backend", cfg.StoreBackend))
		}
		if cfg.SQLMaxOpenConns <= 0 {
			errors = append(errors, fmt.Sprintf("SQLMaxOpenConns must be positive, got: %d", cfg.SQLMaxOpenConns))
		}
		if cfg.SQLMaxIdleConns < 0 || cfg.SQLMaxIdleConns > cfg.SQLMaxOpenConns {
			errors = append(errors, fmt.Sprintf("SQLMaxIdleConns must be between 0 and SQLMaxOpenConns (%d), got: %d", cfg.SQLMaxOpenConns, cfg.SQLMaxIdleConns))
		}
	default:
		errors = append(errors, fmt.Sprintf("StoreBackend must be one of [mongo, postgres, mysql, sqlite], got: %s", cfg.StoreBackend))
	}

	if cfg.LockWaitTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("LockWaitTimeout must be positive, got: %s", cfg.LockWaitTimeout))
	}
	if cfg.UserIDHeader == "" {
		errors = append(errors, "UserIDHeader cannot be empty")
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.LockWaitTimeout >= cfg.RequestTimeout && cfg.RequestTimeout > 0 {
		errors = append(errors, fmt.Sprintf("LockWaitTimeout (%s) must be shorter than RequestTimeout (%s)", cfg.LockWaitTimeout, cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.KafkaEnabled {
		if cfg.RentalEventsTopic == "" {
			errors = append(errors, "RentalEventsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.LockRetirementsTopic != "" && cfg.KafkaConsumerGroup == "" {
			errors = append(errors, "KafkaConsumerGroup is required to consume LockRetirementsTopic")
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_backend", cfg.StoreBackend,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"sql_dsn_set", cfg.SQLDSN != "",
		"sql_max_open_conns", cfg.SQLMaxOpenConns,
		"sql_max_idle_conns", cfg.SQLMaxIdleConns,
		"lock_wait_timeout", cfg.LockWaitTimeout,
		"port", cfg.Port,
		"user_id_header", cfg.UserIDHeader,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"kafka_enabled", cfg.KafkaEnabled,
		"rental_events_topic", cfg.RentalEventsTopic,
		"lock_retirements_topic", cfg.LockRetirementsTopic,
		"kafka_consumer_group", cfg.KafkaConsumerGroup,
		"metrics_enabled", cfg.MetricsEnabled,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = MinPaginationLimit
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
