package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"lockrent/pkg/logger"
)

// Config is the broker-level configuration shared by the rental event
// producer and the lock retirement consumer. Topics and the consumer group
// belong to the service config.
type Config struct {
	Brokers []string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int // -1 all replicas, 0 none, 1 leader
	ProducerCompression  string

	ConsumerStartOffset    int64 // used only when the group has no committed offset
	ConsumerMaxWait        time.Duration
	ConsumerSessionTimeout time.Duration
	ConsumerMaxRetries     int
	ConsumerRetryBackoff   time.Duration

	EnableMiddleware bool
}

var validCompressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

func Load() (*Config, error) {
	cfg := &Config{
		Brokers: splitBrokers(envStr(EnvKafkaBrokers, DefaultKafkaBrokers)),

		ProducerMaxAttempts:  envInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: envDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerRequireAcks:  envInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  strings.ToLower(envStr(EnvKafkaProducerCompression, DefaultProducerCompression)),

		ConsumerStartOffset:    int64(envInt(EnvKafkaConsumerStartOffset, int(DefaultConsumerStartOffset))),
		ConsumerMaxWait:        envDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
		ConsumerSessionTimeout: envDuration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
		ConsumerMaxRetries:     envInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
		ConsumerRetryBackoff:   envDuration(EnvKafkaConsumerRetryBackoff, DefaultConsumerRetryBackoff),

		EnableMiddleware: envBool(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Validate reports every invalid field at once.
func (cfg *Config) Validate() error {
	var problems []string

	if len(cfg.Brokers) == 0 {
		problems = append(problems, "at least one broker is required in "+EnvKafkaBrokers)
	}
	if cfg.ProducerMaxAttempts <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerMaxAttempts must be positive, got %d", cfg.ProducerMaxAttempts))
	}
	if cfg.ProducerBatchTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerBatchTimeout must be positive, got %s", cfg.ProducerBatchTimeout))
	}
	if !contains(validCompressions, cfg.ProducerCompression) {
		problems = append(problems, fmt.Sprintf("ProducerCompression must be one of %v, got %q", validCompressions, cfg.ProducerCompression))
	}
	if cfg.ProducerRequireAcks < -1 || cfg.ProducerRequireAcks > 1 {
		problems = append(problems, fmt.Sprintf("ProducerRequireAcks must be -1, 0 or 1, got %d", cfg.ProducerRequireAcks))
	}
	if cfg.ConsumerStartOffset != -1 && cfg.ConsumerStartOffset != -2 {
		problems = append(problems, fmt.Sprintf("ConsumerStartOffset must be -1 (newest) or -2 (oldest), got %d", cfg.ConsumerStartOffset))
	}
	if cfg.ConsumerMaxWait <= 0 {
		problems = append(problems, fmt.Sprintf("ConsumerMaxWait must be positive, got %s", cfg.ConsumerMaxWait))
	}
	if cfg.ConsumerSessionTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ConsumerSessionTimeout must be positive, got %s", cfg.ConsumerSessionTimeout))
	}
	if cfg.ConsumerMaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got %d", cfg.ConsumerMaxRetries))
	}
	if cfg.ConsumerRetryBackoff < 0 {
		problems = append(problems, fmt.Sprintf("ConsumerRetryBackoff cannot be negative, got %s", cfg.ConsumerRetryBackoff))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid kafka configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	if log == nil {
		return
	}
	log.Info("Kafka configuration loaded",
		"brokers", cfg.Brokers,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
		"consumer_retry_backoff", cfg.ConsumerRetryBackoff,
		"enable_middleware", cfg.EnableMiddleware,
	)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Unparseable values fall back to the default.

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}
