package kafka_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, DefaultProducerCompression, cfg.ProducerCompression)
	assert.Equal(t, DefaultConsumerMaxRetries, cfg.ConsumerMaxRetries)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "k1:9092, k2:9092")
	t.Setenv(EnvKafkaProducerCompression, "zstd")
	t.Setenv(EnvKafkaConsumerMaxWait, "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.Equal(t, "zstd", cfg.ProducerCompression)
	assert.Equal(t, 2*time.Second, cfg.ConsumerMaxWait)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaProducerRequireAcks, "5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProducerCompression")
	assert.Contains(t, err.Error(), "ProducerRequireAcks")
}

func TestLoad_RetirementConsumerSettings(t *testing.T) {
	t.Setenv(EnvKafkaConsumerMaxRetries, "5")
	t.Setenv(EnvKafkaConsumerRetryBackoff, "1s")
	t.Setenv(EnvKafkaConsumerStartOffset, "-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.ConsumerMaxRetries)
	assert.Equal(t, time.Second, cfg.ConsumerRetryBackoff)
	assert.Equal(t, int64(-1), cfg.ConsumerStartOffset)
}

func TestLoad_RejectsExplicitStartOffset(t *testing.T) {
	t.Setenv(EnvKafkaConsumerStartOffset, "42")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ConsumerStartOffset")
}

func TestLoad_BlankBrokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " , ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvKafkaBrokers)
}
