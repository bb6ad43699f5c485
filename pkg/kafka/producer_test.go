package kafka

import (
	"context"
	"errors"
	"testing"

	kafka_config "lockrent/pkg/kafka/config"
	"lockrent/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProducer(writer, dlq *fakeWriter) *Producer {
	p := &Producer{writer: writer, topic: "rental-events", log: logger.Discard()}
	if dlq != nil {
		p.dlqWriter = dlq
		p.dlqTopic = "rental-events-dlq"
	}
	return p
}

func TestNewProducer_Validation(t *testing.T) {
	cfg := &kafka_config.Config{Brokers: []string{"localhost:9092"}}

	_, err := NewProducer(nil, "t", "", nil)
	assert.Error(t, err)
	_, err = NewProducer(&kafka_config.Config{}, "t", "", nil)
	assert.Error(t, err)
	_, err = NewProducer(cfg, "", "", nil)
	assert.Error(t, err)

	p, err := NewProducer(cfg, "t", "t-dlq", nil)
	require.NoError(t, err)
	assert.Equal(t, "t", p.Topic())
	assert.NotNil(t, p.dlqWriter)
	require.NoError(t, p.Close())
}

func TestProducer_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := newTestProducer(writer, nil)

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, "outer:"+msg.Topic)
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, "inner")
		return next(ctx, msg)
	})

	msg, err := NewMessage().WithKey("lock-1").WithValue(map[string]int{"n": 1}).WithEventType("rental.ended").Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	assert.Equal(t, []string{"outer:rental-events", "inner"}, seen)
	written := writer.messages()
	require.Len(t, written, 1)
	assert.Equal(t, "lock-1", string(written[0].Key))
	assert.Equal(t, "rental.ended", headerValue(written[0], HeaderEventType))
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := newTestProducer(&fakeWriter{}, nil)

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}), ErrProducerClosed)
}

func TestProducer_FailedWriteGoesToDLQ(t *testing.T) {
	boom := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := newTestProducer(&fakeWriter{err: boom}, dlq)

	msg := Message{Key: "lock-1", Value: []byte(`{}`), Headers: map[string]string{HeaderEventType: "rental.ended"}}
	err := p.Publish(context.Background(), msg)
	assert.ErrorIs(t, err, boom)

	dead := dlq.messages()
	require.Len(t, dead, 1)
	assert.Equal(t, "rental-events", headerValue(dead[0], HeaderOriginalTopic))
	assert.Equal(t, boom.Error(), headerValue(dead[0], "dlq-error"))
	assert.NotContains(t, msg.Headers, HeaderOriginalTopic)
}

func TestProducer_CloseIsIdempotent(t *testing.T) {
	writer, dlq := &fakeWriter{}, &fakeWriter{}
	p := newTestProducer(writer, dlq)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
	assert.True(t, dlq.closed)
}
