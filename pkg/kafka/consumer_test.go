package kafka

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"lockrent/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(reader *fakeReader, dlq *fakeWriter, maxRetries int, handler MessageHandler) *Consumer {
	c := &Consumer{
		reader:       reader,
		topic:        "lock-retirements",
		groupID:      "lockrent",
		maxRetries:   maxRetries,
		retryBackoff: time.Millisecond,
		handler:      handler,
		log:          logger.Discard(),
	}
	if dlq != nil {
		c.dlqWriter = dlq
		c.dlqTopic = "lock-retirements-dlq"
	}
	return c
}

func runUntilDrained(t *testing.T, c *Consumer, reader *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain queue")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	require.NoError(t, c.Close())
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Key: []byte("a"), Value: []byte(`{}`), Offset: 1},
		kafka.Message{Key: []byte("b"), Value: []byte(`{}`), Offset: 2},
	)
	var keys []string
	c := newTestConsumer(reader, nil, 3, func(_ context.Context, msg Message) error {
		keys = append(keys, msg.Key)
		return nil
	})

	runUntilDrained(t, c, reader)

	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Len(t, reader.committed, 2)
}

func TestConsumer_RetriesTransientErrors(t *testing.T) {
	reader := newFakeReader(kafka.Message{Key: []byte("a"), Value: []byte(`{}`)})
	var calls atomic.Int32
	c := newTestConsumer(reader, nil, 3, func(_ context.Context, msg Message) error {
		if calls.Add(1) < 3 {
			return NewTransientError("busy", nil)
		}
		assert.Equal(t, 2, msg.GetRetryCount())
		return nil
	})

	runUntilDrained(t, c, reader)

	assert.EqualValues(t, 3, calls.Load())
	assert.Len(t, reader.committed, 1)
}

func TestConsumer_PermanentErrorGoesToDLQ(t *testing.T) {
	reader := newFakeReader(kafka.Message{Key: []byte("a"), Value: []byte(`nope`)})
	dlq := &fakeWriter{}
	var calls atomic.Int32
	c := newTestConsumer(reader, dlq, 3, func(context.Context, Message) error {
		calls.Add(1)
		return NewPermanentError("decode failed", nil)
	})

	runUntilDrained(t, c, reader)

	assert.EqualValues(t, 1, calls.Load())
	dead := dlq.messages()
	require.Len(t, dead, 1)
	assert.Equal(t, "lock-retirements", headerValue(dead[0], HeaderOriginalTopic))
	assert.Equal(t, "lockrent", headerValue(dead[0], "dlq-consumer-group"))
	assert.Len(t, reader.committed, 1)
}

func TestConsumer_ExhaustedRetriesGoToDLQ(t *testing.T) {
	reader := newFakeReader(kafka.Message{Key: []byte("a"), Value: []byte(`{}`)})
	dlq := &fakeWriter{}
	var calls atomic.Int32
	c := newTestConsumer(reader, dlq, 2, func(context.Context, Message) error {
		calls.Add(1)
		return NewTransientError("busy", nil)
	})

	runUntilDrained(t, c, reader)

	assert.EqualValues(t, 3, calls.Load())
	dead := dlq.messages()
	require.Len(t, dead, 1)
	assert.Equal(t, "2", headerValue(dead[0], HeaderRetryCount))
}

func TestConsumer_StartAfterClose(t *testing.T) {
	c := newTestConsumer(newFakeReader(), nil, 0, func(context.Context, Message) error { return nil })
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Start(context.Background()), ErrConsumerClosed)
}
