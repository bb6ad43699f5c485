package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafka_config "lockrent/pkg/kafka/config"
	"lockrent/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// messageReader is the subset of *kafka.Reader the consumer relies on.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader       messageReader
	dlqWriter    messageWriter
	topic        string
	groupID      string
	dlqTopic     string
	maxRetries   int
	retryBackoff time.Duration
	handler      MessageHandler
	middleware   []ConsumerMiddleware
	log          *logger.Logger
	closed       bool
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

const fetchErrorBackoff = time.Second

func NewConsumer(cfg *kafka_config.Config, topic, groupID, dlqTopic string, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}
	if log == nil {
		log = logger.Discard()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MaxWait:        cfg.ConsumerMaxWait,
		SessionTimeout: cfg.ConsumerSessionTimeout,
		StartOffset:    cfg.ConsumerStartOffset,
		Logger:         kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:    errorLogger(log, topic),
	})

	consumer := &Consumer{
		reader:       reader,
		topic:        topic,
		groupID:      groupID,
		dlqTopic:     dlqTopic,
		maxRetries:   cfg.ConsumerMaxRetries,
		retryBackoff: cfg.ConsumerRetryBackoff,
		handler:      handler,
		log:          log,
	}

	if dlqTopic != "" {
		consumer.dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        dlqTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			MaxAttempts:  3,
			Logger:       kafka.LoggerFunc(func(string, ...any) {}),
			ErrorLogger:  errorLogger(log, dlqTopic),
		}
	}

	return consumer, nil
}

func (c *Consumer) Topic() string {
	return c.topic
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start consumes messages until ctx is cancelled. Every fetched message is
// committed once it has been handled, retried or dead-lettered.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.wg.Add(1)
	c.mu.RUnlock()
	defer c.wg.Done()

	for {
		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			c.log.Error("kafka consumer failed to fetch message", "topic", c.topic, "error", err)
			if !sleepCtx(ctx, fetchErrorBackoff) {
				return ctx.Err()
			}
			continue
		}

		msg := convertMessage(kafkaMsg)
		if err := c.processMessage(ctx, msg); err != nil {
			c.log.Error("kafka consumer failed to process message",
				"topic", c.topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
			c.log.Error("kafka consumer failed to commit offset", "topic", c.topic, "offset", kafkaMsg.Offset, "error", err)
		}
	}
}

func (c *Consumer) chain() MessageHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()

	handler := c.handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return middleware(ctx, m, next)
		}
	}
	return handler
}

// processMessage runs the handler, retrying transient failures with a linear
// backoff, and dead-letters the message once retries are exhausted.
func (c *Consumer) processMessage(ctx context.Context, msg Message) error {
	handler := c.chain()

	for {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		retries := msg.GetRetryCount()
		if ShouldRetry(err, retries, c.maxRetries) {
			msg.IncrementRetryCount()
			c.log.Warn("retrying kafka message",
				"topic", c.topic,
				"attempt", retries+1,
				"max_retries", c.maxRetries,
				"error", err,
			)
			if !sleepCtx(ctx, c.retryBackoff*time.Duration(retries+1)) {
				return ctx.Err()
			}
			continue
		}

		if c.dlqWriter != nil {
			if dlqErr := c.sendToDLQ(ctx, msg, err); dlqErr != nil {
				c.log.Error("failed to send message to DLQ", "dlq_topic", c.dlqTopic, "error", dlqErr, "original_error", err)
			} else {
				c.log.Warn("message sent to DLQ", "dlq_topic", c.dlqTopic, "retries", retries, "error", err)
			}
		}
		return err
	}
}

func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, originalErr error) error {
	msg.Headers[HeaderOriginalTopic] = c.topic
	msg.Headers["dlq-error"] = originalErr.Error()
	msg.Headers["dlq-timestamp"] = time.Now().UTC().Format(time.RFC3339)
	msg.Headers["dlq-consumer-group"] = c.groupID

	return c.dlqWriter.WriteMessages(ctx, toKafkaMessage(msg, time.Now()))
}

func convertMessage(kafkaMsg kafka.Message) Message {
	msg := Message{
		Key:       string(kafkaMsg.Key),
		Value:     kafkaMsg.Value,
		Headers:   make(map[string]string, len(kafkaMsg.Headers)),
		Topic:     kafkaMsg.Topic,
		Partition: kafkaMsg.Partition,
		Offset:    kafkaMsg.Offset,
		Timestamp: kafkaMsg.Time,
	}
	for _, header := range kafkaMsg.Headers {
		msg.Headers[header.Key] = string(header.Value)
	}
	return msg
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close waits for Start to return and releases resources. Cancel the context
// passed to Start before calling Close.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	var err error
	if c.reader != nil {
		err = c.reader.Close()
	}
	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}
