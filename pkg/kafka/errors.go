package kafka

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")

	ErrConsumerClosed = errors.New("kafka consumer is closed")

	ErrInvalidMessage = errors.New("invalid message")

	ErrEmptyKey = errors.New("message key cannot be empty")

	ErrEmptyValue = errors.New("message value cannot be empty")
)

type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota

	// ErrorTypeTransient covers network issues and timeouts
	ErrorTypeTransient

	// ErrorTypePermanent covers schema mismatch and invalid data
	ErrorTypePermanent
)

// KafkaError wraps errors with a retry classification
type KafkaError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]any
}

func (e *KafkaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *KafkaError) Unwrap() error {
	return e.Err
}

func (e *KafkaError) IsTransient() bool {
	return e.Type == ErrorTypeTransient
}

func (e *KafkaError) IsPermanent() bool {
	return e.Type == ErrorTypePermanent
}

func NewTransientError(message string, err error) *KafkaError {
	return &KafkaError{
		Type:    ErrorTypeTransient,
		Message: message,
		Err:     err,
		Details: make(map[string]any),
	}
}

func NewPermanentError(message string, err error) *KafkaError {
	return &KafkaError{
		Type:    ErrorTypePermanent,
		Message: message,
		Err:     err,
		Details: make(map[string]any),
	}
}

func (e *KafkaError) WithDetail(key string, value any) *KafkaError {
	e.Details[key] = value
	return e
}

var transientPatterns = []string{
	"connection refused",
	"timeout",
	"deadline exceeded",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"connection reset",
	"temporary failure",
}

// ClassifyError classifies an error as transient or permanent. Errors that
// carry no classification and match no known transient pattern are
// permanent.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	var kafkaErr *KafkaError
	if errors.As(err, &kafkaErr) {
		return kafkaErr.Type
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return ErrorTypeTransient
		}
	}
	return ErrorTypePermanent
}

func ShouldRetry(err error, currentRetries, maxRetries int) bool {
	if err == nil || currentRetries >= maxRetries {
		return false
	}
	return ClassifyError(err) == ErrorTypeTransient
}
