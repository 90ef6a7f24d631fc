package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")

	ErrConsumerClosed = errors.New("kafka consumer is closed")

	ErrEmptyKey = errors.New("message key cannot be empty")

	ErrEmptyValue = errors.New("message value cannot be empty")
)

// PermanentError marks a handler failure that must not be retried, such as an
// undecodable payload.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent failure: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// ShouldRetry reports whether a failed message gets another attempt.
func ShouldRetry(err error, currentRetries, maxRetries int) bool {
	if err == nil || currentRetries >= maxRetries {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
