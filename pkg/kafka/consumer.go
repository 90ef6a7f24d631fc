package kafka

import (
	"context"
	"errors"
	"fmt"
	"slotter/pkg/logger"
	"sync"
	"time"

	kafka_config "slotter/pkg/kafka/config"

	"github.com/segmentio/kafka-go"
)

// messageReader is the subset of *kafka.Reader the consumer needs.
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

func NewConsumer(cfg *kafka_config.Config, log *logger.Logger, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if cfg.ConsumerGroup == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.EventsTopic,
		GroupID:        cfg.ConsumerGroup,
		MinBytes:       cfg.ConsumerMinBytes,
		MaxBytes:       cfg.ConsumerMaxBytes,
		MaxWait:        cfg.ConsumerMaxWait,
		CommitInterval: cfg.ConsumerCommitInterval,
		StartOffset:    cfg.ConsumerStartOffset,
		ErrorLogger:    errorLogger(log),
	})

	var dlqWriter messageWriter
	if cfg.DLQTopic != "" {
		dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.DLQTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  compression(cfg.ProducerCompression),
			MaxAttempts:  3,
			ErrorLogger:  errorLogger(log),
		}
	}

	c := newConsumer(reader, dlqWriter, cfg.EventsTopic, cfg.ConsumerGroup, cfg.ConsumerMaxRetries, handler, log)
	c.retryBackoff = 200 * time.Millisecond
	return c, nil
}

func newConsumer(reader messageReader, dlqWriter messageWriter, topic, groupID string, maxRetries int, handler MessageHandler, log *logger.Logger) *Consumer {
	return &Consumer{
		reader:     reader,
		dlqWriter:  dlqWriter,
		topic:      topic,
		groupID:    groupID,
		maxRetries: maxRetries,
		handler:    handler,
		log:        log.With("topic", topic, "group_id", groupID),
	}
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start consumes until ctx is cancelled or the consumer is closed. Offsets are
// committed after a message is handled, retried out, or dead-lettered.
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
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.isClosed() {
				return ErrConsumerClosed
			}
			c.log.Error("failed to fetch message", "error", err)
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		msg := fromKafkaMessage(kafkaMsg)
		if err := c.processMessage(ctx, msg); err != nil {
			c.log.Error("failed to process message",
				"offset", msg.Offset,
				"event_id", msg.GetEventID(),
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.log.Error("failed to commit offset", "offset", kafkaMsg.Offset, "error", err)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg Message) error {
	c.mu.RLock()
	chain := c.middleware
	c.mu.RUnlock()

	handler := c.handler
	for i := len(chain) - 1; i >= 0; i-- {
		middleware := chain[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return middleware(ctx, m, next)
		}
	}

	for {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		retries := msg.GetRetryCount()
		if !ShouldRetry(err, retries, c.maxRetries) {
			if c.dlqWriter != nil {
				if dlqErr := c.sendToDLQ(ctx, msg, err); dlqErr != nil {
					c.log.Error("failed to send message to DLQ", "error", dlqErr, "original_error", err)
				} else {
					c.log.Warn("message sent to DLQ", "event_id", msg.GetEventID(), "retries", retries)
				}
			}
			return err
		}

		msg.IncrementRetryCount()
		c.log.Warn("retrying message",
			"event_id", msg.GetEventID(),
			"attempt", retries+1,
			"max_retries", c.maxRetries,
			"error", err,
		)
		if !sleep(ctx, c.retryBackoff) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, originalErr error) error {
	msg.Headers[HeaderOriginalTopic] = c.topic
	msg.Headers[HeaderDLQError] = originalErr.Error()
	msg.Timestamp = time.Now().UTC()

	km := toKafkaMessage(msg)
	km.Topic = ""
	return c.dlqWriter.WriteMessages(ctx, km)
}

func (c *Consumer) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close stops the reader, which unblocks a running Start, and waits for it to return.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.reader.Close()
	c.wg.Wait()

	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
