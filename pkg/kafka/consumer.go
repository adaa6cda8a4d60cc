package kafka

import (
	"context"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// ConsumerConfig holds Kafka consumer configuration. An empty GroupID reads
// the topic without committing offsets, starting at StartOffset.
type ConsumerConfig struct {
	Brokers     []string
	GroupID     string
	Topic       string
	StartOffset int64
}

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads events from a single topic and hands them to a Handler.
type Consumer struct {
	reader    MessageReader
	topic     string
	grouped   bool
	handler   Handler
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewConsumer creates a consumer for cfg.Topic.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	startOffset := cfg.StartOffset
	if startOffset == 0 {
		startOffset = kafka.LastOffset
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: startOffset,
		MaxBytes:    10e6,
	})
	return NewConsumerWithReader(r, cfg.Topic, cfg.GroupID != "", handler, logger)
}

// NewConsumerWithReader creates a consumer around an existing reader.
func NewConsumerWithReader(r MessageReader, topic string, grouped bool, handler Handler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		reader:  r,
		topic:   topic,
		grouped: grouped,
		handler: handler,
		logger:  logger,
	}
}

// Start consumes messages until ctx is canceled. Undecodable messages and
// handler failures are logged and skipped.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("topic", c.topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("topic", c.topic))
				return c.Close()
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}
		ConsumerMessagesReceived.WithLabelValues(msg.Topic).Inc()

		event, err := UnmarshalEvent(msg.Value)
		if err != nil {
			c.logger.Error("failed to unmarshal event",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
			c.commit(ctx, msg)
			continue
		}

		hctx := ExtractTraceContext(ctx, msg.Headers)
		if err := c.handler(hctx, event); err != nil {
			c.logger.Warn("handler failed, skipping message",
				slog.String("event_type", event.EventType),
				slog.String("aggregate_id", event.AggregateID),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
		c.commit(ctx, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if !c.grouped {
		return
	}
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("failed to commit message", slog.String("error", err.Error()))
	}
}

// Close closes the consumer. It is safe to call multiple times.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}
