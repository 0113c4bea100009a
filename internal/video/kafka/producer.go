package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	MaxRetries   int
	RetryBackoff time.Duration
	WriteTimeout time.Duration
	BatchSize    int
	Async        bool
	Logger       zerolog.Logger
}

func (c *ProducerConfig) validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("brokers list is empty")
	}
	if c.Topic == "" {
		return fmt.Errorf("topic is empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry_backoff cannot be negative")
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout cannot be negative")
	}
	return nil
}

func (c *ProducerConfig) applyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
}

// Producer publishes lifecycle events to the video events topic.
type Producer struct {
	writer *kafkago.Writer
	config ProducerConfig
	logger zerolog.Logger
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.LeastBytes{},
			BatchSize:    cfg.BatchSize,
			WriteTimeout: cfg.WriteTimeout,
			Async:        cfg.Async,
		},
		config: cfg,
		logger: cfg.Logger.With().Str("component", "kafka_producer").Logger(),
	}, nil
}

// Publish writes one message, retrying transient failures with a fixed
// backoff. Gives up after MaxRetries attempts.
func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryBackoff):
			}
		}

		lastErr = p.writer.WriteMessages(ctx, kafkago.Message{
			Key:   []byte(key),
			Value: value,
		})
		if lastErr == nil {
			return nil
		}
		p.logger.Warn().
			Err(lastErr).
			Int("attempt", attempt+1).
			Str("key", key).
			Msg("publish attempt failed")
	}
	return fmt.Errorf("kafka publish: %w", lastErr)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
