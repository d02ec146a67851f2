package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/currency-swap-engine/internal/config"
)

// SwapResultProducer publishes completed swap results for the external
// orchestration layer. Writes are synchronous with full acks: a result that
// never reaches the topic is a lost completion signal.
type SwapResultProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewSwapResultProducer creates the result producer and ensures the topic exists
func NewSwapResultProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*SwapResultProducer, error) {
	if cfg.SwapResultTopic == "" {
		return nil, fmt.Errorf("kafka swap result topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for swap result producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.SwapResultTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure swap result topic %s exists: %w", cfg.SwapResultTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.SwapResultTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write swap result messages", "topic", cfg.SwapResultTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote swap result messages", "topic", cfg.SwapResultTopic, "count", len(messages))
			}
		},
	}

	return &SwapResultProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.SwapResultTopic,
	}, nil
}

func (p *SwapResultProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal swap result message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish swap result",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish swap result to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published swap result",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *SwapResultProducer) Close() error {
	p.logger.Info("Closing swap result Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close swap result kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
