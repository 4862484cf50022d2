package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type ReaderOptions struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewReader opens a consumer-group reader that logs through logger.
// Offsets are committed explicitly by the consumer.
func NewReader(opts ReaderOptions, logger *zap.Logger) *kafka.Reader {
	sugar := logger.With(zap.String("component", "kafka-reader")).Sugar()

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        opts.Brokers,
		Topic:          opts.Topic,
		GroupID:        opts.GroupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        time.Second,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
		Logger:         kafka.LoggerFunc(sugar.Debugf),
		ErrorLogger:    kafka.LoggerFunc(sugar.Errorf),
	})
}
