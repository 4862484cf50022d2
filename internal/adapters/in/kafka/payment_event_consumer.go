// Package kafka consumes payment results published by the trade service.
package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// StatusCodePaid is the trade service's status code of a settled payment.
const StatusCodePaid = 4

const (
	maxAttempts  = 5
	firstBackoff = 200 * time.Millisecond
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type PaymentConfirmer interface {
	Handle(ctx context.Context, cmd commands.ConfirmPaymentCommand) error
}

// TradeStatusMessage is one payment result. A Kafka message carries either
// one of them or a JSON array of them.
type TradeStatusMessage struct {
	TradingOrderNo string `json:"tradingOrderNo"`
	ProductOrderNo int64  `json:"productOrderNo"`
	TransactionID  string `json:"transactionId"`
	TradingChannel string `json:"tradingChannel"`
	StatusCode     int    `json:"statusCode"`
	ProductAppID   string `json:"productAppId"`
}

// PaymentEventConsumer feeds payment results into payment confirmation.
//
// Delivery is at least once: an offset is committed only after every result
// in the message was confirmed or rejected for good. Confirmation is
// idempotent, so redelivery is harmless. Results for other products and
// non-paid status codes are skipped.
type PaymentEventConsumer struct {
	reader       MessageReader
	confirmer    PaymentConfirmer
	productAppID string
	clock        ports.Clock
	logger       *zap.Logger
	backoff      time.Duration
}

func NewPaymentEventConsumer(
	reader MessageReader,
	confirmer PaymentConfirmer,
	productAppID string,
	clock ports.Clock,
	logger *zap.Logger,
) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		reader:       reader,
		confirmer:    confirmer,
		productAppID: productAppID,
		clock:        clock,
		logger:       logger.With(zap.String("component", "payment-event-consumer")),
		backoff:      firstBackoff,
	}
}

// Run consumes until ctx is canceled, then returns nil. Any other reader
// error is returned.
func (c *PaymentEventConsumer) Run(ctx context.Context) error {
	c.logger.Info("Payment event consumer started")
	defer c.logger.Info("Payment event consumer stopped")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err = c.handle(ctx, msg); err != nil {
			// Only ctx cancellation gets here; leave the offset for the next run.
			return nil
		}

		if err = c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to commit offset",
				zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// handle returns an error only when ctx was canceled.
func (c *PaymentEventConsumer) handle(ctx context.Context, msg kafka.Message) error {
	results, err := decodeTradeStatus(msg.Value)
	if err != nil {
		c.logger.Error("Dropping undecodable payment event",
			zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}

	receivedAt := msg.Time
	if receivedAt.IsZero() {
		receivedAt = c.clock.Now()
	}

	for _, result := range results {
		if result.ProductAppID != c.productAppID || result.StatusCode != StatusCodePaid {
			continue
		}
		if err = c.confirm(ctx, result, receivedAt); err != nil {
			return err
		}
	}
	return nil
}

func (c *PaymentEventConsumer) confirm(ctx context.Context, result TradeStatusMessage, paidAt time.Time) error {
	log := c.logger.With(
		zap.Int64("order_id", result.ProductOrderNo),
		zap.String("trading_order_no", result.TradingOrderNo),
	)

	cmd, err := commands.NewConfirmPaymentCommand(
		kernel.OrderID(result.ProductOrderNo),
		result.TradingOrderNo,
		order.TradingChannel(result.TradingChannel),
		result.TransactionID,
		paidAt.UTC(),
		commands.PaymentSourceEvent,
	)
	if err != nil {
		log.Error("Dropping payment event with invalid order id", zap.Error(err))
		return nil
	}

	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		err = c.confirmer.Handle(ctx, cmd)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			log.Warn("Payment event rejected", zap.Error(err))
			return nil
		}
		if attempt == maxAttempts {
			// The payment poll on order detail picks it up from here.
			log.Error("Giving up on payment event", zap.Int("attempts", attempt), zap.Error(err))
			return nil
		}

		log.Warn("Payment confirmation failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func decodeTradeStatus(value []byte) ([]TradeStatusMessage, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []TradeStatusMessage
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, err
		}
		return results, nil
	}

	var result TradeStatusMessage
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	return []TradeStatusMessage{result}, nil
}

func isPermanent(err error) bool {
	return errors.Is(err, errs.ErrInvalidTransition) ||
		errors.Is(err, errs.ErrObjectNotFound) ||
		errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrValueIsInvalid)
}
