package commands

import (
	"context"
	"errors"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"go.uber.org/zap"
)

// PaymentConfirmer records a payment result on an order.
type PaymentConfirmer interface {
	Handle(ctx context.Context, cmd ConfirmPaymentCommand) error
}

// QueryPaymentStatusCommandHandler polls the payment gateway for orders the
// confirmation event has not reached yet.
type QueryPaymentStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	gateway    ports.PaymentGateway
	confirmer  PaymentConfirmer
	logger     *zap.Logger
}

func NewQueryPaymentStatusCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
	confirmer PaymentConfirmer,
	logger *zap.Logger,
) QueryPaymentStatusCommandHandler {
	return QueryPaymentStatusCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		confirmer:  confirmer,
		logger:     logger.With(zap.String("component", "payment_poll")),
	}
}

// Handle returns the order's payment state, polling the gateway first when
// the order is unpaid and has a charge. An unreachable gateway is not an
// error: the local state is returned.
func (h QueryPaymentStatusCommandHandler) Handle(ctx context.Context, cmd QueryPaymentStatusCommand) (PaymentStatus, error) {
	if err := cmd.Validate(); err != nil {
		return PaymentStatus{}, err
	}

	repo := h.uowFactory.Create().OrderRepository()

	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return PaymentStatus{}, err
	}
	if o.IsPaid() || o.TradingOrderNo() == "" || o.Status() != order.StatusNoPay {
		return paymentStatusOf(o), nil
	}

	result, err := h.gateway.QueryResult(ctx, o.TradingChannel(), o.TradingOrderNo())
	if err != nil {
		if errors.Is(err, errs.ErrDownstreamUnavailable) {
			h.logger.Warn("payment gateway unavailable, returning local state",
				zap.Stringer("order_id", o.ID()), zap.Error(err))
			return paymentStatusOf(o), nil
		}
		return PaymentStatus{}, err
	}
	if result.State != ports.TradeStatePaid {
		return paymentStatusOf(o), nil
	}

	confirm, err := NewConfirmPaymentCommand(
		o.ID(), result.TradingOrderNo, result.Channel, result.TransactionID, result.PaidAt, PaymentSourcePoll,
	)
	if err != nil {
		return PaymentStatus{}, err
	}
	if err = h.confirmer.Handle(ctx, confirm); err != nil {
		return PaymentStatus{}, err
	}

	o, err = repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return PaymentStatus{}, err
	}
	return paymentStatusOf(o), nil
}

func paymentStatusOf(o *order.Order) PaymentStatus {
	return PaymentStatus{
		OrderID:        o.ID(),
		UserID:         o.UserID(),
		PayStatus:      o.PayStatus(),
		TradingOrderNo: o.TradingOrderNo(),
		Channel:        o.TradingChannel(),
	}
}
