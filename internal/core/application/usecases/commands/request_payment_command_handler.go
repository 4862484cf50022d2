package commands

import (
	"context"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/metrics"

	"go.uber.org/zap"
)

// RequestPaymentCommandHandler creates a charge for an unpaid order and
// records the charge reference on it.
//
// The gateway is called outside of any transaction. Each request creates a
// fresh charge, so switching channel simply replaces the stored reference.
type RequestPaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	gateway    ports.PaymentGateway
	metrics    *metrics.OrderMetrics
	logger     *zap.Logger
}

func NewRequestPaymentCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
	m *metrics.OrderMetrics,
	logger *zap.Logger,
) RequestPaymentCommandHandler {
	return RequestPaymentCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		metrics:    m,
		logger:     logger.With(zap.String("component", "request_payment")),
	}
}

// Handle returns a ticket for the order.
//
// Returns:
//   - the stored reference when the order is already paid
//   - ObjectNotFoundError when the order does not exist or is not the user's
//   - InvalidTransitionError when the order can no longer be paid
//   - DownstreamUnavailableError when the gateway could not create a charge
func (h RequestPaymentCommandHandler) Handle(ctx context.Context, cmd RequestPaymentCommand) (PaymentTicket, error) {
	if err := cmd.Validate(); err != nil {
		return PaymentTicket{}, err
	}

	repo := h.uowFactory.Create().OrderRepository()

	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return PaymentTicket{}, err
	}
	if o.UserID() != cmd.UserID() {
		return PaymentTicket{}, errs.NewObjectNotFoundError("order", cmd.OrderID().String())
	}

	if o.IsPaid() {
		return paidTicket(o), nil
	}
	if o.Status() != order.StatusNoPay {
		return PaymentTicket{}, errs.NewInvalidTransitionError("order", o.ID(), "pay", o.Status().String())
	}

	charge, err := h.gateway.CreateCharge(ctx, ports.ChargeRequest{
		OrderID: o.ID(),
		Channel: cmd.Channel(),
		Amount:  o.RealPayAmount(),
		Subject: o.ServeItemName(),
	})
	if err != nil {
		return PaymentTicket{}, err
	}

	transition := order.NewAttachTradeTransition(order.Trade{
		TradingOrderNo: charge.TradingOrderNo,
		Channel:        charge.Channel,
	})
	applied, err := repo.ApplyTransition(ctx, o.ID(), transition)
	if err != nil {
		return PaymentTicket{}, err
	}
	h.metrics.RecordTransition(transition.Name, applied)

	if !applied {
		// Paid or canceled while the charge was being created.
		current, getErr := repo.Get(ctx, o.ID())
		if getErr != nil {
			return PaymentTicket{}, getErr
		}
		if current.IsPaid() {
			return paidTicket(current), nil
		}
		return PaymentTicket{}, errs.NewInvalidTransitionError("order", o.ID(), "pay", current.Status().String())
	}

	if o.TradingChannel() != "" && o.TradingChannel() != charge.Channel {
		h.logger.Info("payment channel changed",
			zap.Stringer("order_id", o.ID()),
			zap.Stringer("from", o.TradingChannel()),
			zap.Stringer("to", charge.Channel))
	}

	return PaymentTicket{
		OrderID:        o.ID(),
		TradingOrderNo: charge.TradingOrderNo,
		Channel:        charge.Channel,
		QRCode:         charge.QRCode,
		PayStatus:      order.PayStatusNoPay,
	}, nil
}

func paidTicket(o *order.Order) PaymentTicket {
	return PaymentTicket{
		OrderID:        o.ID(),
		TradingOrderNo: o.TradingOrderNo(),
		Channel:        o.TradingChannel(),
		PayStatus:      order.PayStatusPaid,
	}
}
