package commands

import (
	"context"
	"errors"
	"fmt"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrServeIsNotOnSale = errors.New("serve is not on sale")

// PlaceOrderCommandHandler opens a new unpaid order.
//
// The catalog, address book and coupon lookups happen before the order row is
// written. A redeemed coupon is not given back if the write fails afterwards.
type PlaceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	ids        ports.OrderIDGenerator
	catalog    ports.ServeCatalog
	addresses  ports.AddressBook
	coupons    ports.CouponRedeemer
	clock      ports.Clock
	metrics    *metrics.OrderMetrics
	logger     *zap.Logger
}

func NewPlaceOrderCommandHandler(
	uowFactory OrderUoWFactory,
	ids ports.OrderIDGenerator,
	catalog ports.ServeCatalog,
	addresses ports.AddressBook,
	coupons ports.CouponRedeemer,
	clock ports.Clock,
	m *metrics.OrderMetrics,
	logger *zap.Logger,
) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		ids:        ids,
		catalog:    catalog,
		addresses:  addresses,
		coupons:    coupons,
		clock:      clock,
		metrics:    m,
		logger:     logger.With(zap.String("component", "place_order")),
	}
}

// Handle creates the order and returns its id.
func (h PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (kernel.OrderID, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	serve, err := h.catalog.FindServe(ctx, cmd.ServeID())
	if err != nil {
		return 0, err
	}
	if !serve.OnSale {
		return 0, errs.NewValueIsInvalidErrorWithCause("serve id", ErrServeIsNotOnSale)
	}

	address, err := h.addresses.FindAddress(ctx, cmd.UserID(), cmd.AddressID())
	if err != nil {
		return 0, err
	}

	id, err := h.ids.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("minting order id: %w", err)
	}

	now := h.clock.Now()
	discount := decimal.Zero
	if cmd.CouponID() > 0 {
		discount, err = h.coupons.Redeem(ctx, ports.CouponUse{
			CouponID:    cmd.CouponID(),
			UserID:      cmd.UserID(),
			OrderID:     id,
			TotalAmount: serve.Price.Mul(decimal.NewFromInt(int64(cmd.Quantity()))),
			UsedAt:      now,
		})
		if err != nil {
			return 0, fmt.Errorf("redeeming coupon %d: %w", cmd.CouponID(), err)
		}
	}

	o, err := order.NewOrder(id, order.Placement{
		UserID:         cmd.UserID(),
		ServeID:        serve.ID,
		ServeItemName:  serve.ItemName,
		ServeTypeName:  serve.TypeName,
		CityCode:       serve.CityCode,
		ServeAddress:   address.FullAddress(),
		ContactsName:   address.ContactName,
		ContactsPhone:  address.ContactPhone,
		ServeStartTime: cmd.ServeStartTime(),
		Price:          serve.Price,
		Quantity:       cmd.Quantity(),
		Discount:       discount,
	}, now)
	if err != nil {
		h.warnCouponSpent(cmd, err)
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		h.warnCouponSpent(cmd, err)
		return 0, err
	}
	if err = uow.Commit(ctx); err != nil {
		h.warnCouponSpent(cmd, err)
		return 0, err
	}

	h.metrics.RecordOrderPlaced(cmd.CouponID() > 0)
	h.logger.Info("order placed",
		zap.Stringer("order_id", id),
		zap.Int64("user_id", cmd.UserID()),
		zap.String("real_pay", kernel.FormatAmount(o.RealPayAmount())))

	return id, nil
}

func (h PlaceOrderCommandHandler) warnCouponSpent(cmd PlaceOrderCommand, err error) {
	if cmd.CouponID() == 0 {
		return
	}
	h.logger.Error("order not stored after its coupon was redeemed",
		zap.Int64("coupon_id", cmd.CouponID()),
		zap.Int64("user_id", cmd.UserID()),
		zap.Error(err))
}
