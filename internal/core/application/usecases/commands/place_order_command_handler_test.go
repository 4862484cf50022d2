package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockIDGenerator struct{ mock.Mock }

func (m *MockIDGenerator) Next(ctx context.Context) (kernel.OrderID, error) {
	args := m.Called(ctx)
	return args.Get(0).(kernel.OrderID), args.Error(1)
}

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) FindServe(ctx context.Context, id int64) (ports.Serve, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.Serve), args.Error(1)
}

type MockAddressBook struct{ mock.Mock }

func (m *MockAddressBook) FindAddress(ctx context.Context, userID, addressID int64) (ports.Address, error) {
	args := m.Called(ctx, userID, addressID)
	return args.Get(0).(ports.Address), args.Error(1)
}

type MockCoupons struct{ mock.Mock }

func (m *MockCoupons) Redeem(ctx context.Context, use ports.CouponUse) (decimal.Decimal, error) {
	args := m.Called(ctx, use)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type placeFixture struct {
	repo      *MockOrderRepository
	uow       *MockUoW
	factory   *MockOrderUoWFactory
	ids       *MockIDGenerator
	catalog   *MockCatalog
	addresses *MockAddressBook
	coupons   *MockCoupons
	handler   commands.PlaceOrderCommandHandler
}

func newPlaceFixture() *placeFixture {
	return newPlaceFixtureWithLogger(zap.NewNop())
}

func newPlaceFixtureWithLogger(logger *zap.Logger) *placeFixture {
	f := &placeFixture{
		repo:      new(MockOrderRepository),
		uow:       new(MockUoW),
		factory:   new(MockOrderUoWFactory),
		ids:       new(MockIDGenerator),
		catalog:   new(MockCatalog),
		addresses: new(MockAddressBook),
		coupons:   new(MockCoupons),
	}
	f.factory.On("Create").Return(f.uow).Maybe()
	f.uow.On("OrderRepository").Return(f.repo).Maybe()
	f.handler = commands.NewPlaceOrderCommandHandler(
		f.factory, f.ids, f.catalog, f.addresses, f.coupons, fixedClock(testNow), nil, logger,
	)
	return f
}

var (
	cleaning = ports.Serve{
		ID: 7, ItemName: "Deep cleaning", TypeName: "Cleaning", CityCode: "010",
		Price: decimal.RequireFromString("50.00"), OnSale: true,
	}
	home = ports.Address{
		ID: 3, Province: "Beijing", City: "Beijing", County: "Chaoyang", Detail: "1 Main St",
		ContactName: "Li", ContactPhone: "13800000000",
	}
)

func TestPlaceOrderCommandHandler_Handle_WithCoupon(t *testing.T) {
	ctx := t.Context()
	id := testOrderID(t, 1)
	start := testNow.Add(48 * time.Hour)
	cmd, err := commands.NewPlaceOrderCommand(1001, 7, 3, start, 2, 99)
	require.NoError(t, err)

	f := newPlaceFixture()
	mock.InOrder(
		f.catalog.On("FindServe", ctx, int64(7)).Return(cleaning, nil).Once(),
		f.addresses.On("FindAddress", ctx, int64(1001), int64(3)).Return(home, nil).Once(),
		f.ids.On("Next", ctx).Return(id, nil).Once(),
		f.coupons.On("Redeem", ctx, mock.MatchedBy(func(use ports.CouponUse) bool {
			return use.CouponID == 99 && use.OrderID == id && use.TotalAmount.StringFixed(2) == "100.00"
		})).Return(decimal.RequireFromString("15.50"), nil).Once(),
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.repo.On("Add", ctx, mock.MatchedBy(func(o *order.Order) bool {
			return o.ID() == id &&
				o.Status() == order.StatusNoPay &&
				o.TotalAmount().StringFixed(2) == "100.00" &&
				o.RealPayAmount().StringFixed(2) == "84.50" &&
				o.SortBy() == id.SortKey(start)
		})).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	got, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	require.Equal(t, id, got)
	f.repo.AssertExpectations(t)
	f.coupons.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestPlaceOrderCommandHandler_Handle_WithoutCoupon_SkipsRedemption(t *testing.T) {
	ctx := t.Context()
	id := testOrderID(t, 1)
	cmd, _ := commands.NewPlaceOrderCommand(1001, 7, 3, testNow.Add(time.Hour), 1, 0)

	f := newPlaceFixture()
	f.catalog.On("FindServe", ctx, int64(7)).Return(cleaning, nil).Once()
	f.addresses.On("FindAddress", ctx, int64(1001), int64(3)).Return(home, nil).Once()
	f.ids.On("Next", ctx).Return(id, nil).Once()
	f.uow.On("Begin", ctx).Return(nil).Once()
	f.repo.On("Add", ctx, mock.MatchedBy(func(o *order.Order) bool {
		return o.DiscountAmount().IsZero() && o.RealPayAmount().StringFixed(2) == "50.00"
	})).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	_, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	f.coupons.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything)
}

func TestPlaceOrderCommandHandler_Handle_ServeNotOnSale(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewPlaceOrderCommand(1001, 7, 3, testNow.Add(time.Hour), 1, 0)
	offSale := cleaning
	offSale.OnSale = false

	f := newPlaceFixture()
	f.catalog.On("FindServe", ctx, int64(7)).Return(offSale, nil).Once()

	_, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	require.ErrorContains(t, err, commands.ErrServeIsNotOnSale.Error())
	f.ids.AssertNotCalled(t, "Next", mock.Anything)
}

func TestPlaceOrderCommandHandler_Handle_SequenceExhausted(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewPlaceOrderCommand(1001, 7, 3, testNow.Add(time.Hour), 1, 0)

	f := newPlaceFixture()
	f.catalog.On("FindServe", ctx, int64(7)).Return(cleaning, nil).Once()
	f.addresses.On("FindAddress", ctx, int64(1001), int64(3)).Return(home, nil).Once()
	f.ids.On("Next", ctx).Return(kernel.OrderID(0), kernel.ErrSequenceExhausted).Once()

	_, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, kernel.ErrSequenceExhausted)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestPlaceOrderCommandHandler_Handle_DiscountAboveTotal_Rejected(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewPlaceOrderCommand(1001, 7, 3, testNow.Add(time.Hour), 1, 5)

	core, logs := observer.New(zap.ErrorLevel)
	f := newPlaceFixtureWithLogger(zap.New(core))
	f.catalog.On("FindServe", ctx, int64(7)).Return(cleaning, nil).Once()
	f.addresses.On("FindAddress", ctx, int64(1001), int64(3)).Return(home, nil).Once()
	f.ids.On("Next", ctx).Return(testOrderID(t, 1), nil).Once()
	f.coupons.On("Redeem", ctx, mock.Anything).Return(decimal.RequireFromString("80.00"), nil).Once()

	_, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)

	// The coupon is already spent, so the failure must leave a trace.
	spent := logs.FilterMessage("order not stored after its coupon was redeemed").All()
	require.Len(t, spent, 1)
	require.Equal(t, int64(5), spent[0].ContextMap()["coupon_id"])
}

func TestPlaceOrderCommandHandler_Handle_AddressLookupFails(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewPlaceOrderCommand(1001, 7, 3, testNow.Add(time.Hour), 1, 0)

	f := newPlaceFixture()
	f.catalog.On("FindServe", ctx, int64(7)).Return(cleaning, nil).Once()
	f.addresses.On("FindAddress", ctx, int64(1001), int64(3)).
		Return(ports.Address{}, errs.NewDownstreamUnavailableError("address book", errors.New("503"))).Once()

	_, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrDownstreamUnavailable)
}

func TestNewPlaceOrderCommand_Validation(t *testing.T) {
	start := testNow.Add(time.Hour)

	_, err := commands.NewPlaceOrderCommand(1001, 7, 3, start, 0, 0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = commands.NewPlaceOrderCommand(1001, 7, 3, start, order.MaxQuantity+1, 0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = commands.NewPlaceOrderCommand(0, 0, 0, time.Time{}, 1, -1)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
