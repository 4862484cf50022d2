package commands_test

import (
	"context"
	"testing"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.OrderID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ApplyTransition(ctx context.Context, id kernel.OrderID, t order.Transition) (bool, error) {
	args := m.Called(ctx, id, t)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) FindOverdueUnpaid(ctx context.Context, before time.Time, limit int) ([]kernel.OrderID, error) {
	args := m.Called(ctx, before, limit)
	ids, _ := args.Get(0).([]kernel.OrderID)
	return ids, args.Error(1)
}

type MockCancellationRepository struct{ mock.Mock }

func (m *MockCancellationRepository) Add(ctx context.Context, r *order.CancellationRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockCancellationRepository) ListByOrder(ctx context.Context, id kernel.OrderID) ([]*order.CancellationRecord, error) {
	args := m.Called(ctx, id)
	records, _ := args.Get(0).([]*order.CancellationRecord)
	return records, args.Error(1)
}

type MockRefundTaskRepository struct{ mock.Mock }

func (m *MockRefundTaskRepository) Add(ctx context.Context, t *order.RefundTask) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRefundTaskRepository) Get(ctx context.Context, id kernel.OrderID) (*order.RefundTask, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*order.RefundTask)
	return t, args.Error(1)
}

func (m *MockRefundTaskRepository) FetchBatch(ctx context.Context, limit int) ([]*order.RefundTask, error) {
	args := m.Called(ctx, limit)
	tasks, _ := args.Get(0).([]*order.RefundTask)
	return tasks, args.Error(1)
}

func (m *MockRefundTaskRepository) Delete(ctx context.Context, id kernel.OrderID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUoW serves both commands.UoW and commands.OrderUoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) CancellationRepository() ports.CancellationRepository {
	args := m.Called()
	return args.Get(0).(ports.CancellationRepository)
}

func (m *MockUoW) RefundTaskRepository() ports.RefundTaskRepository {
	args := m.Called()
	return args.Get(0).(ports.RefundTaskRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) CreateCharge(ctx context.Context, req ports.ChargeRequest) (ports.Charge, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.Charge), args.Error(1)
}

func (m *MockPaymentGateway) QueryResult(
	ctx context.Context,
	channel order.TradingChannel,
	tradingOrderNo string,
) (ports.PaymentResult, error) {
	args := m.Called(ctx, channel, tradingOrderNo)
	return args.Get(0).(ports.PaymentResult), args.Error(1)
}

type MockRefundGateway struct{ mock.Mock }

func (m *MockRefundGateway) Refund(ctx context.Context, req ports.RefundRequest) (order.RefundResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(order.RefundResult), args.Error(1)
}

type MockRefundDispatcher struct{ mock.Mock }

func (m *MockRefundDispatcher) Dispatch(id kernel.OrderID) bool {
	args := m.Called(id)
	return args.Bool(0)
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time {
	return time.Time(c)
}

var testNow = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

func testOrderID(t *testing.T, seq int64) kernel.OrderID {
	t.Helper()
	id, err := kernel.NewOrderID(testNow, seq)
	require.NoError(t, err)
	return id
}

// unpaidOrder is a 2 x 50.00 order of user 1001 created one minute before testNow.
func unpaidOrder(t *testing.T, seq int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(testOrderID(t, seq), order.Placement{
		UserID:         1001,
		ServeID:        7,
		ServeItemName:  "Deep cleaning",
		ServeAddress:   "1 Main St",
		ServeStartTime: testNow.Add(24 * time.Hour),
		Price:          decimal.RequireFromString("50.00"),
		Quantity:       2,
	}, testNow.Add(-time.Minute))
	require.NoError(t, err)
	return o
}

func paidOrder(t *testing.T, seq int64) *order.Order {
	t.Helper()
	o := unpaidOrder(t, seq)
	o.Apply(order.NewConfirmPaymentTransition(order.Payment{
		TradingOrderNo: "T1",
		Channel:        order.ChannelAliPay,
		TransactionID:  "TX1",
		PaidAt:         testNow,
	}))
	return o
}

// isTransition matches a transition argument by name.
func isTransition(name string) any {
	return mock.MatchedBy(func(t order.Transition) bool { return t.Name == name })
}
