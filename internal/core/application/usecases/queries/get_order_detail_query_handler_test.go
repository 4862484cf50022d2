package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orders/internal/adapters/out/postgres/cancellationrepo"
	"orders/internal/adapters/out/postgres/orderrepo"
	"orders/internal/adapters/out/postgres/storetest"
	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MockPaymentPoller struct{ mock.Mock }

func (m *MockPaymentPoller) Handle(ctx context.Context, cmd commands.QueryPaymentStatusCommand) (commands.PaymentStatus, error) {
	args := m.Called(ctx, cmd)
	status, _ := args.Get(0).(commands.PaymentStatus)
	return status, args.Error(1)
}

type MockOrderCanceler struct{ mock.Mock }

func (m *MockOrderCanceler) Handle(ctx context.Context, cmd commands.CancelOrderCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time {
	return time.Time(c)
}

var detailNow = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

type GetOrderDetailQueryHandlerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	orders   *orderrepo.GormOrderRepository
	records  *cancellationrepo.GormCancellationRepository
	poller   *MockPaymentPoller
	canceler *MockOrderCanceler
	handler  queries.GetOrderDetailQueryHandler
}

func (suite *GetOrderDetailQueryHandlerTestSuite) SetupTest() {
	suite.db = storetest.OpenSQLite(suite.T())
	suite.orders = orderrepo.NewGormOrderRepository(suite.db)
	suite.records = cancellationrepo.NewGormCancellationRepository(suite.db)
	suite.poller = &MockPaymentPoller{}
	suite.canceler = &MockOrderCanceler{}
	suite.handler = queries.NewGetOrderDetailQueryHandler(
		suite.db, suite.poller, suite.canceler, fixedClock(detailNow), zap.NewNop(),
	)
}

func (suite *GetOrderDetailQueryHandlerTestSuite) TearDownTest() {
	suite.poller.AssertExpectations(suite.T())
	suite.canceler.AssertExpectations(suite.T())
}

func (suite *GetOrderDetailQueryHandlerTestSuite) store(createdAt time.Time) *order.Order {
	o := storetest.UnpaidOrder(suite.T(), 1, createdAt)
	suite.Require().NoError(suite.orders.Add(suite.T().Context(), o))
	return o
}

func (suite *GetOrderDetailQueryHandlerTestSuite) query(id kernel.OrderID, userID int64) queries.GetOrderDetailQuery {
	q, err := queries.NewGetOrderDetailQuery(id, userID)
	suite.Require().NoError(err)
	return q
}

func isSystemCancelOf(id kernel.OrderID) any {
	return mock.MatchedBy(func(cmd commands.CancelOrderCommand) bool {
		return cmd.OrderID() == id &&
			cmd.Actor().IsSystem() &&
			cmd.Reason() == order.OverdueCancellationReason
	})
}

func isPollOf(id kernel.OrderID) any {
	return mock.MatchedBy(func(cmd commands.QueryPaymentStatusCommand) bool {
		return cmd.OrderID() == id
	})
}

func (suite *GetOrderDetailQueryHandlerTestSuite) TestHandle_FreshUnpaidOrder() {
	created := detailNow.Add(-5 * time.Minute)
	o := suite.store(created)

	detail, err := suite.handler.Handle(suite.T().Context(), suite.query(o.ID(), 1001))
	suite.Require().NoError(err)

	suite.Equal(o.ID(), detail.ID)
	suite.Equal(order.StatusNoPay, detail.Status)
	suite.Equal("Li", detail.ContactsName)
	suite.True(o.TotalAmount().Equal(detail.TotalAmount))
	suite.True(o.DiscountAmount().Equal(detail.DiscountAmount))
	suite.Equal(created.Add(order.PaymentDeadline), detail.PaymentDeadline)
	suite.Nil(detail.Cancellation)
	suite.poller.AssertNotCalled(suite.T(), "Handle", mock.Anything, mock.Anything)
}

func (suite *GetOrderDetailQueryHandlerTestSuite) TestHandle_NotFound() {
	o := suite.store(detailNow)

	_, err := suite.handler.Handle(suite.T().Context(), suite.query(o.ID(), 2002))
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound, "Orders of other customers should not be visible")

	_, err = suite.handler.Handle(suite.T().Context(), suite.query(storetest.OrderID(suite.T(), 99), 1001))
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *GetOrderDetailQueryHandlerTestSuite) TestHandle_OverdueUnpaid_CancelsLazily() {
	ctx := suite.T().Context()
	o := suite.store(detailNow.Add(-16 * time.Minute))

	suite.poller.On("Handle", mock.Anything, isPollOf(o.ID())).
		Return(commands.PaymentStatus{OrderID: o.ID(), PayStatus: order.PayStatusNoPay}, nil).Once()
	suite.canceler.On("Handle", mock.Anything, isSystemCancelOf(o.ID())).
		Run(func(args mock.Arguments) {
			applied, err := suite.orders.ApplyTransition(ctx, o.ID(), order.NewCancelUnpaidTransition())
			suite.Require().NoError(err)
			suite.Require().True(applied)

			record, err := order.NewCancellationRecord(o.ID(), kernel.SystemActor(),
				order.OverdueCancellationReason, order.StatusNoPay, detailNow)
			suite.Require().NoError(err)
			suite.Require().NoError(suite.records.Add(ctx, record))
		}).
		Return(nil).Once()

	detail, err := suite.handler.Handle(ctx, suite.query(o.ID(), 1001))
	suite.Require().NoError(err)

	suite.Equal(order.StatusCanceled, detail.Status)
	suite.Require().NotNil(detail.Cancellation)
	suite.Equal(order.OverdueCancellationReason, detail.Cancellation.Reason)
	suite.Equal(kernel.ActorTypeSystem, detail.Cancellation.ActorType)
}

func (suite *GetOrderDetailQueryHandlerTestSuite) TestHandle_OverdueButPaidAtGateway_IsNotCanceled() {
	ctx := suite.T().Context()
	o := suite.store(detailNow.Add(-20 * time.Minute))

	suite.poller.On("Handle", mock.Anything, isPollOf(o.ID())).
		Run(func(args mock.Arguments) {
			applied, err := suite.orders.ApplyTransition(ctx, o.ID(),
				order.NewConfirmPaymentTransition(storetest.Payment(o.ID(), detailNow)))
			suite.Require().NoError(err)
			suite.Require().True(applied)
		}).
		Return(commands.PaymentStatus{OrderID: o.ID(), PayStatus: order.PayStatusPaid}, nil).Once()

	detail, err := suite.handler.Handle(ctx, suite.query(o.ID(), 1001))
	suite.Require().NoError(err)

	suite.Equal(order.StatusDispatching, detail.Status)
	suite.Equal(order.PayStatusPaid, detail.PayStatus)
	suite.Equal("TX"+o.ID().String(), detail.TransactionID)
	suite.Require().NotNil(detail.PayTime)
	suite.True(detail.PayTime.Equal(detailNow))
	suite.canceler.AssertNotCalled(suite.T(), "Handle", mock.Anything, mock.Anything)
}

func (suite *GetOrderDetailQueryHandlerTestSuite) TestHandle_PollFails_ReturnsCurrentState() {
	o := suite.store(detailNow.Add(-time.Hour))

	suite.poller.On("Handle", mock.Anything, isPollOf(o.ID())).
		Return(commands.PaymentStatus{}, errors.New("connection reset")).Once()

	detail, err := suite.handler.Handle(suite.T().Context(), suite.query(o.ID(), 1001))
	suite.Require().NoError(err)
	suite.Equal(order.StatusNoPay, detail.Status)
	suite.canceler.AssertNotCalled(suite.T(), "Handle", mock.Anything, mock.Anything)
}

func (suite *GetOrderDetailQueryHandlerTestSuite) TestHandle_CancelFails_ReturnsCurrentState() {
	o := suite.store(detailNow.Add(-time.Hour))

	suite.poller.On("Handle", mock.Anything, isPollOf(o.ID())).
		Return(commands.PaymentStatus{OrderID: o.ID(), PayStatus: order.PayStatusNoPay}, nil).Once()
	suite.canceler.On("Handle", mock.Anything, isSystemCancelOf(o.ID())).
		Return(errors.New("database is locked")).Once()

	detail, err := suite.handler.Handle(suite.T().Context(), suite.query(o.ID(), 1001))
	suite.Require().NoError(err)
	suite.Equal(order.StatusNoPay, detail.Status)
	suite.Nil(detail.Cancellation)
}

func TestGetOrderDetailQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetOrderDetailQueryHandlerTestSuite))
}

func TestNewGetOrderDetailQuery(t *testing.T) {
	_, err := queries.NewGetOrderDetailQuery(0, 1001)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = queries.NewGetOrderDetailQuery(storetest.OrderID(t, 1), 0)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	query, err := queries.NewGetOrderDetailQuery(storetest.OrderID(t, 1), 1001)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	require.ErrorIs(t, queries.GetOrderDetailQuery{}.Validate(), queries.ErrGetOrderDetailQueryIsNotConstructed)
}
