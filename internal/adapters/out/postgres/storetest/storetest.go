// Package storetest opens throwaway SQLite databases with the order schema and
// builds order fixtures for repository and scenario tests.
package storetest

import (
	"path/filepath"
	"testing"
	"time"

	"orders/internal/adapters/out/postgres/cancellationrepo"
	"orders/internal/adapters/out/postgres/orderrepo"
	"orders/internal/adapters/out/postgres/refundrepo"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite returns a database in a temp file that lives as long as the test.
// A single connection serializes writers the way the row lock would.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "orders.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&cancellationrepo.CancellationDTO{},
		&refundrepo.RefundTaskDTO{},
	))

	return db
}

// Day is the calendar day fixture ids are minted on.
var Day = time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

// OrderID returns the fixture id with the given sequence number.
func OrderID(t *testing.T, seq int64) kernel.OrderID {
	t.Helper()

	id, err := kernel.NewOrderID(Day, seq)
	require.NoError(t, err)
	return id
}

// UnpaidOrder builds a fresh order for 2 x 50.00 with a 10.00 discount.
func UnpaidOrder(t *testing.T, seq int64, createdAt time.Time) *order.Order {
	t.Helper()

	o, err := order.NewOrder(OrderID(t, seq), order.Placement{
		UserID:         1001,
		ServeID:        7,
		ServeItemName:  "Deep cleaning",
		ServeTypeName:  "Cleaning",
		CityCode:       "010",
		ServeAddress:   "Beijing Chaoyang 1 Main St",
		ContactsName:   "Li",
		ContactsPhone:  "13800000000",
		ServeStartTime: createdAt.Add(48 * time.Hour),
		Price:          decimal.RequireFromString("50.00"),
		Quantity:       2,
		Discount:       decimal.RequireFromString("10.00"),
	}, createdAt)
	require.NoError(t, err)
	return o
}

// Payment is a successful ALI_PAY charge for an order.
func Payment(id kernel.OrderID, paidAt time.Time) order.Payment {
	return order.Payment{
		TradingOrderNo: "T" + id.String(),
		Channel:        order.ChannelAliPay,
		TransactionID:  "TX" + id.String(),
		PaidAt:         paidAt,
	}
}
