package ports

import (
	"context"
	"time"

	"orders/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// Serve is a purchasable service offer as seen by the catalog.
type Serve struct {
	ID       int64
	ItemName string
	TypeName string
	CityCode string
	Price    decimal.Decimal
	OnSale   bool
}

// Address is an entry of the customer's address book.
type Address struct {
	ID           int64
	Province     string
	City         string
	County       string
	Detail       string
	ContactName  string
	ContactPhone string
}

// FullAddress concatenates the address parts the way they are shown on orders.
func (a Address) FullAddress() string {
	return a.Province + a.City + a.County + a.Detail
}

type CouponUse struct {
	CouponID    int64
	UserID      int64
	OrderID     kernel.OrderID
	TotalAmount decimal.Decimal
	UsedAt      time.Time
}

// ServeCatalog resolves service offers. Unknown ids yield errs.ObjectNotFoundError.
type ServeCatalog interface {
	FindServe(ctx context.Context, serveID int64) (Serve, error)
}

// AddressBook resolves a customer's saved addresses.
type AddressBook interface {
	FindAddress(ctx context.Context, userID, addressID int64) (Address, error)
}

// CouponRedeemer consumes a coupon for an order and returns the discount.
type CouponRedeemer interface {
	Redeem(ctx context.Context, use CouponUse) (decimal.Decimal, error)
}
