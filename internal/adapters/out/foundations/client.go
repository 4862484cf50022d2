// Package foundations calls the catalog, customer and market services that
// own service offers, address books and coupons.
package foundations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 3 * time.Second

var (
	_ ports.ServeCatalog   = (*Client)(nil)
	_ ports.AddressBook    = (*Client)(nil)
	_ ports.CouponRedeemer = (*Client)(nil)
)

type Options struct {
	CatalogURL  string
	CustomerURL string
	MarketURL   string
	Timeout     time.Duration
}

// Client is a JSON-over-HTTP client of the internal endpoints of the
// foundation services.
type Client struct {
	http        *http.Client
	catalogURL  string
	customerURL string
	marketURL   string
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http:        &http.Client{Timeout: timeout},
		catalogURL:  opts.CatalogURL,
		customerURL: opts.CustomerURL,
		marketURL:   opts.MarketURL,
	}
}

type serveResponse struct {
	ID            int64           `json:"id"`
	ServeItemName string          `json:"serveItemName"`
	ServeTypeName string          `json:"serveTypeName"`
	CityCode      string          `json:"cityCode"`
	Price         decimal.Decimal `json:"price"`
	SaleStatus    int             `json:"saleStatus"`
}

// serveOnSale is the catalog's sale status of a published offer.
const serveOnSale = 2

func (c *Client) FindServe(ctx context.Context, serveID int64) (ports.Serve, error) {
	var resp serveResponse
	url := c.catalogURL + "/inner/serve/" + strconv.FormatInt(serveID, 10)
	if err := c.do(ctx, "catalog", http.MethodGet, url, nil, &resp); err != nil {
		return ports.Serve{}, notFoundAs(err, "serve", serveID)
	}

	return ports.Serve{
		ID:       resp.ID,
		ItemName: resp.ServeItemName,
		TypeName: resp.ServeTypeName,
		CityCode: resp.CityCode,
		Price:    resp.Price,
		OnSale:   resp.SaleStatus == serveOnSale,
	}, nil
}

type addressResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"userId"`
	Province string `json:"province"`
	City     string `json:"city"`
	County   string `json:"county"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// FindAddress reports addresses of other customers as not found.
func (c *Client) FindAddress(ctx context.Context, userID, addressID int64) (ports.Address, error) {
	var resp addressResponse
	url := c.customerURL + "/inner/address-book/" + strconv.FormatInt(addressID, 10)
	if err := c.do(ctx, "customer", http.MethodGet, url, nil, &resp); err != nil {
		return ports.Address{}, notFoundAs(err, "address", addressID)
	}
	if resp.UserID != userID {
		return ports.Address{}, errs.NewObjectNotFoundError("address", strconv.FormatInt(addressID, 10))
	}

	return ports.Address{
		ID:           resp.ID,
		Province:     resp.Province,
		City:         resp.City,
		County:       resp.County,
		Detail:       resp.Address,
		ContactName:  resp.Name,
		ContactPhone: resp.Phone,
	}, nil
}

type couponUseRequest struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	OrdersID    int64           `json:"ordersId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type couponUseResponse struct {
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// Redeem consumes the coupon. A coupon the market service refuses (used,
// expired, below threshold) yields a ValueIsInvalidError.
func (c *Client) Redeem(ctx context.Context, use ports.CouponUse) (decimal.Decimal, error) {
	body := couponUseRequest{
		ID:          use.CouponID,
		UserID:      use.UserID,
		OrdersID:    use.OrderID.Int64(),
		TotalAmount: use.TotalAmount,
	}

	var resp couponUseResponse
	if err := c.do(ctx, "market", http.MethodPost, c.marketURL+"/inner/coupon/use", body, &resp); err != nil {
		var rejected *rejectedError
		if errors.As(err, &rejected) {
			return decimal.Zero, errs.NewValueIsInvalidErrorWithCause("coupon", rejected)
		}
		return decimal.Zero, err
	}
	return resp.DiscountAmount, nil
}

// rejectedError is a 4xx answer other than 404.
type rejectedError struct {
	Status int
	Body   string
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("rejected with status %d: %s", e.Status, e.Body)
}

var errNotFound = errors.New("not found")

func (c *Client) do(ctx context.Context, service, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.NewDownstreamUnavailableError(service, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &rejectedError{Status: resp.StatusCode, Body: string(text)}
	case resp.StatusCode >= 500:
		return errs.NewDownstreamUnavailableError(service, fmt.Errorf("status %d", resp.StatusCode))
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.NewDownstreamUnavailableError(service, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func notFoundAs(err error, object string, id int64) error {
	if errors.Is(err, errNotFound) {
		return errs.NewObjectNotFoundError(object, strconv.FormatInt(id, 10))
	}
	var rejected *rejectedError
	if errors.As(err, &rejected) {
		return errs.NewValueIsInvalidErrorWithCause(object+" id", rejected)
	}
	return err
}
