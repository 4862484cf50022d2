// Package http exposes the customer order API over echo.
package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type (
	PlaceOrderHandler interface {
		Handle(ctx context.Context, cmd commands.PlaceOrderCommand) (kernel.OrderID, error)
	}
	RequestPaymentHandler interface {
		Handle(ctx context.Context, cmd commands.RequestPaymentCommand) (commands.PaymentTicket, error)
	}
	PaymentStatusHandler interface {
		Handle(ctx context.Context, cmd commands.QueryPaymentStatusCommand) (commands.PaymentStatus, error)
	}
	CancelOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CancelOrderCommand) error
	}
	ListOrdersHandler interface {
		Handle(ctx context.Context, query queries.ListOrdersQuery) ([]queries.OrderSummary, error)
	}
	OrderDetailHandler interface {
		Handle(ctx context.Context, query queries.GetOrderDetailQuery) (queries.OrderDetail, error)
	}
	OrderOwnershipHandler interface {
		Handle(ctx context.Context, query queries.CheckOrderOwnershipQuery) error
	}
)

// Handlers are the use cases the API serves.
type Handlers struct {
	PlaceOrder     PlaceOrderHandler
	RequestPayment RequestPaymentHandler
	PaymentStatus  PaymentStatusHandler
	CancelOrder    CancelOrderHandler
	ListOrders     ListOrdersHandler
	OrderDetail    OrderDetailHandler
	OrderOwnership OrderOwnershipHandler
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	handlers Handlers
	logger   *zap.Logger
}

func NewServer(handlers Handlers, logger *zap.Logger) *Server {
	return &Server{
		handlers: handlers,
		logger:   logger.With(zap.String("component", "http")),
	}
}

// Ids are strings on the wire: they do not fit a JavaScript number.

type PlaceOrderRequest struct {
	ServeID        int64     `json:"serveId"`
	AddressBookID  int64     `json:"addressBookId"`
	ServeStartTime time.Time `json:"serveStartTime"`
	PurNum         int       `json:"purNum"`
	CouponID       int64     `json:"couponId"`
}

type PlaceOrderResponse struct {
	ID string `json:"id"`
}

type PayRequest struct {
	TradingChannel string `json:"tradingChannel"`
}

type PayResponse struct {
	ID             string `json:"id"`
	TradingOrderNo string `json:"tradingOrderNo,omitempty"`
	TradingChannel string `json:"tradingChannel,omitempty"`
	QRCode         string `json:"qrCode,omitempty"`
	PayStatus      int    `json:"payStatus"`
}

type CancelRequest struct {
	ID           string `json:"id"`
	CancelReason string `json:"cancelReason"`
}

type OrderSummaryResponse struct {
	ID             string          `json:"id"`
	ServeItemName  string          `json:"serveItemName"`
	ServeTypeName  string          `json:"serveTypeName"`
	ServeAddress   string          `json:"serveAddress"`
	ServeStartTime time.Time       `json:"serveStartTime"`
	PurNum         int             `json:"purNum"`
	RealPayAmount  decimal.Decimal `json:"realPayAmount"`
	OrdersStatus   int             `json:"ordersStatus"`
	PayStatus      int             `json:"payStatus"`
	RefundStatus   int             `json:"refundStatus"`
	SortBy         string          `json:"sortBy"`
	CreateTime     time.Time       `json:"createTime"`
}

type OrderDetailResponse struct {
	ID              string          `json:"id"`
	ServeID         int64           `json:"serveId"`
	ServeItemName   string          `json:"serveItemName"`
	ServeTypeName   string          `json:"serveTypeName"`
	CityCode        string          `json:"cityCode"`
	ServeAddress    string          `json:"serveAddress"`
	ContactsName    string          `json:"contactsName"`
	ContactsPhone   string          `json:"contactsPhone"`
	ServeStartTime  time.Time       `json:"serveStartTime"`
	Price           decimal.Decimal `json:"price"`
	PurNum          int             `json:"purNum"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	RealPayAmount   decimal.Decimal `json:"realPayAmount"`
	OrdersStatus    int             `json:"ordersStatus"`
	PayStatus       int             `json:"payStatus"`
	RefundStatus    int             `json:"refundStatus"`
	TradingOrderNo  string          `json:"tradingOrderNo,omitempty"`
	TradingChannel  string          `json:"tradingChannel,omitempty"`
	TransactionID   string          `json:"transactionId,omitempty"`
	PayTime         *time.Time      `json:"payTime,omitempty"`
	RefundNo        string          `json:"refundNo,omitempty"`
	CreateTime      time.Time       `json:"createTime"`
	PaymentDeadline time.Time       `json:"paymentDeadline"`
	CancelReason    string          `json:"cancelReason,omitempty"`
	CancelerName    string          `json:"cancelerName,omitempty"`
	CancelTime      *time.Time      `json:"cancelTime,omitempty"`
}

// PlaceOrder handles POST /consumer/orders/place.
func (s *Server) PlaceOrder(c echo.Context) error {
	actor := actorFrom(c)

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return s.badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewPlaceOrderCommand(
		actor.ID(), req.ServeID, req.AddressBookID, req.ServeStartTime, req.PurNum, req.CouponID,
	)
	if err != nil {
		return s.fail(c, err)
	}

	id, err := s.handlers.PlaceOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, PlaceOrderResponse{ID: id.String()})
}

// Pay handles PUT /consumer/orders/pay/:id.
func (s *Server) Pay(c echo.Context) error {
	actor := actorFrom(c)
	id, err := kernel.ParseOrderID(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req PayRequest
	if err = c.Bind(&req); err != nil {
		return s.badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewRequestPaymentCommand(id, actor.ID(), order.TradingChannel(req.TradingChannel))
	if err != nil {
		return s.fail(c, err)
	}

	ticket, err := s.handlers.RequestPayment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, PayResponse{
		ID:             ticket.OrderID.String(),
		TradingOrderNo: ticket.TradingOrderNo,
		TradingChannel: ticket.Channel.String(),
		QRCode:         ticket.QRCode,
		PayStatus:      int(ticket.PayStatus),
	})
}

// PayResult handles GET /consumer/orders/pay/:id/result.
func (s *Server) PayResult(c echo.Context) error {
	actor := actorFrom(c)
	id, err := kernel.ParseOrderID(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	// Polling may confirm the payment, so it only runs for the owner.
	if err = s.checkOwner(c.Request().Context(), id, actor); err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewQueryPaymentStatusCommand(id)
	if err != nil {
		return s.fail(c, err)
	}

	status, err := s.handlers.PaymentStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, PayResponse{
		ID:             status.OrderID.String(),
		TradingOrderNo: status.TradingOrderNo,
		TradingChannel: status.Channel.String(),
		PayStatus:      int(status.PayStatus),
	})
}

// Cancel handles PUT /consumer/orders/cancel.
func (s *Server) Cancel(c echo.Context) error {
	actor := actorFrom(c)

	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return s.badRequest(c, "Invalid request body")
	}
	id, err := kernel.ParseOrderID(req.ID)
	if err != nil {
		return s.fail(c, err)
	}

	// Customers may only cancel their own orders; operators any order.
	if actor.Type() == kernel.ActorTypeUser {
		if err = s.checkOwner(c.Request().Context(), id, actor); err != nil {
			return s.fail(c, err)
		}
	}

	cmd, err := commands.NewCancelOrderCommand(id, actor, req.CancelReason)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.handlers.CancelOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// checkOwner reports orders of other customers as not found.
func (s *Server) checkOwner(ctx context.Context, id kernel.OrderID, actor kernel.Actor) error {
	query, err := queries.NewCheckOrderOwnershipQuery(id, actor.ID())
	if err != nil {
		return err
	}
	return s.handlers.OrderOwnership.Handle(ctx, query)
}

// List handles GET /consumer/orders/consumerQueryList.
func (s *Server) List(c echo.Context) error {
	actor := actorFrom(c)

	var status *order.Status
	if raw := c.QueryParam("ordersStatus"); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil {
			return s.badRequest(c, "ordersStatus must be a number")
		}
		st := order.Status(code)
		status = &st
	}

	var cursor int64
	if raw := c.QueryParam("sortBy"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return s.badRequest(c, "sortBy must be a number")
		}
		cursor = v
	}

	query, err := queries.NewListOrdersQuery(actor.ID(), status, cursor)
	if err != nil {
		return s.fail(c, err)
	}

	page, err := s.handlers.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]OrderSummaryResponse, len(page))
	for i, o := range page {
		response[i] = OrderSummaryResponse{
			ID:             o.ID.String(),
			ServeItemName:  o.ServeItemName,
			ServeTypeName:  o.ServeTypeName,
			ServeAddress:   o.ServeAddress,
			ServeStartTime: o.ServeStartTime,
			PurNum:         o.Quantity,
			RealPayAmount:  o.RealPayAmount,
			OrdersStatus:   int(o.Status),
			PayStatus:      int(o.PayStatus),
			RefundStatus:   int(o.RefundStatus),
			SortBy:         strconv.FormatInt(o.SortBy, 10),
			CreateTime:     o.CreateTime,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// Detail handles GET /consumer/orders/:id.
func (s *Server) Detail(c echo.Context) error {
	actor := actorFrom(c)
	id, err := kernel.ParseOrderID(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetOrderDetailQuery(id, actor.ID())
	if err != nil {
		return s.fail(c, err)
	}

	d, err := s.handlers.OrderDetail.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := OrderDetailResponse{
		ID:              d.ID.String(),
		ServeID:         d.ServeID,
		ServeItemName:   d.ServeItemName,
		ServeTypeName:   d.ServeTypeName,
		CityCode:        d.CityCode,
		ServeAddress:    d.ServeAddress,
		ContactsName:    d.ContactsName,
		ContactsPhone:   d.ContactsPhone,
		ServeStartTime:  d.ServeStartTime,
		Price:           d.Price,
		PurNum:          d.Quantity,
		TotalAmount:     d.TotalAmount,
		DiscountAmount:  d.DiscountAmount,
		RealPayAmount:   d.RealPayAmount,
		OrdersStatus:    int(d.Status),
		PayStatus:       int(d.PayStatus),
		RefundStatus:    int(d.RefundStatus),
		TradingOrderNo:  d.TradingOrderNo,
		TradingChannel:  d.TradingChannel.String(),
		TransactionID:   d.TransactionID,
		PayTime:         d.PayTime,
		RefundNo:        d.RefundNo,
		CreateTime:      d.CreateTime,
		PaymentDeadline: d.PaymentDeadline,
	}
	if d.Cancellation != nil {
		canceledAt := d.Cancellation.CanceledAt
		response.CancelReason = d.Cancellation.Reason
		response.CancelerName = d.Cancellation.ActorName
		response.CancelTime = &canceledAt
	}
	return c.JSON(http.StatusOK, response)
}
