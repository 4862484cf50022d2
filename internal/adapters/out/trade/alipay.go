package trade

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/smartwalle/alipay/v3"
)

const alipayTradeNotExist = "ACQ.TRADE_NOT_EXIST"

// alipayTimeLayout is how Alipay formats timestamps, in China Standard Time.
const alipayTimeLayout = "2006-01-02 15:04:05"

var chinaStandardTime = time.FixedZone("CST", 8*60*60)

type AlipayOptions struct {
	AppID        string
	PrivateKey   string
	PublicKey    string
	NotifyURL    string
	IsProduction bool
	// Gateway overrides the Alipay endpoint of the selected environment.
	Gateway string
	// Timeout bounds every HTTP exchange with Alipay. Zero means no limit.
	Timeout time.Duration
}

// Alipay is the ALI_PAY channel. Charges are face-to-face QR codes.
type Alipay struct {
	client    *alipay.Client
	notifyURL string
}

func NewAlipay(opts AlipayOptions) (*Alipay, error) {
	if opts.AppID == "" {
		return nil, errs.NewValueIsRequiredError("alipay app id")
	}

	// The SDK issues its requests with context.Background(), so the HTTP
	// client timeout is the only bound on a hung exchange.
	options := []alipay.OptionFunc{
		alipay.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
		alipay.WithTimeLocation(chinaStandardTime),
	}
	if opts.Gateway != "" {
		options = append(options,
			alipay.WithSandboxGateway(opts.Gateway),
			alipay.WithProductionGateway(opts.Gateway),
		)
	}

	client, err := alipay.New(opts.AppID, opts.PrivateKey, opts.IsProduction, options...)
	if err != nil {
		return nil, fmt.Errorf("create alipay client: %w", err)
	}
	if err = client.LoadAliPayPublicKey(opts.PublicKey); err != nil {
		return nil, fmt.Errorf("load alipay public key: %w", err)
	}

	return &Alipay{client: client, notifyURL: opts.NotifyURL}, nil
}

func (a *Alipay) Name() order.TradingChannel {
	return order.ChannelAliPay
}

func (a *Alipay) Precreate(ctx context.Context, tradingOrderNo string, amount decimal.Decimal, subject string) (string, error) {
	p := alipay.TradePreCreate{}
	p.NotifyURL = a.notifyURL
	p.Subject = subject
	p.OutTradeNo = tradingOrderNo
	p.TotalAmount = kernel.FormatAmount(amount)

	rsp, err := withContext(ctx, func() (*alipay.TradePreCreateRsp, error) {
		return a.client.TradePreCreate(p)
	})
	if err != nil {
		return "", errs.NewDownstreamUnavailableError("alipay", err)
	}
	if rsp.Code != alipay.CodeSuccess {
		return "", errs.NewDownstreamUnavailableError("alipay", alipayFailure(rsp.Code, rsp.SubCode, rsp.SubMsg))
	}
	return rsp.QRCode, nil
}

func (a *Alipay) Query(ctx context.Context, tradingOrderNo string) (ports.PaymentResult, error) {
	rsp, err := withContext(ctx, func() (*alipay.TradeQueryRsp, error) {
		return a.client.TradeQuery(alipay.TradeQuery{OutTradeNo: tradingOrderNo})
	})
	if err != nil {
		var apiErr *alipay.Error
		if errors.As(err, &apiErr) && apiErr.SubCode == alipayTradeNotExist {
			return ports.PaymentResult{State: ports.TradeStateUnpaid}, nil
		}
		return ports.PaymentResult{}, errs.NewDownstreamUnavailableError("alipay", err)
	}
	if rsp.Code != alipay.CodeSuccess {
		// The trade only exists once the customer has scanned the code.
		if rsp.SubCode == alipayTradeNotExist {
			return ports.PaymentResult{State: ports.TradeStateUnpaid}, nil
		}
		return ports.PaymentResult{}, errs.NewDownstreamUnavailableError("alipay", alipayFailure(rsp.Code, rsp.SubCode, rsp.SubMsg))
	}

	result := ports.PaymentResult{
		State:         alipayTradeState(rsp.TradeStatus),
		TransactionID: rsp.TradeNo,
	}
	if result.State == ports.TradeStatePaid {
		result.PaidAt = parseAlipayTime(rsp.SendPayDate, time.Now())
	}
	return result, nil
}

// Refund uses refundNo as out_request_no, which Alipay deduplicates on.
func (a *Alipay) Refund(ctx context.Context, tradingOrderNo, refundNo string, amount decimal.Decimal) (order.RefundResult, error) {
	rsp, err := withContext(ctx, func() (*alipay.TradeRefundRsp, error) {
		return a.client.TradeRefund(alipay.TradeRefund{
			OutTradeNo:   tradingOrderNo,
			OutRequestNo: refundNo,
			RefundAmount: kernel.FormatAmount(amount),
			RefundReason: "order canceled",
		})
	})
	if err != nil {
		return order.RefundResult{}, errs.NewDownstreamUnavailableError("alipay", err)
	}

	return order.RefundResult{
		State:    alipayRefundState(rsp.Code),
		RefundID: rsp.TradeNo,
		RefundNo: refundNo,
	}, nil
}

// withContext returns as soon as ctx is done. The abandoned call keeps running
// until the HTTP client timeout ends it.
func withContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	done := make(chan outcome, 1)
	go func() {
		value, err := call()
		done <- outcome{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case o := <-done:
		return o.value, o.err
	}
}

func alipayTradeState(status alipay.TradeStatus) ports.TradeState {
	switch status {
	case alipay.TradeStatusSuccess, alipay.TradeStatusFinished:
		return ports.TradeStatePaid
	case alipay.TradeStatusWaitBuyerPay:
		return ports.TradeStatePaying
	case alipay.TradeStatusClosed:
		return ports.TradeStateClosed
	default:
		return ports.TradeStateUnknown
	}
}

// alipayRefundState maps the result code of a synchronous refund. Business
// errors (40004) are final, system errors (20000) are retried.
func alipayRefundState(code alipay.Code) order.RefundState {
	switch code {
	case alipay.CodeSuccess:
		return order.RefundStateSuccess
	case alipay.CodeBusinessFailed:
		return order.RefundStateFailed
	default:
		return order.RefundStateProcessing
	}
}

// parseAlipayTime falls back to fallback when Alipay sent no usable time.
func parseAlipayTime(s string, fallback time.Time) time.Time {
	t, err := time.ParseInLocation(alipayTimeLayout, s, chinaStandardTime)
	if err != nil {
		return fallback.UTC()
	}
	return t.UTC()
}

func alipayFailure(code alipay.Code, subCode, subMsg string) error {
	return fmt.Errorf("code %s, %s: %s", code, subCode, subMsg)
}
