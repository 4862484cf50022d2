package trade

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
	"github.com/wechatpay-apiv3/wechatpay-go/services/refunddomestic"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

const wechatOrderNotExist = "ORDER_NOT_EXIST"

type WechatOptions struct {
	AppID                string
	MchID                string
	MchCertificateSerial string
	MchPrivateKey        string
	APIv3Key             string
	NotifyURL            string
	Timeout              time.Duration
}

// Wechat is the WECHAT_PAY channel. Charges are Native (QR code) payments.
type Wechat struct {
	payments native.NativeApiService
	refunds  refunddomestic.RefundsApiService
	appID    string
	mchID    string
	notify   string
}

func NewWechat(ctx context.Context, opts WechatOptions) (*Wechat, error) {
	if opts.MchID == "" {
		return nil, errs.NewValueIsRequiredError("wechat merchant id")
	}

	privateKey, err := utils.LoadPrivateKey(opts.MchPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load wechat merchant key: %w", err)
	}

	client, err := core.NewClient(ctx,
		option.WithWechatPayAutoAuthCipher(opts.MchID, opts.MchCertificateSerial, privateKey, opts.APIv3Key),
		option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("create wechat pay client: %w", err)
	}

	return &Wechat{
		payments: native.NativeApiService{Client: client},
		refunds:  refunddomestic.RefundsApiService{Client: client},
		appID:    opts.AppID,
		mchID:    opts.MchID,
		notify:   opts.NotifyURL,
	}, nil
}

func (w *Wechat) Name() order.TradingChannel {
	return order.ChannelWechatPay
}

func (w *Wechat) Precreate(ctx context.Context, tradingOrderNo string, amount decimal.Decimal, subject string) (string, error) {
	resp, _, err := w.payments.Prepay(ctx, native.PrepayRequest{
		Appid:       core.String(w.appID),
		Mchid:       core.String(w.mchID),
		Description: core.String(subject),
		OutTradeNo:  core.String(tradingOrderNo),
		NotifyUrl:   core.String(w.notify),
		Amount: &native.Amount{
			Total:    core.Int64(kernel.ToCents(amount)),
			Currency: core.String("CNY"),
		},
	})
	if err != nil {
		return "", errs.NewDownstreamUnavailableError("wechat pay", err)
	}
	if resp.CodeUrl == nil {
		return "", errs.NewDownstreamUnavailableError("wechat pay", fmt.Errorf("prepay of %s returned no code url", tradingOrderNo))
	}
	return *resp.CodeUrl, nil
}

func (w *Wechat) Query(ctx context.Context, tradingOrderNo string) (ports.PaymentResult, error) {
	tx, _, err := w.payments.QueryOrderByOutTradeNo(ctx, native.QueryOrderByOutTradeNoRequest{
		OutTradeNo: core.String(tradingOrderNo),
		Mchid:      core.String(w.mchID),
	})
	if err != nil {
		if core.IsAPIError(err, wechatOrderNotExist) {
			return ports.PaymentResult{State: ports.TradeStateUnpaid}, nil
		}
		return ports.PaymentResult{}, errs.NewDownstreamUnavailableError("wechat pay", err)
	}

	result := ports.PaymentResult{
		State:         wechatTradeState(deref(tx.TradeState)),
		TransactionID: deref(tx.TransactionId),
	}
	if result.State == ports.TradeStatePaid {
		result.PaidAt = parseWechatTime(deref(tx.SuccessTime), time.Now())
	}
	return result, nil
}

func (w *Wechat) Refund(ctx context.Context, tradingOrderNo, refundNo string, amount decimal.Decimal) (order.RefundResult, error) {
	cents := kernel.ToCents(amount)
	resp, _, err := w.refunds.Create(ctx, refunddomestic.CreateRequest{
		OutTradeNo:  core.String(tradingOrderNo),
		OutRefundNo: core.String(refundNo),
		Reason:      core.String("order canceled"),
		Amount: &refunddomestic.AmountReq{
			Refund:   core.Int64(cents),
			Total:    core.Int64(cents),
			Currency: core.String("CNY"),
		},
	})
	if err != nil {
		return order.RefundResult{}, errs.NewDownstreamUnavailableError("wechat pay", err)
	}

	result := order.RefundResult{
		State:    order.RefundStateProcessing,
		RefundID: deref(resp.RefundId),
		RefundNo: refundNo,
	}
	if resp.Status != nil {
		result.State = wechatRefundState(*resp.Status)
	}
	return result, nil
}

func wechatTradeState(state string) ports.TradeState {
	switch state {
	case "SUCCESS", "REFUND":
		return ports.TradeStatePaid
	case "NOTPAY":
		return ports.TradeStateUnpaid
	case "USERPAYING":
		return ports.TradeStatePaying
	case "CLOSED", "REVOKED", "PAYERROR":
		return ports.TradeStateClosed
	default:
		return ports.TradeStateUnknown
	}
}

func wechatRefundState(status refunddomestic.Status) order.RefundState {
	switch status {
	case refunddomestic.STATUS_SUCCESS:
		return order.RefundStateSuccess
	case refunddomestic.STATUS_CLOSED, refunddomestic.STATUS_ABNORMAL:
		return order.RefundStateFailed
	default:
		return order.RefundStateProcessing
	}
}

func parseWechatTime(s string, fallback time.Time) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fallback.UTC()
	}
	return t.UTC()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
