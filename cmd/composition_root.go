package cmd

import (
	"context"
	"fmt"

	"orders/internal/adapters/in/kafka"
	"orders/internal/adapters/out/foundations"
	"orders/internal/adapters/out/postgres"
	"orders/internal/adapters/out/redis"
	"orders/internal/adapters/out/trade"
	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/services"
	"orders/internal/core/ports"
	"orders/internal/jobs"
	"orders/internal/pkg/metrics"
	"orders/internal/workers"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived collaborators and builds every handler.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	logger     *zap.Logger
	metrics    *metrics.OrderMetrics
	clock      ports.Clock
	uowFactory *postgres.GormUnitOfWorkFactory
	ids        *redis.SequenceIDGenerator
	gateways   *trade.Router
	foundation *foundations.Client
	refundPool *workers.RefundPool
}

func NewCompositionRoot(
	ctx context.Context,
	cfg Config,
	gormDB *gorm.DB,
	redisClient goredis.Cmdable,
	m *metrics.OrderMetrics,
	logger *zap.Logger,
) (*CompositionRoot, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("time zone: %w", err)
	}

	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		logger:     logger,
		metrics:    m,
		clock:      ports.SystemClock{},
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		foundation: foundations.NewClient(foundations.Options{
			CatalogURL:  cfg.Foundations.CatalogURL,
			CustomerURL: cfg.Foundations.CustomerURL,
			MarketURL:   cfg.Foundations.MarketURL,
			Timeout:     cfg.Foundations.Timeout,
		}),
	}

	c.ids, err = redis.NewSequenceIDGenerator(redisClient, cfg.Redis.SequenceKey, c.clock, location)
	if err != nil {
		return nil, err
	}

	channels, err := c.newChannels(ctx)
	if err != nil {
		return nil, err
	}
	c.gateways, err = trade.NewRouter(channels...)
	if err != nil {
		return nil, fmt.Errorf("trade router: %w", err)
	}

	c.refundPool = workers.NewRefundPool(c.CreateDispatchRefundCommandHandler(), workers.RefundPoolOptions{
		Workers:        cfg.RefundPool.Workers,
		QueueSize:      cfg.RefundPool.QueueSize,
		AttemptTimeout: cfg.RefundPool.AttemptTimeout,
	}, logger)

	return c, nil
}

// newChannels opens the payment channels that have credentials configured.
// Each channel gets its own limiter.
func (c *CompositionRoot) newChannels(ctx context.Context) ([]trade.Channel, error) {
	var channels []trade.Channel

	if c.cfg.Alipay.AppID != "" {
		alipay, err := trade.NewAlipay(trade.AlipayOptions{
			AppID:        c.cfg.Alipay.AppID,
			PrivateKey:   c.cfg.Alipay.PrivateKey,
			PublicKey:    c.cfg.Alipay.PublicKey,
			NotifyURL:    c.cfg.Alipay.NotifyURL,
			IsProduction: c.cfg.Alipay.IsProduction,
			Gateway:      c.cfg.Alipay.Gateway,
			Timeout:      c.cfg.Gateway.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("alipay: %w", err)
		}
		channels = append(channels, trade.NewThrottled(alipay, c.newLimiter(), c.metrics))
	}

	if c.cfg.Wechat.MchID != "" {
		wechat, err := trade.NewWechat(ctx, trade.WechatOptions{
			AppID:                c.cfg.Wechat.AppID,
			MchID:                c.cfg.Wechat.MchID,
			MchCertificateSerial: c.cfg.Wechat.MchCertificateSerial,
			MchPrivateKey:        c.cfg.Wechat.MchPrivateKey,
			APIv3Key:             c.cfg.Wechat.APIv3Key,
			NotifyURL:            c.cfg.Wechat.NotifyURL,
			Timeout:              c.cfg.Gateway.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("wechat pay: %w", err)
		}
		channels = append(channels, trade.NewThrottled(wechat, c.newLimiter(), c.metrics))
	}

	if len(channels) == 0 {
		c.logger.Warn("No payment channel configured; payment requests will be rejected")
	}
	return channels, nil
}

func (c *CompositionRoot) newLimiter() *rate.Limiter {
	if c.cfg.Gateway.RatePerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.cfg.Gateway.RatePerSecond), max(c.cfg.Gateway.Burst, 1))
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) fullUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) RefundPool() *workers.RefundPool {
	return c.refundPool
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(
		c.orderUoWFactory(), c.ids, c.foundation, c.foundation, c.foundation, c.clock, c.metrics, c.logger,
	)
}

func (c *CompositionRoot) CreateRequestPaymentCommandHandler() commands.RequestPaymentCommandHandler {
	return commands.NewRequestPaymentCommandHandler(c.orderUoWFactory(), c.gateways, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(c.orderUoWFactory(), c.metrics, c.logger)
}

func (c *CompositionRoot) CreateQueryPaymentStatusCommandHandler() commands.QueryPaymentStatusCommandHandler {
	return commands.NewQueryPaymentStatusCommandHandler(
		c.orderUoWFactory(), c.gateways, c.CreateConfirmPaymentCommandHandler(), c.logger,
	)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(
		c.fullUoWFactory(), services.NewCancellationPlanner(), c.refundPool, c.clock, c.metrics, c.logger,
	)
}

func (c *CompositionRoot) CreateSweepExpiredUnpaidCommandHandler() commands.SweepExpiredUnpaidCommandHandler {
	return commands.NewSweepExpiredUnpaidCommandHandler(
		c.orderUoWFactory(), c.CreateCancelOrderCommandHandler(), c.clock, c.metrics, c.logger,
	)
}

func (c *CompositionRoot) CreateSettleRefundsCommandHandler() commands.SettleRefundsCommandHandler {
	return commands.NewSettleRefundsCommandHandler(c.fullUoWFactory(), c.gateways, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateDispatchRefundCommandHandler() commands.DispatchRefundCommandHandler {
	return commands.NewDispatchRefundCommandHandler(c.fullUoWFactory(), c.gateways, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateCheckOrderOwnershipQueryHandler() queries.CheckOrderOwnershipQueryHandler {
	return queries.NewCheckOrderOwnershipQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderDetailQueryHandler() queries.GetOrderDetailQueryHandler {
	return queries.NewGetOrderDetailQueryHandler(
		c.gormDB, c.CreateQueryPaymentStatusCommandHandler(), c.CreateCancelOrderCommandHandler(), c.clock, c.logger,
	)
}

func (c *CompositionRoot) CreatePaymentEventConsumer(reader kafka.MessageReader) *kafka.PaymentEventConsumer {
	return kafka.NewPaymentEventConsumer(
		reader, c.CreateConfirmPaymentCommandHandler(), c.cfg.ProductAppID, c.clock, c.logger,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	sweep := jobs.NewTimeoutSweepJob(
		c.CreateSweepExpiredUnpaidCommandHandler(),
		jobs.Schedule{
			Spec:       c.cfg.Jobs.TimeoutSweepSpec,
			BatchSize:  c.cfg.Jobs.TimeoutSweepBatch,
			RunTimeout: c.cfg.Jobs.RunTimeout,
		},
		c.cfg.Jobs.UnpaidGrace,
		c.logger,
	)
	settlement := jobs.NewRefundSettlementJob(
		c.CreateSettleRefundsCommandHandler(),
		jobs.Schedule{
			Spec:       c.cfg.Jobs.RefundSettlementSpec,
			BatchSize:  c.cfg.Jobs.RefundSettlementBatch,
			RunTimeout: c.cfg.Jobs.RunTimeout,
		},
		c.logger,
	)
	return jobs.NewJobManager(sweep, settlement)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
