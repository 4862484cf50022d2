package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"orders/cmd"
	httpapi "orders/internal/adapters/in/http"
	"orders/internal/adapters/in/kafka"
	"orders/internal/adapters/out/postgres/migrations"
	"orders/internal/pkg/logger"
	"orders/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := cmd.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(gorm_postgres.Open(cfg.Postgres.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	if err = migrations.Up(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := cmd.NewCompositionRoot(ctx, cfg, db, redisClient, metrics.NewOrderMetrics(registry), log)
	if err != nil {
		return err
	}

	app.RefundPool().Start(ctx)
	defer app.RefundPool().Stop()

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}
	defer jobManager.StopAll()

	var wg sync.WaitGroup

	reader := kafka.NewReader(kafka.ReaderOptions{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.TradeTopic,
		GroupID: cfg.Kafka.ConsumerGroup,
	}, log)
	defer func() { _ = reader.Close() }()

	consumer := app.CreatePaymentEventConsumer(reader)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx); err != nil {
			log.Error("Payment event consumer stopped", zap.Error(err))
		}
	}()

	server := httpapi.NewServer(httpapi.Handlers{
		PlaceOrder:     app.CreatePlaceOrderCommandHandler(),
		RequestPayment: app.CreateRequestPaymentCommandHandler(),
		PaymentStatus:  app.CreateQueryPaymentStatusCommandHandler(),
		CancelOrder:    app.CreateCancelOrderCommandHandler(),
		ListOrders:     app.CreateListOrdersQueryHandler(),
		OrderDetail:    app.CreateGetOrderDetailQueryHandler(),
		OrderOwnership: app.CreateCheckOrderOwnershipQueryHandler(),
	}, log)
	e := httpapi.NewRouter(server, registry)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.HTTP.Port))
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTP.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err = <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}

	stop()
	wg.Wait()
	return nil
}
