package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/hexshop/internal/domain/checkout"
	"github.com/xenking/hexshop/internal/domain/customer"
	"github.com/xenking/hexshop/internal/domain/discount"
	"github.com/xenking/hexshop/internal/domain/order"
	"github.com/xenking/hexshop/internal/handler"
	"github.com/xenking/hexshop/internal/storage/file"
	"github.com/xenking/hexshop/internal/storage/memory"
	"github.com/xenking/hexshop/internal/storage/postgres"
	"github.com/xenking/hexshop/pkg/health"
	"github.com/xenking/hexshop/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	orderRepo, customerRepo, closeStorage, err := buildStorage(ctx, cfg, healthSvc)
	if err != nil {
		return err
	}
	defer closeStorage()

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	checkoutSvc := checkout.NewService(orderRepo, discount.NewService())

	h := handler.New(
		handler.Config{
			DiscountThresholdPence: cfg.Discount.ThresholdPence,
			DiscountPercent:        cfg.Discount.Percent,
		},
		checkoutSvc,
		customerRepo,
		orderRepo,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("shop-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// buildStorage constructs the repositories for the configured backend and
// registers its readiness check. The file backend persists orders only;
// customers live in memory for it, same as for the memory backend.
func buildStorage(ctx context.Context, cfg *Config, healthSvc *health.Health) (order.Repository, customer.Repository, func(), error) {
	switch cfg.Storage {
	case StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		return postgres.NewOrderRepository(pool), postgres.NewCustomerRepository(pool), pool.Close, nil

	case StorageFile:
		repo, err := file.NewOrderRepository(cfg.OrdersFile)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "open order store")
		}
		return repo, memory.NewCustomerRepository(), func() {}, nil

	default:
		return memory.NewOrderRepository(), memory.NewCustomerRepository(), func() {}, nil
	}
}
