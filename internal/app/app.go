package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/JJ-Sinklaire/desesperanza/internal/auth"
	"github.com/JJ-Sinklaire/desesperanza/internal/config"
	"github.com/JJ-Sinklaire/desesperanza/internal/event"
	"github.com/JJ-Sinklaire/desesperanza/internal/geocode"
	handler "github.com/JJ-Sinklaire/desesperanza/internal/handler/http"
	"github.com/JJ-Sinklaire/desesperanza/internal/repository/postgres"
	"github.com/JJ-Sinklaire/desesperanza/internal/service"
	"github.com/JJ-Sinklaire/desesperanza/migrations"
	"github.com/JJ-Sinklaire/desesperanza/pkg/database"
	"github.com/JJ-Sinklaire/desesperanza/pkg/health"
	"github.com/JJ-Sinklaire/desesperanza/pkg/httpclient"
	pkgkafka "github.com/JJ-Sinklaire/desesperanza/pkg/kafka"
	"github.com/JJ-Sinklaire/desesperanza/pkg/middleware"
	"github.com/JJ-Sinklaire/desesperanza/pkg/tracing"
)

// App wires together all dependencies and runs the ordering service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "ordering",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Redis only backs the geocode cache; the service runs without it.
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
	}

	// Address changes are published best effort; with Kafka disabled the
	// publisher is a no-op.
	var producer *pkgkafka.Producer
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiry)

	addressRepo := postgres.NewAddressRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)

	geocodeHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.Config{
			Timeout:    cfg.GeocodeTimeout,
			MaxRetries: 0, // Nominatim rate-limits; never hammer it with retries
		}),
		httpclient.DefaultCircuitBreakerConfig("nominatim"),
		logger,
	)
	geocoder := geocode.NewClient(geocodeHTTP, redisClient, cfg.GeocodeBaseURL, cfg.GeocodeCacheTTL, logger)

	addressService := service.NewAddressService(addressRepo, publisher, logger)
	orderService := service.NewOrderService(orderRepo, cfg.TaxRate, logger)
	customerService := service.NewCustomerService(customerRepo, tokens, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := handler.NewRouter(handler.RouterDeps{
		Addresses: addressService,
		Orders:    orderService,
		Customers: customerService,
		Geocoder:  geocoder,
		Tokens:    tokens,
		Health:    healthHandler,
		CORS:      middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: first drain in-flight HTTP
// requests, then flush pending spans, then close the producer, cache, and
// database pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
