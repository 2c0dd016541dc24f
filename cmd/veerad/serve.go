package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Mrinal-Agrawal21/veera-app/internal/application/usecase"
	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/internal/infrastructure/config"
	"github.com/Mrinal-Agrawal21/veera-app/internal/infrastructure/messaging"
	"github.com/Mrinal-Agrawal21/veera-app/internal/infrastructure/ml"
	incidentstore "github.com/Mrinal-Agrawal21/veera-app/internal/infrastructure/postgres"
	grpcpresentation "github.com/Mrinal-Agrawal21/veera-app/internal/presentation/grpc"
	"github.com/Mrinal-Agrawal21/veera-app/internal/presentation/rest"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/kafka"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/observability"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/postgres"
)

const readinessInterval = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health endpoint",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Service:     serviceName,
		Version:     version,
		Environment: cfg.Environment,
	})

	logger.Info("starting veerad",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"environment", cfg.Environment,
	)

	// Initialize tracing.
	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    cfg.OTLPInsecure,
			SampleRatio: cfg.TraceSampleRatio,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer flush(logger, "tracer", shutdown)
		}
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer flush(logger, "metrics", func(ctx context.Context) error {
		return observability.ShutdownMetrics(ctx, meterProvider)
	})

	// Database connection.
	if cfg.AutoMigrate {
		if err := postgres.MigrateUp(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return err
		}
		logger.Info("database migrations applied", "dir", cfg.MigrationsDir)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := postgres.NewPool(dbCtx, postgres.PoolConfig{URL: cfg.DatabaseURL, MaxConns: int32(cfg.DBMaxConns)})
	dbCancel()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Model client.
	modelClient, err := ml.NewModelClient(ml.Config{
		BaseURL:       cfg.ModelURL,
		Timeout:       cfg.ModelTimeout,
		RetryBackoff:  cfg.ModelRetryBackoff,
		WarmUpTimeout: cfg.ModelWarmUpTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}
	logger.Info("model client configured", "predict_url", modelClient.PredictURL())
	go modelClient.WarmUp(ctx)

	// Event publishing.
	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	// Wire use cases.
	repo := incidentstore.NewIncidentRepository(pool)
	scoreIncidentUC := usecase.NewScoreIncident(modelClient, repo, publisher, logger)
	listIncidentsUC := usecase.NewListIncidents(repo, logger)
	listUserIncidentsUC := usecase.NewListUserIncidents(repo, logger)
	listUsersUC := usecase.NewListUsers(repo)

	// HTTP server.
	routerCfg := rest.RouterConfig{
		Incidents: rest.NewIncidentHandler(
			scoreIncidentUC, listIncidentsUC, listUserIncidentsUC, listUsersUC, logger,
		),
		Health:  rest.NewHealthHandler(serviceName, logger, readinessChecks(pool, modelClient)...),
		Metrics: metricsHandler,
		Logger:  logger,
	}
	if cfg.RateLimitEnabled() {
		routerCfg.SOSLimiter = rest.NewRateLimiter(cfg.SOSRateLimit, cfg.SOSRateBurst)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           otelhttp.NewHandler(rest.NewRouter(routerCfg), "veerad.http"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Covers one model attempt, the retry backoff and a second attempt.
		WriteTimeout: 2*cfg.ModelTimeout + cfg.ModelRetryBackoff + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// gRPC health server.
	grpcServer, err := grpcpresentation.NewServer(grpcpresentation.Config{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		return err
	}
	go grpcServer.WatchReadiness(ctx, readinessInterval, func(ctx context.Context) bool {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return postgres.HealthCheck(probeCtx, pool) == nil
	})

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down veerad")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("veerad stopped")
	return runErr
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (port.EventPublisher, func(), error) {
	if !cfg.PublishingEnabled() {
		logger.Info("KAFKA_BROKERS not set, incident events are logged only")
		return messaging.NewLogPublisher(logger), func() {}, nil
	}

	producer, err := kafka.NewProducer(kafka.Config{
		Brokers:       cfg.KafkaBrokers,
		ClientID:      cfg.KafkaClientID,
		WriteTimeout:  5 * time.Second,
		TLS:           cfg.KafkaTLS,
		TLSCAFile:     cfg.KafkaTLSCAFile,
		SASLEnabled:   cfg.KafkaSASL,
		SASLMechanism: cfg.KafkaSASLMechanism,
		SASLUsername:  cfg.KafkaSASLUsername,
		SASLPassword:  cfg.KafkaSASLPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: kafka: %w", config.ErrConfiguration, err)
	}

	logger.Info("publishing incident events", "brokers", cfg.KafkaBrokers, "topic", cfg.EventsTopic)
	closeFn := func() {
		if err := producer.Close(); err != nil {
			logger.Warn("failed to close kafka producer", "error", err)
		}
	}
	return messaging.NewKafkaPublisher(producer, cfg.EventsTopic, logger), closeFn, nil
}

func readinessChecks(pool *pgxpool.Pool, model *ml.ModelClient) []rest.Check {
	return []rest.Check{
		{
			Name:     "database",
			Critical: true,
			Probe: func(ctx context.Context) error {
				return postgres.HealthCheck(ctx, pool)
			},
		},
		{
			Name: "model",
			Probe: func(context.Context) error {
				if !model.Ready() {
					return errors.New("model has not answered since startup or last failure")
				}
				return nil
			},
		},
	}
}

func flush(logger *slog.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("failed to flush "+name, "error", err)
	}
}
