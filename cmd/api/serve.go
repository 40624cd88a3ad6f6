package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"roomescape/internal/clock"
	"roomescape/internal/database"
	"roomescape/internal/database/migration"
	"roomescape/internal/http/handler"
	"roomescape/internal/http/middleware"
	"roomescape/internal/otel"
	"roomescape/internal/payment"
	"roomescape/internal/queue"
	"roomescape/internal/repository/postgres"
	"roomescape/internal/service"
	"roomescape/internal/storage"
)

func newServeCmd(e *env) *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), e, migrateUp)
		},
	}
	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "apply the database schema before serving")
	return cmd
}

func serve(ctx context.Context, e *env, migrateUp bool) error {
	cfg, log := e.cfg, e.log
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if migrateUp {
		if err := migration.EnsureMigrated(ctx, db, log); err != nil {
			return err
		}
	}

	var receipts storage.Storage
	if cfg.MinIO.Enabled() {
		if receipts, err = storage.NewMinIO(cfg.MinIO); err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
	} else {
		log.Info("object storage not configured, payment receipts are not kept")
	}

	var events service.EventPublisher = queue.Nop{}
	if cfg.AMQP.URL != "" {
		events = queue.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
	} else {
		log.Info("AMQP_URL not set, reservation events are not published")
	}

	svc := service.NewReservationService(service.Deps{
		Tx:           postgres.NewTxManager(db),
		Reservations: postgres.NewReservationPostgres(db),
		Canceled:     postgres.NewCanceledReservationPostgres(db),
		Catalog:      postgres.NewCatalogPostgres(db),
		Gateway:      payment.NewClient(cfg.Payment),
		Receipts:     receipts,
		Events:       events,
		Clock:        clock.NewSystem(loc),
		Location:     loc,
		Logger:       log.Named("reservation"),
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg, handler.MetricsPath)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handler.ErrorHandler(),
		DisableStartupMessage: true,
	})
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log.Named("http")))
	app.Use(metrics.Handler())

	handler.RegisterRoutes(app, handler.Deps{
		DB:           db,
		Reservations: svc,
		Auth:         middleware.Auth(cfg.Auth.JWTSecret),
		Metrics:      reg,
		Logger:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", ":"+cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
}
