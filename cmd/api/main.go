package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bugrarslan/mirza-admin/docs"
	"github.com/bugrarslan/mirza-admin/internal/asset"
	"github.com/bugrarslan/mirza-admin/internal/config"
	"github.com/bugrarslan/mirza-admin/internal/database"
	"github.com/bugrarslan/mirza-admin/internal/database/migration"
	handlers "github.com/bugrarslan/mirza-admin/internal/http/handler"
	"github.com/bugrarslan/mirza-admin/internal/http/middleware"
	"github.com/bugrarslan/mirza-admin/internal/logger"
	"github.com/bugrarslan/mirza-admin/internal/otel"
	"github.com/bugrarslan/mirza-admin/internal/repository/postgres"
	"github.com/bugrarslan/mirza-admin/internal/service"
	"github.com/bugrarslan/mirza-admin/internal/storage"
	"github.com/bugrarslan/mirza-admin/internal/storage/memory"
)

// @title Mirza Admin Asset API
// @version 1.0
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	log := logger.New(cfg.AppName, cfg.LogLevel, loc)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := otel.Init(ctx, cfg.AppName, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error("tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := newStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialize object storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	assetMetrics, err := asset.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register asset metrics: %w", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	assets := asset.NewManager(objStore, log, asset.WithMetrics(assetMetrics))
	slotRepo := postgres.NewSlotPostgres(db)
	assetSvc := service.NewAssetService(assets, slotRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimitMB << 20,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, assetSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		host := c.Get("Host")
		if host == "" {
			host = cfg.AppHost
		}
		docs.SwaggerInfo.Host = host
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			slog.String("port", cfg.Port),
			slog.String("public_host", cfg.AppHost),
			slog.String("storage_driver", cfg.Storage.Driver),
		)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

func newStorage(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case "minio":
		buckets := make([]string, 0, len(asset.Buckets()))
		for _, b := range asset.Buckets() {
			buckets = append(buckets, string(b))
		}
		return storage.NewMinIO(cfg, buckets)
	case "s3":
		return storage.NewS3(cfg)
	case "memory":
		if cfg.PublicOrigin == "" {
			return nil, fmt.Errorf("storage public origin is required")
		}
		return memory.New(cfg.PublicOrigin), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
