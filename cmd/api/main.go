package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/opsdesk/ticketstore/internal/api/http"
	"github.com/opsdesk/ticketstore/internal/api/http/handlers"
	"github.com/opsdesk/ticketstore/internal/config"
	"github.com/opsdesk/ticketstore/internal/events"
	"github.com/opsdesk/ticketstore/internal/observability"
	"github.com/opsdesk/ticketstore/internal/repository"
	"github.com/opsdesk/ticketstore/internal/service"
	"github.com/opsdesk/ticketstore/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(registry)

	ticketRepo := repository.NewTicketRepository()
	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger, metrics).RegisterHandlers()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		Dispatcher:     dispatcher,
		UploadMaxBytes: cfg.Upload.MaxBytes,
	})

	retentionWorker, err := worker.StartRetentionWorker(cfg.Retention, ticketRepo, logger)
	if err != nil {
		logger.Fatal("failed to start retention worker", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		// headroom over the photo ceiling for the rest of the form
		BodyLimit: int(cfg.Upload.MaxBytes) + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.IsDevelopment())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Dashboard: handlers.NewDashboardHandler(ticketService),
		Registry:  registry,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	retentionWorker.Stop()
	if err := app.ShutdownWithTimeout(cfg.App.ShutdownGrace()); err != nil {
		logger.Warn("forced shutdown after grace period", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
