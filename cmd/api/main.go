package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewpos-api/internal/application/service"
	"github.com/sangkips/brewpos-api/internal/config"
	"github.com/sangkips/brewpos-api/internal/infrastructure/database"
	"github.com/sangkips/brewpos-api/internal/infrastructure/repository"
	"github.com/sangkips/brewpos-api/internal/presentation/http/handler"
	"github.com/sangkips/brewpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/brewpos-api/internal/presentation/http/routes"
	"github.com/sangkips/brewpos-api/pkg/clock"
	"github.com/sangkips/brewpos-api/pkg/email"
	"github.com/sangkips/brewpos-api/pkg/printer"
	"github.com/sangkips/brewpos-api/pkg/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		fatal("failed to connect to database", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		fatal("failed to run migrations", err)
	}

	if cfg.Database.SeedDemoCatalog {
		if err := database.SeedDemoCatalog(db); err != nil {
			slog.Warn("failed to seed demo catalog", "error", err)
		}
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Repositories
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	uow := repository.NewUnitOfWork(db, cfg.Checkout.MaxTxRetries)

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})

	printers, err := printer.NewRegistryFromConfig(cfg.Printer.Devices, cfg.Printer.Default)
	if err != nil {
		fatal("invalid printer configuration", err)
	}
	defer printers.Close()
	for _, st := range printers.Statuses() {
		slog.Info("printer registered", "id", st.ID, "type", st.Type, "target", st.Target, "default", st.Default)
	}

	// Services
	saleService := service.NewSaleService(productRepo, saleRepo, uow, clock.NewRealClock(), cfg.Checkout.CommitTimeout)
	receiptService := service.NewReceiptService(saleRepo, service.NewReceiptContext(&cfg.Store), emailService)
	printerService := service.NewPrinterService(printers, receiptService, cfg.Printer.Timeout)

	handlers := &routes.Handlers{
		Sale:    handler.NewSaleHandler(saleService, printerService),
		Receipt: handler.NewReceiptHandler(receiptService),
		Product: handler.NewProductHandler(saleService),
		Printer: handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Close()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:  jwtManager,
		Cfg:         cfg,
		Logger:      logger,
		RateLimiter: rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting server", "service", cfg.App.Name, "port", port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// In-flight checkouts are allowed to finish so none is left ambiguous.
	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newLogger writes JSON in production and text elsewhere.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.Log.Level)}
	if cfg.App.Env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
