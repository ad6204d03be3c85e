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

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/soapmock/internal/adapter/driven/memory"
	sqliteadapter "github.com/ericfisherdev/soapmock/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/soapmock/internal/adapter/driving/http"
	"github.com/ericfisherdev/soapmock/internal/application"
	"github.com/ericfisherdev/soapmock/internal/config"
	"github.com/ericfisherdev/soapmock/internal/domain/model"
	"github.com/ericfisherdev/soapmock/internal/logging"
	"github.com/ericfisherdev/soapmock/internal/soap"
)

const (
	serviceName      = "OrderService"
	serviceNamespace = "http://example.com/order"
	servicePrefix    = "ord"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env (optional) and configuration.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Logger: console plus rotating file.
	logger, closer := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Backups:   cfg.Log.Backups,
	})
	defer closer.Close()
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"public_url", cfg.PublicURL,
		"db_path", cfg.DBPath,
		"query_mode", cfg.QueryMode,
		"seed_orders", cfg.SeedOrders,
	)

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open the credential database and create the users table.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("credential store initialized", "path", cfg.DBPath)

	// 5. Seed the default user. Existing rows are never overwritten.
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	authSvc := application.NewAuthService(credentialStore, logger)
	if err := authSvc.EnsureUser(ctx, cfg.DefaultUser, cfg.DefaultPassword); err != nil {
		return err
	}
	if n, err := credentialStore.Count(ctx); err == nil {
		slog.Info("users registered", "count", n)
	}

	// 6. Order registry and dispatcher.
	var seed []model.Order
	if cfg.SeedOrders {
		seed = memory.DemoOrders()
	}
	orderSvc := application.NewOrderService(memory.NewOrderRegistry(seed...), logger)
	dispatcher := httphandler.NewDispatcher(orderSvc, httphandler.QueryMode(cfg.QueryMode), logger)

	// 7. SOAP endpoint.
	handler, err := httphandler.NewHandler(authSvc, dispatcher, soap.Service{
		Name:      serviceName,
		Namespace: serviceNamespace,
		Prefix:    servicePrefix,
		Location:  cfg.PublicURL,
	}, cfg.MaxBodyBytes, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, cfg.RequestTimeout, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr, "wsdl", cfg.PublicURL+"?wsdl")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
