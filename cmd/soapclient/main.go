// Command soapclient exercises the order service: it fetches the WSDL and
// then runs create, query, cancel and list against it.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ericfisherdev/soapmock/internal/adapter/driven/soapclient"
	"github.com/ericfisherdev/soapmock/internal/config"
	"github.com/ericfisherdev/soapmock/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closer := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		File:      cfg.Log.ClientFile,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Backups:   cfg.Log.Backups,
	})
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := soapclient.NewClient(cfg.PublicURL, cfg.DefaultUser, cfg.DefaultPassword, logger)

	desc, err := client.FetchWSDL(ctx)
	if err != nil {
		return err
	}
	slog.Info("connected", "service", desc.Name, "location", desc.Location, "operations", desc.Operations)

	id, err := client.CreateOrder(ctx, "Test order")
	if err != nil {
		return err
	}
	slog.Info("order created", "order_id", id)

	if cfg.QueryMode == "detail" {
		detail, err := client.QueryOrder(ctx, id)
		if err != nil {
			return err
		}
		slog.Info("order queried", "order_id", detail.ID, "description", detail.Description)
	} else {
		status, err := client.QueryStatus(ctx, id)
		if err != nil {
			return err
		}
		slog.Info("order queried", "order_id", id, "status", status)
	}

	cancelled, err := client.CancelOrder(ctx, id)
	if err != nil {
		return err
	}
	slog.Info("order cancelled", "order_id", id, "success", cancelled)

	listing, err := client.ListOrders(ctx)
	if err != nil {
		return err
	}
	slog.Info("orders listed", "orders", listing)
	return nil
}
