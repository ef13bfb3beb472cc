package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/backend"
	"spendlog/internal/cli"
	apphttp "spendlog/internal/http"
	applog "spendlog/internal/log"
	"spendlog/internal/notify"
	"spendlog/internal/query"
	"spendlog/internal/tracker"
)

func main() {
	cfg, logger := cli.Bootstrap()

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", applog.FieldBackend, cfg.StorageBackend, applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Error("Failed to close storage backend", applog.FieldError, err.Error())
		}
	}()

	center := notify.NewCenter(cfg.NotificationTTL, func(n notify.Notification) {
		logger.Debug("Notification posted", "kind", string(n.Kind), "message", n.Message)
	})

	opts := []tracker.Option{
		tracker.WithKey(cfg.StorageKey),
		tracker.WithNotifier(center),
		tracker.WithLogger(logger),
	}

	// Expense events are optional; without AMQP_URL nothing is published.
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer client.Close()
		opts = append(opts, tracker.WithPublisher(client))
		logger.Info("Publishing expense events", "exchange", cfg.AMQPExchange)
	}

	store := tracker.Open(ctx, be.Storage, opts...)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Store:              store,
		Notifications:      center,
		Queries:            query.NewCompiler(cfg.QueryCacheSize, 0, logger),
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              apphttp.PingReady(be.Storage),
	})

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
	}()

	logger.Info("Starting spendlog server",
		"port", cfg.Port, applog.FieldBackend, be.Type, applog.FieldCount, store.Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-shutdownDone
	logger.Info("Server stopped gracefully")
}
