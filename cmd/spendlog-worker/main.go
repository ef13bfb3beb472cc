package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/backend"
	"spendlog/internal/cli"
	"spendlog/internal/config"
	applog "spendlog/internal/log"
	"spendlog/internal/sheets"
	gsheet "spendlog/internal/sheets/google"
	memsheet "spendlog/internal/sheets/memory"
	"spendlog/internal/tracker"
	"spendlog/internal/worker"
)

const (
	callTimeout   = 30 * time.Second
	statsInterval = 5 * time.Minute
)

func main() {
	cfg, logger := cli.Bootstrap()
	logger = logger.WithComponent(applog.ComponentWorker)
	logger.Info("Starting spendlog-worker")

	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	var mirror sheets.ExpenseMirror
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		mirror = client
		logger.Info("Mirroring into Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror = memsheet.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
	}

	mw := worker.NewMirrorWorker(mirror, logger, callTimeout)

	// Catch up on expenses stored while the worker was down.
	if err := reconcile(ctx, cfg, mw, logger); err != nil {
		// Not fatal: events keep flowing and the next start retries.
		logger.Error("Startup reconciliation failed", applog.FieldError, err.Error())
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeEvents(gctx, mw.HandleEvent)
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				st := mw.Stats()
				logger.Info("Mirror stats", "added", st.Added, "deleted", st.Deleted, "failed", st.Failed)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func reconcile(ctx context.Context, cfg *config.Config, mw *worker.MirrorWorker, logger *applog.Logger) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	be, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		return err
	}
	defer be.Close()

	store := tracker.Open(ctx, be.Storage, tracker.WithKey(cfg.StorageKey), tracker.WithLogger(logger))
	return mw.Reconcile(ctx, store.Expenses())
}
