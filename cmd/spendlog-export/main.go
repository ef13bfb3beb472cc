// Command spendlog-export writes the stored expenses to
// EXPORT_DIR/expenses_<date>.csv.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"spendlog/internal/backend"
	"spendlog/internal/cli"
	"spendlog/internal/export"
	applog "spendlog/internal/log"
	"spendlog/internal/notify"
	"spendlog/internal/tracker"
)

func main() {
	cfg, logger := cli.Bootstrap()
	logger = logger.WithComponent(applog.ComponentExport)

	dir := flag.String("dir", cfg.ExportDir, "directory to write the CSV file into")
	flag.Parse()

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	center := notify.NewCenter(cfg.NotificationTTL, func(n notify.Notification) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Kind, n.Message)
	})

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer be.Close()

	store := tracker.Open(ctx, be.Storage,
		tracker.WithKey(cfg.StorageKey),
		tracker.WithNotifier(center),
		tracker.WithLogger(logger))

	path, err := export.WriteFile(*dir, store.Expenses(), store.Now())
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		center.Notify(notify.Info, notify.MsgNothingToExport)
		return
	case err != nil:
		logger.Error("Export failed", applog.FieldOperation, applog.OpExport, applog.FieldError, err.Error())
		center.Notify(notify.Error, "Export failed: "+err.Error())
		be.Close()
		os.Exit(1)
	}

	logger.Info("Expenses exported", applog.FieldFile, path, applog.FieldCount, store.Len())
	center.Notify(notify.Success, notify.MsgExported)
	fmt.Println(path)
}
