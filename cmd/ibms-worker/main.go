package main

import (
	"context"
	"errors"
	"time"

	"ibms/internal/backend"
	"ibms/internal/cli"
	"ibms/internal/export"
	applog "ibms/internal/log"
	"ibms/internal/services"
	"ibms/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting ibms-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend is private to this process, exports will only show the seed book")
	}

	res := cli.InitBackend(context.Background(), logger, cfg)

	// The worker never mutates the book, so it reads the store directly on
	// every export instead of caching a snapshot.
	reports := services.NewReportService(res.Store, nil, services.ReportOptions{
		WindowDays: cfg.TrailingWindow,
	})

	var exporter worker.Exporter
	if cfg.SheetsEnabled() {
		sheets, err := export.NewSheetsExporter(context.Background(), cfg.GoogleSpreadsheetID, export.Credentials{
			JSON: cfg.GoogleServiceAccountJSON,
			File: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", applog.FieldError, err)
			_ = res.Close()
			return
		}
		exporter = sheets
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, reports are only logged")
	}

	w := worker.NewExportWorker(reports, exporter)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		exports, skipped := w.Stats()
		logger.Info("Shutting down worker", "exports", exports, "skipped_events", skipped)
		if err := res.Close(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err)
		}
	})

	// Anything changed while the worker was down is picked up here.
	if err := w.ExportNow(ctx); err != nil {
		logger.Error("Startup export failed", applog.FieldError, err)
	}

	if res.AMQP != nil {
		go func() {
			if err := res.AMQP.ConsumeChanges(ctx, w.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change consumption failed",
					applog.FieldComponent, applog.ComponentAMQP,
					applog.FieldError, err)
			}
		}()
	} else {
		logger.Info("AMQP not configured, relying on periodic exports", "interval", cfg.ExportInterval.String())
	}

	go w.Run(ctx, cfg.ExportInterval)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
