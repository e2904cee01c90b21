package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ibms/internal/amqp"
	applog "ibms/internal/log"
	"ibms/internal/services"
)

// ReportSource builds the full report from the current store contents.
type ReportSource interface {
	Full(ctx context.Context) (services.Report, error)
}

// Exporter publishes a report somewhere outside the service.
type Exporter interface {
	Export(ctx context.Context, rep services.Report) error
}

// ExportWorker rebuilds the report when the book changes and hands it to the
// exporter. A change event older than the start of the last successful
// export is already reflected in it and is skipped, which collapses bursts of
// mutations into one export.
type ExportWorker struct {
	reports  ReportSource
	exporter Exporter
	now      func() time.Time

	mu        sync.Mutex
	lastStart time.Time
	exports   int
	skipped   int
}

// NewExportWorker creates a worker. A nil exporter only rebuilds and logs the
// report totals.
func NewExportWorker(reports ReportSource, exporter Exporter) *ExportWorker {
	return &ExportWorker{
		reports:  reports,
		exporter: exporter,
		now:      time.Now,
	}
}

// HandleChange processes a single change event from AMQP.
func (w *ExportWorker) HandleChange(ctx context.Context, ev *amqp.ChangeEvent) error {
	w.mu.Lock()
	covered := !w.lastStart.IsZero() && ev.Timestamp.Before(w.lastStart)
	if covered {
		w.skipped++
	}
	w.mu.Unlock()

	if covered {
		slog.DebugContext(ctx, "Change already covered by last export",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldEntity, ev.Entity,
			applog.FieldEntityID, ev.ID)
		return nil
	}

	slog.InfoContext(ctx, "Processing change event",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldEntity, ev.Entity,
		applog.FieldEntityID, ev.ID,
		applog.FieldOperation, ev.Action)
	return w.ExportNow(ctx)
}

// ExportNow rebuilds and exports the report regardless of pending events.
// Exports are serialised.
func (w *ExportWorker) ExportNow(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := w.now()
	rep, err := w.reports.Full(ctx)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if w.exporter != nil {
		if err := w.exporter.Export(ctx, rep); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
	}

	w.lastStart = start
	w.exports++
	slog.InfoContext(ctx, "Report exported",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpExport,
		"exported", w.exporter != nil,
		"investments", len(rep.Investments),
		"marketers", len(rep.Marketers),
		"total_capital", rep.Overall.TotalCapital.String(),
		applog.FieldDuration, w.now().Sub(start).Milliseconds())
	return nil
}

// Run exports every interval until ctx is done, as a backstop for lost events.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ExportNow(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed",
					applog.FieldComponent, applog.ComponentWorker,
					applog.FieldError, err)
			}
		}
	}
}

// Stats reports how many exports ran and how many events were skipped.
func (w *ExportWorker) Stats() (exports, skipped int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exports, w.skipped
}
