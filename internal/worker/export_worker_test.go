package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ibms/internal/amqp"
	"ibms/internal/services"
)

type fakeReports struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeReports) Full(context.Context) (services.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return services.Report{}, f.err
}

type fakeExporter struct {
	exported int
	err      error
}

func (f *fakeExporter) Export(context.Context, services.Report) error {
	if f.err != nil {
		return f.err
	}
	f.exported++
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWorker(reports *fakeReports, exp *fakeExporter) (*ExportWorker, *clock) {
	c := &clock{t: time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)}
	w := NewExportWorker(reports, exp)
	w.now = c.now
	return w, c
}

func event(at time.Time) *amqp.ChangeEvent {
	return &amqp.ChangeEvent{Entity: amqp.EntityInvestor, Action: amqp.ActionUpdated, ID: "1", Timestamp: at}
}

func TestHandleChange_DebouncesCoveredEvents(t *testing.T) {
	reports := &fakeReports{}
	exp := &fakeExporter{}
	w, c := newTestWorker(reports, exp)
	ctx := context.Background()

	burst := c.t.Add(-time.Second)
	if err := w.HandleChange(ctx, event(burst)); err != nil {
		t.Fatal(err)
	}
	// Events published before that export started are already in it.
	for i := 0; i < 3; i++ {
		if err := w.HandleChange(ctx, event(burst)); err != nil {
			t.Fatal(err)
		}
	}
	if exp.exported != 1 {
		t.Errorf("exports = %d, want 1", exp.exported)
	}

	c.advance(time.Minute)
	if err := w.HandleChange(ctx, event(c.t)); err != nil {
		t.Fatal(err)
	}
	exports, skipped := w.Stats()
	if exports != 2 || skipped != 3 || reports.calls != 2 {
		t.Errorf("exports=%d skipped=%d reports=%d", exports, skipped, reports.calls)
	}
}

func TestHandleChange_FailureIsRetried(t *testing.T) {
	reports := &fakeReports{}
	exp := &fakeExporter{err: errors.New("quota exceeded")}
	w, c := newTestWorker(reports, exp)

	ev := event(c.t.Add(-time.Second))
	if err := w.HandleChange(context.Background(), ev); err == nil {
		t.Fatal("expected export error to be returned for requeue")
	}

	// A failed export must not mark the event as covered.
	exp.err = nil
	if err := w.HandleChange(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if exp.exported != 1 {
		t.Errorf("exports = %d, want 1", exp.exported)
	}
}

func TestExportNow_ReportError(t *testing.T) {
	w, _ := newTestWorker(&fakeReports{err: errors.New("db locked")}, &fakeExporter{})
	if err := w.ExportNow(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestExportNow_WithoutExporter(t *testing.T) {
	reports := &fakeReports{}
	w := NewExportWorker(reports, nil)
	if err := w.ExportNow(context.Background()); err != nil {
		t.Fatal(err)
	}
	if exports, _ := w.Stats(); exports != 1 || reports.calls != 1 {
		t.Errorf("exports=%d reports=%d", exports, reports.calls)
	}
}

func TestRun_StopsWithContext(t *testing.T) {
	reports := &fakeReports{}
	w := NewExportWorker(reports, &fakeExporter{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if exports, _ := w.Stats(); exports == 0 {
		t.Error("expected at least one periodic export")
	}
}
