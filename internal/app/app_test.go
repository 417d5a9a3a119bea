package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"vol-spread-monitor/internal/alerts"
	"vol-spread-monitor/internal/config"
	"vol-spread-monitor/internal/marketdata"
	"vol-spread-monitor/internal/metrics"
	"vol-spread-monitor/internal/timescale"

	"go.uber.org/zap"
)

type fakeMarket struct {
	snap marketdata.Snapshot
	err  error
}

func (f *fakeMarket) Snapshot(ctx context.Context, asOf time.Time) (marketdata.Snapshot, error) {
	return f.snap, f.err
}

type fakeSink struct {
	enabled  bool
	sendErr  error
	messages []string
}

func (f *fakeSink) Enabled() bool { return f.enabled }

func (f *fakeSink) Send(ctx context.Context, message string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages = append(f.messages, message)
	return nil
}

type fakeJournal struct {
	writes []timescale.IndexClose
	err    error
}

func (f *fakeJournal) WriteClose(ctx context.Context, quote timescale.IndexClose) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, quote)
	return nil
}

type countingCounter struct {
	n int
}

func (c *countingCounter) Inc() { c.n++ }

func testConfig() *config.Config {
	return &config.Config{
		Strategy: config.StrategyConfig{
			EntryWindowMaxDay: 7,
			CrisisThreshold:   10,
			VStoxxPerVIX:      8,
		},
	}
}

func testSnapshot() marketdata.Snapshot {
	date := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	return marketdata.Snapshot{
		VIX:    marketdata.Quote{Symbol: "^VIX", Date: date, Close: 17.43},
		VStoxx: marketdata.Quote{Symbol: "^vstoxx", Date: date, Close: 18.92},
	}
}

func newTestApp(market marketSource, sink alertSink) *App {
	return &App{
		cfg:     testConfig(),
		log:     zap.NewNop(),
		market:  market,
		alerts:  sink,
		metrics: metrics.NewNoop(),
	}
}

func TestRunDeliversReport(t *testing.T) {
	sink := &fakeSink{enabled: true}
	app := newTestApp(&fakeMarket{snap: testSnapshot()}, sink)
	date := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	if err := app.Run(context.Background(), date, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sink.messages))
	}
	if !strings.Contains(sink.messages[0], "ENTER TRADE") {
		t.Fatalf("expected enter report, got:\n%s", sink.messages[0])
	}
}

func TestRunDryRunDoesNotDeliver(t *testing.T) {
	sink := &fakeSink{enabled: true}
	app := newTestApp(&fakeMarket{snap: testSnapshot()}, sink)
	date := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	if err := app.Run(context.Background(), date, true); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.messages) != 0 {
		t.Fatalf("expected no messages on dry run, got %d", len(sink.messages))
	}
}

func TestRunFetchFailureAbortsWithoutDecisionReport(t *testing.T) {
	sink := &fakeSink{enabled: true}
	fetchErr := fmt.Errorf("%w: ^VIX: boom", marketdata.ErrDataUnavailable)
	app := newTestApp(&fakeMarket{err: fetchErr}, sink)
	err := app.Run(context.Background(), time.Now().UTC(), false)
	if !errors.Is(err, marketdata.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	// Only the error alert goes out, never a fabricated decision report.
	if len(sink.messages) != 1 {
		t.Fatalf("expected 1 error alert, got %d", len(sink.messages))
	}
	if !strings.Contains(sink.messages[0], "monitor error") {
		t.Fatalf("expected error alert, got %q", sink.messages[0])
	}
	if strings.Contains(sink.messages[0], "ENTER") {
		t.Fatalf("error alert must not carry a decision, got %q", sink.messages[0])
	}
}

func TestRunUnconfiguredSinkFailsInsteadOfSilentSuccess(t *testing.T) {
	sink := &fakeSink{enabled: false}
	app := newTestApp(&fakeMarket{snap: testSnapshot()}, sink)
	sent := &countingCounter{}
	failed := &countingCounter{}
	app.metrics.AlertsSent = sent
	app.metrics.AlertFailures = failed

	date := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	err := app.Run(context.Background(), date, false)
	if !errors.Is(err, alerts.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed for unconfigured sink, got %v", err)
	}
	if sent.n != 0 {
		t.Fatalf("unconfigured sink must not count as delivered, got %d", sent.n)
	}
	if failed.n != 1 {
		t.Fatalf("expected 1 alert failure, got %d", failed.n)
	}
}

func TestRunDryRunWorksWithoutSink(t *testing.T) {
	sink := &fakeSink{enabled: false}
	app := newTestApp(&fakeMarket{snap: testSnapshot()}, sink)
	date := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	if err := app.Run(context.Background(), date, true); err != nil {
		t.Fatalf("dry run must not need a sink, got %v", err)
	}
}

func TestRunDeliveryFailureSurfaces(t *testing.T) {
	sink := &fakeSink{enabled: true, sendErr: fmt.Errorf("%w: http 401", alerts.ErrDeliveryFailed)}
	app := newTestApp(&fakeMarket{snap: testSnapshot()}, sink)
	date := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	err := app.Run(context.Background(), date, false)
	if !errors.Is(err, alerts.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestRunJournalFailureIsBestEffort(t *testing.T) {
	sink := &fakeSink{enabled: true}
	app := newTestApp(&fakeMarket{snap: testSnapshot()}, sink)
	app.journal = &fakeJournal{err: errors.New("db down")}
	date := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	if err := app.Run(context.Background(), date, false); err != nil {
		t.Fatalf("journal failure must not abort the run, got %v", err)
	}
	if len(sink.messages) != 1 {
		t.Fatalf("expected report still delivered, got %d messages", len(sink.messages))
	}
}

func TestRunJournalsBothCloses(t *testing.T) {
	journal := &fakeJournal{}
	app := newTestApp(&fakeMarket{snap: testSnapshot()}, &fakeSink{enabled: true})
	app.journal = journal
	date := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	if err := app.Run(context.Background(), date, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(journal.writes) != 2 {
		t.Fatalf("expected 2 journaled closes, got %d", len(journal.writes))
	}
	if journal.writes[0].Symbol != "^VIX" || journal.writes[0].Source != "yahoo" {
		t.Fatalf("unexpected first journal entry %+v", journal.writes[0])
	}
	if journal.writes[1].Symbol != "^vstoxx" || journal.writes[1].Source != "stooq" {
		t.Fatalf("unexpected second journal entry %+v", journal.writes[1])
	}
}

func TestRunCountsSignals(t *testing.T) {
	enter := &countingCounter{}
	wait := &countingCounter{}
	evals := &countingCounter{}
	app := newTestApp(&fakeMarket{snap: testSnapshot()}, &fakeSink{enabled: true})
	m := metrics.NewNoop()
	m.Evaluations = evals
	m.SignalsEnter = enter
	m.SignalsWait = wait
	app.metrics = m

	date := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	if err := app.Run(context.Background(), date, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if evals.n != 1 || enter.n != 1 || wait.n != 0 {
		t.Fatalf("unexpected counts: evals=%d enter=%d wait=%d", evals.n, enter.n, wait.n)
	}
}

func TestRunOutsideWindowReportsWait(t *testing.T) {
	sink := &fakeSink{enabled: true}
	app := newTestApp(&fakeMarket{snap: testSnapshot()}, sink)
	date := time.Date(2025, time.February, 12, 0, 0, 0, 0, time.UTC)
	if err := app.Run(context.Background(), date, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(sink.messages[0], "NO SIGNAL") {
		t.Fatalf("expected wait report, got:\n%s", sink.messages[0])
	}
}
