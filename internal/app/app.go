package app

import (
	"context"
	"fmt"
	"time"

	"vol-spread-monitor/internal/alerts"
	"vol-spread-monitor/internal/config"
	"vol-spread-monitor/internal/marketdata"
	"vol-spread-monitor/internal/metrics"
	"vol-spread-monitor/internal/report"
	"vol-spread-monitor/internal/strategy"
	"vol-spread-monitor/internal/timescale"

	"go.uber.org/zap"
)

type marketSource interface {
	Snapshot(ctx context.Context, asOf time.Time) (marketdata.Snapshot, error)
}

type alertSink interface {
	Enabled() bool
	Send(ctx context.Context, message string) error
}

type quoteJournal interface {
	WriteClose(ctx context.Context, quote timescale.IndexClose) error
}

type metricsPusher interface {
	Push(ctx context.Context) error
}

type App struct {
	cfg     *config.Config
	log     *zap.Logger
	market  marketSource
	alerts  alertSink
	journal quoteJournal
	pusher  metricsPusher
	metrics *metrics.Metrics
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	journal, err := timescale.New(cfg.Timescale, log)
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:     cfg,
		log:     log,
		market:  marketdata.NewService(cfg.Data, log),
		alerts:  alerts.NewTelegram(cfg.Telegram, log),
		metrics: metrics.NewNoop(),
	}
	if journal != nil {
		a.journal = journal
	}
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheus(cfg.Metrics.PushURL, cfg.Metrics.Job)
		a.metrics = prom.Metrics
		a.pusher = prom
	}
	return a, nil
}

// Run performs exactly one evaluation: fetch both closes, decide, render,
// deliver. Each run is independent and memoryless.
func (a *App) Run(ctx context.Context, evalDate time.Time, dryRun bool) error {
	defer a.pushMetrics(ctx)

	snap, err := a.market.Snapshot(ctx, evalDate)
	if err != nil {
		a.metrics.FetchFailures.Inc()
		a.notifyError(ctx, dryRun, err)
		return err
	}
	a.journalCloses(ctx, snap)

	marketSnap := strategy.MarketSnapshot{
		Date:   evalDate,
		VIX:    snap.VIX.Close,
		VStoxx: snap.VStoxx.Close,
	}
	decision := strategy.Evaluate(a.cfg.Strategy, marketSnap)
	a.metrics.Evaluations.Inc()
	a.countSignal(decision.Signal)
	a.log.Info("signal evaluated",
		zap.Time("date", evalDate),
		zap.Float64("vix", marketSnap.VIX),
		zap.Float64("vstoxx", marketSnap.VStoxx),
		zap.Float64("spread", decision.Spread),
		zap.Bool("in_entry_window", decision.InEntryWindow),
		zap.Bool("crisis_triggered", decision.CrisisTriggered),
		zap.String("signal", string(decision.Signal)),
	)

	text := report.Render(a.cfg.Strategy, marketSnap, decision)
	if dryRun {
		fmt.Println(text)
		return nil
	}
	// A disabled sink must not pass for a delivered report: a misconfigured
	// deployment would otherwise exit 0 every day and never notify anyone.
	if !a.alerts.Enabled() {
		a.metrics.AlertFailures.Inc()
		return fmt.Errorf("%w: telegram is not configured", alerts.ErrDeliveryFailed)
	}
	if err := a.alerts.Send(ctx, text); err != nil {
		a.metrics.AlertFailures.Inc()
		return err
	}
	a.metrics.AlertsSent.Inc()
	return nil
}

func (a *App) journalCloses(ctx context.Context, snap marketdata.Snapshot) {
	if a.journal == nil {
		return
	}
	closes := []timescale.IndexClose{
		{Time: snap.VIX.Date, Symbol: snap.VIX.Symbol, Source: "yahoo", Close: snap.VIX.Close},
		{Time: snap.VStoxx.Date, Symbol: snap.VStoxx.Symbol, Source: "stooq", Close: snap.VStoxx.Close},
	}
	for _, quote := range closes {
		if err := a.journal.WriteClose(ctx, quote); err != nil {
			a.log.Warn("quote journal write failed", zap.String("symbol", quote.Symbol), zap.Error(err))
		}
	}
}

// notifyError sends a short failure alert so a silent data outage does not
// look like a quiet WAIT day. Best-effort: its own failure is only logged.
func (a *App) notifyError(ctx context.Context, dryRun bool, runErr error) {
	if dryRun || !a.alerts.Enabled() {
		return
	}
	if err := a.alerts.Send(ctx, report.RenderError(runErr)); err != nil {
		a.log.Warn("error alert send failed", zap.Error(err))
	}
}

func (a *App) countSignal(signal strategy.Signal) {
	switch signal {
	case strategy.SignalEnter:
		a.metrics.SignalsEnter.Inc()
	case strategy.SignalSkipCrisis:
		a.metrics.SignalsSkip.Inc()
	case strategy.SignalWait:
		a.metrics.SignalsWait.Inc()
	}
}

func (a *App) pushMetrics(ctx context.Context) {
	if a.pusher == nil {
		return
	}
	if err := a.pusher.Push(ctx); err != nil {
		a.log.Warn("metrics push failed", zap.Error(err))
	}
}

func (a *App) Close() {
	if closer, ok := a.journal.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.log.Warn("journal close failed", zap.Error(err))
		}
	}
}
