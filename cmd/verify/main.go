package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"vol-spread-monitor/internal/config"
	"vol-spread-monitor/internal/logging"
	"vol-spread-monitor/internal/marketdata"
	"vol-spread-monitor/internal/strategy"
)

const dateLayout = "2006-01-02"

// verify exercises the data path end to end: it fetches both index closes,
// prints what the monitor would decide, and never delivers anything.
func main() {
	configPath := flag.String("config", "", "optional config path")
	dateArg := flag.String("date", "", "evaluation date (YYYY-MM-DD, default today UTC)")
	flag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		fatal(err)
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(err)
	}

	evalDate := time.Now().UTC()
	if *dateArg != "" {
		parsed, err := time.Parse(dateLayout, *dateArg)
		if err != nil {
			fatal(fmt.Errorf("invalid -date %q: %w", *dateArg, err))
		}
		evalDate = parsed
	}

	log := logging.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	svc := marketdata.NewService(cfg.Data, log)
	ctx := context.Background()
	snap, err := svc.Snapshot(ctx, evalDate)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("VIX    %-8s close=%.2f date=%s (yahoo)\n", snap.VIX.Symbol, snap.VIX.Close, snap.VIX.Date.Format(dateLayout))
	fmt.Printf("vStoxx %-8s close=%.2f date=%s (stooq)\n", snap.VStoxx.Symbol, snap.VStoxx.Close, snap.VStoxx.Date.Format(dateLayout))

	decision := strategy.Evaluate(cfg.Strategy, strategy.MarketSnapshot{
		Date:   evalDate,
		VIX:    snap.VIX.Close,
		VStoxx: snap.VStoxx.Close,
	})
	fmt.Printf("spread=%+.2f entry_window=%t crisis=%t signal=%s\n",
		decision.Spread, decision.InEntryWindow, decision.CrisisTriggered, decision.Signal)
	if decision.Position != nil {
		fmt.Printf("position: short %d VIX / long %d vStoxx\n",
			decision.Position.ShortVIXContracts, decision.Position.LongVStoxxContracts)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
