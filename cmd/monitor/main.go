package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vol-spread-monitor/internal/app"
	"vol-spread-monitor/internal/config"
	"vol-spread-monitor/internal/logging"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dateArg := flag.String("date", "", "evaluation date (YYYY-MM-DD, default today UTC)")
	dryRun := flag.Bool("dry-run", false, "print the report instead of sending it")
	flag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}
	if !*dryRun && !cfg.Telegram.Enabled {
		fmt.Fprintln(os.Stderr, "telegram credentials missing: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID (or use -dry-run)")
		os.Exit(2)
	}

	evalDate := time.Now().UTC()
	if *dateArg != "" {
		parsed, err := time.Parse(dateLayout, *dateArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -date %q: %v\n", *dateArg, err)
			os.Exit(2)
		}
		evalDate = parsed
	}

	log := logging.New(cfg.Log)
	defer func() { _ = log.Sync() }()
	log.Info("config loaded", zap.String("path", *configPath), zap.Time("eval_date", evalDate))

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize app", zap.Error(err))
		os.Exit(2)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx, evalDate, *dryRun); err != nil && err != context.Canceled {
		log.Error("run failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}
