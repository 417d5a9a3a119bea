package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log       LoggingConfig   `yaml:"log"`
	Data      DataConfig      `yaml:"data"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Timescale TimescaleConfig `yaml:"timescale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type DataConfig struct {
	YahooBaseURL string        `yaml:"yahoo_base_url"`
	StooqBaseURL string        `yaml:"stooq_base_url"`
	VIXSymbol    string        `yaml:"vix_symbol"`
	VStoxxSymbol string        `yaml:"vstoxx_symbol"`
	Timeout      time.Duration `yaml:"timeout"`
	// The two suppliers keep separate lookback windows: Yahoo's chart API
	// serves a tight recent range, Stooq needs slack for EU holidays.
	YahooLookbackDays int           `yaml:"yahoo_lookback_days"`
	StooqLookbackDays int           `yaml:"stooq_lookback_days"`
	Retries           int           `yaml:"retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
}

type StrategyConfig struct {
	EntryWindowMaxDay int     `yaml:"entry_window_max_day"`
	CrisisThreshold   float64 `yaml:"crisis_threshold"`
	VStoxxPerVIX      int     `yaml:"vstoxx_per_vix"`
}

type TelegramConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Token     string `yaml:"token"`
	ChatID    string `yaml:"chat_id"`
	ParseMode string `yaml:"parse_mode"`
}

type TimescaleConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
	Schema  string `yaml:"schema"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	PushURL string `yaml:"push_url"`
	Job     string `yaml:"job"`
}

// Load reads the YAML config at path. A missing file is not an error: the
// monitor must be runnable with no arguments, so defaults plus environment
// overrides are enough to produce a working config.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		}
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Encoding == "" {
		cfg.Log.Encoding = "console"
	}
	if cfg.Data.YahooBaseURL == "" {
		cfg.Data.YahooBaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Data.StooqBaseURL == "" {
		cfg.Data.StooqBaseURL = "https://stooq.com"
	}
	if cfg.Data.VIXSymbol == "" {
		cfg.Data.VIXSymbol = "^VIX"
	}
	if cfg.Data.VStoxxSymbol == "" {
		cfg.Data.VStoxxSymbol = "^vstoxx"
	}
	if cfg.Data.Timeout == 0 {
		cfg.Data.Timeout = 15 * time.Second
	}
	if cfg.Data.YahooLookbackDays == 0 {
		cfg.Data.YahooLookbackDays = 5
	}
	if cfg.Data.StooqLookbackDays == 0 {
		cfg.Data.StooqLookbackDays = 10
	}
	if cfg.Data.Retries == 0 {
		cfg.Data.Retries = 3
	}
	if cfg.Data.RetryDelay == 0 {
		cfg.Data.RetryDelay = 5 * time.Second
	}
	if cfg.Strategy.EntryWindowMaxDay == 0 {
		cfg.Strategy.EntryWindowMaxDay = 7
	}
	if cfg.Strategy.CrisisThreshold == 0 {
		cfg.Strategy.CrisisThreshold = 10
	}
	if cfg.Strategy.VStoxxPerVIX == 0 {
		cfg.Strategy.VStoxxPerVIX = 8
	}
	if cfg.Telegram.ParseMode == "" {
		cfg.Telegram.ParseMode = "HTML"
	}
	if cfg.Timescale.Schema == "" {
		cfg.Timescale.Schema = "public"
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = "vol-spread-monitor"
	}
}

func applyEnvOverrides(cfg *Config) {
	if token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); token != "" {
		cfg.Telegram.Token = token
		cfg.Telegram.Enabled = true
	}
	if chatID := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); chatID != "" {
		cfg.Telegram.ChatID = chatID
	}
	if dsn := strings.TrimSpace(os.Getenv("TIMESCALE_DSN")); dsn != "" {
		cfg.Timescale.DSN = dsn
	}
}

func validate(cfg *Config) error {
	if cfg.Log.Encoding != "console" && cfg.Log.Encoding != "json" {
		return fmt.Errorf("log.encoding must be console or json, got %q", cfg.Log.Encoding)
	}
	if cfg.Data.YahooLookbackDays < 1 {
		return errors.New("data.yahoo_lookback_days must be >= 1")
	}
	if cfg.Data.StooqLookbackDays < 1 {
		return errors.New("data.stooq_lookback_days must be >= 1")
	}
	if cfg.Data.Retries < 1 {
		return errors.New("data.retries must be >= 1")
	}
	if cfg.Data.RetryDelay < 0 {
		return errors.New("data.retry_delay must be >= 0")
	}
	if cfg.Strategy.EntryWindowMaxDay < 1 || cfg.Strategy.EntryWindowMaxDay > 28 {
		return fmt.Errorf("strategy.entry_window_max_day must be in [1,28], got %d", cfg.Strategy.EntryWindowMaxDay)
	}
	if cfg.Strategy.CrisisThreshold < 0 {
		return errors.New("strategy.crisis_threshold must be >= 0")
	}
	if cfg.Strategy.VStoxxPerVIX < 1 {
		return errors.New("strategy.vstoxx_per_vix must be >= 1")
	}
	if cfg.Telegram.Enabled && (strings.TrimSpace(cfg.Telegram.Token) == "" || strings.TrimSpace(cfg.Telegram.ChatID) == "") {
		return errors.New("telegram enabled but token or chat_id missing (set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID)")
	}
	if cfg.Timescale.Enabled && strings.TrimSpace(cfg.Timescale.DSN) == "" {
		return errors.New("timescale enabled but dsn missing (set TIMESCALE_DSN)")
	}
	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.PushURL) == "" {
		return errors.New("metrics enabled but push_url missing")
	}
	return nil
}
