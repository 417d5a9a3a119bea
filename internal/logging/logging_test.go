package logging

import (
	"testing"

	"vol-spread-monitor/internal/config"

	"go.uber.org/zap/zapcore"
)

func TestNewHonorsLevel(t *testing.T) {
	log := New(config.LoggingConfig{Level: "debug", Encoding: "console"})
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level enabled")
	}
}

func TestNewFallsBackToInfoOnUnknownLevel(t *testing.T) {
	log := New(config.LoggingConfig{Level: "loud", Encoding: "json"})
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug disabled after fallback")
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info enabled after fallback")
	}
}

func TestNewBuildsConsoleEncoding(t *testing.T) {
	log := New(config.LoggingConfig{Level: "info", Encoding: "console"})
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected a working logger for console encoding")
	}
}
