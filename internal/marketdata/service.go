package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vol-spread-monitor/internal/config"

	"go.uber.org/zap"
)

// ErrDataUnavailable marks a run where one or both index levels could not be
// retrieved. Callers must abort without sending a decision report: a missing
// level is never defaulted or fabricated.
var ErrDataUnavailable = errors.New("market data unavailable")

type Quote struct {
	Symbol string
	Date   time.Time
	Close  float64
}

// Snapshot holds both index closes for one evaluation.
type Snapshot struct {
	VIX    Quote
	VStoxx Quote
}

// Service fetches the two index levels from their respective suppliers.
type Service struct {
	yahoo *YahooClient
	stooq *StooqClient
	cfg   config.DataConfig
	log   *zap.Logger
}

func NewService(cfg config.DataConfig, log *zap.Logger) *Service {
	return &Service{
		yahoo: NewYahoo(cfg.YahooBaseURL, cfg.Timeout, log),
		stooq: NewStooq(cfg.StooqBaseURL, cfg.Timeout, log),
		cfg:   cfg,
		log:   log,
	}
}

// Snapshot fetches both closes. Partial failure is treated as full failure:
// a decision over one real level and one guess would be worse than no
// decision at all.
func (s *Service) Snapshot(ctx context.Context, asOf time.Time) (Snapshot, error) {
	vix, err := s.fetchWithRetry(ctx, s.cfg.VIXSymbol, func(ctx context.Context) (Quote, error) {
		return s.yahoo.LatestClose(ctx, s.cfg.VIXSymbol, s.cfg.YahooLookbackDays)
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, s.cfg.VIXSymbol, err)
	}
	vstoxx, err := s.fetchWithRetry(ctx, s.cfg.VStoxxSymbol, func(ctx context.Context) (Quote, error) {
		return s.stooq.LatestClose(ctx, s.cfg.VStoxxSymbol, s.cfg.StooqLookbackDays, asOf)
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, s.cfg.VStoxxSymbol, err)
	}
	return Snapshot{VIX: vix, VStoxx: vstoxx}, nil
}

// fetchWithRetry runs fn up to cfg.Retries times with a linearly growing
// delay between attempts.
func (s *Service) fetchWithRetry(ctx context.Context, symbol string, fn func(ctx context.Context) (Quote, error)) (Quote, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.Retries; attempt++ {
		quote, err := fn(ctx)
		if err == nil {
			return quote, nil
		}
		lastErr = err
		s.log.Warn("fetch attempt failed",
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == s.cfg.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return Quote{}, ctx.Err()
		case <-time.After(s.cfg.RetryDelay * time.Duration(attempt)):
		}
	}
	return Quote{}, lastErr
}
