package strategy

import (
	"time"

	"vol-spread-monitor/internal/config"
)

// InEntryWindow reports whether date falls in the entry window, days 1
// through maxDay of the month inclusive.
func InEntryWindow(date time.Time, maxDay int) bool {
	return date.Day() <= maxDay
}

// Evaluate classifies one trading day. Pure and deterministic: identical
// inputs always yield an identical decision.
//
// The window check decides before the crisis filter. A day outside the
// window is always WAIT even when the spread also breaches the threshold;
// both flags are still computed because the report shows both lines. The
// threshold comparison is strict: a spread of exactly the threshold does not
// trigger the filter.
func Evaluate(cfg config.StrategyConfig, snap MarketSnapshot) Decision {
	spread := snap.VStoxx - snap.VIX
	inWindow := InEntryWindow(snap.Date, cfg.EntryWindowMaxDay)
	crisis := spread > cfg.CrisisThreshold

	d := Decision{
		Spread:          spread,
		InEntryWindow:   inWindow,
		CrisisTriggered: crisis,
	}
	switch {
	case !inWindow:
		d.Signal = SignalWait
	case crisis:
		d.Signal = SignalSkipCrisis
	default:
		d.Signal = SignalEnter
		d.Position = &Position{
			ShortVIXContracts:   1,
			LongVStoxxContracts: cfg.VStoxxPerVIX,
		}
	}
	return d
}
