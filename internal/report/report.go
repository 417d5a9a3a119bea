package report

import (
	"fmt"
	"strings"

	"vol-spread-monitor/internal/config"
	"vol-spread-monitor/internal/strategy"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━"

// Render produces the notification text for one evaluation. The output is
// deterministic: the only branching is which of the three decision blocks is
// appended. Markup is Telegram HTML.
func Render(cfg config.StrategyConfig, snap strategy.MarketSnapshot, d strategy.Decision) string {
	lines := []string{
		"📊 <b>VIX / vStoxx Monitor</b>",
		fmt.Sprintf("📅 %s", snap.Date.Format("Monday, 02 Jan 2006")),
		"",
		fmt.Sprintf("  VIX    (^VIX):  <b>%.2f</b>", snap.VIX),
		fmt.Sprintf("  vStoxx (^V2TX): <b>%.2f</b>", snap.VStoxx),
		fmt.Sprintf("  Spread (vStoxx − VIX): <b>%+.2f</b>", d.Spread),
		"",
	}

	if d.InEntryWindow {
		lines = append(lines, "📅 Week 1 of month: ✅ YES — entry window open")
	} else {
		lines = append(lines, "📅 Week 1 of month: ⏳ NO  — wait for next week 1")
	}

	if d.CrisisTriggered {
		lines = append(lines, fmt.Sprintf("⚠️  EU Crisis filter: 🔴 TRIGGERED  (spread %+.2f > %.0f)", d.Spread, cfg.CrisisThreshold))
	} else {
		lines = append(lines, fmt.Sprintf("🛡️  EU Crisis filter: ✅ CLEAR  (spread %+.2f ≤ %.0f)", d.Spread, cfg.CrisisThreshold))
	}

	lines = append(lines, "", divider)
	switch d.Signal {
	case strategy.SignalEnter:
		lines = append(lines,
			"🟢 <b>ENTER TRADE</b>",
			fmt.Sprintf("   • Short  <b>%d×</b>  VIX futures   (^VIX)", d.Position.ShortVIXContracts),
			fmt.Sprintf("   • Long   <b>%d×</b>  vStoxx futures (^V2TX)", d.Position.LongVStoxxContracts),
			"   • Dollar-neutral position",
		)
	case strategy.SignalWait:
		lines = append(lines,
			"⏳ <b>NO SIGNAL</b> — not in entry week",
			"   Wait for week 1 of next month",
		)
	case strategy.SignalSkipCrisis:
		lines = append(lines,
			"🔴 <b>SKIP ENTRY</b> — EU crisis filter active",
			fmt.Sprintf("   Spread (%+.2f) exceeds threshold (%.0f)", d.Spread, cfg.CrisisThreshold),
			"   Monitor daily; re-assess when spread normalises",
		)
	}
	lines = append(lines, divider)

	return strings.Join(lines, "\n")
}

// RenderError is the fallback notification sent when a run fails before a
// decision report could be produced.
func RenderError(err error) string {
	return fmt.Sprintf("⚠️ VIX/vStoxx monitor error: %v", err)
}
