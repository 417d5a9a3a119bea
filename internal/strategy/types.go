package strategy

import "time"

type Signal string

const (
	SignalWait       Signal = "WAIT"
	SignalSkipCrisis Signal = "SKIP_CRISIS_FILTER"
	SignalEnter      Signal = "ENTER"
)

// MarketSnapshot is the full input to one evaluation. The date is explicit
// so the decision never reads the wall clock.
type MarketSnapshot struct {
	Date   time.Time
	VIX    float64
	VStoxx float64
}

// Position is the fixed entry: short one VIX future against a dollar-neutral
// number of vStoxx futures.
type Position struct {
	ShortVIXContracts   int
	LongVStoxxContracts int
}

type Decision struct {
	Signal          Signal
	Spread          float64
	InEntryWindow   bool
	CrisisTriggered bool
	Position        *Position
}
