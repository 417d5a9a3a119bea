package metrics

type Counter interface {
	Inc()
}

type Metrics struct {
	Evaluations   Counter
	SignalsEnter  Counter
	SignalsSkip   Counter
	SignalsWait   Counter
	FetchFailures Counter
	AlertsSent    Counter
	AlertFailures Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		Evaluations:   n,
		SignalsEnter:  n,
		SignalsSkip:   n,
		SignalsWait:   n,
		FetchFailures: n,
		AlertsSent:    n,
		AlertFailures: n,
	}
}
