package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const promNamespace = "vol_spread_monitor"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

// Prometheus collects run counters and pushes them to a Pushgateway at the
// end of the run. A run-once process has no lifetime to scrape, so push is
// the only delivery that works here.
type Prometheus struct {
	Metrics *Metrics

	registry *prometheus.Registry
	pusher   *push.Pusher
}

func NewPrometheus(pushURL, job string) *Prometheus {
	registry := prometheus.NewRegistry()
	newCounter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      name,
			Help:      help,
		})
		registry.MustRegister(c)
		return c
	}

	evaluations := newCounter("evaluations_total", "Total number of signal evaluations performed.")
	signalsEnter := newCounter("signals_enter_total", "Total number of ENTER signals.")
	signalsSkip := newCounter("signals_skip_total", "Total number of crisis-filter skips.")
	signalsWait := newCounter("signals_wait_total", "Total number of out-of-window waits.")
	fetchFailures := newCounter("fetch_failures_total", "Total number of market data fetch failures.")
	alertsSent := newCounter("alerts_sent_total", "Total number of notifications delivered.")
	alertFailures := newCounter("alert_failures_total", "Total number of notification delivery failures.")

	m := &Metrics{
		Evaluations:   promCounter{evaluations},
		SignalsEnter:  promCounter{signalsEnter},
		SignalsSkip:   promCounter{signalsSkip},
		SignalsWait:   promCounter{signalsWait},
		FetchFailures: promCounter{fetchFailures},
		AlertsSent:    promCounter{alertsSent},
		AlertFailures: promCounter{alertFailures},
	}

	return &Prometheus{
		Metrics:  m,
		registry: registry,
		pusher:   push.New(pushURL, job).Gatherer(registry),
	}
}

func (p *Prometheus) Push(ctx context.Context) error {
	return p.pusher.PushContext(ctx)
}
