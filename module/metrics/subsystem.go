package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/onflow/icq-watcher/module"
)

type SubsystemCollector struct {
	requests        *prometheus.CounterVec
	attempts        *prometheus.HistogramVec
	requestDuration *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec
}

var _ module.SubsystemMetrics = (*SubsystemCollector)(nil)

// breakerStates lists the states reported by the client circuit breaker.
var breakerStates = []string{"closed", "half-open", "open"}

func NewSubsystemCollector(registerer prometheus.Registerer) *SubsystemCollector {
	factory := promauto.With(registerer)

	sc := &SubsystemCollector{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "requests_total",
			Namespace: namespaceWatcher,
			Subsystem: subsystemSubsystem,
			Help:      "the number of requests sent to the remote query subsystem",
		}, []string{LabelOperation, LabelResult}),

		attempts: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:      "request_attempts",
			Namespace: namespaceWatcher,
			Subsystem: subsystemSubsystem,
			Help:      "the number of attempts needed per request",
			Buckets:   []float64{1, 2, 3, 5, 8},
		}, []string{LabelOperation}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:      "request_duration_seconds",
			Namespace: namespaceWatcher,
			Subsystem: subsystemSubsystem,
			Help:      "the time spent per request including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelOperation}),

		breakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "circuit_breaker_state",
			Namespace: namespaceWatcher,
			Subsystem: subsystemSubsystem,
			Help:      "1 for the current state of the client circuit breaker, 0 otherwise",
		}, []string{LabelState}),
	}

	return sc
}

func (sc *SubsystemCollector) RequestFinished(operation string, attempts int, duration time.Duration, err error) {
	sc.requests.WithLabelValues(operation, resultLabel(err)).Inc()
	sc.attempts.WithLabelValues(operation).Observe(float64(attempts))
	sc.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (sc *SubsystemCollector) CircuitBreakerStateChanged(state string) {
	for _, s := range breakerStates {
		value := 0.0
		if s == state {
			value = 1
		}
		sc.breakerState.WithLabelValues(s).Set(value)
	}
}
