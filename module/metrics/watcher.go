package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/onflow/icq-watcher/module"
)

type WatcherCollector struct {
	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	queriesRegistered  prometheus.Counter
	notifications      prometheus.Counter
	dispatched         *prometheus.CounterVec
	queueSize          prometheus.Gauge
	dropped            *prometheus.CounterVec
}

var _ module.WatcherMetrics = (*WatcherCollector)(nil)

func NewWatcherCollector(registerer prometheus.Registerer) *WatcherCollector {
	factory := promauto.With(registerer)

	wc := &WatcherCollector{
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "invocations_total",
			Namespace: namespaceWatcher,
			Subsystem: subsystemEngine,
			Help:      "the number of handler invocations, by handler and outcome",
		}, []string{LabelHandler, LabelResult}),

		invocationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:      "invocation_duration_seconds",
			Namespace: namespaceWatcher,
			Subsystem: subsystemEngine,
			Help:      "the time spent running a handler invocation including its commit",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{LabelHandler}),

		queriesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name:      "queries_registered_total",
			Namespace: namespaceWatcher,
			Subsystem: subsystemEngine,
			Help:      "the number of acknowledged balance query registrations",
		}),

		notifications: factory.NewCounter(prometheus.CounterOpts{
			Name:      "kv_notifications_total",
			Namespace: namespaceWatcher,
			Subsystem: subsystemEngine,
			Help:      "the number of counted KV query result notifications",
		}),

		dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "submessages_dispatched_total",
			Namespace: namespaceWatcher,
			Subsystem: subsystemEngine,
			Help:      "the number of sub-messages handed to the query subsystem, by outcome",
		}, []string{LabelResult}),

		queueSize: factory.NewGauge(prometheus.GaugeOpts{
			Name:      "inbound_queue_size",
			Namespace: namespaceWatcher,
			Subsystem: subsystemEngine,
			Help:      "the number of invocations waiting to be processed",
		}),

		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "inbound_dropped_total",
			Namespace: namespaceWatcher,
			Subsystem: subsystemEngine,
			Help:      "the number of invocations rejected because the inbound queue was full",
		}, []string{LabelHandler}),
	}

	return wc
}

func (wc *WatcherCollector) InvocationHandled(handler string, duration time.Duration, err error) {
	wc.invocations.WithLabelValues(handler, resultLabel(err)).Inc()
	wc.invocationDuration.WithLabelValues(handler).Observe(duration.Seconds())
}

func (wc *WatcherCollector) QueryRegistered() {
	wc.queriesRegistered.Inc()
}

func (wc *WatcherCollector) NotificationCounted() {
	wc.notifications.Inc()
}

func (wc *WatcherCollector) SubMessageDispatched(err error) {
	wc.dispatched.WithLabelValues(resultLabel(err)).Inc()
}

func (wc *WatcherCollector) InboundQueueSize(size uint) {
	wc.queueSize.Set(float64(size))
}

func (wc *WatcherCollector) InboundDropped(handler string) {
	wc.dropped.WithLabelValues(handler).Inc()
}
