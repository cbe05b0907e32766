package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	httpmetrics "github.com/slok/go-http-metrics/metrics"
	metricsProm "github.com/slok/go-http-metrics/metrics/prometheus"

	"github.com/onflow/icq-watcher/module"
)

type RestCollector struct {
	httpmetrics.Recorder
	totalRequests *prometheus.CounterVec
}

var _ module.RestMetrics = (*RestCollector)(nil)

// NewRestCollector returns a collector for the watcher HTTP API. Request
// durations, response sizes and in-flight requests are recorded by the
// go-http-metrics prometheus recorder.
func NewRestCollector(registerer prometheus.Registerer) *RestCollector {
	recorder := metricsProm.NewRecorder(metricsProm.Config{
		Prefix:   namespaceWatcher + "_" + subsystemRest,
		Registry: registerer,
	})

	return &RestCollector{
		Recorder: recorder,
		totalRequests: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Name:      "requests_total",
			Namespace: namespaceWatcher,
			Subsystem: subsystemRest,
			Help:      "the number of HTTP requests, by method and route",
		}, []string{LabelMethod, LabelRoute}),
	}
}

// AddTotalRequests records a request to the given route.
func (r *RestCollector) AddTotalRequests(_ context.Context, method string, routeName string) {
	r.totalRequests.WithLabelValues(method, routeName).Inc()
}
