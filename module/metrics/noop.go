package metrics

import (
	"context"
	"time"

	httpmetrics "github.com/slok/go-http-metrics/metrics"

	"github.com/onflow/icq-watcher/module"
)

type NoopCollector struct{}

var (
	_ module.WatcherMetrics   = (*NoopCollector)(nil)
	_ module.SubsystemMetrics = (*NoopCollector)(nil)
	_ module.RestMetrics      = (*NoopCollector)(nil)
)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) InvocationHandled(handler string, duration time.Duration, err error) {}
func (nc *NoopCollector) QueryRegistered()                                                     {}
func (nc *NoopCollector) NotificationCounted()                                                 {}
func (nc *NoopCollector) SubMessageDispatched(err error)                                       {}
func (nc *NoopCollector) InboundQueueSize(size uint)                                           {}
func (nc *NoopCollector) InboundDropped(handler string)                                        {}
func (nc *NoopCollector) RequestFinished(operation string, attempts int, duration time.Duration, err error) {
}
func (nc *NoopCollector) CircuitBreakerStateChanged(state string) {}
func (nc *NoopCollector) ObserveHTTPRequestDuration(ctx context.Context, props httpmetrics.HTTPReqProperties, duration time.Duration) {
}
func (nc *NoopCollector) ObserveHTTPResponseSize(ctx context.Context, props httpmetrics.HTTPReqProperties, sizeBytes int64) {
}
func (nc *NoopCollector) AddInflightRequests(ctx context.Context, props httpmetrics.HTTPProperties, quantity int) {
}
func (nc *NoopCollector) AddTotalRequests(ctx context.Context, method string, routeName string) {}
