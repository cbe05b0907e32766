package module

import (
	"context"
	"time"

	httpmetrics "github.com/slok/go-http-metrics/metrics"
)

// WatcherMetrics tracks the handler invocations of the balance watcher engine.
type WatcherMetrics interface {
	// InvocationHandled is called once per handler invocation. The invocation
	// committed if and only if err is nil.
	InvocationHandled(handler string, duration time.Duration, err error)

	// QueryRegistered is called when an acknowledgment appended a query id to the registry.
	QueryRegistered()

	// NotificationCounted is called when a KV query result notification incremented the counter.
	NotificationCounted()

	// SubMessageDispatched is called for every sub-message handed to the query subsystem.
	SubMessageDispatched(err error)

	// InboundQueueSize tracks the number of invocations waiting for the engine worker.
	InboundQueueSize(size uint)

	// InboundDropped is called when an invocation is rejected because the queue is full.
	InboundDropped(handler string)
}

// SubsystemMetrics tracks the requests of a remote query subsystem client.
type SubsystemMetrics interface {
	// RequestFinished is called once per logical request, after all retry attempts.
	RequestFinished(operation string, attempts int, duration time.Duration, err error)

	// CircuitBreakerStateChanged is called when the client circuit breaker changes state.
	CircuitBreakerStateChanged(state string)
}

type RestMetrics interface {
	// Example recorder taken from:
	// https://github.com/slok/go-http-metrics/blob/master/metrics/prometheus/prometheus.go
	httpmetrics.Recorder
	AddTotalRequests(ctx context.Context, method string, routeName string)
}
