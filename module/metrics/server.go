package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/module/component"
	"github.com/onflow/icq-watcher/module/irrecoverable"
)

const (
	metricsPath              = "/metrics"
	metricsShutdownTimeout   = 5 * time.Second
	metricsReadHeaderTimeout = 5 * time.Second
)

// Server exposes the collectors of a gatherer at /metrics.
type Server struct {
	component.Component

	log    zerolog.Logger
	server *http.Server
}

func NewServer(log zerolog.Logger, address string, gatherer prometheus.Gatherer) *Server {
	router := http.NewServeMux()
	router.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog: zerologPrinter{log},
	}))

	s := &Server{
		log: log.With().Str("component", "metrics_server").Logger(),
		server: &http.Server{
			Addr:              address,
			Handler:           router,
			ReadHeaderTimeout: metricsReadHeaderTimeout,
		},
	}
	s.Component = component.NewComponentManagerBuilder().
		AddWorker(s.serve).
		Build()
	return s
}

func (s *Server) serve(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		ctx.Throw(fmt.Errorf("metrics server could not listen on %s: %w", s.server.Addr, err))
	}
	s.log.Info().Str("address", listener.Addr().String()).Msg("serving metrics")
	ready()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("metrics server did not shut down cleanly")
		}
	}()

	err = s.server.Serve(listener)
	if !errors.Is(err, http.ErrServerClosed) {
		ctx.Throw(fmt.Errorf("metrics server failed: %w", err))
	}
}

// zerologPrinter routes promhttp errors into the node log.
type zerologPrinter struct {
	log zerolog.Logger
}

func (p zerologPrinter) Println(v ...interface{}) {
	p.log.Error().Msg(fmt.Sprint(v...))
}
