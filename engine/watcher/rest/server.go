package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/engine/watcher"
	"github.com/onflow/icq-watcher/engine/watcher/rest/routes"
	"github.com/onflow/icq-watcher/module"
	"github.com/onflow/icq-watcher/module/component"
	"github.com/onflow/icq-watcher/module/irrecoverable"
)

// Config defines the configurable options for the REST server.
type Config struct {
	ListenAddress   string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ListenAddress:   "localhost:8070",
		WriteTimeout:    15 * time.Second,
		ReadTimeout:     15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// NewServer returns an HTTP server initialized with the REST API handler
func NewServer(api watcher.API, config Config, logger zerolog.Logger, restCollector module.RestMetrics) *http.Server {
	router := routes.NewRouter(api, logger, restCollector)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
			http.MethodHead},
	})

	return &http.Server{
		Addr:         config.ListenAddress,
		Handler:      c.Handler(router),
		WriteTimeout: config.WriteTimeout,
		ReadTimeout:  config.ReadTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
}

// Server runs the REST API as a component.
type Server struct {
	component.Component

	log             zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
	addr            chan net.Addr
}

func New(api watcher.API, config Config, logger zerolog.Logger, restCollector module.RestMetrics) *Server {
	log := logger.With().Str("component", "rest_server").Logger()
	s := &Server{
		log:             log,
		server:          NewServer(api, config, log, restCollector),
		shutdownTimeout: config.ShutdownTimeout,
		addr:            make(chan net.Addr, 1),
	}
	s.Component = component.NewComponentManagerBuilder().
		AddWorker(s.serve).
		Build()
	return s
}

// Addr returns the address the server listens on. It blocks until the server is ready.
func (s *Server) Addr() net.Addr {
	addr := <-s.addr
	s.addr <- addr
	return addr
}

func (s *Server) serve(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		ctx.Throw(err)
	}
	s.addr <- l.Addr()
	s.log.Info().Str("address", l.Addr().String()).Msg("starting rest server")
	ready()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("rest server did not shut down gracefully")
		}
	}()

	err = s.server.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		s.log.Info().Msg("rest server stopped")
		return
	}
	ctx.Throw(err)
}
