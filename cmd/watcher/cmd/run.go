package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	engine "github.com/onflow/icq-watcher/engine/watcher"
	"github.com/onflow/icq-watcher/engine/watcher/rest"
	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module"
	"github.com/onflow/icq-watcher/module/component"
	"github.com/onflow/icq-watcher/module/metrics"
	"github.com/onflow/icq-watcher/module/subsystem"
	"github.com/onflow/icq-watcher/module/subsystem/remote"
	"github.com/onflow/icq-watcher/module/subsystem/sim"
	state "github.com/onflow/icq-watcher/state/watcher"
)

var flagSimBalances []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the watcher node",
	RunE:  runNode,
}

func init() {
	runCmd.Flags().StringSliceVar(&flagSimBalances, "sim-balance", nil,
		"remote balance served by the simulated subsystem, as address:denom:amount (repeatable)")
}

type nodeMetrics struct {
	watcher   module.WatcherMetrics
	subsystem module.SubsystemMetrics
	rest      module.RestMetrics
}

func runNode(cmd *cobra.Command, _ []string) (err error) {
	mode := conf.Engine.CorrelationMode

	db, err := openDB(log, conf.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = multierror.Append(err, fmt.Errorf("could not close db: %w", closeErr)).ErrorOrNil()
		}
	}()

	var components []namedComponent
	noop := metrics.NewNoopCollector()
	collected := nodeMetrics{watcher: noop, subsystem: noop, rest: noop}
	if conf.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collected = nodeMetrics{
			watcher:   metrics.NewWatcherCollector(registry),
			subsystem: metrics.NewSubsystemCollector(registry),
			rest:      metrics.NewRestCollector(registry),
		}
		components = append(components, namedComponent{"metrics_server", metrics.NewServer(log, conf.Metrics.ListenAddress, registry)})
	}

	sub, bind, subComponents, err := newSubsystem(collected.subsystem)
	if err != nil {
		return err
	}
	components = append(components, subComponents...)

	w := state.New(log, sub, mode)
	eng, err := engine.New(log, collected.watcher, db, w, sub, engine.Config{
		InboundQueueCapacity: conf.Engine.InboundQueueCapacity,
	})
	if err != nil {
		return fmt.Errorf("could not create engine: %w", err)
	}
	bind(eng)

	restServer := rest.New(eng, rest.Config{
		ListenAddress:   conf.Rest.ListenAddress,
		WriteTimeout:    conf.Rest.WriteTimeout,
		ReadTimeout:     conf.Rest.ReadTimeout,
		IdleTimeout:     conf.Rest.IdleTimeout,
		ShutdownTimeout: rest.DefaultConfig().ShutdownTimeout,
	}, log, collected.rest)

	// the engine is ready before the subsystem can deliver callbacks to it
	components = append([]namedComponent{{"watcher_engine", eng}}, components...)
	components = append(components, namedComponent{"rest_server", restServer})
	node := newNode(log, components...)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().
		Str("storage_backend", conf.Storage.Backend).
		Str("correlation_mode", mode.String()).
		Str("subsystem_mode", conf.Subsystem.Mode).
		Msg("starting watcher node")

	err = component.Run(ctx, node)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("watcher node stopped")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("watcher node failed")
	}
	return err
}

// newSubsystem creates the configured query subsystem. bind connects it to
// the receiver of its callbacks.
func newSubsystem(collector module.SubsystemMetrics) (subsystem.Subsystem, func(subsystem.Callbacks), []namedComponent, error) {
	switch conf.Subsystem.Mode {
	case "sim":
		s := sim.New(log, sim.Config{
			BlockInterval:   conf.Subsystem.SimBlockInterval,
			DeliveryWorkers: conf.Subsystem.SimDeliveryWorkers,
		})
		for _, seed := range flagSimBalances {
			addr, coin, err := parseBalance(seed)
			if err != nil {
				return nil, nil, nil, err
			}
			s.Seed(addr, coin)
		}
		return s, s.Bind, []namedComponent{{"icq_simulator", s}}, nil
	case "remote":
		c, err := remote.New(log, collector, remote.Config{
			URL:                          conf.Subsystem.RemoteURL,
			RequestTimeout:               conf.Subsystem.RemoteTimeout,
			MaxRetries:                   conf.Subsystem.RemoteMaxRetries,
			RetryBase:                    conf.Subsystem.RemoteRetryBase,
			RateLimit:                    conf.Subsystem.RemoteRateLimit,
			RateBurst:                    conf.Subsystem.RemoteRateBurst,
			CircuitBreakerFailures:       conf.Subsystem.BreakerFailures,
			CircuitBreakerRestoreTimeout: conf.Subsystem.BreakerRestoreAfter,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("could not create subsystem client: %w", err)
		}
		// the gateway calls back through the REST API
		return c, func(subsystem.Callbacks) {}, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown subsystem mode %q", conf.Subsystem.Mode)
	}
}

// parseBalance parses address:denom:amount.
func parseBalance(s string) (string, icq.Coin, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", icq.Coin{}, fmt.Errorf("invalid balance %q: expected address:denom:amount", s)
	}
	if _, err := strconv.ParseUint(parts[2], 10, 64); err != nil {
		return "", icq.Coin{}, fmt.Errorf("invalid balance %q: amount must be an unsigned integer", s)
	}
	return parts[0], icq.Coin{Denom: parts[1], Amount: parts[2]}, nil
}
