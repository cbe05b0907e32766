package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/onflow/icq-watcher/model/icq"
)

const (
	configFileFlagName = "config-file"
	envPrefix          = "WATCHER"
)

var (
	//go:embed default-config.yml
	configFile string

	validate           = validator.New()
	errPflagsNotParsed = errors.New("failed to bind flags to configuration values, pflags must be parsed before binding")
)

// WatcherConfig is the configuration of a watcher node.
type WatcherConfig struct {
	// ConfigFile is the path of an optional config file overriding the defaults.
	ConfigFile string          `validate:"omitempty,filepath" mapstructure:"config-file"`
	LogLevel   string          `validate:"oneof=debug info warn error" mapstructure:"log-level"`
	Storage    StorageConfig   `mapstructure:",squash"`
	Engine     EngineConfig    `mapstructure:",squash"`
	Rest       RestConfig      `mapstructure:",squash"`
	Metrics    MetricsConfig   `mapstructure:",squash"`
	Subsystem  SubsystemConfig `mapstructure:",squash"`
}

type StorageConfig struct {
	Backend string `validate:"oneof=badger pebble" mapstructure:"storage-backend"`
	DataDir string `validate:"required" mapstructure:"datadir"`
}

type EngineConfig struct {
	CorrelationMode      icq.CorrelationMode `validate:"oneof=legacy per-request" mapstructure:"correlation-mode"`
	InboundQueueCapacity int                 `validate:"gt=0" mapstructure:"inbound-queue-capacity"`
}

type RestConfig struct {
	ListenAddress string        `validate:"hostname_port" mapstructure:"rest-listen-address"`
	WriteTimeout  time.Duration `validate:"gt=0" mapstructure:"rest-write-timeout"`
	ReadTimeout   time.Duration `validate:"gt=0" mapstructure:"rest-read-timeout"`
	IdleTimeout   time.Duration `validate:"gt=0" mapstructure:"rest-idle-timeout"`
}

type MetricsConfig struct {
	Enabled       bool   `mapstructure:"metrics-enabled"`
	ListenAddress string `validate:"required_if=Enabled true" mapstructure:"metrics-listen-address"`
}

type SubsystemConfig struct {
	Mode                string        `validate:"oneof=sim remote" mapstructure:"subsystem-mode"`
	SimBlockInterval    time.Duration `validate:"gt=0" mapstructure:"sim-block-interval"`
	SimDeliveryWorkers  int           `validate:"gt=0" mapstructure:"sim-delivery-workers"`
	RemoteURL           string        `validate:"required_if=Mode remote" mapstructure:"remote-url"`
	RemoteTimeout       time.Duration `validate:"gt=0" mapstructure:"remote-request-timeout"`
	RemoteMaxRetries    uint64        `mapstructure:"remote-max-retries"`
	RemoteRetryBase     time.Duration `validate:"gt=0" mapstructure:"remote-retry-base"`
	RemoteRateLimit     float64       `validate:"gte=0" mapstructure:"remote-rate-limit"`
	RemoteRateBurst     int           `validate:"gt=0" mapstructure:"remote-rate-burst"`
	BreakerFailures     uint32        `validate:"gt=0" mapstructure:"remote-circuit-breaker-failures"`
	BreakerRestoreAfter time.Duration `validate:"gt=0" mapstructure:"remote-circuit-breaker-restore-timeout"`
}

// Validate checks all configuration values.
func (c *WatcherConfig) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return fmt.Errorf("invalid configuration: %w", validationErrors)
		}
		return fmt.Errorf("failed to validate configuration: %w", err)
	}
	return nil
}

// ZerologLevel returns the parsed log level.
func (c *WatcherConfig) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Loader reads the configuration from the embedded defaults, an optional
// config file, WATCHER_* environment variables and command line flags, in
// increasing order of precedence.
type Loader struct {
	conf *viper.Viper
}

// NewLoader returns a loader initialized with the default configuration.
func NewLoader() (*Loader, error) {
	conf := viper.New()
	conf.SetConfigType("yaml")
	err := conf.ReadConfig(bytes.NewBufferString(configFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}
	conf.SetEnvPrefix(envPrefix)
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()

	return &Loader{conf: conf}, nil
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() (*WatcherConfig, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}
	return l.unmarshal()
}

// decodeHook extends the viper defaults with the parsing of typed config values.
var decodeHook = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
	stringToCorrelationModeHookFunc(),
))

func stringToCorrelationModeHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(icq.CorrelationMode("")) {
			return data, nil
		}
		return icq.ParseCorrelationMode(data.(string))
	}
}

func (l *Loader) unmarshal() (*WatcherConfig, error) {
	var c WatcherConfig
	err := l.conf.Unmarshal(&c, decodeHook)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &c, nil
}

// InitializePFlagSet registers one flag per configuration value, with the
// default configuration as flag defaults.
func InitializePFlagSet(flags *pflag.FlagSet, c *WatcherConfig) {
	flags.String(configFileFlagName, "", "path to a config file overriding the defaults")
	flags.String("log-level", c.LogLevel, "log level: debug, info, warn or error")

	flags.String("storage-backend", c.Storage.Backend, "durable store backend: badger or pebble")
	flags.String("datadir", c.Storage.DataDir, "directory of the durable store")

	flags.String("correlation-mode", c.Engine.CorrelationMode.String(), "how acknowledgments are bound to registrations: legacy or per-request")
	flags.Int("inbound-queue-capacity", c.Engine.InboundQueueCapacity, "maximum number of invocations waiting for the engine")

	flags.String("rest-listen-address", c.Rest.ListenAddress, "listen address of the REST API")
	flags.Duration("rest-write-timeout", c.Rest.WriteTimeout, "REST API write timeout")
	flags.Duration("rest-read-timeout", c.Rest.ReadTimeout, "REST API read timeout")
	flags.Duration("rest-idle-timeout", c.Rest.IdleTimeout, "REST API idle timeout")

	flags.Bool("metrics-enabled", c.Metrics.Enabled, "whether to serve prometheus metrics")
	flags.String("metrics-listen-address", c.Metrics.ListenAddress, "listen address of the metrics endpoint")

	flags.String("subsystem-mode", c.Subsystem.Mode, "query subsystem collaborator: sim or remote")
	flags.Duration("sim-block-interval", c.Subsystem.SimBlockInterval, "time between two simulated blocks")
	flags.Int("sim-delivery-workers", c.Subsystem.SimDeliveryWorkers, "number of workers delivering simulated callbacks")
	flags.String("remote-url", c.Subsystem.RemoteURL, "URL of the query subsystem gateway")
	flags.Duration("remote-request-timeout", c.Subsystem.RemoteTimeout, "timeout of a single gateway request")
	flags.Uint64("remote-max-retries", c.Subsystem.RemoteMaxRetries, "retries after the first attempt of a gateway read; registrations are sent once")
	flags.Duration("remote-retry-base", c.Subsystem.RemoteRetryBase, "base of the exponential retry backoff")
	flags.Float64("remote-rate-limit", c.Subsystem.RemoteRateLimit, "maximum gateway requests per second, 0 for no limit")
	flags.Int("remote-rate-burst", c.Subsystem.RemoteRateBurst, "gateway requests allowed above the rate limit in a burst")
	flags.Uint32("remote-circuit-breaker-failures", c.Subsystem.BreakerFailures, "consecutive gateway failures opening the circuit breaker")
	flags.Duration("remote-circuit-breaker-restore-timeout", c.Subsystem.BreakerRestoreAfter, "time the circuit breaker stays open")
}

// Load binds the parsed flags, reads the config file if one is set and
// returns the validated configuration.
func (l *Loader) Load(flags *pflag.FlagSet) (*WatcherConfig, error) {
	if !flags.Parsed() {
		return nil, errPflagsNotParsed
	}
	err := l.conf.BindPFlags(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to bind pflags: %w", err)
	}

	if path := l.conf.GetString(configFileFlagName); path != "" {
		l.conf.SetConfigFile(path)
		err = l.conf.MergeInConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	c, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}
