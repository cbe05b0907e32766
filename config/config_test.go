package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/utils/unittest"
)

func load(t *testing.T, args ...string) (*WatcherConfig, error) {
	defaults, err := DefaultConfig()
	require.NoError(t, err)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitializePFlagSet(flags, defaults)
	require.NoError(t, flags.Parse(args))

	loader, err := NewLoader()
	require.NoError(t, err)
	return loader.Load(flags)
}

func TestDefaultConfig(t *testing.T) {
	c, err := DefaultConfig()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "badger", c.Storage.Backend)
	assert.Equal(t, icq.CorrelationPerRequest, c.Engine.CorrelationMode)
	assert.Equal(t, 10_000, c.Engine.InboundQueueCapacity)
	assert.Equal(t, "sim", c.Subsystem.Mode)
	assert.Equal(t, time.Second, c.Subsystem.SimBlockInterval)
	assert.Equal(t, 100*time.Millisecond, c.Subsystem.RemoteRetryBase)
	assert.True(t, c.Metrics.Enabled)
}

func TestLoad_Flags(t *testing.T) {
	c, err := load(t,
		"--storage-backend=pebble",
		"--correlation-mode=LEGACY",
		"--rest-listen-address=0.0.0.0:9000",
		"--sim-block-interval=250ms",
	)
	require.NoError(t, err)
	assert.Equal(t, "pebble", c.Storage.Backend)
	assert.Equal(t, icq.CorrelationLegacy, c.Engine.CorrelationMode)
	assert.Equal(t, "0.0.0.0:9000", c.Rest.ListenAddress)
	assert.Equal(t, 250*time.Millisecond, c.Subsystem.SimBlockInterval)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("WATCHER_DATADIR", "/tmp/watcher")
	t.Setenv("WATCHER_INBOUND_QUEUE_CAPACITY", "5")
	t.Setenv("WATCHER_REMOTE_RATE_LIMIT", "2.5")

	c, err := load(t, "--inbound-queue-capacity=7")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/watcher", c.Storage.DataDir)
	// flags take precedence over the environment
	assert.Equal(t, 7, c.Engine.InboundQueueCapacity)
	assert.Equal(t, 2.5, c.Subsystem.RemoteRateLimit)
}

func TestLoad_ConfigFile(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		path := filepath.Join(dir, "watcher.yml")
		err := os.WriteFile(path, []byte("subsystem-mode: remote\nremote-url: http://gateway:8090\nremote-max-retries: 0\n"), 0o600)
		require.NoError(t, err)

		c, err := load(t, "--config-file="+path)
		require.NoError(t, err)
		assert.Equal(t, "remote", c.Subsystem.Mode)
		assert.Equal(t, "http://gateway:8090", c.Subsystem.RemoteURL)
		assert.Equal(t, uint64(0), c.Subsystem.RemoteMaxRetries)
		assert.Equal(t, "badger", c.Storage.Backend)
	})
}

func TestLoad_Invalid(t *testing.T) {
	_, err := load(t, "--storage-backend=rocksdb")
	assert.Error(t, err)

	_, err = load(t, "--correlation-mode=latest")
	assert.Error(t, err)

	_, err = load(t, "--subsystem-mode=remote", "--remote-url=")
	assert.Error(t, err)

	_, err = load(t, "--inbound-queue-capacity=0")
	assert.Error(t, err)

	_, err = load(t, "--remote-rate-limit=-1")
	assert.Error(t, err)

	_, err = load(t, "--config-file=/does/not/exist.yml")
	assert.Error(t, err)
}

func TestLoad_FlagsNotParsed(t *testing.T) {
	loader, err := NewLoader()
	require.NoError(t, err)
	_, err = loader.Load(pflag.NewFlagSet("test", pflag.ContinueOnError))
	assert.ErrorIs(t, err, errPflagsNotParsed)
}

func TestZerologLevel(t *testing.T) {
	c, err := load(t, "--log-level=debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", c.ZerologLevel().String())
}
