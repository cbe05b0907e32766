package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module/subsystem"
	"github.com/onflow/icq-watcher/module/subsystem/kv"
	"github.com/onflow/icq-watcher/utils/unittest"
)

type recordingMetrics struct {
	mu       sync.Mutex
	attempts []int
	states   []string
}

func (m *recordingMetrics) RequestFinished(_ string, attempts int, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, attempts)
}

func (m *recordingMetrics) CircuitBreakerStateChanged(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
}

func testConfig(url string) Config {
	return Config{
		URL:                          url,
		RequestTimeout:               time.Second,
		MaxRetries:                   2,
		RetryBase:                    time.Millisecond,
		CircuitBreakerFailures:       10,
		CircuitBreakerRestoreTimeout: time.Minute,
	}
}

func newClient(t *testing.T, config Config) (*Client, *recordingMetrics) {
	collector := &recordingMetrics{}
	c, err := New(unittest.Logger(), collector, config)
	require.NoError(t, err)
	return c, collector
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"code":%q,"message":"failed"}`, code)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(unittest.Logger(), &recordingMetrics{}, testConfig("localhost:8090"))
	assert.Error(t, err)
	_, err = New(unittest.Logger(), &recordingMetrics{}, testConfig("ftp://localhost"))
	assert.Error(t, err)
}

func TestSubmit(t *testing.T) {
	msg := icq.SubMsg{
		ID: icq.RequestCorrelationID(3),
		Msg: icq.RegisterBalanceQuery{
			ConnectionID: unittest.DefaultConnectionID,
			Addr:         unittest.SubjectFixture(),
			Denom:        unittest.DefaultAssetDenom,
			UpdatePeriod: unittest.DefaultFrequency,
		},
		ReplyOn: icq.ReplyOnSuccess,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/registrations", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var received icq.SubMsg
		assert.NoError(t, icq.Unmarshal(body, &received))
		assert.Equal(t, msg, received)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c, collector := newClient(t, testConfig(server.URL))
	require.NoError(t, c.Submit(context.Background(), msg))
	assert.Equal(t, []int{1}, collector.attempts)
	assert.Equal(t, []string{"closed"}, collector.states)
}

func TestSubmit_ServerErrorNotRetried(t *testing.T) {
	calls := atomic.NewInt32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, collector := newClient(t, testConfig(server.URL))
	err := c.Submit(context.Background(), icq.SubMsg{ID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []int{1}, collector.attempts)
}

// A registration accepted after the client gave up must not be sent again.
func TestSubmit_TimeoutNotResent(t *testing.T) {
	calls := atomic.NewInt32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Inc() == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.RequestTimeout = 100 * time.Millisecond
	c, _ := newClient(t, config)

	err := c.Submit(context.Background(), icq.SubMsg{ID: 1})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryBalance_RetriesServerErrors(t *testing.T) {
	calls := atomic.NewInt32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Inc() < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		data, err := icq.Marshal(resultResponse{Height: 5})
		assert.NoError(t, err)
		_, _ = w.Write(data)
	}))
	defer server.Close()

	c, collector := newClient(t, testConfig(server.URL))
	resp, err := c.QueryBalance(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), resp.LastSubmittedLocalHeight)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []int{3}, collector.attempts)
}

func TestQueryBalance_RetriesExhausted(t *testing.T) {
	calls := atomic.NewInt32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		writeError(w, http.StatusInternalServerError, "internal")
	}))
	defer server.Close()

	c, _ := newClient(t, testConfig(server.URL))
	_, err := c.QueryBalance(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmit_ClientErrorNotRetried(t *testing.T) {
	calls := atomic.NewInt32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		writeError(w, http.StatusBadRequest, "invalid_registration")
	}))
	defer server.Close()

	c, _ := newClient(t, testConfig(server.URL))
	err := c.Submit(context.Background(), icq.SubMsg{ID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_registration")
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryBalance(t *testing.T) {
	atom := unittest.CoinFixture(unittest.DefaultAssetDenom)
	subject := unittest.SubjectFixture()
	key, err := kv.BalanceKey(subject, atom.Denom)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/queries/7/result":
			data, err := icq.Marshal(resultResponse{
				KVResults: []kv.StorageValue{{StoragePrefix: kv.BankStoreKey, Key: key, Value: kv.EncodeCoin(atom)}},
				Height:    42,
			})
			assert.NoError(t, err)
			_, _ = w.Write(data)
		case "/v1/queries/8/result":
			writeError(w, http.StatusNotFound, errorCodeResultNotFound)
		default:
			writeError(w, http.StatusNotFound, errorCodeUnknownQuery)
		}
	}))
	defer server.Close()

	c, _ := newClient(t, testConfig(server.URL))

	resp, err := c.QueryBalance(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []icq.Coin{atom}, resp.Balances.Coins)
	assert.Equal(t, uint64(42), resp.LastSubmittedLocalHeight)

	_, err = c.QueryBalance(context.Background(), 8)
	assert.ErrorIs(t, err, subsystem.ErrResultNotFound)

	_, err = c.QueryBalance(context.Background(), 9)
	assert.ErrorIs(t, err, subsystem.ErrUnknownQuery)
}

// Consecutive failures open the breaker, which then rejects requests without reaching the gateway.
func TestCircuitBreaker(t *testing.T) {
	calls := atomic.NewInt32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.MaxRetries = 0
	config.CircuitBreakerFailures = 2
	c, collector := newClient(t, config)

	for i := 0; i < 2; i++ {
		err := c.Submit(context.Background(), icq.SubMsg{ID: 1})
		require.Error(t, err)
	}
	err := c.Submit(context.Background(), icq.SubMsg{ID: 1})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"closed", "open"}, collector.states)
}

func TestQueryBalance_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.RetryBase = time.Hour
	c, _ := newClient(t, config)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.QueryBalance(ctx, 7)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_InvalidRateLimit(t *testing.T) {
	config := testConfig("http://localhost:8090")
	config.RateLimit = -1
	_, err := New(unittest.Logger(), &recordingMetrics{}, config)
	assert.Error(t, err)

	config.RateLimit = 5
	config.RateBurst = 0
	_, err = New(unittest.Logger(), &recordingMetrics{}, config)
	assert.Error(t, err)
}

func TestSubmit_RateLimited(t *testing.T) {
	calls := atomic.NewInt32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.RateLimit = 0.1
	config.RateBurst = 1
	c, _ := newClient(t, config)

	require.NoError(t, c.Submit(context.Background(), icq.SubMsg{ID: 1}))

	// the next token is ten seconds away
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := c.Submit(ctx, icq.SubMsg{ID: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, int32(1), calls.Load())
}
