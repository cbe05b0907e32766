// Package remote implements subsystem.Subsystem as a client of an HTTP JSON
// gateway in front of the interchain query subsystem. The gateway reports
// acknowledgments and notifications back through the callback endpoints of
// the watcher REST API.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module"
	"github.com/onflow/icq-watcher/module/subsystem"
	"github.com/onflow/icq-watcher/module/subsystem/kv"
)

const (
	operationSubmit       = "submit"
	operationQueryBalance = "query_balance"

	errorCodeUnknownQuery   = "unknown_query"
	errorCodeResultNotFound = "result_not_found"

	maxResponseBodySize = 4 << 20
)

// Config defines the gateway connection.
type Config struct {
	URL            string
	RequestTimeout time.Duration
	// MaxRetries is the number of retries after the first attempt of a read.
	// Registrations are never retried.
	MaxRetries uint64
	RetryBase  time.Duration
	// RateLimit is the maximum number of attempts per second. Zero disables the limit.
	RateLimit float64
	RateBurst int
	// CircuitBreakerFailures is the number of consecutive failures opening the breaker.
	CircuitBreakerFailures uint32
	// CircuitBreakerRestoreTimeout is how long the breaker stays open.
	CircuitBreakerRestoreTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:                          "http://localhost:8090",
		RequestTimeout:               5 * time.Second,
		MaxRetries:                   3,
		RetryBase:                    100 * time.Millisecond,
		RateBurst:                    10,
		CircuitBreakerFailures:       5,
		CircuitBreakerRestoreTimeout: 30 * time.Second,
	}
}

// statusError is a non-success answer of the gateway.
type statusError struct {
	status int
	code   string
	msg    string
}

func (e *statusError) Error() string {
	if e.code != "" {
		return fmt.Sprintf("gateway returned %d (%s): %s", e.status, e.code, e.msg)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.status, e.msg)
}

// retryable returns true for answers a later attempt may change.
func (e *statusError) retryable() bool {
	return e.status >= http.StatusInternalServerError || e.status == http.StatusTooManyRequests
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type resultResponse struct {
	KVResults []kv.StorageValue `json:"kv_results"`
	Height    uint64            `json:"height"`
}

// Client is a gateway client with retries and a circuit breaker.
type Client struct {
	log        zerolog.Logger
	metrics    module.SubsystemMetrics
	baseURL    *url.URL
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	maxRetries uint64
	retryBase  time.Duration
}

var _ subsystem.Subsystem = (*Client)(nil)

func New(log zerolog.Logger, collector module.SubsystemMetrics, config Config) (*Client, error) {
	baseURL, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway url %q: %w", config.URL, err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid gateway url %q: unsupported scheme", config.URL)
	}
	if config.RetryBase <= 0 {
		return nil, fmt.Errorf("retry base must be positive")
	}
	if config.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must not be negative")
	}
	limit := rate.Inf
	if config.RateLimit > 0 {
		if config.RateBurst < 1 {
			return nil, fmt.Errorf("rate burst must be positive")
		}
		limit = rate.Limit(config.RateLimit)
	}

	c := &Client{
		log:        log.With().Str("component", "icq_client").Str("gateway", baseURL.String()).Logger(),
		metrics:    collector,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		limiter:    rate.NewLimiter(limit, config.RateBurst),
		maxRetries: config.MaxRetries,
		retryBase:  config.RetryBase,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "icq_gateway",
		Timeout: config.CircuitBreakerRestoreTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.CircuitBreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
			c.metrics.CircuitBreakerStateChanged(to.String())
		},
	})
	collector.CircuitBreakerStateChanged(gobreaker.StateClosed.String())

	return c, nil
}

// Submit posts a registration to the gateway in a single attempt. A registration
// is not idempotent: a timed out attempt may still have been accepted.
func (c *Client) Submit(ctx context.Context, msg icq.SubMsg) error {
	body, err := icq.Marshal(msg)
	if err != nil {
		return fmt.Errorf("could not encode sub-message %d: %w", msg.ID, err)
	}
	_, err = c.do(ctx, operationSubmit, 0, http.MethodPost, "/v1/registrations", body)
	if err != nil {
		return fmt.Errorf("could not submit sub-message %d: %w", msg.ID, err)
	}
	return nil
}

// QueryBalance fetches the latest KV result of the query and decodes its balances.
func (c *Client) QueryBalance(ctx context.Context, queryID uint64) (*icq.BalanceResponse, error) {
	data, err := c.do(ctx, operationQueryBalance, c.maxRetries, http.MethodGet, fmt.Sprintf("/v1/queries/%d/result", queryID), nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.status == http.StatusNotFound {
			switch se.code {
			case errorCodeUnknownQuery:
				return nil, fmt.Errorf("query %d: %w", queryID, subsystem.ErrUnknownQuery)
			case errorCodeResultNotFound:
				return nil, fmt.Errorf("query %d: %w", queryID, subsystem.ErrResultNotFound)
			}
		}
		return nil, fmt.Errorf("could not fetch result of query %d: %w", queryID, err)
	}

	var result resultResponse
	err = icq.Unmarshal(data, &result)
	if err != nil {
		return nil, fmt.Errorf("could not decode result of query %d: %w", queryID, err)
	}
	balances, err := kv.BalancesFromValues(result.KVResults)
	if err != nil {
		return nil, fmt.Errorf("could not decode balances of query %d: %w", queryID, err)
	}
	return &icq.BalanceResponse{
		Balances:                 balances,
		LastSubmittedLocalHeight: result.Height,
	}, nil
}

// do sends the request with up to maxRetries retries. Every attempt waits for
// the rate limiter and passes the circuit breaker; an open breaker ends the
// request without further attempts.
func (c *Client) do(ctx context.Context, operation string, maxRetries uint64, method string, path string, body []byte) ([]byte, error) {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(c.retryBase))

	start := time.Now()
	attempts := 0
	var attemptErrs *multierror.Error
	var data []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
		attempts++
		res, err := c.breaker.Execute(func() (interface{}, error) {
			out, err := c.attempt(ctx, method, path, body)
			var se *statusError
			if errors.As(err, &se) && !se.retryable() {
				// the gateway is healthy, the request is not
				return se, nil
			}
			return out, err
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return err
		}
		if err == nil {
			if se, ok := res.(*statusError); ok {
				return se
			}
			data = res.([]byte)
			return nil
		}
		attemptErrs = multierror.Append(attemptErrs, err)
		c.log.Debug().Err(err).Str("operation", operation).Int("attempt", attempts).Msg("gateway request failed")
		return retry.RetryableError(err)
	})
	c.metrics.RequestFinished(operation, attempts, time.Since(start), err)
	if err != nil {
		if attemptErrs != nil && len(attemptErrs.Errors) > 1 {
			return nil, fmt.Errorf("%w (%d attempts: %s)", err, attempts, attemptErrs.Error())
		}
		return nil, err
	}
	return data, nil
}

// attempt sends a single request.
func (c *Client) attempt(ctx context.Context, method string, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("could not read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	se := &statusError{status: resp.StatusCode, msg: strings.TrimSpace(string(data))}
	var er errorResponse
	if icq.Unmarshal(data, &er) == nil && er.Code != "" {
		se.code = er.Code
		se.msg = er.Message
	}
	return nil, se
}
