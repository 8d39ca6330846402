package resilience

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the provider in the breaker, logs and the registry.
	Name string

	// Timeout bounds each HTTP attempt. Default: 2 seconds.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt. Default: 2.
	MaxRetries uint64

	// InitialInterval is the first backoff delay. Default: 100ms.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay. Default: 1 second.
	MaxInterval time.Duration

	// Breaker configures the circuit breaker. Zero value uses DefaultBreakerConfig.
	Breaker *BreakerConfig

	// Registry, when set, receives the client and its call outcomes.
	Registry *Registry

	// Metrics, when set, records call durations and outcomes.
	Metrics *Metrics

	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper

	Logger zerolog.Logger
}

// DefaultClientConfig returns defaults for a lookup provider client.
func DefaultClientConfig(name string) ClientConfig {
	breaker := DefaultBreakerConfig()
	return ClientConfig{
		Name:            name,
		Timeout:         2 * time.Second,
		MaxRetries:      2,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Breaker:         &breaker,
	}
}

// Client is an HTTP client with circuit breaker protection and retries.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	registry   *Registry
	metrics    *Metrics
	config     ClientConfig
	logger     zerolog.Logger
}

// NewClient creates a new resilient HTTP client and registers it when a
// registry is configured.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = time.Second
	}

	breakerCfg := DefaultBreakerConfig()
	if cfg.Breaker != nil {
		breakerCfg = *cfg.Breaker
	}
	logger := cfg.Logger.With().Str("provider", cfg.Name).Logger()
	userHook := breakerCfg.OnStateChange
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn().
			Str("from", StateName(from)).
			Str("to", StateName(to)).
			Msg("circuit breaker state changed")
		if userHook != nil {
			userHook(name, from, to)
		}
	}

	c := &Client{
		name: cfg.Name,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		breaker:  newBreaker[*http.Response](cfg.Name, breakerCfg), //nolint:bodyclose // type param, not response
		registry: cfg.Registry,
		metrics:  cfg.Metrics,
		config:   cfg,
		logger:   logger,
	}

	if c.registry != nil {
		c.registry.Register(c)
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// Do executes req. Network errors, 5xx and 429 responses are retried with
// exponential backoff; other responses are returned as-is. When retries are
// exhausted on a 5xx the last response is returned with a nil error. The
// caller closes the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var last *http.Response
	operation := func() error {
		if last != nil {
			drain(last)
			last = nil
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // closed by caller or drain
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= http.StatusInternalServerError || r.StatusCode == http.StatusTooManyRequests {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			last = resp
			return err
		}
		last = resp
		return nil
	}

	err := backoff.Retry(operation, policy)
	c.record(err)
	c.metrics.RecordRequest(ctx, c.name, time.Since(start), err)
	if err != nil {
		if last != nil {
			return last, nil
		}
		return nil, err
	}
	return last, nil
}

func (c *Client) record(err error) {
	if c.registry == nil {
		return
	}
	if err != nil {
		c.registry.RecordFailure(c.name, err)
		return
	}
	c.registry.RecordSuccess(c.name)
}

// drain discards and closes the body of a response that will be retried.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// ServerError is a retryable upstream failure.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "upstream error: " + http.StatusText(e.StatusCode)
}

// State returns the current circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the circuit breaker counters.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}
