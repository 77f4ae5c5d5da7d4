package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-vibe/internal/logging"
	"github.com/i474232898/weather-vibe/internal/weather"
)

// RequestTimeout bounds every outbound provider call.
const RequestTimeout = 5 * time.Second

// maxBodyBytes caps how much of a provider response is decoded.
const maxBodyBytes = 1 << 20

// BreakerConfig controls the circuit breaker in front of a provider. Only
// transport failures count; any HTTP response, whatever its status, is a
// success from the breaker's point of view.
type BreakerConfig struct {
	MaxFailures uint32        // consecutive transport failures before opening
	OpenTimeout time.Duration // how long the breaker stays open
}

// DefaultBreaker is used when no BreakerConfig is supplied.
var DefaultBreaker = BreakerConfig{MaxFailures: 5, OpenTimeout: 30 * time.Second}

type options struct {
	baseURL   string
	breaker   BreakerConfig
	perMinute int
	logger    *slog.Logger
}

// Option configures a provider.
type Option func(*options)

// WithBaseURL points the provider at a different endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithBreaker sets the circuit breaker thresholds.
func WithBreaker(cfg BreakerConfig) Option {
	return func(o *options) { o.breaker = cfg }
}

// WithRateLimit caps outbound requests at perMinute, matching the provider's
// quota. Zero or less disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(o *options) { o.perMinute = perMinute }
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(name, defaultURL string, opts []Option) options {
	o := options{baseURL: defaultURL, breaker: DefaultBreaker}
	for _, opt := range opts {
		opt(&o)
	}
	if o.breaker.MaxFailures == 0 {
		o.breaker.MaxFailures = DefaultBreaker.MaxFailures
	}
	if o.breaker.OpenTimeout <= 0 {
		o.breaker.OpenTimeout = DefaultBreaker.OpenTimeout
	}
	o.logger = logging.Default(o.logger).With("component", "provider", "provider", name)
	return o
}

func newCircuitBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})
}

// transport sends provider requests through the rate limiter and the
// circuit breaker.
type transport struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter // nil when unlimited
}

func newTransport(name string, client *http.Client, o options) *transport {
	if client == nil {
		client = &http.Client{Timeout: RequestTimeout}
	}
	t := &transport{
		client:  client,
		circuit: newCircuitBreaker(name, o.breaker, o.logger),
	}
	if o.perMinute > 0 {
		t.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(o.perMinute)), o.perMinute)
	}
	return t
}

// do performs exactly one request. Transport failures come back as
// classified *weather.FetchError values; any HTTP response is returned to
// the caller, who owns the body.
func (t *transport) do(ctx context.Context, city string, req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, weather.NewFetchError(weather.ErrUnexpected, city, err)
			}
			fe := weather.NewFetchError(weather.ErrNetworkUnavailable, city, err)
			fe.Detail = "request quota exhausted"
			return nil, fe
		}
	}

	req = req.WithContext(ctx)

	result, err := t.circuit.Execute(func() (interface{}, error) {
		resp, execErr := t.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		return resp, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			fe := weather.NewFetchError(weather.ErrNetworkUnavailable, city, err)
			fe.Detail = "provider temporarily unreachable"
			return nil, fe
		case errors.Is(ctx.Err(), context.Canceled):
			return nil, weather.NewFetchError(weather.ErrUnexpected, city, err)
		default:
			return nil, weather.NewFetchError(weather.ErrNetworkUnavailable, city, err)
		}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, weather.NewFetchError(weather.ErrUnexpected, city, fmt.Errorf("unexpected result type %T from circuit breaker", result))
	}
	return resp, nil
}

// statusError maps a non-2xx status onto the fetch error taxonomy.
func statusError(city string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return &weather.FetchError{Kind: weather.ErrInvalidCredential, City: city, StatusCode: code}
	case code == http.StatusNotFound:
		return &weather.FetchError{Kind: weather.ErrCityNotFound, City: city, StatusCode: code}
	default:
		return &weather.FetchError{Kind: weather.ErrProvider, City: city, StatusCode: code}
	}
}

// decodeBody decodes a JSON body into v, classifying failures as unexpected.
func decodeBody(city string, body io.Reader, v any) error {
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(v); err != nil {
		fe := weather.NewFetchError(weather.ErrUnexpected, city, err)
		fe.Detail = "malformed response body"
		return fe
	}
	return nil
}

// missingFields reports absent required fields as an unexpected error.
func missingFields(city string, missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	fe := weather.NewFetchError(weather.ErrUnexpected, city, nil)
	fe.Detail = fmt.Sprintf("response missing %v", missing)
	return fe
}

// drain discards the rest of a body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}
