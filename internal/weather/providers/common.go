package providers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
)

// BreakerConfig controls when the circuit around a provider opens.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker once reached.
	ConsecutiveFailures uint32
	// Interval clears the failure counts while the breaker is closed.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// DefaultBreakerConfig is used when a provider is built without an explicit config.
var DefaultBreakerConfig = BreakerConfig{
	ConsecutiveFailures: 5,
	Interval:            1 * time.Minute,
	Timeout:             2 * time.Minute,
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// statusError is returned for non-2xx responses. reason is taken from the
// API's JSON error body when present.
type statusError struct {
	code   int
	reason string
}

func (e *statusError) Error() string {
	msg := fmt.Sprintf("HTTP %d %s", e.code, http.StatusText(e.code))
	if e.reason != "" {
		msg += ": " + e.reason
	}
	return msg
}

func (e *statusError) Unwrap() error {
	switch {
	case e.code == http.StatusTooManyRequests:
		return errRateLimited
	case e.code >= 500:
		return errServerError
	default:
		return errUnexpected
	}
}

func newCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultBreakerConfig.ConsecutiveFailures
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
}

// doRequest executes a single attempt of the request through the circuit breaker.
// There is no retry: a failed call is reported to the caller as is.
func doRequest(client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			defer resp.Body.Close()
			return nil, &statusError{code: resp.StatusCode, reason: readErrorReason(resp.Body)}
		}

		return resp, nil
	})
	if err != nil {
		// If circuit is open, report that instead of the last transport error.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// readErrorReason extracts {"reason": "..."} from an error body, if any.
func readErrorReason(body io.Reader) string {
	var payload struct {
		Reason string `json:"reason"`
	}
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Reason
}
