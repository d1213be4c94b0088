package gcpro

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Option configures a Client.
type Option func(*Client) error

// Environment selects one of the public API endpoints.
type Environment string

const (
	EnvironmentLive    Environment = "live"
	EnvironmentSandbox Environment = "sandbox"
)

// WithEnvironment points the client at the live or sandbox API.
func WithEnvironment(env Environment) Option {
	return func(c *Client) error {
		switch env {
		case EnvironmentLive:
			c.endpoint = LiveEndpoint
		case EnvironmentSandbox:
			c.endpoint = SandboxEndpoint
		default:
			return fmt.Errorf("unknown environment '%s'", env)
		}

		return nil
	}
}

// WithEndpoint overrides the base URL, e.g. to talk to a local sandbox.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid endpoint '%s': scheme and host are required", endpoint)
		}

		c.endpoint = strings.TrimRight(endpoint, "/")

		return nil
	}
}

// WithHTTPClient replaces the HTTP client used for every request.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return errors.New("http client is nil")
		}

		c.httpClient = httpClient

		return nil
	}
}

// WithTimeout sets the timeout of a single HTTP attempt. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return fmt.Errorf("negative timeout %s", timeout)
		}

		c.timeout = timeout

		return nil
	}
}

// WithLogger sets the logger. Requests are logged at debug level, retries
// at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = zap.NewNop()
		}

		c.logger = logger

		return nil
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) error {
		if policy.MaxRetries < 0 {
			return fmt.Errorf("negative max retries %d", policy.MaxRetries)
		}

		c.retry = policy

		return nil
	}
}

// WithMaxRetries keeps the default backoff and changes the number of retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("negative max retries %d", n)
		}

		c.retry.MaxRetries = n

		return nil
	}
}

// WithRateLimit throttles outgoing attempts to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps <= 0 {
			return fmt.Errorf("rate limit must be positive, got %v", rps)
		}
		if burst <= 0 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)

		return nil
	}
}

// WithCircuitBreaker guards attempts with a circuit breaker. Only server
// errors and network failures count as failures unless st.IsSuccessful is
// set.
func WithCircuitBreaker(st gobreaker.Settings) Option {
	return func(c *Client) error {
		if st.Name == "" {
			st.Name = "gcpro"
		}
		if st.IsSuccessful == nil {
			st.IsSuccessful = func(err error) bool {
				return err == nil || !isRetryable(err)
			}
		}

		c.breaker = gobreaker.NewCircuitBreaker(st)

		return nil
	}
}

// DefaultCircuitBreakerSettings trips after 60% failures of at least 5
// requests and probes again after 30 seconds.
func DefaultCircuitBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "gcpro",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) error {
		c.headers.Set(key, value)
		return nil
	}
}

// WithAPIVersion overrides the GoCardless-Version header.
func WithAPIVersion(version string) Option {
	return func(c *Client) error {
		if version == "" {
			return errors.New("api version is empty")
		}

		c.apiVersion = version

		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithConflictResolution controls whether Create methods return the
// existing resource when the API reports an idempotent creation conflict.
// Enabled by default.
func WithConflictResolution(enabled bool) Option {
	return func(c *Client) error {
		c.resolveConflicts = enabled
		return nil
	}
}
