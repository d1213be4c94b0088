package gcpro

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the file/environment representation of client options.
//
// Example config.yaml:
//
//	access_token: sandbox_xxx
//	environment: sandbox
//	timeout: 30s
//	max_retries: 3
//	rate_limit:
//	  rps: 5
//	  burst: 10
//	circuit_breaker: true
//
// Every key may be overridden by an environment variable with the GCPRO_
// prefix, e.g. GCPRO_ACCESS_TOKEN or GCPRO_RATE_LIMIT_RPS.
type Config struct {
	AccessToken    string
	Environment    Environment
	Endpoint       string
	Timeout        time.Duration
	MaxRetries     int
	RateLimit      float64
	RateBurst      int
	CircuitBreaker bool
}

// LoadConfig reads the config file at path, if any, and applies environment
// overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("gcpro")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", string(EnvironmentSandbox))
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("max_retries", DefaultRetryPolicy().MaxRetries)
	v.SetDefault("rate_limit.rps", 0)
	v.SetDefault("rate_limit.burst", 1)
	v.SetDefault("circuit_breaker", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		AccessToken:    v.GetString("access_token"),
		Environment:    Environment(v.GetString("environment")),
		Endpoint:       v.GetString("endpoint"),
		Timeout:        v.GetDuration("timeout"),
		MaxRetries:     v.GetInt("max_retries"),
		RateLimit:      v.GetFloat64("rate_limit.rps"),
		RateBurst:      v.GetInt("rate_limit.burst"),
		CircuitBreaker: v.GetBool("circuit_breaker"),
	}

	return cfg, nil
}

// Options converts the config into client options. An explicit endpoint
// wins over the environment.
func (cfg *Config) Options() []Option {
	opts := []Option{
		WithEnvironment(cfg.Environment),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
	}

	if cfg.Endpoint != "" {
		opts = append(opts, WithEndpoint(cfg.Endpoint))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	if cfg.CircuitBreaker {
		opts = append(opts, WithCircuitBreaker(DefaultCircuitBreakerSettings()))
	}

	return opts
}

// NewFromConfig creates a client from cfg. extra options are applied last.
func NewFromConfig(cfg *Config, extra ...Option) (*Client, error) {
	return New(cfg.AccessToken, append(cfg.Options(), extra...)...)
}
