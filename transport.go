package gcpro

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerAPIVersion     = "GoCardless-Version"
	headerRequestID      = "X-Request-Id"
)

// RetryPolicy configures exponential backoff between attempts of a request.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy retries up to 3 times starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
	}
}

func (p RetryPolicy) backOff(ctx context.Context, maxRetries int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = lo.Ternary(p.InitialInterval > 0, p.InitialInterval, backoff.DefaultInitialInterval)
	b.MaxInterval = lo.Ternary(p.MaxInterval > 0, p.MaxInterval, backoff.DefaultMaxInterval)
	b.Multiplier = lo.Ternary(p.Multiplier > 0, p.Multiplier, backoff.DefaultMultiplier)
	// Bounded by the number of retries only.
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
}

// RequestOption customises a single API call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	idempotencyKey string
	headers        http.Header
	maxRetries     *int
}

// WithIdempotencyKey sets the Idempotency-Key of a create request instead of
// a generated one.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *requestOptions) {
		o.idempotencyKey = key
	}
}

// WithRequestHeader adds a header to a single call.
func WithRequestHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Set(key, value)
	}
}

// WithRequestRetries overrides the number of retries of a single call.
func WithRequestRetries(n int) RequestOption {
	return func(o *requestOptions) {
		o.maxRetries = lo.ToPtr(max(n, 0))
	}
}

// request describes one API call. Create-type calls are idempotent: they
// carry an Idempotency-Key that stays the same across retries.
type request struct {
	method     string
	path       string
	query      any
	body       any
	idempotent bool
	opts       []RequestOption
}

// transportError is a failure to get any HTTP response.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		var te *transportError
		// A per-attempt timeout is retryable, a cancelled caller is not.
		return errors.As(err, &te) && errors.Is(err, context.DeadlineExceeded)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}

	var te *transportError
	return errors.As(err, &te)
}

// execute performs r, retrying transient failures, and decodes the JSON
// response into out.
func (c *Client) execute(ctx context.Context, r *request, out any) error {
	ro := requestOptions{headers: make(http.Header)}
	for _, opt := range r.opts {
		opt(&ro)
	}

	u, err := c.buildURL(r.path, r.query)
	if err != nil {
		return err
	}

	var payload []byte
	if r.body != nil {
		payload, err = json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("cannot encode request body: %w", err)
		}
	}

	headers := c.requestHeaders(ro.headers)
	if r.idempotent {
		headers.Set(headerIdempotencyKey, lo.Ternary(ro.idempotencyKey != "", ro.idempotencyKey, uuid.NewString()))
	}

	// Retrying a non-idempotent POST could perform the action twice.
	canRetry := r.method != http.MethodPost || r.idempotent
	maxRetries := lo.FromPtr(lo.Ternary(ro.maxRetries != nil, ro.maxRetries, &c.retry.MaxRetries))

	logger := c.logger.With(zap.String("method", r.method), zap.String("path", r.path))
	attempt := 0

	operation := func() error {
		attempt++

		err := c.attempt(ctx, logger, r.method, u, payload, headers, out)
		if err == nil {
			return nil
		}
		if !canRetry || !isRetryable(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("retrying request",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err = backoff.RetryNotify(operation, c.retry.backOff(ctx, maxRetries), notify)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}

	return nil
}

func (c *Client) attempt(
	ctx context.Context,
	logger *zap.Logger,
	method, u string,
	payload []byte,
	headers http.Header,
	out any,
) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if c.breaker == nil {
		return c.roundTrip(ctx, logger, method, u, payload, headers, out)
	}

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, logger, method, u, payload, headers, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logger.Warn("circuit breaker is open", zap.String("breaker", c.breaker.Name()))
	}

	return err
}

func (c *Client) roundTrip(
	ctx context.Context,
	logger *zap.Logger,
	method, u string,
	payload []byte,
	headers http.Header,
	out any,
) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("cannot create request: %w", err)
	}
	req.Header = headers.Clone()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("request failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{err: fmt.Errorf("cannot read response body: %w", err)}
	}

	logger.Debug("request done",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", resp.Header.Get(headerRequestID)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err = json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}

	return nil
}

func decodeAPIError(resp *http.Response, raw []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error == nil {
		env.Error = &APIError{
			Message: strings.TrimSpace(lo.Ternary(len(raw) > 0 && len(raw) < 512, string(raw), http.StatusText(resp.StatusCode))),
			Type:    lo.Ternary(resp.StatusCode >= http.StatusInternalServerError, ErrorTypeGoCardless, ErrorTypeInvalidAPIUsage),
		}
	}

	env.Error.StatusCode = resp.StatusCode
	if env.Error.Code == 0 {
		env.Error.Code = resp.StatusCode
	}
	if env.Error.RequestID == "" {
		env.Error.RequestID = resp.Header.Get(headerRequestID)
	}

	return env.Error
}

func (c *Client) requestHeaders(extra http.Header) http.Header {
	h := c.headers.Clone()
	h.Set("Authorization", "Bearer "+c.accessToken)
	h.Set(headerAPIVersion, c.apiVersion)
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", c.userAgent)

	for k, v := range extra {
		h[k] = v
	}

	return h
}

func (c *Client) buildURL(path string, params any) (string, error) {
	u := c.endpoint + path
	if params == nil {
		return u, nil
	}

	values, err := query.Values(params)
	if err != nil {
		return "", fmt.Errorf("cannot encode query parameters: %w", err)
	}

	if encoded := values.Encode(); encoded != "" {
		u += "?" + encoded
	}

	return u, nil
}

// expandPath fills the ":name" segments of template with params, in order.
// Every value is path-escaped; an empty value is a misconfigured request.
func expandPath(template string, params ...string) (string, error) {
	segments := strings.Split(template, "/")
	next := 0

	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") {
			continue
		}
		if next >= len(params) || params[next] == "" {
			return "", missingParam(strings.TrimPrefix(segment, ":"))
		}

		segments[i] = url.PathEscape(params[next])
		next++
	}

	return strings.Join(segments, "/"), nil
}
