package gcpro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recorded is one request seen by the test server.
type recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

type testServer struct {
	mu       sync.Mutex
	requests []recorded
}

func (s *testServer) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
}

func (s *testServer) all() []recorded {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]recorded(nil), s.requests...)
}

func fastRetries(n int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:      n,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		Multiplier:      1,
	}
}

// newTestClient starts a server whose handler sees the n-th (0-based)
// request of the test.
func newTestClient(
	t *testing.T,
	handler func(w http.ResponseWriter, r *http.Request, n int),
	opts ...Option,
) (*Client, *testServer) {
	t.Helper()

	ts := new(testServer)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.record(r)
		handler(w, r, len(ts.all())-1)
	}))
	t.Cleanup(srv.Close)

	opts = append([]Option{WithEndpoint(srv.URL), WithRetryPolicy(fastRetries(2))}, opts...)

	client, err := New("test_token", opts...)
	require.NoError(t, err)

	return client, ts
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const (
	_mandateBody  = `{"mandates":{"id":"MD1","status":"pending_submission","links":{"customer_bank_account":"BA1"}}}`
	_conflictBody = `{"error":{"message":"A resource has already been created with this idempotency key",` +
		`"type":"invalid_state","code":409,"request_id":"RQ9",` +
		`"errors":[{"reason":"idempotent_creation_conflict","message":"already created",` +
		`"links":{"conflicting_resource_id":"MD1"}}]}}`
)

func Test_New(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		opts         []Option
		wantErr      bool
		wantEndpoint string
	}{
		{"defaults to sandbox", "tok", nil, false, SandboxEndpoint},
		{"live", "tok", []Option{WithEnvironment(EnvironmentLive)}, false, LiveEndpoint},
		{"endpoint trims slash", "tok", []Option{WithEndpoint("http://localhost:8080/")}, false, "http://localhost:8080"},
		{"endpoint wins when last", "tok", []Option{WithEnvironment(EnvironmentLive), WithEndpoint("http://x")}, false, "http://x"},
		{"missing token", "", nil, true, ""},
		{"unknown environment", "tok", []Option{WithEnvironment("staging")}, true, ""},
		{"endpoint without scheme", "tok", []Option{WithEndpoint("localhost")}, true, ""},
		{"negative timeout", "tok", []Option{WithTimeout(-time.Second)}, true, ""},
		{"negative retries", "tok", []Option{WithMaxRetries(-1)}, true, ""},
		{"zero rate", "tok", []Option{WithRateLimit(0, 1)}, true, ""},
		{"nil http client", "tok", []Option{WithHTTPClient(nil)}, true, ""},
		{"empty api version", "tok", []Option{WithAPIVersion("")}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.token, tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantEndpoint, c.Endpoint())
			assert.NotNil(t, c.Mandates)
			assert.NotNil(t, c.VerificationDetails)
		})
	}
}

func Test_New_MissingToken(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrMisconfiguredRequest)
}

func Test_Client_Headers(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusOK, _mandateBody)
	}, WithHeader("X-Extra", "1"), WithUserAgent("custom/2"))

	_, err := client.Mandates.Get(context.Background(), "MD1", WithRequestHeader("X-Call", "yes"))
	require.NoError(t, err)

	reqs := ts.all()
	require.Len(t, reqs, 1)

	h := reqs[0].Header
	assert.Equal(t, "Bearer test_token", h.Get("Authorization"))
	assert.Equal(t, APIVersion, h.Get("GoCardless-Version"))
	assert.Equal(t, "custom/2", h.Get("User-Agent"))
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "1", h.Get("X-Extra"))
	assert.Equal(t, "yes", h.Get("X-Call"))
	assert.Empty(t, h.Get("Idempotency-Key"), "reads carry no idempotency key")
	assert.Equal(t, "/mandates/MD1", reqs[0].Path)
}

func Test_Client_Create_IdempotencyKeyStableAcrossRetries(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, n int) {
		if n == 0 {
			respond(w, http.StatusInternalServerError, `{"error":{"message":"oops","type":"gocardless","code":500}}`)
			return
		}
		respond(w, http.StatusCreated, _mandateBody)
	})

	m, err := client.Mandates.Create(context.Background(), MandateCreateParams{
		Links: MandateLinks{CustomerBankAccount: "BA1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "MD1", m.ID)

	reqs := ts.all()
	require.Len(t, reqs, 2)

	key := reqs[0].Header.Get("Idempotency-Key")
	assert.NotEmpty(t, key)
	assert.Equal(t, key, reqs[1].Header.Get("Idempotency-Key"))

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &body))
	assert.Contains(t, body, "mandates")
}

func Test_Client_Create_ExplicitIdempotencyKey(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusCreated, _mandateBody)
	})

	_, err := client.Mandates.Create(context.Background(), MandateCreateParams{
		Links: MandateLinks{CustomerBankAccount: "BA1"},
	}, WithIdempotencyKey("my-key"))
	require.NoError(t, err)

	assert.Equal(t, "my-key", ts.all()[0].Header.Get("Idempotency-Key"))
}

func Test_Client_Retries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		call      func(*Client) error
		wantCalls int
	}{
		{
			name:   "get retried on server error",
			status: http.StatusInternalServerError,
			call: func(c *Client) error {
				_, err := c.Mandates.Get(context.Background(), "MD1")
				return err
			},
			wantCalls: 3,
		},
		{
			name:   "get retried on rate limit",
			status: http.StatusTooManyRequests,
			call: func(c *Client) error {
				_, err := c.Mandates.Get(context.Background(), "MD1")
				return err
			},
			wantCalls: 3,
		},
		{
			name:   "validation error not retried",
			status: http.StatusUnprocessableEntity,
			call: func(c *Client) error {
				_, err := c.Mandates.Get(context.Background(), "MD1")
				return err
			},
			wantCalls: 1,
		},
		{
			name:   "action not retried",
			status: http.StatusInternalServerError,
			call: func(c *Client) error {
				_, err := c.Mandates.Cancel(context.Background(), "MD1", MandateCancelParams{})
				return err
			},
			wantCalls: 1,
		},
		{
			name:   "per call retries",
			status: http.StatusInternalServerError,
			call: func(c *Client) error {
				_, err := c.Mandates.Get(context.Background(), "MD1", WithRequestRetries(0))
				return err
			},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
				respond(w, tt.status, `{"error":{"message":"nope","type":"gocardless"}}`)
			})

			err := tt.call(client)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Len(t, ts.all(), tt.wantCalls)
		})
	}
}

func Test_Client_CancelledContextNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		cancel()
		respond(w, http.StatusInternalServerError, `{}`)
	})

	_, err := client.Mandates.Get(ctx, "MD1")
	assert.Error(t, err)
	assert.Len(t, ts.all(), 1)
}

func Test_Client_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusUnprocessableEntity, `{"error":{
			"message":"Mandate is not active",
			"type":"invalid_state",
			"code":422,
			"request_id":"RQ1",
			"documentation_url":"https://developer.gocardless.com/api-reference#mandate_is_inactive",
			"errors":[{"reason":"mandate_is_inactive","message":"Mandate is not active"}]
		}}`)
	})

	_, err := client.Payments.Get(context.Background(), "PM1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, ErrorTypeInvalidState, apiErr.Type)
	assert.Equal(t, 422, apiErr.Code)
	assert.Equal(t, "RQ1", apiErr.RequestID)
	require.Len(t, apiErr.Errors, 1)
	assert.Equal(t, "mandate_is_inactive", apiErr.Errors[0].Reason)
	assert.False(t, apiErr.Retryable())
	assert.NotErrorIs(t, err, ErrIdempotentCreationConflict)

	assert.Equal(t, "gcpro: 422 invalid_state: Mandate is not active; mandate_is_inactive (request RQ1)", apiErr.Error())
	assert.Equal(t, "GET /payments/PM1: "+apiErr.Error(), err.Error())
}

func Test_Client_APIError_NonJSONBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		w.Header().Set("X-Request-Id", "RQ2")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "bad gateway\n")
	}, WithMaxRetries(0))

	_, err := client.Payouts.Get(context.Background(), "PO1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrorTypeGoCardless, apiErr.Type)
	assert.Equal(t, "bad gateway", apiErr.Message)
	assert.Equal(t, http.StatusBadGateway, apiErr.Code)
	assert.Equal(t, "RQ2", apiErr.RequestID)
	assert.True(t, apiErr.Retryable())
}

func Test_APIError_FieldErrors(t *testing.T) {
	err := &APIError{
		StatusCode: 422,
		Type:       ErrorTypeValidationFailed,
		Message:    "Validation failed",
		Errors: []FieldError{
			{Field: "amount", Message: "must be positive"},
			{Field: "currency", Message: "is invalid"},
		},
	}

	assert.Equal(t, "gcpro: 422 validation_failed: Validation failed; amount must be positive; currency is invalid", err.Error())
}

func Test_Client_Create_ConflictResolution(t *testing.T) {
	tests := []struct {
		name      string
		resolve   bool
		wantID    string
		wantErr   error
		wantCalls []string
	}{
		{
			name:      "fetches existing resource",
			resolve:   true,
			wantID:    "MD1",
			wantCalls: []string{"POST /mandates", "GET /mandates/MD1"},
		},
		{
			name:      "returns conflict when disabled",
			resolve:   false,
			wantErr:   ErrIdempotentCreationConflict,
			wantCalls: []string{"POST /mandates"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, ts := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ int) {
				if r.Method == http.MethodPost {
					respond(w, http.StatusConflict, _conflictBody)
					return
				}
				respond(w, http.StatusOK, _mandateBody)
			}, WithConflictResolution(tt.resolve))

			m, err := client.Mandates.Create(context.Background(), MandateCreateParams{
				Links: MandateLinks{CustomerBankAccount: "BA1"},
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, m.ID)
			}

			var calls []string
			for _, r := range ts.all() {
				calls = append(calls, r.Method+" "+r.Path)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func Test_Client_VerificationDetailConflictIsError(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusConflict, _conflictBody)
	})

	_, err := client.VerificationDetails.Create(context.Background(), VerificationDetailCreateParams{
		Name:  "Acme",
		Links: VerificationDetailLinks{Creditor: "CR1"},
	})

	assert.ErrorIs(t, err, ErrIdempotentCreationConflict)
	assert.Len(t, ts.all(), 1)
}

func Test_Client_MisconfiguredRequests(t *testing.T) {
	tests := []struct {
		name string
		call func(*Client) error
	}{
		{"get without identity", func(c *Client) error {
			_, err := c.Mandates.Get(context.Background(), "")
			return err
		}},
		{"update without identity", func(c *Client) error {
			_, err := c.Customers.Update(context.Background(), "", CustomerUpdateParams{})
			return err
		}},
		{"action without identity", func(c *Client) error {
			_, err := c.Payments.Cancel(context.Background(), "", PaymentCancelParams{})
			return err
		}},
		{"remove without identity", func(c *Client) error {
			_, err := c.Customers.Remove(context.Background(), "")
			return err
		}},
		{"mandate without bank account", func(c *Client) error {
			_, err := c.Mandates.Create(context.Background(), MandateCreateParams{})
			return err
		}},
		{"block without type", func(c *Client) error {
			_, err := c.Blocks.Create(context.Background(), BlockCreateParams{ResourceReference: "a@b.c"})
			return err
		}},
		{"block by ref without value", func(c *Client) error {
			_, err := c.Blocks.BlockByRef(context.Background(), BlockByRefParams{ReferenceType: BlockReferenceCustomer})
			return err
		}},
		{"verification details without creditor", func(c *Client) error {
			_, err := c.VerificationDetails.List(context.Background(), VerificationDetailListParams{})
			return err
		}},
		{"verification details iteration without creditor", func(c *Client) error {
			for _, err := range c.VerificationDetails.All(context.Background(), VerificationDetailListParams{}) {
				return err
			}
			return nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
				respond(w, http.StatusOK, `{}`)
			})

			assert.ErrorIs(t, tt.call(client), ErrMisconfiguredRequest)
			assert.Empty(t, ts.all(), "no request is sent")
		})
	}
}

func Test_Client_ListQuery(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusOK, `{"mandates":[],"meta":{"cursors":{"before":null,"after":null},"limit":10}}`)
	})

	res, err := client.Mandates.List(context.Background(), MandateListParams{
		CursorParams: CursorParams{Limit: 10, After: "MD0"},
		CreatedAt:    &TimeFilter{GT: "2024-01-01T00:00:00Z"},
		Status:       []MandateStatus{MandateStatusPendingSubmission, MandateStatusActive},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Mandates)
	assert.Equal(t, 10, res.Meta.Limit)
	assert.Nil(t, res.Meta.Cursors.After)

	reqs := ts.all()
	require.Len(t, reqs, 1)
	assert.Equal(t,
		"after=MD0&created_at%5Bgt%5D=2024-01-01T00%3A00%3A00Z&limit=10&status=pending_submission%2Cactive",
		reqs[0].Query,
	)
}

func Test_Client_All_SendsCursors(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		if r.URL.Query().Get("after") == "" {
			respond(w, http.StatusOK, `{"customers":[{"id":"CU1"},{"id":"CU2"}],"meta":{"cursors":{"after":"CU2"},"limit":2}}`)
			return
		}
		respond(w, http.StatusOK, `{"customers":[{"id":"CU3"}],"meta":{"cursors":{"before":"CU3"},"limit":2}}`)
	})

	var ids []string
	for c, err := range client.Customers.All(context.Background(), CustomerListParams{CursorParams: CursorParams{Limit: 2}}) {
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	assert.Equal(t, []string{"CU1", "CU2", "CU3"}, ids)

	reqs := ts.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, "limit=2", reqs[0].Query)
	assert.Equal(t, "after=CU2&limit=2", reqs[1].Query)
}

// customerPagesHandler serves five one-item pages of mandates per customer
// filter: <customer>-0 through <customer>-4.
func customerPagesHandler(w http.ResponseWriter, r *http.Request, _ int) {
	q := r.URL.Query()
	customer := q.Get("customer")

	n := 0
	if after := q.Get("after"); after != "" {
		i, err := strconv.Atoi(strings.TrimPrefix(after, customer+"-"))
		if err != nil {
			respond(w, http.StatusUnprocessableEntity, `{"error":{"type":"validation_failed","code":422}}`)
			return
		}
		n = i + 1
	}

	id := fmt.Sprintf("%s-%d", customer, n)
	cursors := fmt.Sprintf(`{"after":%q}`, id)
	if n == 4 {
		cursors = `{}`
	}
	respond(w, http.StatusOK, fmt.Sprintf(`{"mandates":[{"id":%q}],"meta":{"cursors":%s,"limit":1}}`, id, cursors))
}

func Test_Client_All_ConcurrentIterations(t *testing.T) {
	client, _ := newTestClient(t, customerPagesHandler)

	const workers = 8

	got := make([][]string, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			params := MandateListParams{Customer: fmt.Sprintf("C%d", i), CursorParams: CursorParams{Limit: 1}}
			for m, err := range client.Mandates.All(context.Background(), params) {
				if !assert.NoError(t, err) {
					return
				}
				got[i] = append(got[i], m.ID)
			}
		}()
	}
	wg.Wait()

	for i := range workers {
		c := fmt.Sprintf("C%d", i)
		assert.Equal(t, []string{c + "-0", c + "-1", c + "-2", c + "-3", c + "-4"}, got[i], c)
	}
}

func Test_Client_All_SharedSequence(t *testing.T) {
	client, _ := newTestClient(t, customerPagesHandler)

	seq := client.Mandates.All(context.Background(), MandateListParams{Customer: "C7"})

	const workers = 4

	got := make([][]string, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for m, err := range seq {
				if !assert.NoError(t, err) {
					return
				}
				got[i] = append(got[i], m.ID)
			}
		}()
	}
	wg.Wait()

	for i := range workers {
		assert.Equal(t, []string{"C7-0", "C7-1", "C7-2", "C7-3", "C7-4"}, got[i])
	}
}

func Test_Client_Customers_Remove(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusOK, `{"customers":{"id":"CU1"}}`)
	})

	c, err := client.Customers.Remove(context.Background(), "CU1")
	require.NoError(t, err)
	assert.Equal(t, "CU1", c.ID)

	reqs := ts.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Equal(t, "/customers/CU1", reqs[0].Path)
	assert.JSONEq(t, `{"data":{}}`, reqs[0].Body)
}

func Test_Client_Blocks_BlockByRef(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusCreated, `{"blocks":[{"id":"BLC1","active":true},{"id":"BLC2","active":true}]}`)
	})

	blocks, err := client.Blocks.BlockByRef(context.Background(), BlockByRefParams{
		ReasonType:     BlockReasonNoIntentToPay,
		ReferenceType:  BlockReferenceCustomer,
		ReferenceValue: "CU1",
	})
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "BLC2", blocks[1].ID)

	reqs := ts.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/blocks/block_by_ref", reqs[0].Path)
	assert.JSONEq(t,
		`{"data":{"reason_type":"no_intent_to_pay","reference_type":"customer","reference_value":"CU1"}}`,
		reqs[0].Body,
	)
}

func Test_Client_Action_WrapsData(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusOK, `{"mandates":{"id":"MD1","status":"cancelled"}}`)
	})

	m, err := client.Mandates.Cancel(context.Background(), "MD1", MandateCancelParams{Metadata: Metadata{"reason": "test"}})
	require.NoError(t, err)
	assert.Equal(t, MandateStatusCancelled, m.Status)

	reqs := ts.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/mandates/MD1/actions/cancel", reqs[0].Path)
	assert.JSONEq(t, `{"data":{"metadata":{"reason":"test"}}}`, reqs[0].Body)
}

func Test_Client_MissingEnvelopeKey(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusOK, `{"payments":{"id":"PM1"}}`)
	})

	_, err := client.Mandates.Get(context.Background(), "MD1")
	assert.ErrorContains(t, err, `response has no "mandates"`)
}

func Test_Client_CircuitBreaker(t *testing.T) {
	st := DefaultCircuitBreakerSettings()
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 1
	}

	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusServiceUnavailable, `{}`)
	}, WithMaxRetries(0), WithCircuitBreaker(st))

	_, err := client.Mandates.Get(context.Background(), "MD1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)

	_, err = client.Mandates.Get(context.Background(), "MD1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, ts.all(), 1)
}

func Test_Client_CircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	st := DefaultCircuitBreakerSettings()
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 1
	}

	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusNotFound, `{}`)
	}, WithCircuitBreaker(st))

	for range 3 {
		_, err := client.Mandates.Get(context.Background(), "MD1")
		assert.False(t, errors.Is(err, gobreaker.ErrOpenState))
	}

	assert.Len(t, ts.all(), 3)
}

func Test_Client_RateLimit(t *testing.T) {
	client, ts := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		respond(w, http.StatusOK, _mandateBody)
	}, WithRateLimit(1000, 1))

	for range 3 {
		_, err := client.Mandates.Get(context.Background(), "MD1")
		require.NoError(t, err)
	}

	assert.Len(t, ts.all(), 3)
}

func Test_Client_LogsRetries(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, n int) {
		if n == 0 {
			respond(w, http.StatusServiceUnavailable, `{}`)
			return
		}
		respond(w, http.StatusOK, _mandateBody)
	}, WithLogger(zap.New(core)))

	_, err := client.Mandates.Get(context.Background(), "MD1")
	require.NoError(t, err)

	entries := logs.FilterMessage("retrying request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/mandates/MD1", entries[0].ContextMap()["path"])
}

func Test_ExpandPath(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   []string
		want     string
		wantErr  bool
	}{
		{"plain", "/mandates/:identity", []string{"MD1"}, "/mandates/MD1", false},
		{"escaped", "/mandates/:identity", []string{"a/b c"}, "/mandates/a%2Fb%20c", false},
		{"action", "/payments/:identity/actions/retry", []string{"PM1"}, "/payments/PM1/actions/retry", false},
		{"no params", "/blocks/block_by_ref", nil, "/blocks/block_by_ref", false},
		{"empty", "/mandates/:identity", []string{""}, "", true},
		{"missing", "/mandates/:identity", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPath(tt.template, tt.params...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMisconfiguredRequest)
				assert.ErrorContains(t, err, "identity is required")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
