package gcpro

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	LiveEndpoint    = "https://api.gocardless.com"
	SandboxEndpoint = "https://api-sandbox.gocardless.com"

	// APIVersion is sent in the GoCardless-Version header.
	APIVersion = "2015-07-06"

	userAgent      = "gcpro-go/1.0"
	defaultTimeout = 30 * time.Second
)

// Client executes requests against the API. It is safe for concurrent use
// and is shared by all resource services.
type Client struct {
	endpoint         string
	accessToken      string
	apiVersion       string
	userAgent        string
	headers          http.Header
	httpClient       *http.Client
	timeout          time.Duration
	logger           *zap.Logger
	retry            RetryPolicy
	limiter          *rate.Limiter
	breaker          *gobreaker.CircuitBreaker
	resolveConflicts bool

	BillingRequests     *BillingRequestService
	Blocks              *BlockService
	Creditors           *CreditorService
	Customers           *CustomerService
	InstalmentSchedules *InstalmentScheduleService
	Mandates            *MandateService
	OutboundPayments    *OutboundPaymentService
	Payments            *PaymentService
	Payouts             *PayoutService
	VerificationDetails *VerificationDetailService
}

// New creates a client authenticated with the given access token. Without
// options the client talks to the sandbox environment.
func New(accessToken string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, missingParam("access token")
	}

	c := &Client{
		endpoint:         SandboxEndpoint,
		accessToken:      accessToken,
		apiVersion:       APIVersion,
		userAgent:        userAgent,
		headers:          make(http.Header),
		httpClient:       &http.Client{},
		timeout:          defaultTimeout,
		logger:           zap.NewNop(),
		retry:            DefaultRetryPolicy(),
		resolveConflicts: true,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("cannot apply client option: %w", err)
		}
	}

	c.BillingRequests = &BillingRequestService{client: c}
	c.Blocks = &BlockService{client: c}
	c.Creditors = &CreditorService{client: c}
	c.Customers = &CustomerService{client: c}
	c.InstalmentSchedules = &InstalmentScheduleService{client: c}
	c.Mandates = &MandateService{client: c}
	c.OutboundPayments = &OutboundPaymentService{client: c}
	c.Payments = &PaymentService{client: c}
	c.Payouts = &PayoutService{client: c}
	c.VerificationDetails = &VerificationDetailService{client: c}

	return c, nil
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}
