package gcpro

import (
	"context"
	"iter"
	"net/http"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPendingCustomerApproval PaymentStatus = "pending_customer_approval"
	PaymentStatusPendingSubmission       PaymentStatus = "pending_submission"
	PaymentStatusSubmitted               PaymentStatus = "submitted"
	PaymentStatusConfirmed               PaymentStatus = "confirmed"
	PaymentStatusPaidOut                 PaymentStatus = "paid_out"
	PaymentStatusCancelled               PaymentStatus = "cancelled"
	PaymentStatusCustomerApprovalDenied  PaymentStatus = "customer_approval_denied"
	PaymentStatusFailed                  PaymentStatus = "failed"
	PaymentStatusChargedBack             PaymentStatus = "charged_back"
)

// Payment is a single collection from a customer's bank account. Amounts
// are in the lowest denomination of the currency.
type Payment struct {
	ID              string        `json:"id"`
	CreatedAt       time.Time     `json:"created_at"`
	Amount          int           `json:"amount"`
	AmountRefunded  int           `json:"amount_refunded"`
	ChargeDate      string        `json:"charge_date,omitempty"`
	Currency        string        `json:"currency"`
	Description     string        `json:"description,omitempty"`
	Reference       string        `json:"reference,omitempty"`
	Status          PaymentStatus `json:"status"`
	RetryIfPossible bool          `json:"retry_if_possible"`
	Metadata        Metadata      `json:"metadata,omitempty"`
	Links           PaymentLinks  `json:"links"`
}

type PaymentLinks struct {
	Creditor           string `json:"creditor,omitempty"`
	Mandate            string `json:"mandate,omitempty"`
	Payout             string `json:"payout,omitempty"`
	Subscription       string `json:"subscription,omitempty"`
	InstalmentSchedule string `json:"instalment_schedule,omitempty"`
}

type PaymentCreateParams struct {
	Amount          int      `json:"amount"`
	Currency        string   `json:"currency"`
	ChargeDate      string   `json:"charge_date,omitempty"`
	Description     string   `json:"description,omitempty"`
	Reference       string   `json:"reference,omitempty"`
	RetryIfPossible bool     `json:"retry_if_possible,omitempty"`
	Metadata        Metadata `json:"metadata,omitempty"`
	Links           struct {
		Mandate string `json:"mandate"`
	} `json:"links"`
}

type PaymentUpdateParams struct {
	RetryIfPossible *bool    `json:"retry_if_possible,omitempty"`
	Metadata        Metadata `json:"metadata,omitempty"`
}

type PaymentCancelParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type PaymentRetryParams struct {
	ChargeDate string   `json:"charge_date,omitempty"`
	Metadata   Metadata `json:"metadata,omitempty"`
}

type PaymentListParams struct {
	CursorParams
	CreatedAt    *TimeFilter     `url:"created_at,omitempty"`
	ChargeDate   *TimeFilter     `url:"charge_date,omitempty"`
	Creditor     string          `url:"creditor,omitempty"`
	Currency     string          `url:"currency,omitempty"`
	Customer     string          `url:"customer,omitempty"`
	Mandate      string          `url:"mandate,omitempty"`
	Subscription string          `url:"subscription,omitempty"`
	Status       []PaymentStatus `url:"status,comma,omitempty"`
}

type PaymentListResult struct {
	Payments []Payment `json:"payments"`
	Meta     ListMeta  `json:"meta"`
}

// PaymentService wraps the /payments endpoints.
type PaymentService struct {
	client *Client
}

func (s *PaymentService) Create(ctx context.Context, p PaymentCreateParams, opts ...RequestOption) (*Payment, error) {
	if p.Links.Mandate == "" {
		return nil, missingParam("links.mandate")
	}
	if p.Amount <= 0 {
		return nil, missingParam("amount")
	}

	return create(ctx, s.client, "/payments", "payments", p, s.Get, opts)
}

func (s *PaymentService) List(ctx context.Context, p PaymentListParams, opts ...RequestOption) (*PaymentListResult, error) {
	ret := new(PaymentListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/payments", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (s *PaymentService) All(ctx context.Context, p PaymentListParams, opts ...RequestOption) iter.Seq2[Payment, error] {
	return Iterate(ctx, s.pages(p, opts))
}

func (s *PaymentService) Pages(ctx context.Context, p PaymentListParams, opts ...RequestOption) iter.Seq[*PendingPage[Payment]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *PaymentService) pages(p PaymentListParams, opts []RequestOption) PageFetcher[Payment] {
	return func(ctx context.Context, after string) (*Page[Payment], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[Payment]{Items: res.Payments, Meta: res.Meta}, nil
	}
}

func (s *PaymentService) Get(ctx context.Context, identity string, opts ...RequestOption) (*Payment, error) {
	return get[Payment](ctx, s.client, "/payments/:identity", "payments", identity, opts)
}

func (s *PaymentService) Update(ctx context.Context, identity string, p PaymentUpdateParams, opts ...RequestOption) (*Payment, error) {
	return update[Payment](ctx, s.client, "/payments/:identity", "payments", identity, p, opts)
}

func (s *PaymentService) Cancel(ctx context.Context, identity string, p PaymentCancelParams, opts ...RequestOption) (*Payment, error) {
	return action[Payment](ctx, s.client, "/payments/:identity/actions/cancel", "payments", identity, p, opts)
}

// Retry resubmits a failed payment.
func (s *PaymentService) Retry(ctx context.Context, identity string, p PaymentRetryParams, opts ...RequestOption) (*Payment, error) {
	return action[Payment](ctx, s.client, "/payments/:identity/actions/retry", "payments", identity, p, opts)
}
