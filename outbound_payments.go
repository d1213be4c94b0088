package gcpro

import (
	"context"
	"iter"
	"net/http"
	"time"
)

type OutboundPaymentStatus string

const (
	OutboundPaymentStatusVerifying       OutboundPaymentStatus = "verifying"
	OutboundPaymentStatusPendingApproval OutboundPaymentStatus = "pending_approval"
	OutboundPaymentStatusScheduled       OutboundPaymentStatus = "scheduled"
	OutboundPaymentStatusExecuting       OutboundPaymentStatus = "executing"
	OutboundPaymentStatusExecuted        OutboundPaymentStatus = "executed"
	OutboundPaymentStatusCancelled       OutboundPaymentStatus = "cancelled"
	OutboundPaymentStatusFailed          OutboundPaymentStatus = "failed"
)

// OutboundPayment sends money from a creditor's balance to a recipient bank
// account.
type OutboundPayment struct {
	ID            string                `json:"id"`
	CreatedAt     time.Time             `json:"created_at"`
	Amount        int                   `json:"amount"`
	Currency      string                `json:"currency"`
	Description   string                `json:"description,omitempty"`
	ExecutionDate string                `json:"execution_date,omitempty"`
	IsWithdrawal  bool                  `json:"is_withdrawal"`
	Reference     string                `json:"reference,omitempty"`
	Scheme        string                `json:"scheme,omitempty"`
	Status        OutboundPaymentStatus `json:"status"`
	Metadata      Metadata              `json:"metadata,omitempty"`
	Links         OutboundPaymentLinks  `json:"links"`
}

type OutboundPaymentLinks struct {
	Creditor             string `json:"creditor,omitempty"`
	Customer             string `json:"customer,omitempty"`
	RecipientBankAccount string `json:"recipient_bank_account,omitempty"`
}

type OutboundPaymentCreateParams struct {
	Amount        int                  `json:"amount"`
	Description   string               `json:"description,omitempty"`
	ExecutionDate string               `json:"execution_date,omitempty"`
	Reference     string               `json:"reference,omitempty"`
	Scheme        string               `json:"scheme"`
	Metadata      Metadata             `json:"metadata,omitempty"`
	Links         OutboundPaymentLinks `json:"links"`
}

type OutboundPaymentWithdrawParams struct {
	Amount        int      `json:"amount"`
	Description   string   `json:"description,omitempty"`
	ExecutionDate string   `json:"execution_date,omitempty"`
	Reference     string   `json:"reference,omitempty"`
	Scheme        string   `json:"scheme"`
	Metadata      Metadata `json:"metadata,omitempty"`
}

type OutboundPaymentUpdateParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type OutboundPaymentCancelParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type OutboundPaymentListParams struct {
	CursorParams
	CreatedFrom string                  `url:"created_from,omitempty"`
	CreatedTo   string                  `url:"created_to,omitempty"`
	Status      []OutboundPaymentStatus `url:"status,comma,omitempty"`
}

type OutboundPaymentListResult struct {
	OutboundPayments []OutboundPayment `json:"outbound_payments"`
	Meta             ListMeta          `json:"meta"`
}

// OutboundPaymentService wraps the /outbound_payments endpoints.
type OutboundPaymentService struct {
	client *Client
}

func (s *OutboundPaymentService) Create(ctx context.Context, p OutboundPaymentCreateParams, opts ...RequestOption) (*OutboundPayment, error) {
	if p.Links.RecipientBankAccount == "" {
		return nil, missingParam("links.recipient_bank_account")
	}

	return create(ctx, s.client, "/outbound_payments", "outbound_payments", p, s.Get, opts)
}

// Withdraw moves funds from the creditor's balance to its own bank account.
func (s *OutboundPaymentService) Withdraw(ctx context.Context, p OutboundPaymentWithdrawParams, opts ...RequestOption) (*OutboundPayment, error) {
	return call[OutboundPayment](ctx, s.client, &request{
		method:     http.MethodPost,
		path:       "/outbound_payments/withdrawal",
		body:       wrapAction(p),
		idempotent: true,
		opts:       opts,
	}, "outbound_payments")
}

func (s *OutboundPaymentService) Cancel(
	ctx context.Context,
	identity string,
	p OutboundPaymentCancelParams,
	opts ...RequestOption,
) (*OutboundPayment, error) {
	return action[OutboundPayment](ctx, s.client, "/outbound_payments/:identity/actions/cancel", "outbound_payments", identity, p, opts)
}

func (s *OutboundPaymentService) Approve(ctx context.Context, identity string, opts ...RequestOption) (*OutboundPayment, error) {
	return action[OutboundPayment](ctx, s.client, "/outbound_payments/:identity/actions/approve", "outbound_payments", identity, nil, opts)
}

func (s *OutboundPaymentService) Get(ctx context.Context, identity string, opts ...RequestOption) (*OutboundPayment, error) {
	return get[OutboundPayment](ctx, s.client, "/outbound_payments/:identity", "outbound_payments", identity, opts)
}

func (s *OutboundPaymentService) List(ctx context.Context, p OutboundPaymentListParams, opts ...RequestOption) (*OutboundPaymentListResult, error) {
	ret := new(OutboundPaymentListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/outbound_payments", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (s *OutboundPaymentService) All(ctx context.Context, p OutboundPaymentListParams, opts ...RequestOption) iter.Seq2[OutboundPayment, error] {
	return Iterate(ctx, s.pages(p, opts))
}

func (s *OutboundPaymentService) Pages(
	ctx context.Context,
	p OutboundPaymentListParams,
	opts ...RequestOption,
) iter.Seq[*PendingPage[OutboundPayment]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *OutboundPaymentService) pages(p OutboundPaymentListParams, opts []RequestOption) PageFetcher[OutboundPayment] {
	return func(ctx context.Context, after string) (*Page[OutboundPayment], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[OutboundPayment]{Items: res.OutboundPayments, Meta: res.Meta}, nil
	}
}

func (s *OutboundPaymentService) Update(
	ctx context.Context,
	identity string,
	p OutboundPaymentUpdateParams,
	opts ...RequestOption,
) (*OutboundPayment, error) {
	return update[OutboundPayment](ctx, s.client, "/outbound_payments/:identity", "outbound_payments", identity, p, opts)
}
