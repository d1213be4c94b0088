package gcpro

import (
	"context"
	"iter"
	"net/http"
	"time"
)

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
	PayoutStatusBounced PayoutStatus = "bounced"
)

type PayoutType string

const (
	PayoutTypeMerchant PayoutType = "merchant"
	PayoutTypePartner  PayoutType = "partner"
)

type Payout struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	Amount       int          `json:"amount"`
	ArrivalDate  string       `json:"arrival_date,omitempty"`
	Currency     string       `json:"currency"`
	DeductedFees int          `json:"deducted_fees"`
	PayoutType   PayoutType   `json:"payout_type"`
	Reference    string       `json:"reference,omitempty"`
	Status       PayoutStatus `json:"status"`
	Metadata     Metadata     `json:"metadata,omitempty"`
	Links        PayoutLinks  `json:"links"`
}

type PayoutLinks struct {
	Creditor            string `json:"creditor,omitempty"`
	CreditorBankAccount string `json:"creditor_bank_account,omitempty"`
}

type PayoutUpdateParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type PayoutListParams struct {
	CursorParams
	CreatedAt           *TimeFilter  `url:"created_at,omitempty"`
	Creditor            string       `url:"creditor,omitempty"`
	CreditorBankAccount string       `url:"creditor_bank_account,omitempty"`
	Currency            string       `url:"currency,omitempty"`
	PayoutType          PayoutType   `url:"payout_type,omitempty"`
	Reference           string       `url:"reference,omitempty"`
	Status              PayoutStatus `url:"status,omitempty"`
}

type PayoutListResult struct {
	Payouts []Payout `json:"payouts"`
	Meta    ListMeta `json:"meta"`
}

// PayoutService wraps the /payouts endpoints. Payouts are created by the
// API, never by clients.
type PayoutService struct {
	client *Client
}

func (s *PayoutService) List(ctx context.Context, p PayoutListParams, opts ...RequestOption) (*PayoutListResult, error) {
	ret := new(PayoutListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/payouts", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (s *PayoutService) All(ctx context.Context, p PayoutListParams, opts ...RequestOption) iter.Seq2[Payout, error] {
	return Iterate(ctx, s.pages(p, opts))
}

func (s *PayoutService) Pages(ctx context.Context, p PayoutListParams, opts ...RequestOption) iter.Seq[*PendingPage[Payout]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *PayoutService) pages(p PayoutListParams, opts []RequestOption) PageFetcher[Payout] {
	return func(ctx context.Context, after string) (*Page[Payout], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[Payout]{Items: res.Payouts, Meta: res.Meta}, nil
	}
}

func (s *PayoutService) Get(ctx context.Context, identity string, opts ...RequestOption) (*Payout, error) {
	return get[Payout](ctx, s.client, "/payouts/:identity", "payouts", identity, opts)
}

func (s *PayoutService) Update(ctx context.Context, identity string, p PayoutUpdateParams, opts ...RequestOption) (*Payout, error) {
	return update[Payout](ctx, s.client, "/payouts/:identity", "payouts", identity, p, opts)
}
