package gcpro

import (
	"context"
	"iter"
	"net/http"
	"time"
)

// MandateStatus is the lifecycle state of a mandate.
type MandateStatus string

const (
	MandateStatusPendingCustomerApproval MandateStatus = "pending_customer_approval"
	MandateStatusPendingSubmission       MandateStatus = "pending_submission"
	MandateStatusSubmitted               MandateStatus = "submitted"
	MandateStatusActive                  MandateStatus = "active"
	MandateStatusSuspendedByPayer        MandateStatus = "suspended_by_payer"
	MandateStatusFailed                  MandateStatus = "failed"
	MandateStatusCancelled               MandateStatus = "cancelled"
	MandateStatusExpired                 MandateStatus = "expired"
	MandateStatusConsumed                MandateStatus = "consumed"
	MandateStatusBlocked                 MandateStatus = "blocked"
)

// Mandate authorises a creditor to collect payments from a customer bank
// account.
type Mandate struct {
	ID                      string        `json:"id"`
	CreatedAt               time.Time     `json:"created_at"`
	Reference               string        `json:"reference,omitempty"`
	Scheme                  string        `json:"scheme,omitempty"`
	Status                  MandateStatus `json:"status"`
	NextPossibleChargeDate  string        `json:"next_possible_charge_date,omitempty"`
	PaymentsRequireApproval bool          `json:"payments_require_approval"`
	Metadata                Metadata      `json:"metadata,omitempty"`
	Links                   MandateLinks  `json:"links"`
}

type MandateLinks struct {
	Creditor            string `json:"creditor,omitempty"`
	Customer            string `json:"customer,omitempty"`
	CustomerBankAccount string `json:"customer_bank_account,omitempty"`
	NewMandate          string `json:"new_mandate,omitempty"`
}

type MandateCreateParams struct {
	Reference string       `json:"reference,omitempty"`
	Scheme    string       `json:"scheme,omitempty"`
	Metadata  Metadata     `json:"metadata,omitempty"`
	Links     MandateLinks `json:"links"`
}

type MandateUpdateParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type MandateCancelParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type MandateReinstateParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type MandateListParams struct {
	CursorParams
	CreatedAt           *TimeFilter     `url:"created_at,omitempty"`
	Creditor            string          `url:"creditor,omitempty"`
	Customer            string          `url:"customer,omitempty"`
	CustomerBankAccount string          `url:"customer_bank_account,omitempty"`
	Reference           string          `url:"reference,omitempty"`
	Scheme              []string        `url:"scheme,comma,omitempty"`
	Status              []MandateStatus `url:"status,comma,omitempty"`
}

type MandateListResult struct {
	Mandates []Mandate `json:"mandates"`
	Meta     ListMeta  `json:"meta"`
}

// MandateService wraps the /mandates endpoints.
type MandateService struct {
	client *Client
}

func (s *MandateService) Create(ctx context.Context, p MandateCreateParams, opts ...RequestOption) (*Mandate, error) {
	if p.Links.CustomerBankAccount == "" {
		return nil, missingParam("links.customer_bank_account")
	}

	return create(ctx, s.client, "/mandates", "mandates", p, s.Get, opts)
}

// List returns one page of mandates.
func (s *MandateService) List(ctx context.Context, p MandateListParams, opts ...RequestOption) (*MandateListResult, error) {
	ret := new(MandateListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/mandates", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// All iterates over every mandate matching p.
func (s *MandateService) All(ctx context.Context, p MandateListParams, opts ...RequestOption) iter.Seq2[Mandate, error] {
	return Iterate(ctx, s.pages(p, opts))
}

// Pages iterates over the pages of mandates matching p.
func (s *MandateService) Pages(ctx context.Context, p MandateListParams, opts ...RequestOption) iter.Seq[*PendingPage[Mandate]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *MandateService) pages(p MandateListParams, opts []RequestOption) PageFetcher[Mandate] {
	return func(ctx context.Context, after string) (*Page[Mandate], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[Mandate]{Items: res.Mandates, Meta: res.Meta}, nil
	}
}

func (s *MandateService) Get(ctx context.Context, identity string, opts ...RequestOption) (*Mandate, error) {
	return get[Mandate](ctx, s.client, "/mandates/:identity", "mandates", identity, opts)
}

func (s *MandateService) Update(ctx context.Context, identity string, p MandateUpdateParams, opts ...RequestOption) (*Mandate, error) {
	return update[Mandate](ctx, s.client, "/mandates/:identity", "mandates", identity, p, opts)
}

// Cancel stops any further payments from being collected under the mandate.
func (s *MandateService) Cancel(ctx context.Context, identity string, p MandateCancelParams, opts ...RequestOption) (*Mandate, error) {
	return action[Mandate](ctx, s.client, "/mandates/:identity/actions/cancel", "mandates", identity, p, opts)
}

// Reinstate turns a cancelled or expired mandate back to pending submission.
func (s *MandateService) Reinstate(ctx context.Context, identity string, p MandateReinstateParams, opts ...RequestOption) (*Mandate, error) {
	return action[Mandate](ctx, s.client, "/mandates/:identity/actions/reinstate", "mandates", identity, p, opts)
}
