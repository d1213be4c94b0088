package gcpro

import (
	"context"
	"iter"
	"net/http"
	"time"
)

type CreditorVerificationStatus string

const (
	CreditorVerificationStatusSuccessful     CreditorVerificationStatus = "successful"
	CreditorVerificationStatusInReview       CreditorVerificationStatus = "in_review"
	CreditorVerificationStatusActionRequired CreditorVerificationStatus = "action_required"
)

type CreditorType string

const (
	CreditorTypeCompany     CreditorType = "company"
	CreditorTypeIndividual  CreditorType = "individual"
	CreditorTypeCharity     CreditorType = "charity"
	CreditorTypePartnership CreditorType = "partnership"
	CreditorTypeTrust       CreditorType = "trust"
)

// Creditor is the entity payments are collected on behalf of.
type Creditor struct {
	ID                 string                     `json:"id"`
	CreatedAt          time.Time                  `json:"created_at"`
	Name               string                     `json:"name"`
	CreditorType       CreditorType               `json:"creditor_type,omitempty"`
	AddressLine1       string                     `json:"address_line1,omitempty"`
	AddressLine2       string                     `json:"address_line2,omitempty"`
	AddressLine3       string                     `json:"address_line3,omitempty"`
	City               string                     `json:"city,omitempty"`
	Region             string                     `json:"region,omitempty"`
	PostalCode         string                     `json:"postal_code,omitempty"`
	CountryCode        string                     `json:"country_code,omitempty"`
	VerificationStatus CreditorVerificationStatus `json:"verification_status,omitempty"`
	Links              CreditorLinks              `json:"links"`
}

type CreditorLinks struct {
	DefaultEURPayoutAccount string `json:"default_eur_payout_account,omitempty"`
	DefaultGBPPayoutAccount string `json:"default_gbp_payout_account,omitempty"`
	DefaultUSDPayoutAccount string `json:"default_usd_payout_account,omitempty"`
}

type CreditorCreateParams struct {
	Name         string       `json:"name"`
	CreditorType CreditorType `json:"creditor_type,omitempty"`
	CountryCode  string       `json:"country_code"`
	AddressLine1 string       `json:"address_line1,omitempty"`
	City         string       `json:"city,omitempty"`
	PostalCode   string       `json:"postal_code,omitempty"`
}

type CreditorUpdateParams struct {
	Name         string        `json:"name,omitempty"`
	AddressLine1 string        `json:"address_line1,omitempty"`
	AddressLine2 string        `json:"address_line2,omitempty"`
	City         string        `json:"city,omitempty"`
	Region       string        `json:"region,omitempty"`
	PostalCode   string        `json:"postal_code,omitempty"`
	CountryCode  string        `json:"country_code,omitempty"`
	Links        CreditorLinks `json:"links,omitempty"`
}

type CreditorListParams struct {
	CursorParams
	CreatedAt *TimeFilter `url:"created_at,omitempty"`
}

type CreditorListResult struct {
	Creditors []Creditor `json:"creditors"`
	Meta      ListMeta   `json:"meta"`
}

// CreditorService wraps the /creditors endpoints.
type CreditorService struct {
	client *Client
}

func (s *CreditorService) Create(ctx context.Context, p CreditorCreateParams, opts ...RequestOption) (*Creditor, error) {
	if p.Name == "" {
		return nil, missingParam("name")
	}

	return create(ctx, s.client, "/creditors", "creditors", p, s.Get, opts)
}

func (s *CreditorService) List(ctx context.Context, p CreditorListParams, opts ...RequestOption) (*CreditorListResult, error) {
	ret := new(CreditorListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/creditors", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (s *CreditorService) All(ctx context.Context, p CreditorListParams, opts ...RequestOption) iter.Seq2[Creditor, error] {
	return Iterate(ctx, s.pages(p, opts))
}

func (s *CreditorService) Pages(ctx context.Context, p CreditorListParams, opts ...RequestOption) iter.Seq[*PendingPage[Creditor]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *CreditorService) pages(p CreditorListParams, opts []RequestOption) PageFetcher[Creditor] {
	return func(ctx context.Context, after string) (*Page[Creditor], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[Creditor]{Items: res.Creditors, Meta: res.Meta}, nil
	}
}

func (s *CreditorService) Get(ctx context.Context, identity string, opts ...RequestOption) (*Creditor, error) {
	return get[Creditor](ctx, s.client, "/creditors/:identity", "creditors", identity, opts)
}

func (s *CreditorService) Update(ctx context.Context, identity string, p CreditorUpdateParams, opts ...RequestOption) (*Creditor, error) {
	return update[Creditor](ctx, s.client, "/creditors/:identity", "creditors", identity, p, opts)
}
