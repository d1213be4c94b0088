package gcpro

import (
	"context"
	"iter"
	"net/http"
)

// VerificationDetail holds the company and director information a creditor
// submits for verification.
type VerificationDetail struct {
	Name          string                  `json:"name"`
	CompanyNumber string                  `json:"company_number,omitempty"`
	Description   string                  `json:"description,omitempty"`
	AddressLine1  string                  `json:"address_line1,omitempty"`
	AddressLine2  string                  `json:"address_line2,omitempty"`
	AddressLine3  string                  `json:"address_line3,omitempty"`
	City          string                  `json:"city,omitempty"`
	PostalCode    string                  `json:"postal_code,omitempty"`
	Directors     []Director              `json:"directors,omitempty"`
	Links         VerificationDetailLinks `json:"links"`
}

type Director struct {
	GivenName   string `json:"given_name"`
	FamilyName  string `json:"family_name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

type VerificationDetailLinks struct {
	Creditor string `json:"creditor"`
}

type VerificationDetailCreateParams VerificationDetail

// VerificationDetailListParams requires Creditor.
type VerificationDetailListParams struct {
	CursorParams
	Creditor string `url:"creditor"`
}

type VerificationDetailListResult struct {
	VerificationDetails []VerificationDetail `json:"verification_details"`
	Meta                ListMeta             `json:"meta"`
}

// VerificationDetailService wraps the /verification_details endpoints.
type VerificationDetailService struct {
	client *Client
}

// Create submits verification details. The resource has no identity, so an
// idempotency conflict is returned as an error.
func (s *VerificationDetailService) Create(
	ctx context.Context,
	p VerificationDetailCreateParams,
	opts ...RequestOption,
) (*VerificationDetail, error) {
	if p.Links.Creditor == "" {
		return nil, missingParam("links.creditor")
	}

	return create[VerificationDetail](ctx, s.client, "/verification_details", "verification_details", p, nil, opts)
}

// List returns one page of verification details of a creditor.
func (s *VerificationDetailService) List(
	ctx context.Context,
	p VerificationDetailListParams,
	opts ...RequestOption,
) (*VerificationDetailListResult, error) {
	if p.Creditor == "" {
		return nil, missingParam("creditor")
	}

	ret := new(VerificationDetailListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/verification_details", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// All iterates over the verification details of p.Creditor. A missing
// creditor is reported by the first element, before any request is made.
func (s *VerificationDetailService) All(
	ctx context.Context,
	p VerificationDetailListParams,
	opts ...RequestOption,
) iter.Seq2[VerificationDetail, error] {
	return Iterate(ctx, s.pages(p, opts))
}

func (s *VerificationDetailService) Pages(
	ctx context.Context,
	p VerificationDetailListParams,
	opts ...RequestOption,
) iter.Seq[*PendingPage[VerificationDetail]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *VerificationDetailService) pages(p VerificationDetailListParams, opts []RequestOption) PageFetcher[VerificationDetail] {
	return func(ctx context.Context, after string) (*Page[VerificationDetail], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[VerificationDetail]{Items: res.VerificationDetails, Meta: res.Meta}, nil
	}
}
