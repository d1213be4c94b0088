package gcpro

import (
	"context"
	"iter"
	"net/http"
	"time"
)

type CustomerSortField string

const (
	CustomerSortFieldName        CustomerSortField = "name"
	CustomerSortFieldCompanyName CustomerSortField = "company_name"
	CustomerSortFieldCreatedAt   CustomerSortField = "created_at"
)

type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

type Customer struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Email        string    `json:"email,omitempty"`
	GivenName    string    `json:"given_name,omitempty"`
	FamilyName   string    `json:"family_name,omitempty"`
	CompanyName  string    `json:"company_name,omitempty"`
	AddressLine1 string    `json:"address_line1,omitempty"`
	City         string    `json:"city,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	CountryCode  string    `json:"country_code,omitempty"`
	Language     string    `json:"language,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Metadata     Metadata  `json:"metadata,omitempty"`
}

type CustomerCreateParams struct {
	Email        string   `json:"email,omitempty"`
	GivenName    string   `json:"given_name,omitempty"`
	FamilyName   string   `json:"family_name,omitempty"`
	CompanyName  string   `json:"company_name,omitempty"`
	AddressLine1 string   `json:"address_line1,omitempty"`
	City         string   `json:"city,omitempty"`
	PostalCode   string   `json:"postal_code,omitempty"`
	CountryCode  string   `json:"country_code,omitempty"`
	Language     string   `json:"language,omitempty"`
	PhoneNumber  string   `json:"phone_number,omitempty"`
	Metadata     Metadata `json:"metadata,omitempty"`
}

type CustomerUpdateParams CustomerCreateParams

type CustomerListParams struct {
	CursorParams
	CreatedAt     *TimeFilter       `url:"created_at,omitempty"`
	Currency      string            `url:"currency,omitempty"`
	SortField     CustomerSortField `url:"sort_field,omitempty"`
	SortDirection SortDirection     `url:"sort_direction,omitempty"`
}

type CustomerListResult struct {
	Customers []Customer `json:"customers"`
	Meta      ListMeta   `json:"meta"`
}

// CustomerService wraps the /customers endpoints.
type CustomerService struct {
	client *Client
}

func (s *CustomerService) Create(ctx context.Context, p CustomerCreateParams, opts ...RequestOption) (*Customer, error) {
	return create(ctx, s.client, "/customers", "customers", p, s.Get, opts)
}

func (s *CustomerService) List(ctx context.Context, p CustomerListParams, opts ...RequestOption) (*CustomerListResult, error) {
	if p.SortField != "" && p.SortDirection == "" {
		return nil, missingParam("sort_direction")
	}

	ret := new(CustomerListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/customers", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (s *CustomerService) All(ctx context.Context, p CustomerListParams, opts ...RequestOption) iter.Seq2[Customer, error] {
	return Iterate(ctx, s.pages(p, opts))
}

func (s *CustomerService) Pages(ctx context.Context, p CustomerListParams, opts ...RequestOption) iter.Seq[*PendingPage[Customer]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *CustomerService) pages(p CustomerListParams, opts []RequestOption) PageFetcher[Customer] {
	return func(ctx context.Context, after string) (*Page[Customer], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[Customer]{Items: res.Customers, Meta: res.Meta}, nil
	}
}

func (s *CustomerService) Get(ctx context.Context, identity string, opts ...RequestOption) (*Customer, error) {
	return get[Customer](ctx, s.client, "/customers/:identity", "customers", identity, opts)
}

func (s *CustomerService) Update(ctx context.Context, identity string, p CustomerUpdateParams, opts ...RequestOption) (*Customer, error) {
	return update[Customer](ctx, s.client, "/customers/:identity", "customers", identity, p, opts)
}

// Remove deletes the personal data of a customer. The customer record stays
// but can no longer be used.
func (s *CustomerService) Remove(ctx context.Context, identity string, opts ...RequestOption) (*Customer, error) {
	path, err := expandPath("/customers/:identity", identity)
	if err != nil {
		return nil, err
	}

	return call[Customer](ctx, s.client, &request{method: http.MethodDelete, path: path, body: wrapAction(nil), opts: opts}, "customers")
}
