package gcpro

import (
	"context"
	"iter"
	"net/http"
	"time"
)

type BillingRequestStatus string

const (
	BillingRequestStatusPending       BillingRequestStatus = "pending"
	BillingRequestStatusReadyToFulfil BillingRequestStatus = "ready_to_fulfil"
	BillingRequestStatusFulfilling    BillingRequestStatus = "fulfilling"
	BillingRequestStatusFulfilled     BillingRequestStatus = "fulfilled"
	BillingRequestStatusCancelled     BillingRequestStatus = "cancelled"
)

type BillingRequestActionType string

const (
	BillingRequestActionChooseCurrency         BillingRequestActionType = "choose_currency"
	BillingRequestActionCollectCustomerDetails BillingRequestActionType = "collect_customer_details"
	BillingRequestActionCollectBankAccount     BillingRequestActionType = "collect_bank_account"
	BillingRequestActionConfirmPayerDetails    BillingRequestActionType = "confirm_payer_details"
	BillingRequestActionBankAuthorisation      BillingRequestActionType = "bank_authorisation"
	BillingRequestActionSelectInstitution      BillingRequestActionType = "select_institution"
	BillingRequestActionCollectAmount          BillingRequestActionType = "collect_amount"
)

type MandateVerify string

const (
	MandateVerifyMinimum       MandateVerify = "minimum"
	MandateVerifyRecommended   MandateVerify = "recommended"
	MandateVerifyWhenAvailable MandateVerify = "when_available"
	MandateVerifyAlways        MandateVerify = "always"
)

// BillingRequest collects everything needed to set up a mandate and/or take
// a payment from a payer.
type BillingRequest struct {
	ID              string                        `json:"id"`
	CreatedAt       time.Time                     `json:"created_at"`
	Status          BillingRequestStatus          `json:"status"`
	FallbackEnabled bool                          `json:"fallback_enabled"`
	MandateRequest  *BillingRequestMandateRequest `json:"mandate_request,omitempty"`
	PaymentRequest  *BillingRequestPaymentRequest `json:"payment_request,omitempty"`
	Actions         []BillingRequestAction        `json:"actions,omitempty"`
	Metadata        Metadata                      `json:"metadata,omitempty"`
	Links           BillingRequestLinks           `json:"links"`
}

type BillingRequestMandateRequest struct {
	Currency  string        `json:"currency,omitempty"`
	Scheme    string        `json:"scheme,omitempty"`
	Reference string        `json:"reference,omitempty"`
	Verify    MandateVerify `json:"verify,omitempty"`
}

type BillingRequestPaymentRequest struct {
	Amount      int    `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	Scheme      string `json:"scheme,omitempty"`
}

type BillingRequestAction struct {
	Type             BillingRequestActionType `json:"type"`
	Required         bool                     `json:"required"`
	Status           string                   `json:"status,omitempty"`
	CompletesActions []string                 `json:"completes_actions,omitempty"`
	RequiresActions  []string                 `json:"requires_actions,omitempty"`
}

type BillingRequestLinks struct {
	Creditor              string `json:"creditor,omitempty"`
	Customer              string `json:"customer,omitempty"`
	CustomerBankAccount   string `json:"customer_bank_account,omitempty"`
	MandateRequest        string `json:"mandate_request,omitempty"`
	MandateRequestMandate string `json:"mandate_request_mandate,omitempty"`
	PaymentRequest        string `json:"payment_request,omitempty"`
	PaymentRequestPayment string `json:"payment_request_payment,omitempty"`
	Organisation          string `json:"organisation,omitempty"`
}

type BillingRequestCreateParams struct {
	FallbackEnabled bool                          `json:"fallback_enabled,omitempty"`
	MandateRequest  *BillingRequestMandateRequest `json:"mandate_request,omitempty"`
	PaymentRequest  *BillingRequestPaymentRequest `json:"payment_request,omitempty"`
	Metadata        Metadata                      `json:"metadata,omitempty"`
	Links           struct {
		Creditor string `json:"creditor,omitempty"`
		Customer string `json:"customer,omitempty"`
	} `json:"links,omitempty"`
}

type BillingRequestCollectCustomerDetailsParams struct {
	Customer *struct {
		Email       string `json:"email,omitempty"`
		GivenName   string `json:"given_name,omitempty"`
		FamilyName  string `json:"family_name,omitempty"`
		CompanyName string `json:"company_name,omitempty"`
	} `json:"customer,omitempty"`
	CustomerBillingDetail *struct {
		AddressLine1 string `json:"address_line1,omitempty"`
		City         string `json:"city,omitempty"`
		PostalCode   string `json:"postal_code,omitempty"`
		CountryCode  string `json:"country_code,omitempty"`
	} `json:"customer_billing_detail,omitempty"`
}

type BillingRequestConfirmPayerDetailsParams struct {
	PayerRequestedDualSignature bool     `json:"payer_requested_dual_signature,omitempty"`
	Metadata                    Metadata `json:"metadata,omitempty"`
}

type BillingRequestFulfilParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type BillingRequestCancelParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type BillingRequestNotifyParams struct {
	NotificationType string `json:"notification_type"`
	RedirectURI      string `json:"redirect_uri,omitempty"`
}

type BillingRequestListParams struct {
	CursorParams
	CreatedAt *TimeFilter          `url:"created_at,omitempty"`
	Customer  string               `url:"customer,omitempty"`
	Status    BillingRequestStatus `url:"status,omitempty"`
}

type BillingRequestListResult struct {
	BillingRequests []BillingRequest `json:"billing_requests"`
	Meta            ListMeta         `json:"meta"`
}

// BillingRequestService wraps the /billing_requests endpoints.
type BillingRequestService struct {
	client *Client
}

func (s *BillingRequestService) Create(ctx context.Context, p BillingRequestCreateParams, opts ...RequestOption) (*BillingRequest, error) {
	if p.MandateRequest == nil && p.PaymentRequest == nil {
		return nil, missingParam("mandate_request or payment_request")
	}

	return create(ctx, s.client, "/billing_requests", "billing_requests", p, s.Get, opts)
}

func (s *BillingRequestService) List(ctx context.Context, p BillingRequestListParams, opts ...RequestOption) (*BillingRequestListResult, error) {
	ret := new(BillingRequestListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/billing_requests", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (s *BillingRequestService) All(ctx context.Context, p BillingRequestListParams, opts ...RequestOption) iter.Seq2[BillingRequest, error] {
	return Iterate(ctx, s.pages(p, opts))
}

func (s *BillingRequestService) Pages(ctx context.Context, p BillingRequestListParams, opts ...RequestOption) iter.Seq[*PendingPage[BillingRequest]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *BillingRequestService) pages(p BillingRequestListParams, opts []RequestOption) PageFetcher[BillingRequest] {
	return func(ctx context.Context, after string) (*Page[BillingRequest], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[BillingRequest]{Items: res.BillingRequests, Meta: res.Meta}, nil
	}
}

func (s *BillingRequestService) Get(ctx context.Context, identity string, opts ...RequestOption) (*BillingRequest, error) {
	return get[BillingRequest](ctx, s.client, "/billing_requests/:identity", "billing_requests", identity, opts)
}

func (s *BillingRequestService) CollectCustomerDetails(
	ctx context.Context,
	identity string,
	p BillingRequestCollectCustomerDetailsParams,
	opts ...RequestOption,
) (*BillingRequest, error) {
	return action[BillingRequest](ctx, s.client, "/billing_requests/:identity/actions/collect_customer_details", "billing_requests", identity, p, opts)
}

func (s *BillingRequestService) ConfirmPayerDetails(
	ctx context.Context,
	identity string,
	p BillingRequestConfirmPayerDetailsParams,
	opts ...RequestOption,
) (*BillingRequest, error) {
	return action[BillingRequest](ctx, s.client, "/billing_requests/:identity/actions/confirm_payer_details", "billing_requests", identity, p, opts)
}

// Fulfil creates the mandate and/or payment once every required action is
// completed.
func (s *BillingRequestService) Fulfil(ctx context.Context, identity string, p BillingRequestFulfilParams, opts ...RequestOption) (*BillingRequest, error) {
	return action[BillingRequest](ctx, s.client, "/billing_requests/:identity/actions/fulfil", "billing_requests", identity, p, opts)
}

func (s *BillingRequestService) Cancel(ctx context.Context, identity string, p BillingRequestCancelParams, opts ...RequestOption) (*BillingRequest, error) {
	return action[BillingRequest](ctx, s.client, "/billing_requests/:identity/actions/cancel", "billing_requests", identity, p, opts)
}

func (s *BillingRequestService) Notify(ctx context.Context, identity string, p BillingRequestNotifyParams, opts ...RequestOption) (*BillingRequest, error) {
	if p.NotificationType == "" {
		return nil, missingParam("notification_type")
	}

	return action[BillingRequest](ctx, s.client, "/billing_requests/:identity/actions/notify", "billing_requests", identity, p, opts)
}

// Fallback switches a bank payment request to direct debit.
func (s *BillingRequestService) Fallback(ctx context.Context, identity string, opts ...RequestOption) (*BillingRequest, error) {
	return action[BillingRequest](ctx, s.client, "/billing_requests/:identity/actions/fallback", "billing_requests", identity, nil, opts)
}
