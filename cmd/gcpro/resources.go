package main

import (
	"context"
	"iter"

	"github.com/Alp4ka/gcpro"
)

// listFlags are the list parameters the CLI exposes for every resource.
type listFlags struct {
	limit    int
	creditor string
}

func (f listFlags) cursor() gcpro.CursorParams {
	return gcpro.CursorParams{Limit: f.limit}
}

// pageInfo summarises one received page.
type pageInfo struct {
	Items int    `json:"items"`
	After string `json:"after,omitempty"`
}

type collection struct {
	all   func(ctx context.Context, f listFlags) iter.Seq2[any, error]
	pages func(ctx context.Context, f listFlags) iter.Seq2[pageInfo, error]
}

func newCollection[T, P any](
	all func(context.Context, P, ...gcpro.RequestOption) iter.Seq2[T, error],
	pages func(context.Context, P, ...gcpro.RequestOption) iter.Seq[*gcpro.PendingPage[T]],
	params func(listFlags) P,
) collection {
	return collection{
		all: func(ctx context.Context, f listFlags) iter.Seq2[any, error] {
			return func(yield func(any, error) bool) {
				for item, err := range all(ctx, params(f)) {
					if !yield(item, err) {
						return
					}
				}
			}
		},
		pages: func(ctx context.Context, f listFlags) iter.Seq2[pageInfo, error] {
			return func(yield func(pageInfo, error) bool) {
				for pending := range pages(ctx, params(f)) {
					page, err := pending.Await(ctx)
					if err != nil {
						yield(pageInfo{}, err)
						return
					}

					if !yield(pageInfo{Items: len(page.Items), After: page.NextCursor()}, nil) {
						return
					}
				}
			}
		},
	}
}

func collections(c *gcpro.Client) map[string]collection {
	return map[string]collection{
		"billing_requests": newCollection(c.BillingRequests.All, c.BillingRequests.Pages,
			func(f listFlags) gcpro.BillingRequestListParams {
				return gcpro.BillingRequestListParams{CursorParams: f.cursor()}
			}),
		"blocks": newCollection(c.Blocks.All, c.Blocks.Pages,
			func(f listFlags) gcpro.BlockListParams {
				return gcpro.BlockListParams{CursorParams: f.cursor()}
			}),
		"creditors": newCollection(c.Creditors.All, c.Creditors.Pages,
			func(f listFlags) gcpro.CreditorListParams {
				return gcpro.CreditorListParams{CursorParams: f.cursor()}
			}),
		"customers": newCollection(c.Customers.All, c.Customers.Pages,
			func(f listFlags) gcpro.CustomerListParams {
				return gcpro.CustomerListParams{CursorParams: f.cursor()}
			}),
		"instalment_schedules": newCollection(c.InstalmentSchedules.All, c.InstalmentSchedules.Pages,
			func(f listFlags) gcpro.InstalmentScheduleListParams {
				return gcpro.InstalmentScheduleListParams{CursorParams: f.cursor()}
			}),
		"mandates": newCollection(c.Mandates.All, c.Mandates.Pages,
			func(f listFlags) gcpro.MandateListParams {
				return gcpro.MandateListParams{CursorParams: f.cursor()}
			}),
		"outbound_payments": newCollection(c.OutboundPayments.All, c.OutboundPayments.Pages,
			func(f listFlags) gcpro.OutboundPaymentListParams {
				return gcpro.OutboundPaymentListParams{CursorParams: f.cursor()}
			}),
		"payments": newCollection(c.Payments.All, c.Payments.Pages,
			func(f listFlags) gcpro.PaymentListParams {
				return gcpro.PaymentListParams{CursorParams: f.cursor()}
			}),
		"payouts": newCollection(c.Payouts.All, c.Payouts.Pages,
			func(f listFlags) gcpro.PayoutListParams {
				return gcpro.PayoutListParams{CursorParams: f.cursor()}
			}),
		"verification_details": newCollection(c.VerificationDetails.All, c.VerificationDetails.Pages,
			func(f listFlags) gcpro.VerificationDetailListParams {
				return gcpro.VerificationDetailListParams{CursorParams: f.cursor(), Creditor: f.creditor}
			}),
	}
}

var _collectionNames = []string{
	"billing_requests",
	"blocks",
	"creditors",
	"customers",
	"instalment_schedules",
	"mandates",
	"outbound_payments",
	"payments",
	"payouts",
	"verification_details",
}
