// Package gcpro is a client for the GoCardless Pro payments API.
//
// # Overview
//
// A Client holds the shared HTTP executor: authentication headers, JSON
// envelopes, retries with exponential backoff, idempotency keys for create
// requests, optional client-side rate limiting and circuit breaking. Every
// API resource is exposed as a service hanging off the client:
//
//	client, err := gcpro.New(token, gcpro.WithEnvironment(gcpro.EnvironmentLive))
//	mandate, err := client.Mandates.Get(ctx, "MD123")
//
// # Pagination
//
// List endpoints are cursor paginated. List returns a single page; All and
// Pages walk the whole collection by threading the "after" cursor of each
// page into the next request:
//
//	for payment, err := range client.Payments.All(ctx, gcpro.PaymentListParams{}) {
//		if err != nil {
//			return err
//		}
//		...
//	}
//
// All fetches pages lazily in the caller's goroutine and yields items one by
// one. Pages yields PendingPage values whose requests run on separate
// goroutines. Each range over either sequence starts again from the first
// page; see Iterate and IteratePages.
//
// # Errors
//
// Non-2xx responses are returned as *APIError. Missing required parameters
// are reported with ErrMisconfiguredRequest before any request is sent.
//
// The sandbox sub-package provides a local stand-in of the API for tests
// and development.
package gcpro
