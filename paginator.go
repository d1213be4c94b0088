package gcpro

import (
	"context"
	"fmt"
	"iter"

	"github.com/samber/lo"
)

// Cursors carries the continuation tokens returned by a list endpoint.
// Tokens are opaque and must be sent back verbatim.
type Cursors struct {
	Before *string `json:"before"`
	After  *string `json:"after"`
}

// ListMeta is the "meta" object of every list response.
type ListMeta struct {
	Cursors Cursors `json:"cursors"`
	Limit   int     `json:"limit"`
}

// Page is one batch of a cursor-paginated list.
type Page[T any] struct {
	// Items in the order returned by the server.
	Items []T
	// Meta holds the cursors of the page.
	Meta ListMeta
}

// NextCursor returns the cursor of the following page. An empty string
// means the page is the last one.
func (p *Page[T]) NextCursor() string {
	if p == nil {
		return ""
	}

	return lo.FromPtr(p.Meta.Cursors.After)
}

// PageFetcher fetches the page that starts right after the given cursor.
// An empty cursor denotes the beginning of the collection.
type PageFetcher[T any] func(ctx context.Context, after string) (*Page[T], error)

// Iterate walks a cursor-paginated collection item by item.
//
// Pages are fetched lazily in the caller's goroutine: a new request is made
// only when the consumer asks for an item past the current page. A failed
// fetch is yielded once as (zero, err) and ends the sequence. Breaking out of
// the loop stops fetching.
//
// Every range over the returned sequence starts again from the beginning of
// the collection, so it may be ranged repeatedly or from several goroutines
// as long as fetch is safe for concurrent use.
//
//	for mandate, err := range gcpro.Iterate(ctx, fetch) {
//		if err != nil {
//			return err
//		}
//		...
//	}
func Iterate[T any](ctx context.Context, fetch PageFetcher[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var cursor string

		for {
			page, err := fetchPage(ctx, fetch, cursor)
			if err != nil {
				yield(lo.Empty[T](), err)
				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}

			next := page.NextCursor()
			if next == "" {
				return
			}
			cursor = next
		}
	}
}

// IteratePages walks a cursor-paginated collection page by page. Every
// element is a PendingPage whose request runs on its own goroutine.
//
// The cursor of a page is known only once the previous page has been
// received, so elements are produced strictly one after another: before
// producing the next element the iterator waits for the current one to
// complete, whether or not the consumer awaited it. A page that completes
// with an error is the last element of the sequence. Like Iterate, every
// range starts again from the first page.
func IteratePages[T any](ctx context.Context, fetch PageFetcher[T]) iter.Seq[*PendingPage[T]] {
	return func(yield func(*PendingPage[T]) bool) {
		var cursor string

		for {
			pending := startPage(ctx, fetch, cursor)
			if !yield(pending) {
				return
			}

			select {
			case <-pending.done:
			case <-ctx.Done():
				return
			}

			if pending.err != nil {
				return
			}

			next := pending.page.NextCursor()
			if next == "" {
				return
			}
			cursor = next
		}
	}
}

// PendingPage is a page request in flight.
type PendingPage[T any] struct {
	done chan struct{}
	page *Page[T]
	err  error
}

func startPage[T any](ctx context.Context, fetch PageFetcher[T], cursor string) *PendingPage[T] {
	p := &PendingPage[T]{done: make(chan struct{})}

	go func() {
		defer close(p.done)
		p.page, p.err = fetchPage(ctx, fetch, cursor)
	}()

	return p
}

// Done is closed once the page request has completed.
func (p *PendingPage[T]) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the page has been received or ctx is done.
func (p *PendingPage[T]) Await(ctx context.Context) (*Page[T], error) {
	select {
	case <-p.done:
		return p.page, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func fetchPage[T any](ctx context.Context, fetch PageFetcher[T], cursor string) (*Page[T], error) {
	page, err := fetch(ctx, cursor)
	if err != nil {
		return nil, err
	}

	if page == nil {
		return &Page[T]{}, nil
	}

	if next := page.NextCursor(); next != "" && next == cursor {
		return nil, fmt.Errorf("%w: %q", ErrCursorNotAdvancing, cursor)
	}

	return page, nil
}
