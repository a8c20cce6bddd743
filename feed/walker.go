package feed

import (
	"context"
	"fmt"
)

// FetchError is a failed page fetch. It carries the cursor whose fetch
// failed so a later run can resume the traversal from that point.
type FetchError struct {
	Cursor string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Cursor == "" {
		return fmt.Sprintf("fail to fetch first feed page: %v", e.Err)
	}
	return fmt.Sprintf("fail to fetch feed page at cursor %q: %v", e.Cursor, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// WalkPages drives a full traversal of a cursor-paginated feed, invoking
// visit once per page in cursor order. The chain is forward only: each fetch
// uses the cursor returned by the previous page, starting from the empty
// cursor, and stops when a page reports no next cursor. A page with zero
// casts but a next cursor does not terminate the walk, live feeds serve such
// pages routinely.
//
// Every invocation is a fresh traversal from the beginning. A fetch failure
// aborts the walk with a *FetchError; a visit error aborts with that error.
func WalkPages(ctx context.Context, fetcher PageFetcher, visit func(*Page) error) error {
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := fetcher.FetchPage(ctx, cursor)
		if err != nil {
			return &FetchError{Cursor: cursor, Err: err}
		}
		if err := visit(page); err != nil {
			return err
		}
		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}

// Walk is the cast-level convenience over WalkPages.
func Walk(ctx context.Context, fetcher PageFetcher, visit func(Cast) error) error {
	return WalkPages(ctx, fetcher, func(page *Page) error {
		for i := range page.Casts {
			if err := visit(page.Casts[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
