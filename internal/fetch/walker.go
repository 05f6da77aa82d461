package fetch

import (
	"context"

	"github.com/blackmichael/bluesky-posts/internal/bluesky"
)

// maxPageSize is the upstream hard maximum for a single feed or search
// request. Caller page sizes are clamped to it.
const maxPageSize = 100

// pageFunc issues one bounded upstream request at the given cursor and
// returns the page's items plus the next cursor. An empty next cursor is
// the upstream's only exhaustion signal.
type pageFunc func(ctx context.Context, cursor string, limit int) ([]bluesky.FeedItem, string, error)

// walk follows continuation cursors until the upstream is exhausted or cap
// raw records have been retrieved. cap <= 0 means no cap. Requests after
// the first are spaced through pace; progress, when non-nil, is told each
// page's record count and the running total. On upstream failure the items
// retrieved so far are returned together with a *RetrievalError.
func walk(ctx context.Context, label string, fetch pageFunc, pageSize, cap int, pace Pacer, progress Progress) ([]bluesky.FeedItem, error) {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var items []bluesky.FeedItem
	cursor := ""
	for page := 0; ; page++ {
		limit := pageSize
		if cap > 0 && cap-len(items) < limit {
			limit = cap - len(items)
		}
		if limit <= 0 {
			break
		}

		// The pause is pacing between successive requests, so the first
		// request is never delayed.
		if page > 0 {
			if err := pace.Wait(ctx); err != nil {
				return items, err
			}
		}

		batch, next, err := fetch(ctx, cursor, limit)
		if err != nil {
			return items, &RetrievalError{Query: label, Cursor: cursor, Collected: len(items), Err: err}
		}

		items = append(items, batch...)
		if progress != nil {
			progress(len(batch), len(items))
		}

		if next == "" || len(batch) == 0 {
			break
		}
		if cap > 0 && len(items) >= cap {
			break
		}
		cursor = next
	}

	if cap > 0 && len(items) > cap {
		items = items[:cap]
	}
	return items, nil
}
