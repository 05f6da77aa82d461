package fetch

import (
	"context"

	"github.com/blackmichael/bluesky-posts/internal/bluesky"
)

// Source is the subset of the Bluesky client the fetch service depends on.
type Source interface {
	// AuthorFeed fetches one page of a user's feed.
	AuthorFeed(ctx context.Context, actor, cursor string, limit int) (*bluesky.FeedPage, error)

	// SearchPosts fetches one page of search results.
	SearchPosts(ctx context.Context, p bluesky.SearchParams) (*bluesky.SearchPage, error)

	// ListMembers resolves a list AT-URI to its member accounts.
	ListMembers(ctx context.Context, listURI string) ([]bluesky.Actor, error)

	// Profile resolves a handle or DID to a profile.
	Profile(ctx context.Context, actor string) (*bluesky.Profile, error)
}

// Progress receives one update per retrieved page: the page's record count
// and the running total for the current walk.
type Progress func(pageRecords, total int)

// Pacer spaces successive upstream requests. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}
