package domain

import (
	"fmt"
	"strings"
)

// QueryKind selects which upstream primitive a query runs against.
type QueryKind int

const (
	// QueryUserTimeline fetches one user's author feed.
	QueryUserTimeline QueryKind = iota + 1

	// QueryUserSet fetches the author feeds of an explicit set of users.
	QueryUserSet

	// QueryListMembership resolves a Bluesky list to its members and
	// fetches each member's author feed.
	QueryListMembership

	// QuerySearch runs a full-text post search.
	QuerySearch
)

// SearchFilters narrows search results. Zero-valued fields impose no
// constraint. Since and Until are YYYY-MM-DD dates. Domain keeps only posts
// linking to the given hostname and is applied client-side.
type SearchFilters struct {
	From     string
	Mention  string
	Language string
	Since    string
	Until    string
	Domain   string
}

// Query is one fully-specified retrieval request. Queries are built once
// from caller input and are immutable; the fetch service never prompts or
// fills in targets on its own.
type Query struct {
	Kind QueryKind

	// Identities holds the normalized handles to fetch, for user queries.
	Identities []string

	// ListURL is the list reference, for list queries. Any of the bsky.app,
	// at://, or bare-DID forms.
	ListURL string

	// Text is the search query, for search queries.
	Text string

	// Limit caps the records per identity (user and list queries) or in
	// total (search). Zero means the default per-identity cap for user and
	// list queries, and no cap for search.
	Limit int

	Filters SearchFilters
}

// NewUserTimelineQuery builds a query for a single user's posts.
func NewUserTimelineQuery(handle string, limit int) (Query, error) {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return Query{}, fmt.Errorf("empty handle")
	}
	return Query{Kind: QueryUserTimeline, Identities: []string{handle}, Limit: limit}, nil
}

// NewUserSetQuery builds a query for an explicit set of users.
func NewUserSetQuery(handles []string, limit int) (Query, error) {
	var ids []string
	for _, h := range handles {
		if h = NormalizeHandle(h); h != "" {
			ids = append(ids, h)
		}
	}
	if len(ids) == 0 {
		return Query{}, fmt.Errorf("no valid handles")
	}
	return Query{Kind: QueryUserSet, Identities: ids, Limit: limit}, nil
}

// NewListQuery builds a query for the members of a Bluesky list. The limit
// applies per member.
func NewListQuery(listURL string, limitPerMember int) (Query, error) {
	if _, err := ParseListURL(listURL); err != nil {
		return Query{}, err
	}
	return Query{Kind: QueryListMembership, ListURL: listURL, Limit: limitPerMember}, nil
}

// NewSearchQuery builds a full-text search query.
func NewSearchQuery(text string, limit int, filters SearchFilters) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, fmt.Errorf("empty search query")
	}
	filters.From = NormalizeHandle(filters.From)
	filters.Mention = NormalizeHandle(filters.Mention)
	return Query{Kind: QuerySearch, Text: text, Limit: limit, Filters: filters}, nil
}
