package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/blackmichael/bluesky-posts/internal/bluesky"
	"github.com/blackmichael/bluesky-posts/internal/domain"
)

const (
	// defaultUserLimit caps records per identity when the caller sets none.
	defaultUserLimit = 20

	// pageInterval spaces successive upstream requests to stay under the
	// public API rate limits. Pacing only; there is no retry.
	pageInterval = 500 * time.Millisecond
)

// Service aggregates paginated fetches across one or more identities. All
// per-identity walks run sequentially through one shared pacer, so the
// request rate stays bounded across the whole aggregation.
type Service struct {
	source   Source
	pace     Pacer
	progress Progress
	logger   *slog.Logger
}

// New creates a fetch service over the given source. progress may be nil.
func New(source Source, logger *slog.Logger, progress Progress) *Service {
	return &Service{
		source:   source,
		pace:     rate.NewLimiter(rate.Every(pageInterval), 1),
		progress: progress,
		logger:   logger,
	}
}

// Run executes one fully-specified query and returns the aggregated result
// set. Multi-identity queries degrade to partial results when individual
// identities fail; a sole identity that yields zero records is fatal.
func (s *Service) Run(ctx context.Context, q domain.Query) (*domain.ResultSet, error) {
	switch q.Kind {
	case domain.QueryUserTimeline, domain.QueryUserSet:
		return s.fetchUsers(ctx, q.Identities, q.Limit)
	case domain.QueryListMembership:
		return s.fetchList(ctx, q.ListURL, q.Limit)
	case domain.QuerySearch:
		return s.search(ctx, q)
	default:
		return nil, fmt.Errorf("unknown query kind %d", q.Kind)
	}
}

// fetchUsers walks each identity's author feed in turn. A failure for one
// identity is logged and its partial records kept; it never aborts the
// remaining identities.
func (s *Service) fetchUsers(ctx context.Context, handles []string, limit int) (*domain.ResultSet, error) {
	if limit <= 0 {
		limit = defaultUserLimit
	}

	rs := &domain.ResultSet{}
	for _, handle := range handles {
		records, err := s.userPosts(ctx, handle, limit)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled: stop issuing requests, keep what we have.
				return rs, err
			}
			var rerr *RetrievalError
			if !errors.As(err, &rerr) {
				return rs, err
			}
			if len(handles) == 1 && len(records) == 0 {
				return nil, err
			}
			s.logger.Warn("partial result for user",
				"handle", handle,
				"collected", len(records),
				"error", err,
			)
		}
		if len(records) > 0 {
			rs.Users = append(rs.Users, domain.UserPosts{Handle: handle, Posts: records})
		}
		s.logger.Info("retrieved user posts", "handle", handle, "records", len(records))
	}
	return rs, nil
}

// userPosts walks one author feed and normalizes it. On retrieval failure
// the records collected before the failure are still returned.
func (s *Service) userPosts(ctx context.Context, handle string, limit int) ([]domain.Record, error) {
	handle = domain.NormalizeHandle(handle)

	fetchPage := func(ctx context.Context, cursor string, limit int) ([]bluesky.FeedItem, string, error) {
		page, err := s.source.AuthorFeed(ctx, handle, cursor, limit)
		if err != nil {
			return nil, "", err
		}
		return page.Feed, page.Cursor, nil
	}

	items, err := walk(ctx, "author feed @"+handle, fetchPage, maxPageSize, limit, s.pace, s.progress)
	return collect(items), err
}

// fetchList resolves a list to its member identities and fans out one
// author-feed walk per member. The limit applies per member.
func (s *Service) fetchList(ctx context.Context, listURL string, limitPerMember int) (*domain.ResultSet, error) {
	ref, err := domain.ParseListURL(listURL)
	if err != nil {
		return nil, err
	}

	owner := ref.Owner
	if !strings.HasPrefix(owner, "did:") {
		profile, err := s.source.Profile(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("resolve list owner %s: %w", owner, err)
		}
		owner = profile.DID
	}

	listURI := fmt.Sprintf("at://%s/app.bsky.graph.list/%s",
		domain.SanitizeURIComponent(owner), domain.SanitizeURIComponent(ref.ID))

	members, err := s.source.ListMembers(ctx, listURI)
	if err != nil {
		return nil, fmt.Errorf("resolve list members: %w", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("list %s has no members", listURI)
	}

	handles := make([]string, 0, len(members))
	for _, m := range members {
		if m.Handle != "" {
			handles = append(handles, m.Handle)
		}
	}
	s.logger.Info("resolved list members", "list", listURI, "members", len(handles))

	return s.fetchUsers(ctx, handles, limitPerMember)
}

// search walks the search endpoint and returns a flat result set in the
// upstream's ranking order. Search has no default cap; an unset limit walks
// until the upstream pagination is exhausted.
func (s *Service) search(ctx context.Context, q domain.Query) (*domain.ResultSet, error) {
	params := bluesky.SearchParams{
		Query:   q.Text,
		From:    q.Filters.From,
		Mention: q.Filters.Mention,
		Lang:    q.Filters.Language,
		Since:   q.Filters.Since,
		Until:   q.Filters.Until,
	}

	fetchPage := func(ctx context.Context, cursor string, limit int) ([]bluesky.FeedItem, string, error) {
		p := params
		p.Cursor = cursor
		p.Limit = limit
		page, err := s.source.SearchPosts(ctx, p)
		if err != nil {
			return nil, "", err
		}
		items := make([]bluesky.FeedItem, len(page.Posts))
		for i, post := range page.Posts {
			items[i] = bluesky.FeedItem{Post: post}
		}
		return items, page.Cursor, nil
	}

	items, err := walk(ctx, "search "+q.Text, fetchPage, maxPageSize, q.Limit, s.pace, s.progress)
	records := collect(items)
	if err != nil {
		if len(records) == 0 {
			return nil, err
		}
		s.logger.Warn("partial search result", "query", q.Text, "collected", len(records), "error", err)
	}

	if q.Filters.Domain != "" {
		records = filterByDomain(records, q.Filters.Domain)
	}

	s.logger.Info("search complete", "query", q.Text, "records", len(records))
	return &domain.ResultSet{Flat: true, Posts: records}, nil
}

// filterByDomain keeps records that link to the given hostname. The search
// endpoint has no domain operator, so this runs client-side over the
// extracted URLs.
func filterByDomain(records []domain.Record, host string) []domain.Record {
	host = strings.ToLower(host)
	out := records[:0]
	for _, rec := range records {
		for _, u := range rec.URLs {
			if strings.Contains(strings.ToLower(u), host) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
