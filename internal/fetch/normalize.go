package fetch

import (
	"slices"

	"github.com/blackmichael/bluesky-posts/internal/bluesky"
	"github.com/blackmichael/bluesky-posts/internal/domain"
)

// blobURLFormat resolves an uploaded image blob to a fetchable URL.
const blobURLFormat = "https://bsky.social/xrpc/com.atproto.sync.getBlob?did="

// normalize maps one raw feed item onto the canonical record shape. It is a
// pure function: no I/O, identical input yields an identical record. It
// returns false when the item carries no resolvable author handle, in which
// case the record is dropped rather than errored.
func normalize(item bluesky.FeedItem) (domain.Record, bool) {
	post := item.Post
	if post.Author == nil || post.Author.Handle == "" {
		return domain.Record{}, false
	}

	displayName := post.Author.DisplayName
	if displayName == "" {
		displayName = post.Author.Handle
	}

	rec := domain.Record{
		URI:    post.URI,
		CID:    post.CID,
		WebURL: domain.WebURL(post.URI, post.Author.Handle),
		Author: domain.Author{
			DID:         post.Author.DID,
			Handle:      post.Author.Handle,
			DisplayName: displayName,
		},
		Text:      post.Record.Text,
		CreatedAt: post.Record.CreatedAt,
		PostType:  classify(item),
		Likes:     post.LikeCount,
		Reposts:   post.RepostCount,
		Replies:   post.ReplyCount,
		URLs:      []string{},
		Images:    []string{},
		Mentions:  []string{},
	}

	if len(post.Record.Langs) > 0 {
		rec.Lang = post.Record.Langs[0]
	}

	for _, facet := range post.Record.Facets {
		for _, feature := range facet.Features {
			switch feature.Type {
			case bluesky.TypeFacetLink:
				if feature.URI != "" {
					rec.URLs = append(rec.URLs, feature.URI)
				}
			case bluesky.TypeFacetMention:
				if feature.DID != "" {
					rec.Mentions = append(rec.Mentions, feature.DID)
				}
			}
		}
	}

	// Facets only cover annotated spans; pick up bare URLs from the text
	// that no facet pointed at.
	for _, u := range domain.ExtractURLs(post.Record.Text) {
		if !slices.Contains(rec.URLs, u) {
			rec.URLs = append(rec.URLs, u)
		}
	}

	if post.Record.Embed != nil && post.Record.Embed.Type == bluesky.TypeEmbedImages {
		for _, img := range post.Record.Embed.Images {
			if img.Image != nil && img.Image.Ref.Link != "" {
				rec.Images = append(rec.Images, blobURLFormat+post.Author.DID+"&cid="+img.Image.Ref.Link)
			}
		}
	}

	return rec, true
}

// classify determines the post type from the decoded feed tags: a repost
// reason means the item wraps another author's post, a reply ref marks a
// reply, anything else is an original.
func classify(item bluesky.FeedItem) domain.PostType {
	if item.Reason.IsRepost() {
		return domain.PostTypeRepost
	}
	if item.Post.Record.Reply != nil {
		return domain.PostTypeReply
	}
	return domain.PostTypeOriginal
}

// collect normalizes raw items in order and collapses duplicate URIs,
// keeping the first occurrence. Overlapping pages can repeat a URI when
// posts land mid-pagination and the cursor drifts.
func collect(items []bluesky.FeedItem) []domain.Record {
	seen := make(map[string]struct{}, len(items))
	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		rec, ok := normalize(item)
		if !ok {
			continue
		}
		if _, dup := seen[rec.URI]; dup {
			continue
		}
		seen[rec.URI] = struct{}{}
		records = append(records, rec)
	}
	return records
}
