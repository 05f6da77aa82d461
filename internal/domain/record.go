package domain

// PostType classifies how a post entered the feed it was found in.
type PostType string

const (
	PostTypeOriginal PostType = "original"
	PostTypeReply    PostType = "reply"
	PostTypeRepost   PostType = "repost"
)

// Author identifies the account that wrote a post.
type Author struct {
	// DID is the stable decentralized identifier of the account.
	DID string

	// Handle is the account's current handle (e.g. alice.bsky.social).
	Handle string

	// DisplayName is the profile display name, falling back to the handle
	// when the profile has none.
	DisplayName string
}

// Record is one normalized post, repost, or reply. It is immutable once
// built; every export format is a projection of this shape.
type Record struct {
	// URI is the AT-URI of the post (e.g. at://did:plc:abc/app.bsky.feed.post/3l3qo2vuowo2b).
	URI string

	// CID is the content identifier of the record. It may be empty for
	// synthetic wrapper entries.
	CID string

	// WebURL is the bsky.app permalink derived from URI and author handle.
	WebURL string

	Author Author

	// Text is the post body.
	Text string

	// CreatedAt is the upstream ISO-8601 creation timestamp, carried
	// through verbatim.
	CreatedAt string

	PostType PostType

	Likes   int
	Reposts int
	Replies int

	// URLs, Images, and Mentions are always non-nil so exports emit empty
	// arrays rather than nulls.
	URLs     []string
	Images   []string
	Mentions []string

	// Lang is the first language tag set by the author's client, if any.
	Lang string
}
