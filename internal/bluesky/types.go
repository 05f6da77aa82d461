package bluesky

// $type discriminators for the upstream tagged unions this client decodes.
// Record shapes are classified once at this boundary; everything past it
// works on decoded structs.
const (
	TypeReasonRepost = "app.bsky.feed.defs#reasonRepost"
	TypeFacetLink    = "app.bsky.richtext.facet#link"
	TypeFacetMention = "app.bsky.richtext.facet#mention"
	TypeFacetTag     = "app.bsky.richtext.facet#tag"
	TypeEmbedImages  = "app.bsky.embed.images"
)

// Actor is the author/profile summary embedded in feed responses.
type Actor struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
}

// StrongRef is a reference to a specific version of a record.
type StrongRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// ReplyRef contains references to the parent and root of a reply chain.
type ReplyRef struct {
	Root   StrongRef `json:"root"`
	Parent StrongRef `json:"parent"`
}

// FacetFeature is one richtext annotation attached to a text span. Type
// discriminates links, mentions, and tags; only the field matching the tag
// is populated upstream.
type FacetFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri,omitempty"`
	DID  string `json:"did,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

// Facet marks a span of post text with structured features.
type Facet struct {
	Features []FacetFeature `json:"features"`
}

// BlobRef is an AT Protocol blob reference for uploaded content.
type BlobRef struct {
	Type string `json:"$type,omitempty"`
	Ref  struct {
		Link string `json:"$link"`
	} `json:"ref"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
}

// EmbedImage is one image attached to a post.
type EmbedImage struct {
	Alt   string   `json:"alt"`
	Image *BlobRef `json:"image,omitempty"`
}

// Embed is the subset of the post embed union this client inspects. Type
// carries the union tag; Images is set for app.bsky.embed.images.
type Embed struct {
	Type   string       `json:"$type"`
	Images []EmbedImage `json:"images,omitempty"`
}

// PostRecord is the app.bsky.feed.post record body.
type PostRecord struct {
	Type      string    `json:"$type"`
	Text      string    `json:"text"`
	CreatedAt string    `json:"createdAt"`
	Langs     []string  `json:"langs,omitempty"`
	Reply     *ReplyRef `json:"reply,omitempty"`
	Facets    []Facet   `json:"facets,omitempty"`
	Embed     *Embed    `json:"embed,omitempty"`
}

// PostView is app.bsky.feed.defs#postView: a hydrated post with counts.
type PostView struct {
	URI         string     `json:"uri"`
	CID         string     `json:"cid"`
	Author      *Actor     `json:"author"`
	Record      PostRecord `json:"record"`
	LikeCount   int        `json:"likeCount"`
	RepostCount int        `json:"repostCount"`
	ReplyCount  int        `json:"replyCount"`
	IndexedAt   string     `json:"indexedAt"`
}

// Reason marks a feed item that is present because someone reposted it.
type Reason struct {
	Type string `json:"$type"`
	By   *Actor `json:"by,omitempty"`
}

// IsRepost reports whether the reason carries the repost tag.
func (r *Reason) IsRepost() bool {
	return r != nil && r.Type == TypeReasonRepost
}

// FeedItem is one entry of an author feed page. Search pages carry bare
// PostViews; callers wrap those in a FeedItem with no reason.
type FeedItem struct {
	Post   PostView `json:"post"`
	Reason *Reason  `json:"reason,omitempty"`
}

// FeedPage is one app.bsky.feed.getAuthorFeed response. An empty cursor
// means the feed is exhausted.
type FeedPage struct {
	Feed   []FeedItem `json:"feed"`
	Cursor string     `json:"cursor,omitempty"`
}

// SearchPage is one app.bsky.feed.searchPosts response.
type SearchPage struct {
	Posts     []PostView `json:"posts"`
	Cursor    string     `json:"cursor,omitempty"`
	HitsTotal int        `json:"hitsTotal,omitempty"`
}

// Profile is the subset of app.bsky.actor.getProfile this client uses.
type Profile struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
}

type listItem struct {
	Subject Actor `json:"subject"`
}

type listResponse struct {
	Items  []listItem `json:"items"`
	Cursor string     `json:"cursor,omitempty"`
}
