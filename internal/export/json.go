package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/blackmichael/bluesky-posts/internal/domain"
)

// jsonPost is the nested export shape. Field order matches the canonical
// columns; arrays stay native and are emitted even when empty.
type jsonPost struct {
	UserHandle        string   `json:"user_handle"`
	AuthorHandle      string   `json:"author_handle"`
	AuthorDisplayName string   `json:"author_display_name"`
	CreatedAt         string   `json:"created_at"`
	PostType          string   `json:"post_type"`
	Text              string   `json:"text"`
	WebURL            string   `json:"web_url"`
	Likes             int      `json:"likes"`
	Reposts           int      `json:"reposts"`
	Replies           int      `json:"replies"`
	URLs              []string `json:"urls"`
	Images            []string `json:"images"`
	Mentions          []string `json:"mentions"`
	Lang              string   `json:"lang"`
	CID               string   `json:"cid"`
	AuthorDID         string   `json:"author_did"`
	URI               string   `json:"uri"`
}

// WriteJSON writes the nested export: a JSON object keyed by user handle,
// each value the ordered list of that identity's records.
func WriteJSON(w io.Writer, rs *domain.ResultSet) error {
	out := make(map[string][]jsonPost)
	for _, up := range rs.Keyed() {
		posts := make([]jsonPost, 0, len(up.Posts))
		for _, rec := range up.Posts {
			posts = append(posts, jsonPost{
				UserHandle:        up.Handle,
				AuthorHandle:      rec.Author.Handle,
				AuthorDisplayName: rec.Author.DisplayName,
				CreatedAt:         rec.CreatedAt,
				PostType:          string(rec.PostType),
				Text:              rec.Text,
				WebURL:            rec.WebURL,
				Likes:             rec.Likes,
				Reposts:           rec.Reposts,
				Replies:           rec.Replies,
				URLs:              emptyIfNil(rec.URLs),
				Images:            emptyIfNil(rec.Images),
				Mentions:          emptyIfNil(rec.Mentions),
				Lang:              rec.Lang,
				CID:               rec.CID,
				AuthorDID:         rec.Author.DID,
				URI:               rec.URI,
			})
		}
		out[up.Handle] = posts
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// emptyIfNil keeps array fields as [] rather than null in the output.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
