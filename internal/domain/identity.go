package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ListRef identifies a Bluesky list by its owner and record key. Owner is a
// handle or a DID depending on the URL form it was parsed from.
type ListRef struct {
	Owner string
	ID    string
}

var (
	browserListPattern = regexp.MustCompile(`bsky\.app/profile/([^/]+)/lists/([^/]+)`)
	atURIListPattern   = regexp.MustCompile(`at://([^/]+)/app\.bsky\.graph\.list/([^/]+)`)
	didListPattern     = regexp.MustCompile(`(did:[^/]+)/app\.bsky\.graph\.list/([^/]+)`)

	urlPattern   = regexp.MustCompile(`https?://[\w\-.]+(?:/[\w\-./%?&=+#]*)?`)
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	quoteChars   = regexp.MustCompile(`["']+`)
)

// NormalizeHandle reduces caller input to a bare handle: whitespace and
// quotes trimmed, leading @ removed.
func NormalizeHandle(handle string) string {
	handle = SanitizeURIComponent(handle)
	return strings.TrimPrefix(handle, "@")
}

// SanitizeURIComponent strips quotes, surrounding whitespace, and control
// characters that would corrupt an AT-URI.
func SanitizeURIComponent(s string) string {
	s = strings.TrimSpace(s)
	s = quoteChars.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseListURL extracts the owner and list ID from a Bluesky list
// reference. Supported forms:
//
//	https://bsky.app/profile/user.bsky.social/lists/123abc
//	at://did:plc:xxx/app.bsky.graph.list/123abc
//	did:plc:xxx/app.bsky.graph.list/123abc
func ParseListURL(raw string) (ListRef, error) {
	for _, p := range []*regexp.Regexp{browserListPattern, atURIListPattern, didListPattern} {
		if m := p.FindStringSubmatch(raw); m != nil {
			return ListRef{
				Owner: SanitizeURIComponent(m[1]),
				ID:    SanitizeURIComponent(m[2]),
			}, nil
		}
	}
	return ListRef{}, fmt.Errorf("unrecognized list URL format: %s", raw)
}

// WebURL converts an AT-URI into the bsky.app permalink for the post. The
// record key is the final path segment of the URI; no network call is made.
func WebURL(uri, authorHandle string) string {
	rkey := uri
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		rkey = uri[i+1:]
	}
	return "https://bsky.app/profile/" + authorHandle + "/post/" + rkey
}

// ExtractURLs finds bare URLs in post text. It backs up facet extraction
// for posts whose links were never annotated.
func ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}
	return urlPattern.FindAllString(text, -1)
}
