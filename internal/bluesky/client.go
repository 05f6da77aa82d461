package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultPDS = "https://bsky.social"

// maxListPageSize is the upstream cap for app.bsky.graph.getList.
const maxListPageSize = 100

// Error is an upstream XRPC error response.
type Error struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
}

// Client is a minimal BlueSky/AT Protocol API client for retrieving posts.
// The session is held on the client instance; construct one per
// authenticated identity rather than sharing process-wide state.
type Client struct {
	pds        string
	httpClient *http.Client

	// populated after Login
	accessJwt string
	did       string
	handle    string
}

// NewClient creates a new BlueSky API client. If pds is empty, it defaults
// to https://bsky.social.
func NewClient(pds string) *Client {
	if pds == "" {
		pds = defaultPDS
	}
	return &Client{
		pds: pds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login authenticates with the PDS and stores the session token. Use an App
// Password, not your account password.
func (c *Client) Login(ctx context.Context, identifier, password string) error {
	body := map[string]string{
		"identifier": identifier,
		"password":   password,
	}

	var resp createSessionResponse
	if err := c.post(ctx, "/xrpc/com.atproto.server.createSession", body, &resp); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	c.accessJwt = resp.AccessJwt
	c.did = resp.DID
	c.handle = resp.Handle
	return nil
}

// DID returns the authenticated user's DID. Only valid after Login.
func (c *Client) DID() string {
	return c.did
}

// Handle returns the authenticated user's handle. Only valid after Login.
func (c *Client) Handle() string {
	return c.handle
}

// AuthorFeed fetches one page of a user's feed via
// app.bsky.feed.getAuthorFeed. An empty cursor requests the newest page.
func (c *Client) AuthorFeed(ctx context.Context, actor, cursor string, limit int) (*FeedPage, error) {
	params := url.Values{}
	params.Set("actor", actor)
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var page FeedPage
	if err := c.get(ctx, "/xrpc/app.bsky.feed.getAuthorFeed", params, &page); err != nil {
		return nil, fmt.Errorf("get author feed: %w", err)
	}
	return &page, nil
}

// SearchParams carries the searchPosts query and its optional filters.
// Zero-valued fields are omitted from the request.
type SearchParams struct {
	Query   string
	From    string
	Mention string
	Lang    string
	Since   string
	Until   string
	Cursor  string
	Limit   int
}

// SearchPosts fetches one page of search results via
// app.bsky.feed.searchPosts.
func (c *Client) SearchPosts(ctx context.Context, p SearchParams) (*SearchPage, error) {
	params := url.Values{}
	params.Set("q", p.Query)
	params.Set("limit", strconv.Itoa(p.Limit))
	if p.From != "" {
		params.Set("from", p.From)
	}
	if p.Mention != "" {
		params.Set("mentions", p.Mention)
	}
	if p.Lang != "" {
		params.Set("lang", p.Lang)
	}
	if p.Since != "" {
		params.Set("since", p.Since)
	}
	if p.Until != "" {
		params.Set("until", p.Until)
	}
	if p.Cursor != "" {
		params.Set("cursor", p.Cursor)
	}

	var page SearchPage
	if err := c.get(ctx, "/xrpc/app.bsky.feed.searchPosts", params, &page); err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return &page, nil
}

// ListMembers resolves a list AT-URI to its member accounts via
// app.bsky.graph.getList.
func (c *Client) ListMembers(ctx context.Context, listURI string) ([]Actor, error) {
	params := url.Values{}
	params.Set("list", listURI)
	params.Set("limit", strconv.Itoa(maxListPageSize))

	var resp listResponse
	if err := c.get(ctx, "/xrpc/app.bsky.graph.getList", params, &resp); err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	members := make([]Actor, 0, len(resp.Items))
	for _, item := range resp.Items {
		members = append(members, item.Subject)
	}
	return members, nil
}

// Profile fetches a user's profile via app.bsky.actor.getProfile. The actor
// may be a handle or a DID.
func (c *Client) Profile(ctx context.Context, actor string) (*Profile, error) {
	params := url.Values{}
	params.Set("actor", actor)

	var profile Profile
	if err := c.get(ctx, "/xrpc/app.bsky.actor.getProfile", params, &profile); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pds+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.accessJwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessJwt)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pds+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessJwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessJwt)
	}
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(respBody)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

type createSessionResponse struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
	Handle    string `json:"handle"`
}
