package cache

import (
	"path/filepath"
	"testing"

	"github.com/blackmichael/bluesky-posts/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(uri string, likes int) domain.Record {
	return domain.Record{
		URI:    uri,
		CID:    "bafyabc",
		WebURL: "https://bsky.app/profile/alice.bsky.social/post/3kabc",
		Author: domain.Author{
			DID:         "did:plc:alice",
			Handle:      "alice.bsky.social",
			DisplayName: "Alice",
		},
		Text:      "hello world",
		CreatedAt: "2024-03-01T12:00:00.000Z",
		PostType:  domain.PostTypeOriginal,
		Likes:     likes,
		URLs:      []string{"https://example.com"},
		Images:    []string{},
		Mentions:  []string{},
	}
}

func TestSavePosts(t *testing.T) {
	s := openTestStore(t)

	n, err := s.SavePosts("alice.bsky.social", []domain.Record{
		testRecord("at://did:plc:alice/app.bsky.feed.post/3ka", 1),
		testRecord("at://did:plc:alice/app.bsky.feed.post/3kb", 2),
	})
	if err != nil {
		t.Fatalf("SavePosts returned error: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	count, err := s.CountPosts()
	if err != nil {
		t.Fatalf("CountPosts returned error: %v", err)
	}
	if count != 2 {
		t.Errorf("archived = %d, want 2", count)
	}
}

func TestSavePostsUpsertRefreshesCounts(t *testing.T) {
	s := openTestStore(t)
	uri := "at://did:plc:alice/app.bsky.feed.post/3ka"

	if _, err := s.SavePosts("alice.bsky.social", []domain.Record{testRecord(uri, 1)}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := s.SavePosts("alice.bsky.social", []domain.Record{testRecord(uri, 9)}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	count, err := s.CountPosts()
	if err != nil {
		t.Fatalf("CountPosts returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("archived = %d, want 1 (same uri upserted)", count)
	}

	var likes int
	if err := s.db.QueryRow(`SELECT likes FROM posts WHERE uri = ?`, uri).Scan(&likes); err != nil {
		t.Fatalf("reading back likes: %v", err)
	}
	if likes != 9 {
		t.Errorf("likes = %d, want the refreshed count", likes)
	}
}

func TestSaveResultSet(t *testing.T) {
	s := openTestStore(t)

	rs := &domain.ResultSet{
		Users: []domain.UserPosts{
			{Handle: "alice.bsky.social", Posts: []domain.Record{
				testRecord("at://did:plc:alice/app.bsky.feed.post/3ka", 1),
			}},
			{Handle: "bob.bsky.social", Posts: []domain.Record{
				testRecord("at://did:plc:bob/app.bsky.feed.post/3kb", 1),
			}},
		},
	}

	n, err := s.SaveResultSet(rs)
	if err != nil {
		t.Fatalf("SaveResultSet returned error: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	var handle string
	err = s.db.QueryRow(`SELECT user_handle FROM posts WHERE uri = ?`,
		"at://did:plc:bob/app.bsky.feed.post/3kb").Scan(&handle)
	if err != nil {
		t.Fatalf("reading back user_handle: %v", err)
	}
	if handle != "bob.bsky.social" {
		t.Errorf("user_handle = %q, want the identity the record was fetched under", handle)
	}
}

func TestSavePostsArrayColumns(t *testing.T) {
	s := openTestStore(t)

	rec := testRecord("at://did:plc:alice/app.bsky.feed.post/3ka", 1)
	rec.Mentions = []string{"did:plc:bob", "did:plc:carol"}
	if _, err := s.SavePosts("alice.bsky.social", []domain.Record{rec}); err != nil {
		t.Fatalf("SavePosts returned error: %v", err)
	}

	var urls, images, mentions string
	err := s.db.QueryRow(`SELECT urls, images, mentions FROM posts WHERE uri = ?`, rec.URI).
		Scan(&urls, &images, &mentions)
	if err != nil {
		t.Fatalf("reading back arrays: %v", err)
	}
	if urls != `["https://example.com"]` {
		t.Errorf("urls = %q", urls)
	}
	if images != "[]" {
		t.Errorf("images = %q, want [] for empty", images)
	}
	if mentions != `["did:plc:bob","did:plc:carol"]` {
		t.Errorf("mentions = %q", mentions)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "archive.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer s.Close()

	if n, err := s.CountPosts(); err != nil || n != 0 {
		t.Errorf("fresh archive count = %d (err %v), want 0", n, err)
	}
}
