package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/blackmichael/bluesky-posts/internal/bluesky"
)

// countingPacer records how many inter-page pauses the walker requested.
type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func testItems(prefix string, n int) []bluesky.FeedItem {
	items := make([]bluesky.FeedItem, n)
	for i := range items {
		items[i] = bluesky.FeedItem{
			Post: bluesky.PostView{
				URI:    fmt.Sprintf("at://did:plc:test/app.bsky.feed.post/%s%d", prefix, i),
				Author: &bluesky.Actor{DID: "did:plc:test", Handle: "alice.bsky.social"},
			},
		}
	}
	return items
}

func TestWalkFollowsCursorsUntilExhaustion(t *testing.T) {
	pages := []struct {
		items  []bluesky.FeedItem
		cursor string
	}{
		{testItems("a", 2), "c1"},
		{testItems("b", 3), "c2"},
		{testItems("c", 1), ""},
	}

	var gotCursors []string
	calls := 0
	fetchPage := func(ctx context.Context, cursor string, limit int) ([]bluesky.FeedItem, string, error) {
		gotCursors = append(gotCursors, cursor)
		p := pages[calls]
		calls++
		return p.items, p.cursor, nil
	}

	pacer := &countingPacer{}
	items, err := walk(context.Background(), "test", fetchPage, 100, 0, pacer, nil)
	if err != nil {
		t.Fatalf("walk returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("page fetches = %d, want 3", calls)
	}
	if len(items) != 6 {
		t.Errorf("items = %d, want 6", len(items))
	}
	wantCursors := []string{"", "c1", "c2"}
	for i, want := range wantCursors {
		if gotCursors[i] != want {
			t.Errorf("cursor for call %d = %q, want %q", i, gotCursors[i], want)
		}
	}
	if pacer.waits != 2 {
		t.Errorf("pauses = %d, want 2 (skipped before first request)", pacer.waits)
	}
}

func TestWalkRespectsCap(t *testing.T) {
	var gotLimits []int
	fetchPage := func(ctx context.Context, cursor string, limit int) ([]bluesky.FeedItem, string, error) {
		gotLimits = append(gotLimits, limit)
		return testItems(cursor, limit), "more", nil
	}

	items, err := walk(context.Background(), "test", fetchPage, 3, 4, &countingPacer{}, nil)
	if err != nil {
		t.Fatalf("walk returned error: %v", err)
	}
	if len(items) != 4 {
		t.Errorf("items = %d, want 4", len(items))
	}
	wantLimits := []int{3, 1}
	if len(gotLimits) != len(wantLimits) {
		t.Fatalf("requests = %d, want %d", len(gotLimits), len(wantLimits))
	}
	for i, want := range wantLimits {
		if gotLimits[i] != want {
			t.Errorf("limit for call %d = %d, want %d", i, gotLimits[i], want)
		}
	}
}

func TestWalkClampsPageSize(t *testing.T) {
	var gotLimit int
	fetchPage := func(ctx context.Context, cursor string, limit int) ([]bluesky.FeedItem, string, error) {
		gotLimit = limit
		return testItems("a", 1), "", nil
	}

	if _, err := walk(context.Background(), "test", fetchPage, 500, 0, &countingPacer{}, nil); err != nil {
		t.Fatalf("walk returned error: %v", err)
	}
	if gotLimit != maxPageSize {
		t.Errorf("requested limit = %d, want clamped to %d", gotLimit, maxPageSize)
	}
}

func TestWalkPreservesPartialsOnFailure(t *testing.T) {
	calls := 0
	fetchPage := func(ctx context.Context, cursor string, limit int) ([]bluesky.FeedItem, string, error) {
		calls++
		if calls == 1 {
			return testItems("a", 2), "c1", nil
		}
		return nil, "", &bluesky.Error{StatusCode: 502, Message: "upstream down"}
	}

	items, err := walk(context.Background(), "author feed @alice", fetchPage, 100, 0, &countingPacer{}, nil)
	if len(items) != 2 {
		t.Errorf("partial items = %d, want 2", len(items))
	}

	var rerr *RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RetrievalError", err)
	}
	if rerr.Cursor != "c1" {
		t.Errorf("cursor at failure = %q, want c1", rerr.Cursor)
	}
	if rerr.Collected != 2 {
		t.Errorf("collected = %d, want 2", rerr.Collected)
	}
	var upstream *bluesky.Error
	if !errors.As(err, &upstream) || upstream.StatusCode != 502 {
		t.Errorf("expected wrapped upstream error with status 502, got %v", err)
	}
}

func TestWalkReportsProgress(t *testing.T) {
	pages := [][]bluesky.FeedItem{testItems("a", 2), testItems("b", 3)}
	calls := 0
	fetchPage := func(ctx context.Context, cursor string, limit int) ([]bluesky.FeedItem, string, error) {
		p := pages[calls]
		calls++
		if calls == len(pages) {
			return p, "", nil
		}
		return p, "next", nil
	}

	type update struct{ page, total int }
	var got []update
	progress := func(pageRecords, total int) {
		got = append(got, update{pageRecords, total})
	}

	if _, err := walk(context.Background(), "test", fetchPage, 100, 0, &countingPacer{}, progress); err != nil {
		t.Fatalf("walk returned error: %v", err)
	}
	want := []update{{2, 2}, {3, 5}}
	if len(got) != len(want) {
		t.Fatalf("progress updates = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("update %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWalkStopsOnEmptyPage(t *testing.T) {
	calls := 0
	fetchPage := func(ctx context.Context, cursor string, limit int) ([]bluesky.FeedItem, string, error) {
		calls++
		return nil, "phantom-cursor", nil
	}

	items, err := walk(context.Background(), "test", fetchPage, 100, 0, &countingPacer{}, nil)
	if err != nil {
		t.Fatalf("walk returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("page fetches = %d, want 1", calls)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}
