package connector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/senticheck/senticheck/internal/clients"
	"github.com/senticheck/senticheck/internal/models"
)

type fakeSearcher struct {
	postsByQuery map[string][]clients.BlueskyPost
	failFor      map[string]bool
}

func (f *fakeSearcher) SearchPosts(_ context.Context, query string, _ int) ([]clients.BlueskyPost, error) {
	if f.failFor[query] {
		return nil, errors.New("search failed")
	}
	return f.postsByQuery[query], nil
}

type fakeIngestor struct {
	ingested []models.PostRecord
	seen     map[string]bool
}

func (f *fakeIngestor) IngestRaw(_ context.Context, posts []models.PostRecord) (int, error) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	inserted := 0
	for _, p := range posts {
		if f.seen[p.PostURI] {
			continue
		}
		f.seen[p.PostURI] = true
		f.ingested = append(f.ingested, p)
		inserted++
	}
	return inserted, nil
}

func blueskyPost(uri, handle, text string) clients.BlueskyPost {
	var p clients.BlueskyPost
	p.URI = uri
	p.CID = "cid-" + uri
	p.Author.Handle = handle
	p.Record.Text = text
	p.Record.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return p
}

func TestRunCollectsAndFlushes(t *testing.T) {
	searcher := &fakeSearcher{postsByQuery: map[string][]clients.BlueskyPost{
		"golang": {
			blueskyPost("at://did:1/post/1", "alice.bsky.social", "go is great"),
			blueskyPost("at://did:2/post/2", "bob.bsky.social", "generics finally"),
		},
		"rust": {
			blueskyPost("at://did:3/post/3", "carol.bsky.social", "borrow checker woes"),
		},
	}}
	store := &fakeIngestor{}

	c := NewBlueskyConnector(searcher, store)
	inserted, err := c.Run(context.Background(), []string{"golang", "rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inserted != 3 {
		t.Errorf("inserted = %d, want 3", inserted)
	}
	byURI := make(map[string]models.PostRecord)
	for _, p := range store.ingested {
		byURI[p.PostURI] = p
	}
	if got := byURI["at://did:1/post/1"].SearchKeyword; got != "golang" {
		t.Errorf("keyword = %q, want golang", got)
	}
	if got := byURI["at://did:3/post/3"].SearchKeyword; got != "rust" {
		t.Errorf("keyword = %q, want rust", got)
	}
}

func TestRunSkipsFailingKeyword(t *testing.T) {
	searcher := &fakeSearcher{
		postsByQuery: map[string][]clients.BlueskyPost{
			"good": {blueskyPost("at://did:1/post/1", "alice.bsky.social", "fine post")},
		},
		failFor: map[string]bool{"bad": true},
	}
	store := &fakeIngestor{}

	c := NewBlueskyConnector(searcher, store)
	inserted, err := c.Run(context.Background(), []string{"bad", "good"})
	if err != nil {
		t.Fatalf("one failing keyword must not fail the cycle: %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}
}

func TestRunDropsEmptyText(t *testing.T) {
	searcher := &fakeSearcher{postsByQuery: map[string][]clients.BlueskyPost{
		"q": {
			blueskyPost("at://did:1/post/1", "alice.bsky.social", "   "),
			blueskyPost("at://did:2/post/2", "bob.bsky.social", "real content"),
		},
	}}
	store := &fakeIngestor{}

	c := NewBlueskyConnector(searcher, store)
	inserted, err := c.Run(context.Background(), []string{"q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}
}

func TestToPostRecordFallbacks(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	p := blueskyPost("at://did:1/post/1", "alice.bsky.social", "hello")
	p.Author.DisplayName = "Alice"
	record := toPostRecord(p, "kw", fetchedAt)
	if record.Author != "Alice" {
		t.Errorf("author = %q, want display name", record.Author)
	}

	p.Author.DisplayName = ""
	record = toPostRecord(p, "kw", fetchedAt)
	if record.Author != "alice.bsky.social" {
		t.Errorf("author = %q, want handle fallback", record.Author)
	}

	p.Record.CreatedAt = time.Time{}
	record = toPostRecord(p, "kw", fetchedAt)
	if !record.CreatedAt.Equal(fetchedAt) {
		t.Errorf("created_at = %v, want fetch-time fallback", record.CreatedAt)
	}
}

func TestToPostRecordFlattensMarkdownLinks(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	p := blueskyPost("at://did:1/post/1", "alice.bsky.social",
		"read [this article](https://example.com/a) now")

	record := toPostRecord(p, "kw", fetchedAt)
	if record.Text != "read this article now" {
		t.Errorf("text = %q, want markdown link flattened", record.Text)
	}
}
