package connector

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/senticheck/senticheck/internal/cleaner"
	"github.com/senticheck/senticheck/internal/clients"
	"github.com/senticheck/senticheck/internal/models"
	"github.com/senticheck/senticheck/internal/utils"
)

const fetchLimit = 100

// Ingestor is the slice of the store the connector needs.
type Ingestor interface {
	IngestRaw(ctx context.Context, posts []models.PostRecord) (int, error)
}

// PostSearcher is the slice of the API client the connector needs.
type PostSearcher interface {
	SearchPosts(ctx context.Context, query string, limit int) ([]clients.BlueskyPost, error)
}

// BlueskyConnector pulls posts for tracked keywords from Bluesky and hands
// them to the store. Posts buffer per collection cycle so one bulk insert
// covers every keyword.
type BlueskyConnector struct {
	client PostSearcher
	store  Ingestor
	buffer *utils.BatchBuffer[models.PostRecord]
}

func NewBlueskyConnector(client PostSearcher, store Ingestor) *BlueskyConnector {
	return &BlueskyConnector{
		client: client,
		store:  store,
		buffer: utils.NewBatchBuffer[models.PostRecord](),
	}
}

// CollectKeyword fetches recent posts for one keyword into the buffer.
// Returns how many posts were fetched.
func (c *BlueskyConnector) CollectKeyword(ctx context.Context, keyword string) (int, error) {
	posts, err := c.client.SearchPosts(ctx, keyword, fetchLimit)
	if err != nil {
		return 0, err
	}

	fetchedAt := time.Now().UTC()
	records := make([]models.PostRecord, 0, len(posts))
	for _, post := range posts {
		record := toPostRecord(post, keyword, fetchedAt)
		if record.Text == "" {
			continue
		}
		records = append(records, record)
	}
	c.buffer.AddAll(records)

	slog.Info("[BlueskyConnector] Collected posts",
		slog.String("keyword", keyword),
		slog.Int("fetched", len(posts)))
	return len(posts), nil
}

// Flush bulk-inserts everything buffered so far. Duplicate URIs are counted
// by the store as skips, so re-running a collection cycle is harmless.
func (c *BlueskyConnector) Flush(ctx context.Context) (int, error) {
	batch := c.buffer.GetAndClear()
	if len(batch) == 0 {
		return 0, nil
	}

	inserted, err := c.store.IngestRaw(ctx, batch)
	if err != nil {
		return 0, err
	}

	slog.Info("[BlueskyConnector] Flushed batch",
		slog.Int("buffered", len(batch)),
		slog.Int("inserted", inserted),
		slog.Int("duplicates", len(batch)-inserted))
	return inserted, nil
}

// Run collects every keyword then flushes once. A failing keyword logs and
// moves on; the cycle inserts whatever the rest produced.
func (c *BlueskyConnector) Run(ctx context.Context, keywords []string) (int, error) {
	for _, keyword := range keywords {
		if _, err := c.CollectKeyword(ctx, keyword); err != nil {
			slog.Error("[BlueskyConnector] Keyword collection failed",
				slog.String("keyword", keyword),
				slog.String("error", err.Error()))
		}
	}
	return c.Flush(ctx)
}

func toPostRecord(post clients.BlueskyPost, keyword string, fetchedAt time.Time) models.PostRecord {
	author := post.Author.DisplayName
	if author == "" {
		author = post.Author.Handle
	}

	createdAt := post.Record.CreatedAt
	if createdAt.IsZero() {
		createdAt = fetchedAt
	}

	// Crossposted content sometimes arrives with markdown links intact.
	text := post.Record.Text
	if strings.Contains(text, "](") {
		text = cleaner.FlattenMarkdown(text)
	}

	return models.PostRecord{
		PostURI:       post.URI,
		CID:           post.CID,
		Text:          strings.TrimSpace(text),
		Author:        author,
		AuthorHandle:  post.Author.Handle,
		CreatedAt:     createdAt,
		FetchedAt:     fetchedAt,
		SearchKeyword: keyword,
	}
}
