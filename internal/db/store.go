package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senticheck/senticheck/internal/models"
)

// Store persists the three-stage post chain. Write methods that run inside
// larger batch loops report per-record failure through their return value so
// one bad record never aborts the surrounding batch.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// IngestRaw inserts fetched posts, silently skipping any whose post URI
// already exists. Duplicates are expected under retried fetches and are not
// errors. Returns the number of newly inserted rows.
func (s *Store) IngestRaw(ctx context.Context, posts []models.PostRecord) (int, error) {
	if len(posts) == 0 {
		slog.Info("[Store] No posts to ingest")
		return 0, nil
	}

	stored, err := s.ingestRawBatch(ctx, posts)
	if err != nil {
		// Total batch failure (transport/driver level). Retry record by
		// record so a single bad row no longer takes the rest down with it.
		slog.Warn("[Store] Batch ingest failed, falling back to individual inserts",
			slog.String("error", err.Error()))
		return s.ingestRawIndividual(ctx, posts), nil
	}

	slog.Info("[Store] Batch ingested posts",
		slog.Int("stored", stored),
		slog.Int("total", len(posts)))
	return stored, nil
}

func (s *Store) ingestRawBatch(ctx context.Context, posts []models.PostRecord) (int, error) {
	query := `INSERT INTO raw_posts
        (post_uri, cid, text, author, author_handle, created_at, fetched_at, search_keyword, is_processed)
        VALUES `

	values := []interface{}{}
	placeholderParts := []string{}

	for i, post := range posts {
		offset := i * 8
		placeholderParts = append(placeholderParts,
			fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, FALSE)",
				offset+1, offset+2, offset+3, offset+4, offset+5, offset+6, offset+7, offset+8))

		author := post.Author
		if author == "" {
			author = "Unknown"
		}
		values = append(values, post.PostURI, post.CID, post.Text, author,
			post.AuthorHandle, post.CreatedAt, post.FetchedAt, post.SearchKeyword)
	}

	query += strings.Join(placeholderParts, ", ")
	query += ` ON CONFLICT (post_uri) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query, values...)
	if err != nil {
		return 0, fmt.Errorf("failed to batch insert posts: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (s *Store) ingestRawIndividual(ctx context.Context, posts []models.PostRecord) int {
	stored := 0
	skipped := 0

	for _, post := range posts {
		var exists bool
		err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM raw_posts WHERE post_uri = $1)`,
			post.PostURI).Scan(&exists)
		if err != nil {
			slog.Warn("[Store] Failed to check for existing post",
				slog.String("post_uri", post.PostURI),
				slog.String("error", err.Error()))
			continue
		}
		if exists {
			skipped++
			continue
		}

		author := post.Author
		if author == "" {
			author = "Unknown"
		}
		_, err = s.pool.Exec(ctx, `INSERT INTO raw_posts
            (post_uri, cid, text, author, author_handle, created_at, fetched_at, search_keyword, is_processed)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
            ON CONFLICT (post_uri) DO NOTHING`,
			post.PostURI, post.CID, post.Text, author,
			post.AuthorHandle, post.CreatedAt, post.FetchedAt, post.SearchKeyword)
		if err != nil {
			slog.Warn("[Store] Failed to store post",
				slog.String("post_uri", post.PostURI),
				slog.String("error", err.Error()))
			continue
		}
		stored++
	}

	slog.Info("[Store] Individually ingested posts",
		slog.Int("stored", stored),
		slog.Int("skipped_duplicates", skipped),
		slog.Int("total", len(posts)))
	return stored
}

// FetchUnprocessed returns raw posts that have not been cleaned yet, in
// stable id order so a pass never sees the same post twice.
func (s *Store) FetchUnprocessed(ctx context.Context, limit int) ([]models.RawPost, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, post_uri, cid, text, author, author_handle,
               created_at, fetched_at, COALESCE(search_keyword, ''), is_processed
        FROM raw_posts
        WHERE is_processed = FALSE
        ORDER BY id
        LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed posts: %w", err)
	}
	defer rows.Close()

	var posts []models.RawPost
	for rows.Next() {
		var p models.RawPost
		if err := rows.Scan(&p.ID, &p.PostURI, &p.CID, &p.Text, &p.Author,
			&p.AuthorHandle, &p.CreatedAt, &p.FetchedAt, &p.SearchKeyword, &p.IsProcessed); err != nil {
			return nil, fmt.Errorf("failed to scan raw post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// StoreCleaned inserts a cleaned post and flips the parent's is_processed
// flag in the same transaction.
func (s *Store) StoreCleaned(ctx context.Context, rawPostID int64, cleanedText, originalText string,
	meta models.CleaningMetadata, preserveHashtags, preserveMentions bool,
) (int64, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal cleaning metadata: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var cleanedID int64
	err = tx.QueryRow(ctx, `INSERT INTO cleaned_posts
        (raw_post_id, cleaned_text, original_text, cleaning_metadata, preserve_hashtags, preserve_mentions)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`,
		rawPostID, cleanedText, originalText, metaJSON, preserveHashtags, preserveMentions,
	).Scan(&cleanedID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert cleaned post: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE raw_posts SET is_processed = TRUE WHERE id = $1`, rawPostID); err != nil {
		return 0, fmt.Errorf("failed to mark raw post processed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit cleaned post: %w", err)
	}

	return cleanedID, nil
}

// MarkProcessed flips is_processed without storing a cleaned row. Used for
// posts the content filter drops, so they are not retried forever.
func (s *Store) MarkProcessed(ctx context.Context, rawPostID int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE raw_posts SET is_processed = TRUE WHERE id = $1`, rawPostID)
	if err != nil {
		return fmt.Errorf("failed to mark raw post processed: %w", err)
	}
	return nil
}

// FetchUnanalyzed returns cleaned posts awaiting sentiment analysis.
func (s *Store) FetchUnanalyzed(ctx context.Context, limit int) ([]models.CleanedPost, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, raw_post_id, cleaned_text, original_text,
               COALESCE(cleaning_metadata, '{}'::jsonb),
               preserve_hashtags, preserve_mentions, cleaned_at, is_analyzed
        FROM cleaned_posts
        WHERE is_analyzed = FALSE
        ORDER BY id
        LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unanalyzed posts: %w", err)
	}
	defer rows.Close()

	var posts []models.CleanedPost
	for rows.Next() {
		var p models.CleanedPost
		var metaJSON []byte
		if err := rows.Scan(&p.ID, &p.RawPostID, &p.CleanedText, &p.OriginalText,
			&metaJSON, &p.PreserveHashtags, &p.PreserveMentions, &p.CleanedAt, &p.IsAnalyzed); err != nil {
			return nil, fmt.Errorf("failed to scan cleaned post: %w", err)
		}
		if err := json.Unmarshal(metaJSON, &p.Metadata); err != nil {
			slog.Warn("[Store] Failed to decode cleaning metadata",
				slog.Int64("cleaned_post_id", p.ID),
				slog.String("error", err.Error()))
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// insertSentiment writes one sentiment row and flips is_analyzed, using
// whatever transaction-ish executor it is given. The search keyword is
// denormalized from the raw post at write time unless the caller supplied
// one.
const insertSentimentSQL = `
    INSERT INTO sentiment_results
        (cleaned_post_id, sentiment_label, confidence_score,
         positive_score, negative_score, neutral_score,
         model_name, model_version, search_keyword)
    SELECT cp.id, $2, $3, $4, $5, $6, $7, $8,
           COALESCE(NULLIF($9, ''), rp.search_keyword)
    FROM cleaned_posts cp
    JOIN raw_posts rp ON rp.id = cp.raw_post_id
    WHERE cp.id = $1
    RETURNING id`

// StoreSentiment inserts a sentiment result for one cleaned post and flips
// its is_analyzed flag in the same transaction.
func (s *Store) StoreSentiment(ctx context.Context, record models.SentimentRecord) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var resultID int64
	err = tx.QueryRow(ctx, insertSentimentSQL,
		record.CleanedPostID, record.SentimentLabel, record.ConfidenceScore,
		record.PositiveScore, record.NegativeScore, record.NeutralScore,
		record.ModelName, record.ModelVersion, record.SearchKeyword,
	).Scan(&resultID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sentiment result: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE cleaned_posts SET is_analyzed = TRUE WHERE id = $1`, record.CleanedPostID); err != nil {
		return 0, fmt.Errorf("failed to mark cleaned post analyzed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit sentiment result: %w", err)
	}
	return resultID, nil
}

// StoreSentimentBatch stores many sentiment results in one transaction,
// isolating each record behind a savepoint so one bad record is rolled back
// alone and the rest of the batch still lands. Returns the count actually
// stored.
func (s *Store) StoreSentimentBatch(ctx context.Context, records []models.SentimentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stored, err := storeSentimentRecords(ctx, tx, records)
	if err != nil {
		return stored, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit sentiment batch: %w", err)
	}

	slog.Info("[Store] Stored sentiment batch",
		slog.Int("stored", stored),
		slog.Int("total", len(records)))
	return stored, nil
}

// storeSentimentRecords runs the per-record loop inside an open batch
// transaction. Each record gets its own savepoint: a record that fails to
// insert is rolled back alone and the loop moves on.
func storeSentimentRecords(ctx context.Context, tx pgx.Tx, records []models.SentimentRecord) (int, error) {
	stored := 0
	for _, record := range records {
		// Nested Begin on a pgx transaction opens a savepoint.
		sp, err := tx.Begin(ctx)
		if err != nil {
			return stored, fmt.Errorf("failed to open savepoint: %w", err)
		}

		var resultID int64
		err = sp.QueryRow(ctx, insertSentimentSQL,
			record.CleanedPostID, record.SentimentLabel, record.ConfidenceScore,
			record.PositiveScore, record.NegativeScore, record.NeutralScore,
			record.ModelName, record.ModelVersion, record.SearchKeyword,
		).Scan(&resultID)
		if err == nil {
			_, err = sp.Exec(ctx,
				`UPDATE cleaned_posts SET is_analyzed = TRUE WHERE id = $1`, record.CleanedPostID)
		}

		if err != nil {
			slog.Error("[Store] Failed to store sentiment result",
				slog.Int64("cleaned_post_id", record.CleanedPostID),
				slog.String("error", err.Error()))
			_ = sp.Rollback(ctx)
			continue
		}
		if err := sp.Commit(ctx); err != nil {
			slog.Error("[Store] Failed to release savepoint",
				slog.Int64("cleaned_post_id", record.CleanedPostID),
				slog.String("error", err.Error()))
			continue
		}
		stored++
	}
	return stored, nil
}
