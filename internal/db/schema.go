package db

import (
	"context"
	"fmt"
)

// Schema for the three-stage pipeline chain. Each stage owns zero-or-one row
// of the next (raw_posts, cleaned_posts, sentiment_results), enforced with
// unique foreign keys. Rows only move forward; nothing deletes them.
const schema = `
CREATE TABLE IF NOT EXISTS raw_posts (
    id             BIGSERIAL PRIMARY KEY,
    post_uri       VARCHAR(500) NOT NULL UNIQUE,
    cid            VARCHAR(100) NOT NULL,
    text           TEXT NOT NULL,
    author         VARCHAR(255) DEFAULT 'Unknown',
    author_handle  VARCHAR(255) NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL,
    fetched_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    search_keyword VARCHAR(255),
    is_processed   BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_raw_posts_unprocessed ON raw_posts (is_processed);
CREATE INDEX IF NOT EXISTS idx_raw_posts_keyword ON raw_posts (search_keyword);

CREATE TABLE IF NOT EXISTS cleaned_posts (
    id                BIGSERIAL PRIMARY KEY,
    raw_post_id       BIGINT NOT NULL UNIQUE REFERENCES raw_posts(id),
    cleaned_text      TEXT NOT NULL,
    original_text     TEXT NOT NULL,
    cleaning_metadata JSONB,
    preserve_hashtags BOOLEAN NOT NULL DEFAULT FALSE,
    preserve_mentions BOOLEAN NOT NULL DEFAULT FALSE,
    cleaned_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    is_analyzed       BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_cleaned_posts_unanalyzed ON cleaned_posts (is_analyzed);

CREATE TABLE IF NOT EXISTS sentiment_results (
    id               BIGSERIAL PRIMARY KEY,
    cleaned_post_id  BIGINT NOT NULL UNIQUE REFERENCES cleaned_posts(id),
    sentiment_label  VARCHAR(50) NOT NULL,
    confidence_score DOUBLE PRECISION NOT NULL,
    positive_score   DOUBLE PRECISION,
    negative_score   DOUBLE PRECISION,
    neutral_score    DOUBLE PRECISION,
    model_name       VARCHAR(255) NOT NULL,
    model_version    VARCHAR(100),
    search_keyword   VARCHAR(255),
    analyzed_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_sentiment_results_label ON sentiment_results (sentiment_label);
CREATE INDEX IF NOT EXISTS idx_sentiment_results_keyword_time ON sentiment_results (search_keyword, analyzed_at);
`

// CreateTables bootstraps the schema on startup.
func (s *Store) CreateTables(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
