package models

import "time"

// PostRecord is what the connector boundary hands to the store: one fetched
// post, keyed by its platform URI.
type PostRecord struct {
	PostURI       string    `json:"post_uri"`
	CID           string    `json:"cid"`
	Text          string    `json:"text"`
	Author        string    `json:"author"`
	AuthorHandle  string    `json:"author_handle"`
	CreatedAt     time.Time `json:"created_at"`
	FetchedAt     time.Time `json:"fetched_at"`
	SearchKeyword string    `json:"search_keyword"`
}

// RawPost is a stored post in its ingested form. IsProcessed flips true
// exactly once, when a cleaned counterpart is durably stored.
type RawPost struct {
	ID            int64     `json:"id"`
	PostURI       string    `json:"post_uri"`
	CID           string    `json:"cid"`
	Text          string    `json:"text"`
	Author        string    `json:"author"`
	AuthorHandle  string    `json:"author_handle"`
	CreatedAt     time.Time `json:"created_at"`
	FetchedAt     time.Time `json:"fetched_at"`
	SearchKeyword string    `json:"search_keyword"`
	IsProcessed   bool      `json:"is_processed"`
}
