package models

import "time"

// CleaningMetadata records what the normalizer did to one post.
type CleaningMetadata struct {
	OriginalLength  int  `json:"original_length"`
	CleanedLength   int  `json:"cleaned_length"`
	URLsRemoved     int  `json:"urls_removed"`
	MentionsRemoved int  `json:"mentions_removed"`
	HashtagsRemoved int  `json:"hashtags_removed"`
	ContainedEmoji  bool `json:"contained_emoji"`
}

// CleanedPost is the one-to-one cleaned counterpart of a RawPost. IsAnalyzed
// flips true exactly once, when a sentiment result is durably stored.
type CleanedPost struct {
	ID               int64            `json:"id"`
	RawPostID        int64            `json:"raw_post_id"`
	CleanedText      string           `json:"cleaned_text"`
	OriginalText     string           `json:"original_text"`
	Metadata         CleaningMetadata `json:"cleaning_metadata"`
	PreserveHashtags bool             `json:"preserve_hashtags"`
	PreserveMentions bool             `json:"preserve_mentions"`
	CleanedAt        time.Time        `json:"cleaned_at"`
	IsAnalyzed       bool             `json:"is_analyzed"`
}
