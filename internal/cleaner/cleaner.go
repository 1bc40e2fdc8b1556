package cleaner

import (
	"html"
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"

	"github.com/senticheck/senticheck/internal/models"
)

var (
	urlPattern     = regexp.MustCompile(`http[s]?://(?:[a-zA-Z0-9]|[$\-_@.&+]|[!*(),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_.\-]+`)
	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	// Letters in any script, digits, whitespace, and the punctuation
	// allow-list survive; everything else is stripped.
	specialCharsPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:'"()\-]`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// Options control which tokens the normalizer keeps.
type Options struct {
	PreserveHashtags bool
	PreserveMentions bool
}

// CleanText normalizes one post's text. It is deterministic and side-effect
// free: the same text and options always produce the same output and
// metadata. Steps run in a fixed order because later ones operate on the
// output of earlier ones.
func CleanText(text string, opts Options) (string, models.CleaningMetadata) {
	meta := models.CleaningMetadata{OriginalLength: len([]rune(text))}
	if text == "" {
		return "", meta
	}

	text = html.UnescapeString(text)

	meta.URLsRemoved = len(urlPattern.FindAllString(text, -1))
	text = urlPattern.ReplaceAllString(text, "")

	if !opts.PreserveMentions {
		meta.MentionsRemoved = len(mentionPattern.FindAllString(text, -1))
		text = mentionPattern.ReplaceAllString(text, "")
	}

	if !opts.PreserveHashtags {
		// Drop the marker, keep the word: "#ai" becomes "ai".
		meta.HashtagsRemoved = len(hashtagPattern.FindAllString(text, -1))
		text = hashtagPattern.ReplaceAllStringFunc(text, func(tag string) string {
			return tag[1:]
		})
	}

	meta.ContainedEmoji = gomoji.ContainsEmoji(text)
	if meta.ContainedEmoji {
		text = gomoji.RemoveEmojis(text)
	}

	text = specialCharsPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	meta.CleanedLength = len([]rune(text))
	return text, meta
}
