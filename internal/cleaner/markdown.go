package cleaner

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\(https?://[^\s)]+\)`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)
)

// FlattenMarkdown renders markdown-formatted source content to plain text.
// Link text is kept, link targets are dropped. Sources that deliver plain
// text pass through unchanged apart from whitespace normalization.
func FlattenMarkdown(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")

	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := htmlTagPattern.ReplaceAllString(string(output), " ")

	return strings.Join(strings.Fields(plain), " ")
}
