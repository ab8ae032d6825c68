package feed

import (
	"log/slog"
	"strings"

	"github.com/go-shiori/go-readability"
)

const maxExcerptChars = 1000

// Excerpt turns the item's HTML content into a bounded plain-text excerpt
// suitable for a classification prompt. Items without content, or content
// the readability pass cannot handle, yield an empty excerpt; the caller
// substitutes a placeholder.
func Excerpt(item Item) string {
	if item.Content == "" {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(item.Content), nil)
	if err != nil {
		slog.Debug("Content extraction failed, using empty excerpt", "item", item.Title, "error", err)
		return ""
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if len(text) > maxExcerptChars {
		text = text[:maxExcerptChars]
	}

	return text
}
