package feed

import (
	"fmt"
	"time"
)

// Identity derives the stable identifier used for deduplication.
//
// The priority chain is strict: explicit GUID, then link, then a
// title+publication-date composite, then a synthetic time-based fallback.
// Both the "is known" check and the "mark known" record must go through
// this function so the two sides can never disagree.
func Identity(item Item) string {
	if item.GUID != "" {
		return item.GUID
	}

	if item.Link != "" {
		return item.Link
	}

	if item.Title != "" {
		pubDate := "no-date"
		if item.PublishedAt != nil {
			pubDate = item.PublishedAt.UTC().Format(time.RFC1123Z)
		}
		return fmt.Sprintf("%s-%s", item.Title, pubDate)
	}

	return fmt.Sprintf("unknown-%d", time.Now().Unix())
}
