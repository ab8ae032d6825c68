package feed

import (
	"time"
)

// Item is a single entry from an upstream feed. The pipeline treats the
// display fields as opaque; only the GUID/Link/Title/PublishedAt fields
// participate in identity derivation.
type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt *time.Time
	UpdatedAt   *time.Time
	Authors     []string
	Categories  []string

	EnclosureURL    string
	EnclosureLength int64
	EnclosureType   string
}

// Metadata describes the upstream feed itself, populated from the first
// successful fetch.
type Metadata struct {
	Title       string
	Description string
}
