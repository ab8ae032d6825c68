package store

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"feedsift/app/feed"
)

// FeedSummary is one row of the feed index view.
type FeedSummary struct {
	Name      string
	ItemCount int
}

type storedFeed struct {
	title       string
	description string
	items       []feed.Item
}

// FeedStore holds the bounded window of accepted items per feed. It is
// never persisted: losing it on restart only costs a re-poll, whereas the
// known-items record must survive (see KnownItems).
type FeedStore struct {
	mu       sync.RWMutex
	maxItems int
	feeds    map[string]*storedFeed
}

// NewFeedStore creates an empty store retaining at most maxItems accepted
// items per feed.
func NewFeedStore(maxItems int) *FeedStore {
	return &FeedStore{
		maxItems: maxItems,
		feeds:    make(map[string]*storedFeed),
	}
}

// EnsureFeed creates an empty feed entry if absent. Metadata is
// first-write-wins, except that a field left empty by an earlier failed or
// sparse fetch is filled in by a later one.
func (s *FeedStore) EnsureFeed(name, title, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.feeds[name]
	if !ok {
		s.feeds[name] = &storedFeed{title: title, description: description}
		return
	}

	if f.title == "" && title != "" {
		f.title = title
	}
	if f.description == "" && description != "" {
		f.description = description
	}
}

// Append pushes the item at the newest end, evicting from the oldest end
// until the capacity bound holds again. The poller always calls EnsureFeed
// first; an append to an unknown feed is a defect and is dropped loudly.
func (s *FeedStore) Append(name string, item feed.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.feeds[name]
	if !ok {
		slog.Error("Append to uninitialized feed, dropping item", "feed", name, "item", item.Title)
		return
	}

	f.items = append(f.items, item)
	for len(f.items) > s.maxItems {
		f.items = f.items[1:]
	}
}

// Read returns a snapshot of the feed's metadata and items, oldest first.
// The returned slice is a copy; concurrent writers never mutate it under a
// reader's iteration.
func (s *FeedStore) Read(name string) (title, description string, items []feed.Item, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, found := s.feeds[name]
	if !found {
		return "", "", nil, false
	}

	snapshot := make([]feed.Item, len(f.items))
	copy(snapshot, f.items)

	// A feed whose every fetch failed so far still gets a usable header.
	title = f.title
	if title == "" {
		title = fmt.Sprintf("Feed %s", name)
	}

	return title, f.description, snapshot, true
}

// ListNames returns the feed index, sorted by name.
func (s *FeedStore) ListNames() []FeedSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]FeedSummary, 0, len(s.feeds))
	for name, f := range s.feeds {
		summaries = append(summaries, FeedSummary{Name: name, ItemCount: len(f.items)})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	return summaries
}
