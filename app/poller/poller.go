package poller

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"feedsift/app/config"
	"feedsift/app/feed"
	"feedsift/app/fetch"
	"feedsift/app/filter"
	"feedsift/app/store"
)

// primeWorkers bounds the fan-out of the initial pass so N configured
// feeds cannot open N outbound connections at once.
const primeWorkers = 5

// FeedFetcher is the poller's view of the fetch gate.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Poller drives the ingestion pipeline: fetch, dedup, decide, retain,
// persist. It owns no item state itself; it holds shared handles to the
// feed store and known-items cache, and never enters a fetch, decision or
// disk call while either lock is held.
type Poller struct {
	cfg      *config.Config
	store    *store.FeedStore
	known    *store.KnownItems
	fetcher  FeedFetcher
	gate     filter.Gate
	interval time.Duration
}

func New(cfg *config.Config, feedStore *store.FeedStore, known *store.KnownItems,
	fetcher FeedFetcher, gate filter.Gate) *Poller {
	return &Poller{
		cfg:      cfg,
		store:    feedStore,
		known:    known,
		fetcher:  fetcher,
		gate:     gate,
		interval: time.Duration(cfg.PollingIntervalSeconds) * time.Second,
	}
}

// Prime runs one bounded-concurrency pass over all configured feeds so
// the serving surface starts with content. Individual feed failures are
// logged and do not abort the others.
func (p *Poller) Prime(ctx context.Context) {
	slog.Info("Priming feeds", "count", len(p.cfg.Feeds), "workers", primeWorkers)

	names := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < primeWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range names {
				p.pollFeed(ctx, name)
			}
		}()
	}

	for _, name := range p.feedNames() {
		select {
		case names <- name:
		case <-ctx.Done():
		}
	}
	close(names)
	wg.Wait()

	p.saveSnapshot()
	slog.Info("Priming complete")
}

// Run is the steady-state loop. The ticker does not fire until one full
// interval after start, so a preceding Prime is not immediately repeated.
// Run returns when ctx is cancelled, flushing the known-items snapshot on
// the way out.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("Starting poller", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Poller stopping, flushing known items")
			p.saveSnapshot()
			return
		case <-ticker.C:
			p.pollAll(ctx)
		}
	}
}

// pollAll visits every configured feed once, then persists the known-items
// snapshot. Persistence happens once per cycle, not per feed.
func (p *Poller) pollAll(ctx context.Context) {
	slog.Debug("Polling all feeds")

	for _, name := range p.feedNames() {
		if ctx.Err() != nil {
			return
		}
		p.pollFeed(ctx, name)
	}

	p.saveSnapshot()
}

func (p *Poller) pollFeed(ctx context.Context, name string) {
	feedConfig := p.cfg.Feeds[name]

	result, err := p.fetcher.Fetch(ctx, feedConfig.URL)
	if err != nil {
		slog.Warn("Feed fetch failed, skipping", "feed", name, "error", err)
		fetchesTotal.WithLabelValues(name, "error").Inc()
		return
	}
	fetchesTotal.WithLabelValues(name, "ok").Inc()
	itemsFetchedTotal.Add(float64(len(result.Items)))

	slog.Debug("Fetched feed", "feed", name, "items", len(result.Items))

	p.store.EnsureFeed(name, result.Metadata.Title, result.Metadata.Description)

	accepted := 0
	rejected := 0
	duplicates := 0

	// Items are handled one at a time, in upstream order, so one item's
	// failure cannot skip a later item's decision.
	for _, item := range result.Items {
		guid := feed.Identity(item)

		if p.known.IsKnown(name, guid) {
			duplicates++
			itemsDuplicateTotal.Inc()
			continue
		}

		// The decision call is slow and remote; no store lock is held here.
		accept := p.gate.Accepts(ctx, item, feedConfig.Filters, p.cfg.GlobalFilters)

		// Rejected items are recorded too: a rejection is final until the
		// identity ages out of the cache.
		p.known.Record(name, guid)

		if accept {
			p.store.Append(name, item)
			accepted++
			itemsAcceptedTotal.Inc()
		} else {
			rejected++
			itemsRejectedTotal.Inc()
		}
	}

	slog.Info("Feed processed",
		"feed", name,
		"total", len(result.Items),
		"duplicates", duplicates,
		"accepted", accepted,
		"rejected", rejected)
}

// saveSnapshot persists the known-items cache. Failure is soft: the
// in-memory state stays authoritative until the next successful save.
func (p *Poller) saveSnapshot() {
	if err := p.known.Save(p.cfg.KnownItemsFile); err != nil {
		slog.Warn("Failed to save known items", "path", p.cfg.KnownItemsFile, "error", err)
		snapshotErrorsTotal.Inc()
	}
}

func (p *Poller) feedNames() []string {
	names := make([]string, 0, len(p.cfg.Feeds))
	for name := range p.cfg.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
